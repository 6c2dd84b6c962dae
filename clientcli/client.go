package clientcli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout. Uploads and exports
// can take as long as the server's operation timeout, so it is generous.
const DefaultTimeout = 5 * time.Minute

// Client performs operations against a sitehost server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     &Config{Endpoint: strings.TrimSuffix(cfg.Endpoint, "/")},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload creates a new site from local files and directories.
// Each directory is zipped client-side with paths relative to the directory;
// plain files are sent as-is and land at the top of the site.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyName)
	}
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("upload: %w", ErrNoPaths)
	}

	req := uploadRequest{SiteName: name, Files: make([]uploadFile, 0, len(opts.Paths))}
	result := &UploadResult{Name: name}

	for _, p := range opts.Paths {
		if p == "" {
			return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
		}

		fileName, data, entries, err := readUploadPath(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", p, err)
		}

		req.Files = append(req.Files, uploadFile{
			FileName: fileName,
			FileData: base64.StdEncoding.EncodeToString(data),
		})
		result.Files = append(result.Files, entries...)
		result.Size += int64(len(data))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var resp uploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}

	result.Slug = resp.Slug
	result.URL = c.absoluteURL(resp.URL)
	return result, nil
}

// readUploadPath returns the upload entry name, its bytes, and the file names
// it contributes to the site.
func readUploadPath(ctx context.Context, p string) (string, []byte, []string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", nil, nil, fmt.Errorf("stat local path: %w", err)
	}

	if info.IsDir() {
		data, names, err := ZipDirectory(ctx, p)
		if err != nil {
			return "", nil, nil, err
		}
		base := filepath.Base(filepath.Clean(p))
		if base == "." || base == string(filepath.Separator) {
			base = "site"
		}
		return base + ".zip", data, names, nil
	}

	data, err := os.ReadFile(p) //#nosec G304 -- p is user-provided input
	if err != nil {
		return "", nil, nil, fmt.Errorf("read file: %w", err)
	}
	base := filepath.Base(p)
	return base, data, []string{base}, nil
}

// List returns every site on the server, newest first.
func (c *Client) List(ctx context.Context) ([]SiteInfo, error) {
	var resp siteListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/admin/sites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sites, nil
}

// Delete soft-deletes each slug. Continues on error, collecting results.
func (c *Client) Delete(ctx context.Context, slugs []string) ([]ActionResult, error) {
	return c.siteActions(ctx, slugs, "delete")
}

// Restore restores each soft-deleted slug. Continues on error, collecting results.
func (c *Client) Restore(ctx context.Context, slugs []string) ([]ActionResult, error) {
	return c.siteActions(ctx, slugs, "restore")
}

func (c *Client) siteActions(ctx context.Context, slugs []string, action string) ([]ActionResult, error) {
	if len(slugs) == 0 {
		return nil, ErrNoSlugs
	}

	results := make([]ActionResult, 0, len(slugs))

	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := ActionResult{Slug: slug}
		if slug == "" {
			result.Err = ErrEmptySlug
			results = append(results, result)
			continue
		}

		var resp messageResponse
		err := c.doJSON(ctx, http.MethodPost, "/admin/site/"+url.PathEscape(slug)+"/"+action, nil, &resp)
		if err != nil {
			result.Err = err
		} else {
			result.OK = true
			result.Message = resp.Message
		}
		results = append(results, result)
	}

	return results, nil
}

// HasActionErrors returns true if any delete or restore failed.
func HasActionErrors(results []ActionResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Usage returns the active site count and total stored bytes.
func (c *Client) Usage(ctx context.Context) (*UsageResult, error) {
	var resp UsageResult
	if err := c.doJSON(ctx, http.MethodGet, "/admin/usage", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Download fetches a zip export of a site.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.Slug == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptySlug)
	}

	resp, err := c.do(ctx, http.MethodGet, "/admin/site/"+url.PathEscape(opts.Slug)+"/download", nil)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		Slug: opts.Slug,
		Size: resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}
	defer func() { _ = resp.Body.Close() }()

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = opts.Slug + ".zip"
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Ping reports whether the server answers its health check.
func (c *Client) Ping(ctx context.Context) error {
	var resp map[string]any
	return c.doJSON(ctx, http.MethodGet, "/healthz", nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// doJSON sends a request and decodes a 200 JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// absoluteURL resolves a server-relative view URL against the endpoint.
func (c *Client) absoluteURL(u string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return c.config.Endpoint + "/" + strings.TrimPrefix(u, "/")
}

// parseServerError extracts error message from server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		apiErr.Code = er.Code
		apiErr.Message = er.Error
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the site does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrConflict is returned when the site name is already taken (409).
	ErrConflict = &APIError{StatusCode: http.StatusConflict}

	// ErrTooLarge is returned when an upload exceeds the server limits (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}

	// ErrUnavailable is returned when the server timed out the operation (503).
	// The request may be retried.
	ErrUnavailable = &APIError{StatusCode: http.StatusServiceUnavailable}
)
