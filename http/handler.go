package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/metrics"
)

// DefaultMaxUploadSize caps the JSON upload body when HandlerConfig leaves it unset.
const DefaultMaxUploadSize int64 = 100 << 20

type Service interface {
	Upload(ctx context.Context, name string, files []sitehost.UploadFile) (sitehost.UploadResult, error)
	View(ctx context.Context, slug string) (sitehost.View, error)
	OpenAsset(ctx context.Context, slug, name string) (sitehost.Asset, error)
	List(ctx context.Context) ([]sitehost.Site, error)
	Delete(ctx context.Context, slug string) error
	Restore(ctx context.Context, slug string) error
	Usage(ctx context.Context) (sitehost.Usage, error)
	Export(ctx context.Context, slug string) (sitehost.Export, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS          CORSConfig
	MaxUploadSize int64
	// HealthCheck backs GET /healthz. A nil check always reports healthy.
	HealthCheck func(ctx context.Context) error
}

// Handler provides HTTP handlers for site hosting operations.
type Handler struct {
	config   HandlerConfig
	service  Service
	validate *validator.Validate
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}

	return &Handler{
		config:   cfg,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLog(nil))

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Post("/upload", h.handleUpload)

	r.Get("/view", h.handleViewQuery)
	r.Get("/view/{slug}", h.redirectSlash)
	r.Get("/view/{slug}/*", h.handleView)

	r.Get("/sites/{slug}", h.redirectSlash)
	r.Get("/sites/{slug}/*", h.handleAsset)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/sites", h.handleAdminList)
		r.Get("/usage", h.handleAdminUsage)
		r.Post("/site/{slug}/delete", h.handleAdminDelete)
		r.Post("/site/{slug}/restore", h.handleAdminRestore)
		r.Get("/site/{slug}/download", h.handleAdminDownload)
	})

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type uploadFile struct {
	FileName string `json:"fileName" validate:"required,max=1024"`
	FileData string `json:"fileData"`
}

type uploadRequest struct {
	SiteName string       `json:"siteName" validate:"required,max=200"`
	Files    []uploadFile `json:"files" validate:"required,min=1,dive"`
}

type uploadResponse struct {
	OK   bool   `json:"ok"`
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var err error
	defer func() { metrics.Observe("upload", err, start) }()

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)

	var req uploadRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = sitehost.ErrTooLarge
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload too large")
			return
		}
		err = sitehost.ErrInvalidInput
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid JSON body")
		return
	}

	if err = h.validate.Struct(req); err != nil {
		err = sitehost.ErrInvalidInput
		WriteError(w, http.StatusBadRequest, "invalid_input", "siteName and at least one file are required")
		return
	}

	files := make([]sitehost.UploadFile, 0, len(req.Files))
	for _, f := range req.Files {
		data, decodeErr := decodeFileData(f.FileData)
		if decodeErr != nil {
			err = sitehost.ErrInvalidInput
			WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid base64 data for "+f.FileName)
			return
		}
		metrics.UploadBytesTotal.Add(float64(len(data)))
		files = append(files, sitehost.UploadFile{Name: f.FileName, Data: data})
	}

	result, err := h.service.Upload(r.Context(), req.SiteName, files)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, uploadResponse{OK: true, URL: result.URL, Slug: result.Slug})
}

// decodeFileData accepts plain base64 or a data URL with a base64 payload.
func decodeFileData(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		_, payload, ok := strings.Cut(s, ";base64,")
		if !ok {
			return nil, errors.New("data url is not base64 encoded")
		}
		s = payload
	}
	return base64.StdEncoding.DecodeString(s)
}

func (h *Handler) handleViewQuery(w http.ResponseWriter, r *http.Request) {
	site := r.URL.Query().Get("site")
	if site == "" {
		writeDefaultNotFound(w)
		return
	}
	http.Redirect(w, r, "/view/"+url.PathEscape(site)+"/", http.StatusFound)
}

// redirectSlash sends /view/{slug} and /sites/{slug} to their trailing slash
// form so relative links inside the site resolve under the slug.
func (h *Handler) redirectSlash(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	rest := chi.URLParam(r, "*")

	if rest != "" {
		h.serveAsset(w, r, "view_asset", slug, rest)
		return
	}

	start := time.Now()
	view, err := h.service.View(r.Context(), slug)
	metrics.Observe("view", err, start)
	if err != nil {
		if errors.Is(err, sitehost.ErrNotFound) {
			writeDefaultNotFound(w)
			return
		}
		HandleError(w, err)
		return
	}

	if view.IsListing() {
		writeListing(w, view)
		return
	}
	defer func() { _ = view.Content.Close() }()

	http.ServeContent(w, r, view.Name, view.ModTime, view.Content)
}

func (h *Handler) handleAsset(w http.ResponseWriter, r *http.Request) {
	h.serveAsset(w, r, "asset", chi.URLParam(r, "slug"), chi.URLParam(r, "*"))
}

func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request, op, slug, name string) {
	start := time.Now()
	asset, err := h.service.OpenAsset(r.Context(), slug, name)
	metrics.Observe(op, err, start)
	if err != nil {
		if errors.Is(err, sitehost.ErrNotFound) {
			writeDefaultNotFound(w)
			return
		}
		HandleError(w, err)
		return
	}
	defer func() { _ = asset.Content.Close() }()

	http.ServeContent(w, r, asset.Name, asset.ModTime, asset.Content)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.config.HealthCheck != nil {
		if err := h.config.HealthCheck(r.Context()); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "unhealthy", "Service unavailable")
			return
		}
	}
	_ = WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
