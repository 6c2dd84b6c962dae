package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, result *UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatAction(w io.Writer, verb string, results []ActionResult) error
	FormatList(w io.Writer, sites []SiteInfo) error
	FormatUsage(w io.Writer, usage *UsageResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload prints the site URL. In quiet mode only the URL is printed.
func (f *HumanFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.URL)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Published: %s (%s, %d file(s))\n", result.Slug, humanize.Bytes(uint64(max(result.Size, 0))), len(result.Files))
	_, _ = fmt.Fprintf(w, "  URL: %s\n", result.URL)
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet || result.LocalPath == "-" {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.Slug, result.LocalPath, humanize.Bytes(uint64(max(result.Size, 0))))
	return nil
}

// FormatAction formats delete or restore results. verb is the past tense
// shown on success, e.g. "Deleted".
func (f *HumanFormatter) FormatAction(w io.Writer, verb string, results []ActionResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Slug, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "%s: %s\n", verb, r.Slug)
		}
	}
	return nil
}

// FormatList formats the site list as a table.
func (f *HumanFormatter) FormatList(w io.Writer, sites []SiteInfo) error {
	if len(sites) == 0 {
		_, _ = fmt.Fprintln(w, "No sites found")
		return nil
	}

	maxSlugLen := 4 // "SLUG"
	for i := range sites {
		maxSlugLen = max(maxSlugLen, len(sites[i].Slug))
	}
	maxSlugLen = min(maxSlugLen, 50)

	_, _ = fmt.Fprintf(w, "%-*s  %-7s  %10s  %s\n", maxSlugLen, "SLUG", "STATUS", "SIZE", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n", strings.Repeat("-", maxSlugLen), strings.Repeat("-", 7), strings.Repeat("-", 10), strings.Repeat("-", 19))

	var total int64
	for i := range sites {
		s := &sites[i]
		slug := s.Slug
		if len(slug) > maxSlugLen {
			slug = slug[:maxSlugLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-*s  %-7s  %10s  %s\n",
			maxSlugLen,
			slug,
			s.Status,
			humanize.Bytes(uint64(max(s.SizeBytes, 0))),
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		)
		total += s.SizeBytes
	}

	_, _ = fmt.Fprintf(w, "\n%d site(s) (%s total)\n", len(sites), humanize.Bytes(uint64(max(total, 0))))
	return nil
}

// FormatUsage formats usage totals as human-readable text.
func (f *HumanFormatter) FormatUsage(w io.Writer, usage *UsageResult) error {
	_, _ = fmt.Fprintf(w, "Active sites: %d\n", usage.TotalSites)
	_, _ = fmt.Fprintf(w, "Storage:      %s\n", usage.TotalStorageFormatted)
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
	}
	maxNameLen = min(maxNameLen, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 30))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, name, p.Endpoint)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats the upload result as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	return writeJSON(w, result)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if result.LocalPath == "-" {
		return nil
	}
	return writeJSON(w, result)
}

// FormatAction formats delete or restore results as JSON.
func (f *JSONFormatter) FormatAction(w io.Writer, _ string, results []ActionResult) error {
	type jsonResult struct {
		Slug    string `json:"slug"`
		OK      bool   `json:"ok"`
		Message string `json:"message,omitempty"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{Slug: r.Slug, OK: r.OK, Message: r.Message}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatList formats the site list as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, sites []SiteInfo) error {
	if sites == nil {
		sites = []SiteInfo{}
	}
	return writeJSON(w, struct {
		Sites []SiteInfo `json:"sites"`
	}{Sites: sites})
}

// FormatUsage formats usage totals as JSON.
func (f *JSONFormatter) FormatUsage(w io.Writer, usage *UsageResult) error {
	return writeJSON(w, usage)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = jsonProfile{
			Name:     profiles[i].Name,
			Endpoint: profiles[i].Endpoint,
			Default:  profiles[i].Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	output := struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Default:  isDefault,
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
