package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/metrics"
)

type siteListResponse struct {
	OK    bool            `json:"ok"`
	Sites []sitehost.Site `json:"sites"`
}

type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type usageResponse struct {
	OK                    bool   `json:"ok"`
	TotalSites            int64  `json:"totalSites"`
	TotalStorage          int64  `json:"totalStorage"`
	TotalStorageFormatted string `json:"totalStorageFormatted"`
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sites, err := h.service.List(r.Context())
	metrics.Observe("list", err, start)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, siteListResponse{OK: true, Sites: sites})
}

func (h *Handler) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	start := time.Now()
	err := h.service.Delete(r.Context(), slug)
	metrics.Observe("delete", err, start)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, messageResponse{OK: true, Message: fmt.Sprintf("Site %s deleted", slug)})
}

func (h *Handler) handleAdminRestore(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	start := time.Now()
	err := h.service.Restore(r.Context(), slug)
	metrics.Observe("restore", err, start)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, messageResponse{OK: true, Message: fmt.Sprintf("Site %s restored", slug)})
}

func (h *Handler) handleAdminUsage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	usage, err := h.service.Usage(r.Context())
	metrics.Observe("usage", err, start)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, usageResponse{
		OK:                    true,
		TotalSites:            usage.TotalSites,
		TotalStorage:          usage.TotalStorage,
		TotalStorageFormatted: humanize.Bytes(uint64(max(usage.TotalStorage, 0))),
	})
}

func (h *Handler) handleAdminDownload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	export, err := h.service.Export(r.Context(), chi.URLParam(r, "slug"))
	metrics.Observe("export", err, start)
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
