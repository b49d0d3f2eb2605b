package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/onlyhub/internal/repositories"
	"github.com/desertthunder/onlyhub/internal/shared"
)

// Loader reads the full catalog. [*repositories.Catalog] implements it.
type Loader interface {
	Snapshot(ctx context.Context) (repositories.Snapshot, error)
}

// CatalogHandler serves the catalog snapshot and a health probe.
type CatalogHandler struct {
	loader Loader
	online bool
	logger *log.Logger
}

// NewCatalogHandler creates the handler. Online reports whether a backend is configured.
func NewCatalogHandler(loader Loader, online bool, logger *log.Logger) *CatalogHandler {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &CatalogHandler{loader: loader, online: online, logger: logger}
}

func (h *CatalogHandler) Routes() []string {
	return []string{"GET /api/catalog", "GET /health"}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/catalog":
		h.catalog(w, r)
	case "/health":
		h.health(w)
	default:
		writeError(w, h.logger, http.StatusNotFound, "not found")
	}
}

func (h *CatalogHandler) catalog(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loader.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to load catalog", "error", err)
		writeError(w, h.logger, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, h.logger, http.StatusOK, snap)
}

func (h *CatalogHandler) health(w http.ResponseWriter) {
	backend := "live"
	if !h.online {
		backend = "local-only"
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok", "backend": backend})
}

// writeJSON encodes v as the response body. Encoding failures go to logger, which may be nil.
func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Debug("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *log.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]string{"error": message})
}
