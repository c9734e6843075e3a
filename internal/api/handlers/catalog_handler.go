package handlers

import (
	"net/http"
	"time"

	"github.com/Longevitate/carefinder/internal/application/services"
)

// CatalogHandler serves the service catalog and health state of the
// current snapshot
type CatalogHandler struct {
	snapshots services.SnapshotReader
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(snapshots services.SnapshotReader) *CatalogHandler {
	return &CatalogHandler{snapshots: snapshots}
}

// ListServices handles GET /api/services
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	snapshot := h.snapshots.Current()
	if snapshot == nil {
		respondWithError(w, http.StatusServiceUnavailable, "search data is not available")
		return
	}

	catalog := snapshot.ServiceCatalog
	if catalog == nil {
		catalog = []string{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": catalog,
		"count":    len(catalog),
		"version":  snapshot.Version,
	})
}

// Health handles GET /health. The service is healthy once a snapshot is loaded.
func (h *CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	snapshot := h.snapshots.Current()
	if snapshot == nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"version":    snapshot.Version,
		"loaded_at":  snapshot.LoadedAt.UTC().Format(time.RFC3339),
		"facilities": len(snapshot.Facilities),
		"providers":  len(snapshot.Providers),
	})
}
