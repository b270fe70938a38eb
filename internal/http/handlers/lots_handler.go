package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"parkmap/internal/models"
	"parkmap/internal/service"
)

// LotsProvider is the slice of the lots service the HTTP layer needs.
type LotsProvider interface {
	Lots(evOnly bool) ([]models.ParkingLot, time.Time)
	Markers() []models.Marker
	View() service.Snapshot
	Stats() service.Report
	SetEVOnly(evOnly bool)
	Refresh(ctx context.Context) error
}

// LotsHandlers serves the decoded lot list and its derived views.
type LotsHandlers struct {
	lots   LotsProvider
	logger *zap.Logger
}

// NewLotsHandlers returns handlers.
func NewLotsHandlers(lots LotsProvider, logger *zap.Logger) *LotsHandlers {
	return &LotsHandlers{lots: lots, logger: logger}
}

// List handles GET /api/lots. The optional ev query parameter overrides the
// stored filter flag for this request.
func (h *LotsHandlers) List(w http.ResponseWriter, r *http.Request) {
	evOnly := h.lots.View().EVOnly
	if raw := r.URL.Query().Get("ev"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ev must be a boolean")
			return
		}
		evOnly = parsed
	}

	lots, updatedAt := h.lots.Lots(evOnly)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lots":       lots,
		"ev_only":    evOnly,
		"updated_at": updatedAt,
	})
}

// Markers handles GET /api/lots/markers.
func (h *LotsHandlers) Markers(w http.ResponseWriter, r *http.Request) {
	snapshot := h.lots.View()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"markers":    h.lots.Markers(),
		"region":     snapshot.Region,
		"updated_at": snapshot.UpdatedAt,
	})
}

// Stats handles GET /api/stats.
func (h *LotsHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lots.Stats())
}

// Filter handles POST /api/filter, storing the default EV filter flag.
func (h *LotsHandlers) Filter(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EVOnly bool `json:"ev_only"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.lots.SetEVOnly(payload.EVOnly)
	writeJSON(w, http.StatusOK, map[string]bool{"ev_only": payload.EVOnly})
}

// Refresh handles POST /api/refresh, triggering an immediate upstream fetch.
func (h *LotsHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.lots.Refresh(r.Context()); err != nil {
		h.logger.Error("manual refresh failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream fetch failed")
		return
	}
	writeJSON(w, http.StatusOK, h.lots.Stats())
}
