package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/meridianhealth/comorbid/internal/events"
	"github.com/meridianhealth/comorbid/internal/store"
)

type AdminHandler struct {
	store    store.Store
	reloader Reloader
	events   events.Client
	logger   *slog.Logger
}

func NewAdminHandler(s store.Store, reloader Reloader, ev events.Client, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: s, reloader: reloader, events: ev, logger: logger}
}

// ListScores handles GET /api/v1/scores.
func (h *AdminHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	filter := store.RecordFilter{
		MappingVersion: r.URL.Query().Get("mapping"),
		ClientID:       r.URL.Query().Get("client"),
		Limit:          50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	records, err := h.store.ListScoreRecords(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*store.ScoreRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Stats handles GET /api/v1/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ReloadMappings handles POST /api/v1/mappings/reload.
func (h *AdminHandler) ReloadMappings(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "mapping watching is disabled"})
		return
	}
	if err := h.reloader.Reload(); err != nil {
		h.logger.Error("manual mapping reload failed", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if h.events != nil {
		evt := events.MappingReloadedEvent{Timestamp: time.Now().UTC()}
		if err := h.events.Publish(events.SubjectMappingReloaded, evt); err != nil {
			h.logger.Warn("failed to publish mapping reload event", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
