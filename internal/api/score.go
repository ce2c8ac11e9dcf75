package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meridianhealth/comorbid/internal/charlson"
	"github.com/meridianhealth/comorbid/internal/config"
	"github.com/meridianhealth/comorbid/internal/events"
	"github.com/meridianhealth/comorbid/internal/store"
)

type ScoreHandler struct {
	scorer *charlson.Scorer
	store  store.Store
	events events.Client
	cfg    *config.Config
	logger *slog.Logger
}

func NewScoreHandler(scorer *charlson.Scorer, s store.Store, ev events.Client, cfg *config.Config, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{scorer: scorer, store: s, events: ev, cfg: cfg, logger: logger}
}

type ScoreRequest struct {
	Codes          charlson.CodeList `json:"codes"`
	Mapping        string            `json:"mapping"`
	ExactCodes     bool              `json:"exact_codes"`
	ListCategories bool              `json:"list_categories"`
}

type ScoreResponse struct {
	RecordID   string   `json:"record_id,omitempty"`
	Mapping    string   `json:"mapping"`
	Mode       string   `json:"mode"`
	Score      int      `json:"score"`
	Categories []string `json:"categories,omitempty"`
}

// Compute handles POST /api/v1/score.
func (h *ScoreHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		scoreErrorsTotal.WithLabelValues("invalid_input").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "codes must be a string or a list of strings"})
		return
	}
	if req.Mapping == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mapping required"})
		return
	}
	if h.cfg.Scoring.MaxCodes > 0 && len(req.Codes) > h.cfg.Scoring.MaxCodes {
		scoreErrorsTotal.WithLabelValues("too_many_codes").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "too many codes"})
		return
	}

	mode := charlson.MatchMode(h.cfg.Scoring.DefaultMode)
	if req.ExactCodes {
		mode = charlson.ModeExact
	}

	result, err := h.scorer.Score(req.Mapping, req.Codes, mode)
	if err != nil {
		switch {
		case errors.Is(err, charlson.ErrUnknownMapping):
			scoreErrorsTotal.WithLabelValues("unknown_mapping").Inc()
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, charlson.ErrInvalidInput):
			scoreErrorsTotal.WithLabelValues("invalid_input").Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			scoreErrorsTotal.WithLabelValues("internal").Inc()
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	scoresTotal.WithLabelValues(result.MappingVersion, string(result.Mode)).Inc()
	scoreValues.Observe(float64(result.Score))

	rec := &store.ScoreRecord{
		ClientID:       r.Header.Get("X-Client-ID"),
		MappingVersion: result.MappingVersion,
		Mode:           string(result.Mode),
		Codes:          req.Codes,
		Score:          result.Score,
		Categories:     result.Retained,
	}
	if err := h.store.CreateScoreRecord(r.Context(), rec); err != nil {
		h.logger.Error("failed to persist score record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to persist score"})
		return
	}

	if h.events != nil {
		evt := events.ScoreComputedEvent{
			RecordID:       rec.ID.String(),
			ClientID:       rec.ClientID,
			MappingVersion: result.MappingVersion,
			Mode:           string(result.Mode),
			Score:          result.Score,
			Categories:     result.Retained,
			Timestamp:      time.Now().UTC(),
		}
		if err := h.events.Publish(events.SubjectScoreComputed, evt); err != nil {
			h.logger.Warn("failed to publish score event", "error", err)
		}
	}

	resp := ScoreResponse{
		RecordID: rec.ID.String(),
		Mapping:  result.MappingVersion,
		Mode:     string(result.Mode),
		Score:    result.Score,
	}
	if req.ListCategories {
		resp.Categories = result.Categories
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/scores/{id}.
func (h *ScoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	rec, err := h.store.GetScoreRecord(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "score record not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
