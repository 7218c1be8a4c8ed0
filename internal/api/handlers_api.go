package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lox/raincheck/internal/features"
	"github.com/lox/raincheck/internal/models"
	"github.com/lox/raincheck/internal/store"
)

type predictResponse struct {
	Prediction models.Prediction  `json:"prediction"`
	Label      string             `json:"label"`
	Percent    string             `json:"percent"`
	Narrative  string             `json:"narrative,omitempty"`
	Input      models.Observation `json:"input"`
}

type errorResponse struct {
	Error    string           `json:"error"`
	Problems []models.Problem `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 400 and anything else to 500.
func writeError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid observation", Problems: verr.Problems})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
}

func (s *Server) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	obs, err := decodeObservation(r.Body, s.clock.Now())
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	pred, err := s.predict(r.Context(), obs, "api")
	if err != nil {
		writeError(w, err)
		return
	}

	resp := predictResponse{Prediction: pred, Label: pred.Text(), Percent: pred.Percent(), Input: obs}
	if r.URL.Query().Get("narrative") == "true" {
		lang := requestLanguage(r)
		text, err := s.narrator.Narrate(r.Context(), lang, obs, pred)
		if err != nil {
			s.logger.Warn("narrative failed", zap.Error(err))
		}
		resp.Narrative = text
	}
	writeJSON(w, http.StatusOK, resp)
}

type slotView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Scaled   bool   `json:"scaled"`
	Category string `json:"category,omitempty"`
}

func (s *Server) handleAPISlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, slotLayout())
}

func slotLayout() []slotView {
	slots := make([]slotView, 0, features.NumSlots)
	for i := 0; i < features.NumDirect; i++ {
		slots = append(slots, slotView{Index: i, Name: features.Slot(i).Name(), Scaled: true})
	}
	for _, c := range features.Categories {
		for j := range c.Labels {
			idx := int(c.Offset) + j
			slots = append(slots, slotView{Index: idx, Name: features.Slot(idx).Name(), Category: c.Name})
		}
	}
	return slots
}

type vocabularyResponse struct {
	Locations      []string       `json:"locations"`
	WindDirections []string       `json:"wind_directions"`
	Bounds         []models.Bound `json:"bounds"`
}

func (s *Server) handleAPIVocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, vocabularyResponse{
		Locations:      models.Locations,
		WindDirections: models.WindDirections,
		Bounds:         models.Bounds,
	})
}

type historyItem struct {
	ID          int64              `json:"id"`
	Observation models.Observation `json:"observation"`
	Prediction  models.Prediction  `json:"prediction"`
	Label       string             `json:"label"`
	Percent     string             `json:"percent"`
	Source      string             `json:"source"`
	CreatedAt   string             `json:"created_at"`
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "prediction history is disabled"})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > store.MaxHistory {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and " + strconv.Itoa(store.MaxHistory)})
			return
		}
		limit = n
	}

	records, err := s.history.RecentPredictions(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}

	items := make([]historyItem, 0, len(records))
	for _, rec := range records {
		items = append(items, historyItem{
			ID:          rec.ID,
			Observation: rec.Observation,
			Prediction:  rec.Prediction,
			Label:       rec.Prediction.Text(),
			Percent:     rec.Prediction.Percent(),
			Source:      rec.Source,
			CreatedAt:   rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAPIHistoryStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "prediction history is disabled"})
		return
	}
	stats, err := s.history.StatsByLocation(r.Context())
	if err != nil {
		s.logger.Error("history stats failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}
	if stats == nil {
		stats = []store.LocationStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":    "ok",
		"artifacts": s.artifacts,
		"slots":     features.NumSlots,
		"uptime":    s.clock.Since(s.started).Round(time.Second).String(),
		"history":   "disabled",
	}
	code := http.StatusOK
	if s.history != nil {
		if err := s.history.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["history"] = "error: " + err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["history"] = "ok"
		}
	}
	writeJSON(w, code, status)
}
