package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"daybias/internal/engine"
	"daybias/pkg/model"
)

// ForecastRequest carries the two comparator bars for one symbol.
type ForecastRequest struct {
	Symbol string         `json:"symbol"`
	D2     model.PriceBar `json:"d2"` // day before the prior day
	D1     model.PriceBar `json:"d1"` // prior day
}

// ForecastResponse wraps the forecast with its journal ID, if recorded.
type ForecastResponse struct {
	ID       string                `json:"id,omitempty"`
	Forecast *model.ForecastResult `json:"forecast"`
}

// handleForecast classifies one bar pair (POST)
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		http.Error(w, "Symbol required", http.StatusBadRequest)
		return
	}

	result, err := engine.ClassifyBias(req.D2, req.D1, strings.ToUpper(req.Symbol))
	if err != nil {
		if errors.Is(err, engine.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Classification failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := ForecastResponse{Forecast: result}
	if s.journal != nil {
		id, err := s.journal.Record(result)
		if err != nil {
			log.Printf("journal record failed for %s: %v", result.Symbol, err)
		} else {
			resp.ID = id
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleForecasts lists recent journal entries (GET)
func (s *Server) handleForecasts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.journal == nil {
		http.Error(w, "Journal not configured", http.StatusNotFound)
		return
	}

	entries, err := s.journal.Recent(50)
	if err != nil {
		http.Error(w, "Failed to list forecasts: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"forecasts": entries,
	})
}

// handleForecastByID loads one full recorded forecast: /api/forecasts/{id}
func (s *Server) handleForecastByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.journal == nil {
		http.Error(w, "Journal not configured", http.StatusNotFound)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/forecasts/")
	if id == "" {
		http.Error(w, "Forecast ID required", http.StatusBadRequest)
		return
	}

	result, err := s.journal.Get(id)
	if err != nil {
		http.Error(w, "Forecast not found: "+id, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleHealth reports liveness without requiring a token
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
