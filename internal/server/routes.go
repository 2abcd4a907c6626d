package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lazypower/aria/internal/aria"
)

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		MessageID string `json:"message_id"`
		UserID    string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.MessageID == "" {
		req.MessageID = uuid.NewString()
	}

	report, err := s.engine.ProcessMessage(r.Context(), req.Text, req.MessageID, req.UserID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	s.metrics.recordProcess(report)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		MaxLength int    `json:"max_length"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.MaxLength <= 0 {
		req.MaxLength = 150
	}

	start := time.Now()
	response := s.engine.GenerateResponse(r.Context(), req.Text, req.MaxLength)
	s.metrics.generateLatency.Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"response": response})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.MemoryStats(r.Context())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		http.Error(w, `{"error":"word parameter required"}`, http.StatusBadRequest)
		return
	}

	results, err := s.engine.SearchByWord(r.Context(), word)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"word": word, "pairs": results})
}

func (s *Server) handleTokenStats(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	view, err := s.engine.GetTokenStats(r.Context(), token)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if view == nil {
		http.Error(w, `{"error":"token not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (s *Server) handleTokensByCategory(w http.ResponseWriter, r *http.Request) {
	category := aria.Category(chi.URLParam(r, "category"))

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	tokens, err := s.engine.GetTokensByCategory(r.Context(), category, limit)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"category": category, "tokens": tokens})
}

func (s *Server) handleTopPairs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	var tierFilter *aria.Tier
	if t := r.URL.Query().Get("tier"); t != "" {
		tier := aria.Tier(t)
		tierFilter = &tier
	}

	pairs, err := s.engine.GetTopPairs(r.Context(), limit, tierFilter)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"pairs": pairs})
}

func (s *Server) handleChains(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")

	maxLen := 5
	if l := r.URL.Query().Get("max_len"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			maxLen = n
		}
	}

	chains, err := s.engine.GetEmergentChains(r.Context(), word, maxLen)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"word": word, "chains": chains})
}
