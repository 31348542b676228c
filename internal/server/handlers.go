package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/f4ah6o/nyte-docs-go/internal/search"
)

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query string       `json:"query"`
	Count int          `json:"count"`
	Hits  []search.Hit `json:"hits"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	limit = s.config.ClampLimit(limit)

	s.logger.Debug("search request", zap.String("query", query), zap.Int("limit", limit))
	hits := s.engine.Load().Search(query, limit)
	s.respondJSON(w, http.StatusOK, SearchResponse{Query: query, Count: len(hits), Hits: hits})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.engine.Load().Documents()
	if docs == nil {
		docs = []search.Document{}
	}
	s.respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"documents": s.engine.Load().Len(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
