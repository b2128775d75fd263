package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/present"
	"github.com/hyperjump/schoolfinder/internal/search"
	"github.com/hyperjump/schoolfinder/internal/storage"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "School Finder API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds, err := s.engine.Dataset(r.Context())
	if err != nil {
		s.logger.Error("health: dataset unavailable", zap.Error(err))
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	info := ds.Info()
	resp := map[string]interface{}{
		"status":         "healthy",
		"schools_loaded": ds.Len(),
		"schema":         info.Schema,
		"reload":         s.config.Data.Reload,
	}
	if !info.LoadedAt.IsZero() {
		resp["loaded_at"] = info.LoadedAt.UTC().Format(time.RFC3339)
	}
	footprint, err := storage.MeasureFootprint(info.Source, s.config.Storage.DatabasePath)
	if err != nil {
		s.logger.Warn("health: disk footprint unavailable", zap.Error(err))
	} else {
		resp["source_bytes"] = footprint.SourceBytes
		resp["snapshot_bytes"] = footprint.SnapshotBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(s.config.Search.DisplayLimit, s.config.Search.MaxLimit); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	result, err := s.engine.Search(r.Context(), query.Query)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Data:    present.SearchData(result, query.Limit),
	})
}

func (s *Server) handleGetSchool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	hints := models.Hints{
		Name:  q.Get("name"),
		City:  q.Get("city"),
		State: q.Get("state"),
		Zip:   q.Get("zip"),
	}
	school, err := s.engine.Resolve(r.Context(), id, hints)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "school not found")
			return
		}
		s.logger.Error("resolve failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.Envelope{Success: true, Data: present.Format(school)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ds, err := s.engine.Dataset(r.Context())
	if err != nil {
		s.logger.Error("stats: dataset unavailable", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.Envelope{Success: true, Data: present.ComputeStats(ds.Rows())})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
