package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultRunLimit = 20

// handleLatestWeights returns the most recent run for a workload.
func (s *Server) handleLatestWeights(w http.ResponseWriter, r *http.Request) {
	workload := chi.URLParam(r, "workload")
	if workload == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "workload is required")
		return
	}

	run, err := s.runs.Runs().Latest(r.Context(), workload)
	if err != nil {
		s.logger.Error("fetching latest run", "workload", workload, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to fetch weights")
		return
	}
	if run == nil {
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "no recorded runs for workload "+workload)
		return
	}

	WriteJSON(w, http.StatusOK, run)
}

// handleListRuns returns recent runs for a workload, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	workload := chi.URLParam(r, "workload")
	if workload == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "workload is required")
		return
	}

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := s.runs.Runs().List(r.Context(), workload, limit)
	if err != nil {
		s.logger.Error("listing runs", "workload", workload, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to list runs")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"workload": workload,
		"runs":     runs,
	})
}
