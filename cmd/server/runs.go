package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/plantplan/internal/model"
	"github.com/Simplici0/plantplan/internal/report"
	"github.com/Simplici0/plantplan/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type optimizeResponse struct {
	RunID  string                   `json:"runId"`
	Result model.OptimizationResult `json:"result"`
}

func (s *server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var scenario model.Scenario
	if err := decodeJSON(w, r, &scenario); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(scenario.Plants) == 0 || len(scenario.Products) == 0 {
		writeError(w, http.StatusBadRequest, "at least one plant and one product are required")
		return
	}
	title := strings.TrimSpace(scenario.Title)
	if title == "" {
		title = "Untitled run"
	}

	start := time.Now()
	res := s.opt.Optimize(r.Context(), scenario.Plants, scenario.Products)
	elapsed := time.Since(start)
	s.metrics.ObserveRun(res, elapsed)

	run, err := s.runs.Save(r.Context(), store.NewRun{
		Title:        title,
		PlantCount:   len(scenario.Plants),
		ProductCount: len(scenario.Products),
		Duration:     elapsed,
		Result:       res,
	})
	if err != nil {
		s.logger.Error("failed to store run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store run")
		return
	}

	writeJSON(w, http.StatusOK, optimizeResponse{RunID: run.ID, Result: res})
}

func (s *server) handleRunsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := s.runs.List(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("failed to list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *server) handleRunExport(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteResult(&buf, run.Title, *run.Result); err != nil {
		s.logger.Error("failed to export run", zap.String("run", run.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export run")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.xlsx"`, run.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *server) loadRun(w http.ResponseWriter, r *http.Request) (store.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := s.runs.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return store.Run{}, false
	}
	if err != nil {
		s.logger.Error("failed to load run", zap.String("run", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return store.Run{}, false
	}
	return run, true
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 1000 {
		return 0, errors.New("limit must be between 1 and 1000")
	}
	return n, nil
}
