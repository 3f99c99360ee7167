// Package api exposes the analysis engines over a JSON HTTP surface. All
// analyses run against the system the server was started with.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goadmit/adapters/report"
	"goadmit/app"
	"goadmit/domain/core"
	"goadmit/domain/system"
	"goadmit/internal"
	"goadmit/internal/bounds"
	apperrors "goadmit/internal/errors"
	"goadmit/internal/factorization"
	"goadmit/internal/testkit"
	"goadmit/internal/witness"
)

// Server serves the analysis API over one loaded system.
type Server struct {
	svc    *app.Service
	sys    *system.System
	spec   system.Spec
	logger *internal.Logger
}

// NewServer creates an API server for one system. The raw spec is kept
// alongside the validated system because the genericity probe builds
// perturbed families from it.
func NewServer(svc *app.Service, sys *system.System, spec system.Spec, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Server{svc: svc, sys: sys, spec: spec, logger: logger}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Post("/check-admissible", s.handleCheckAdmissible)
		r.Post("/find-witness", s.handleFindWitness)
		r.Post("/compute-nmax", s.handleComputeNmax)
		r.Get("/classify", s.handleClassify)
		r.Post("/test-factorization", s.handleTestFactorization)
		r.Post("/genericity-probe", s.handleGenericityProbe)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/report", s.handleRunReport)
	})
	return r
}

func (s *Server) handleCheckAdmissible(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subset []system.DistinctionID `json:"subset"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.CheckAdmissible(r.Context(), s.sys, req.Subset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFindWitness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxSetSize    int `json:"maxSetSize"`
		MaxCandidates int `json:"maxCandidates"`
		Workers       int `json:"workers"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.FindWitness(r.Context(), s.sys, witness.Budget{
		MaxSetSize:    req.MaxSetSize,
		MaxCandidates: req.MaxCandidates,
		Workers:       req.Workers,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleComputeNmax(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Epsilon  float64 `json:"epsilon"`
		Eta      float64 `json:"eta"`
		Capacity float64 `json:"capacity"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.ComputeNmax(r.Context(), bounds.UniformCosts{Epsilon: req.Epsilon, Eta: req.Eta}, req.Capacity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	cls, err := s.svc.Classify(r.Context(), s.sys)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cls)
}

func (s *Server) handleTestFactorization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Interface system.InterfaceID     `json:"interface"`
		Interior  []system.DistinctionID `json:"interior"`
		Exterior  []system.DistinctionID `json:"exterior"`
		Tolerance *float64               `json:"tolerance"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.TestFactorization(r.Context(), s.sys, req.Interface, req.Interior, req.Exterior, toleranceOrDefault(req.Tolerance))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenericityProbe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Interface system.InterfaceID `json:"interface"`
		Samples   int                `json:"samples"`
		Sigma     float64            `json:"sigma"`
		Seed      int64              `json:"seed"`
		Tolerance *float64           `json:"tolerance"`
		Workers   int                `json:"workers"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	gen, err := testkit.NewPerturbedFamily(s.spec, req.Interface, req.Sigma, req.Seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.svc.GenericityProbe(r.Context(), gen, factorization.ProbeConfig{
		Samples:   req.Samples,
		Tolerance: toleranceOrDefault(req.Tolerance),
		Workers:   req.Workers,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.svc.ListRuns(r.Context(), 50)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []core.AnalysisRun{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(apperrors.CodeInvalidInput, err.Error()))
		return
	}
	run, err := s.svc.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(apperrors.CodeInvalidInput, err.Error()))
		return
	}
	run, err := s.svc.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.ToHTML(report.RunMarkdown(run)))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(apperrors.CodeInvalidInput, "invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch {
	case core.IsConfigurationError(err):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case core.IsNegativeResult(err):
		// An exhaustive no-witness result is a successful analysis.
		s.writeJSON(w, http.StatusOK, map[string]any{"witness": nil, "result": "no witness"})
		return
	case core.IsBudgetExceeded(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNumericTolerance):
		status = http.StatusUnprocessableEntity
	}
	s.logger.Debug("request failed: %v", err)
	s.writeJSON(w, status, errorBody(code, err.Error()))
}

func errorBody(code, message string) map[string]string {
	return map[string]string{"code": code, "error": message}
}

// toleranceOrDefault maps an omitted tolerance to the negative sentinel the
// factorization engine resolves to its default. An explicit 0 stays an exact
// test.
func toleranceOrDefault(t *float64) float64 {
	if t == nil {
		return -1
	}
	return *t
}
