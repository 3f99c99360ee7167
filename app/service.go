// Package app orchestrates the analysis engines behind a single service:
// it loads systems, runs analyses, records runs, and owns the mapping from
// domain errors to process exit codes.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"goadmit/domain/core"
	"goadmit/domain/system"
	"goadmit/internal"
	"goadmit/internal/bounds"
	"goadmit/internal/factorization"
	"goadmit/internal/spectral"
	"goadmit/internal/witness"
	"goadmit/ports"
)

// Exit codes for the CLI surface. A negative analysis outcome (inadmissible
// subset, exhaustive no-witness, non-factorizing split) is a well-defined
// result, not a failure, and gets its own code.
const (
	ExitSuccess       = 0
	ExitNegative      = 1
	ExitConfigError   = 2
	ExitBudgetExhaust = 3
)

// ExitCode maps an analysis outcome to a process exit code. negative is
// true when the call succeeded but the answer itself was negative.
func ExitCode(err error, negative bool) int {
	switch {
	case errors.Is(err, core.ErrSearchBudgetExceeded):
		return ExitBudgetExhaust
	case errors.Is(err, core.ErrNoWitness):
		return ExitNegative
	case core.IsConfigurationError(err):
		return ExitConfigError
	case err != nil:
		return ExitConfigError
	case negative:
		return ExitNegative
	default:
		return ExitSuccess
	}
}

// Service wires the analysis engines together. The repository is optional;
// without one, runs are executed but not recorded.
type Service struct {
	reader ports.SystemReader
	runs   ports.RunRepository
	logger *internal.Logger
}

// NewService creates an analysis service.
func NewService(reader ports.SystemReader, runs ports.RunRepository, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Service{reader: reader, runs: runs, logger: logger}
}

// LoadSystem reads and validates a system from the configured reader.
func (s *Service) LoadSystem(path string) (*system.System, error) {
	spec, err := s.reader.ReadSpec(path)
	if err != nil {
		return nil, err
	}
	sys, err := system.New(spec)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded system: %d distinctions, %d interfaces", sys.Size(), len(sys.Interfaces()))
	return sys, nil
}

// InterfaceLoad pairs an interface with its evaluated load.
type InterfaceLoad struct {
	Interface system.InterfaceID `json:"interface"`
	Load      float64            `json:"load"`
	Capacity  float64            `json:"capacity"`
}

// AdmissibilityResult reports one admissibility check.
type AdmissibilityResult struct {
	Subset     []system.DistinctionID `json:"subset"`
	Admissible bool                   `json:"admissible"`
	Loads      []InterfaceLoad        `json:"loads"`
}

// CheckAdmissible evaluates a subset against every interface capacity.
func (s *Service) CheckAdmissible(ctx context.Context, sys *system.System, ids []system.DistinctionID) (*AdmissibilityResult, error) {
	sub, err := sys.SubsetFromIDs(ids)
	if err != nil {
		s.record(ctx, "check-admissible", ids, nil, err)
		return nil, err
	}
	result := &AdmissibilityResult{Subset: ids, Admissible: true}
	for _, itf := range sys.Interfaces() {
		load, err := sys.Evaluate(itf.ID, sub)
		if err != nil {
			s.record(ctx, "check-admissible", ids, nil, err)
			return nil, err
		}
		result.Loads = append(result.Loads, InterfaceLoad{Interface: itf.ID, Load: load, Capacity: itf.Capacity})
		if load > itf.Capacity {
			result.Admissible = false
		}
	}
	s.record(ctx, "check-admissible", ids, result, nil)
	return result, nil
}

// WitnessResult reports a witness search, already minimized.
type WitnessResult struct {
	S         []system.DistinctionID `json:"s"`
	T         []system.DistinctionID `json:"t"`
	Violated  system.InterfaceID     `json:"violated"`
	UnionCost float64                `json:"unionCost"`
	Capacity  float64                `json:"capacity"`
	Stats     witness.Stats          `json:"stats"`
}

// FindWitness searches for a non-closure witness under the given budget and
// minimizes any hit before returning it.
func (s *Service) FindWitness(ctx context.Context, sys *system.System, budget witness.Budget) (*WitnessResult, error) {
	start := time.Now()
	w, stats, err := witness.Find(ctx, sys, budget)
	if err != nil {
		s.logger.Debug("witness search: %d candidates in %v: %v", stats.Candidates, time.Since(start), err)
		s.record(ctx, "find-witness", budget, stats, err)
		return nil, err
	}
	minimized, err := witness.Minimize(sys, *w)
	if err != nil {
		s.record(ctx, "find-witness", budget, nil, err)
		return nil, err
	}
	s.logger.Debug("witness found after %d candidates in %v", stats.Candidates, time.Since(start))

	result := &WitnessResult{
		S:         minimized.S.Labels(sys),
		T:         minimized.T.Labels(sys),
		Violated:  minimized.Violated,
		UnionCost: minimized.UnionCost,
		Capacity:  minimized.Capacity,
		Stats:     stats,
	}
	s.record(ctx, "find-witness", budget, result, nil)
	return result, nil
}

// NmaxResult reports a capacity bound analysis.
type NmaxResult struct {
	Uniform  bounds.UniformCosts `json:"uniform"`
	Capacity float64             `json:"capacity"`
	Nmax     int                 `json:"nmax"`
	Bound    float64             `json:"bound"`    // LowerBound at Nmax
	Headroom float64             `json:"headroom"` // remaining capacity at Nmax
}

// ComputeNmax computes the maximum admissible cardinality under uniform
// costs.
func (s *Service) ComputeNmax(ctx context.Context, u bounds.UniformCosts, capacity float64) (*NmaxResult, error) {
	nmax, err := bounds.MaxCardinality(u, capacity)
	if err != nil {
		s.record(ctx, "compute-nmax", u, nil, err)
		return nil, err
	}
	result := &NmaxResult{
		Uniform:  u,
		Capacity: capacity,
		Nmax:     nmax,
		Bound:    bounds.LowerBound(nmax, u),
		Headroom: bounds.Headroom(u, capacity, nmax),
	}
	s.record(ctx, "compute-nmax", u, result, nil)
	return result, nil
}

// Classify computes spectral classifications for every interface.
func (s *Service) Classify(ctx context.Context, sys *system.System) ([]spectral.Classification, error) {
	cls, err := spectral.ClassifyAll(sys)
	s.record(ctx, "classify", nil, cls, err)
	return cls, err
}

// FactorizationResult reports one factorization test.
type FactorizationResult struct {
	Interface  system.InterfaceID `json:"interface"`
	MixedLoad  float64            `json:"mixedLoad"`
	Factorizes bool               `json:"factorizes"`
}

// TestFactorization computes the mixed load across an interior/exterior
// split at one interface and tests it against the tolerance.
func (s *Service) TestFactorization(ctx context.Context, sys *system.System, iface system.InterfaceID, interior, exterior []system.DistinctionID, tol float64) (*FactorizationResult, error) {
	a, err := sys.SubsetFromIDs(interior)
	if err != nil {
		return nil, err
	}
	b, err := sys.SubsetFromIDs(exterior)
	if err != nil {
		return nil, err
	}
	mixed, err := factorization.MixedLoad(sys, iface, a, b)
	if err != nil {
		s.record(ctx, "test-factorization", nil, nil, err)
		return nil, err
	}
	ok, err := factorization.Test(sys, iface, a, b, tol)
	if err != nil {
		s.record(ctx, "test-factorization", nil, nil, err)
		return nil, err
	}
	result := &FactorizationResult{Interface: iface, MixedLoad: mixed, Factorizes: ok}
	s.record(ctx, "test-factorization", nil, result, nil)
	return result, nil
}

// GenericityProbe runs the statistical non-factorization probe over a
// sample family.
func (s *Service) GenericityProbe(ctx context.Context, gen ports.SampleGenerator, cfg factorization.ProbeConfig) (*factorization.ProbeResult, error) {
	result, err := factorization.Probe(ctx, gen, cfg)
	if err != nil {
		s.record(ctx, "genericity-probe", cfg, nil, err)
		return nil, err
	}
	s.record(ctx, "genericity-probe", cfg, result, nil)
	return &result, nil
}

// GetRun fetches a recorded run.
func (s *Service) GetRun(ctx context.Context, id core.RunID) (*core.AnalysisRun, error) {
	if s.runs == nil {
		return nil, core.ErrRunNotFound
	}
	return s.runs.Get(ctx, id)
}

// ListRuns lists recent recorded runs.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]core.AnalysisRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.List(ctx, limit)
}

// record persists a run when a repository is configured. Persistence
// failures are logged, never propagated: recording is an observability
// concern and must not change analysis outcomes.
func (s *Service) record(ctx context.Context, kind string, input, output any, analysisErr error) {
	if s.runs == nil {
		return
	}
	run := &core.AnalysisRun{
		ID:        core.RunID(core.NewID()),
		Kind:      kind,
		Status:    core.RunStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if analysisErr != nil {
		run.Error = analysisErr.Error()
		if core.IsNegativeResult(analysisErr) {
			run.Status = core.RunStatusNegative
		} else {
			run.Status = core.RunStatusFailed
		}
	}
	if data, err := json.Marshal(input); err == nil {
		run.Input = data
	}
	if data, err := json.Marshal(output); err == nil {
		run.Output = data
	}
	if err := s.runs.Save(ctx, run); err != nil {
		s.logger.Warn("failed to record %s run: %v", kind, err)
	}
}
