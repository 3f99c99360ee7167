package factorization

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"goadmit/domain/core"
	"goadmit/ports"
)

// ProbeConfig bounds a genericity probe. Samples is the exact number of
// draws evaluated; Tolerance is the per-sample factorization tolerance,
// with the same convention as Test (negative selects DefaultTolerance,
// zero is an exact test); Workers sizes the evaluation pool.
type ProbeConfig struct {
	Samples   int
	Tolerance float64
	Workers   int
}

// ProbeResult summarizes a genericity probe. Fraction is the share of
// samples whose load factorized; StdError is the sample standard error of
// that share. Ambiguous counts samples landing in the tolerance band, which
// are tallied as non-factorizing.
//
// A probe is a statistical estimate over a sampled family, never a proof:
// a zero fraction over n samples bounds genericity only at the resolution
// 1/n. ConfidenceNote restates this next to the numbers.
type ProbeResult struct {
	Samples        int     `json:"samples"`
	Factorizing    int     `json:"factorizing"`
	Ambiguous      int     `json:"ambiguous"`
	Fraction       float64 `json:"fraction"`
	StdError       float64 `json:"stdError"`
	ConfidenceNote string  `json:"confidenceNote"`
}

// Probe draws cfg.Samples splits from gen and tests each for factorization.
// Unlike the witness search, the probe never exits early: the estimate is
// only meaningful over the full budget, so every sample is evaluated unless
// the context is cancelled or a sample fails outright.
func Probe(ctx context.Context, gen ports.SampleGenerator, cfg ProbeConfig) (ProbeResult, error) {
	if cfg.Samples <= 0 {
		return ProbeResult{}, core.NewConfigurationError("samples", "must be a positive integer")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	const (
		outcomeNonFactorizing = iota
		outcomeFactorizing
		outcomeAmbiguous
	)
	outcomes := make([]int, cfg.Samples)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Samples; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sample, err := gen.Generate(i)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			ok, err := Test(sample.Sys, sample.Iface, sample.Interior, sample.Exterior, cfg.Tolerance)
			switch {
			case errors.Is(err, core.ErrNumericTolerance):
				outcomes[i] = outcomeAmbiguous
			case err != nil:
				return fmt.Errorf("sample %d: %w", i, err)
			case ok:
				outcomes[i] = outcomeFactorizing
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProbeResult{}, err
	}

	indicators := make([]float64, cfg.Samples)
	res := ProbeResult{Samples: cfg.Samples}
	for i, o := range outcomes {
		switch o {
		case outcomeFactorizing:
			res.Factorizing++
			indicators[i] = 1
		case outcomeAmbiguous:
			res.Ambiguous++
		}
	}

	mean, err := stats.Mean(indicators)
	if err != nil {
		return ProbeResult{}, core.NewArithmeticDomainError("probe statistics", err.Error())
	}
	res.Fraction = mean
	if cfg.Samples > 1 {
		sd, err := stats.StandardDeviationSample(indicators)
		if err != nil {
			return ProbeResult{}, core.NewArithmeticDomainError("probe statistics", err.Error())
		}
		res.StdError = sd / math.Sqrt(float64(cfg.Samples))
	}
	res.ConfidenceNote = fmt.Sprintf(
		"estimate over %d sampled splits; a factorizing fraction of 0 bounds the family only at resolution %.2g and proves nothing about unsampled splits",
		cfg.Samples, 1/float64(cfg.Samples))
	return res, nil
}
