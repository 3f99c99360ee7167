// Package witness decides joint enforceability of subsets and searches for
// non-closure witnesses: pairs of admissible subsets whose union is
// inadmissible. The search space is exponential in the universe size, so
// every search runs under an explicit budget and reports budget exhaustion
// distinctly from a proven negative result.
package witness

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"goadmit/domain/core"
	"goadmit/domain/system"
)

// IsAdmissible reports whether E_i(S) <= C_i at every interface.
func IsAdmissible(sys *system.System, sub system.Subset) (bool, error) {
	for _, itf := range sys.Interfaces() {
		cost, err := sys.Evaluate(itf.ID, sub)
		if err != nil {
			return false, err
		}
		if cost > itf.Capacity {
			return false, nil
		}
	}
	return true, nil
}

// check evaluates one candidate pair. It assumes s and t are nonempty and
// disjoint, which the enumerator guarantees.
func check(sys *system.System, s, t system.Subset) (*Witness, error) {
	okS, err := IsAdmissible(sys, s)
	if err != nil || !okS {
		return nil, err
	}
	okT, err := IsAdmissible(sys, t)
	if err != nil || !okT {
		return nil, err
	}
	union := s.Union(t)
	for _, itf := range sys.Interfaces() {
		cost, err := sys.Evaluate(itf.ID, union)
		if err != nil {
			return nil, err
		}
		if cost > itf.Capacity {
			return &Witness{
				S:         s,
				T:         t,
				Violated:  itf.ID,
				UnionCost: cost,
				Capacity:  itf.Capacity,
			}, nil
		}
	}
	return nil, nil
}

type candidate struct {
	seq  int
	s, t system.Subset
}

// Find enumerates disjoint nonempty subset pairs in a fixed deterministic
// order - increasing total size first, so small witnesses surface early,
// then |S|, then lexicographic index order - and returns the first pair
// (S,T) with S and T admissible and S∪T inadmissible.
//
// Candidates are evaluated on a worker pool. Production stops as soon as
// any worker reports a hit and the in-flight candidates are drained, so
// the returned witness is always the one a sequential scan would find.
//
// ErrNoWitness means the bounded space was exhausted with no witness;
// ErrSearchBudgetExceeded means MaxCandidates ran out first. The two are
// distinct results and are never conflated.
func Find(ctx context.Context, sys *system.System, b Budget) (*Witness, Stats, error) {
	if b.MaxSetSize <= 0 {
		return nil, Stats{}, core.NewConfigurationError("maxSetSize", "must be a positive integer")
	}
	maxCandidates := b.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	prodCtx, stopProducer := context.WithCancel(ctx)
	defer stopProducer()

	candidates := make(chan candidate, workers*8)
	produced := 0
	budgetHit := false

	var prodWG sync.WaitGroup
	prodWG.Add(1)
	go func() {
		defer prodWG.Done()
		defer close(candidates)
		enumerate(sys.Size(), b.MaxSetSize, func(s, t system.Subset) bool {
			if produced >= maxCandidates {
				budgetHit = true
				return false
			}
			select {
			case candidates <- candidate{seq: produced, s: s, t: t}:
				produced++
				return true
			case <-prodCtx.Done():
				return false
			}
		})
	}()

	var (
		mu   sync.Mutex
		best *Witness
		seq  = -1
	)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for c := range candidates {
				if gctx.Err() != nil {
					// A sibling failed; drain without evaluating.
					continue
				}
				hit, err := check(sys, c.s, c.t)
				if err != nil {
					return err
				}
				if hit == nil {
					continue
				}
				mu.Lock()
				if seq == -1 || c.seq < seq {
					seq = c.seq
					best = hit
				}
				mu.Unlock()
				// First hit: stop producing. Already-queued candidates
				// still drain, which is what keeps the result equal to a
				// sequential scan.
				stopProducer()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		stopProducer()
		prodWG.Wait()
		return nil, Stats{Candidates: produced}, err
	}
	prodWG.Wait()

	stats := Stats{Candidates: produced, Exhausted: !budgetHit && best == nil && ctx.Err() == nil}
	if best != nil {
		return best, stats, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if budgetHit {
		return nil, stats, core.ErrSearchBudgetExceeded
	}
	return nil, stats, core.ErrNoWitness
}

// IsWitness reports whether (s, t) is a non-closure witness: both nonempty,
// disjoint, individually admissible, with an inadmissible union.
func IsWitness(sys *system.System, s, t system.Subset) (bool, error) {
	if s.IsEmpty() || t.IsEmpty() || !s.Disjoint(t) {
		return false, nil
	}
	w, err := check(sys, s, t)
	return w != nil, err
}

// Minimize shrinks a witness to a minimal one: repeatedly attempt to drop
// one element from S, then from T, in ascending index order, keeping each
// removal that preserves the witness property. Termination is guaranteed
// because |S|+|T| strictly decreases on every accepted removal, and the
// result is minimal by construction: no single element can be removed from
// either side. Minimize is idempotent.
func Minimize(sys *system.System, w Witness) (*Witness, error) {
	ok, err := IsWitness(sys, w.S, w.T)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.NewConfigurationError("witness", "pair is not a witness")
	}

	s, t := w.S, w.T
	for changed := true; changed; {
		changed = false
		for _, i := range s.Members() {
			ok, err := IsWitness(sys, s.Without(i), t)
			if err != nil {
				return nil, err
			}
			if ok {
				s = s.Without(i)
				changed = true
			}
		}
		for _, i := range t.Members() {
			ok, err := IsWitness(sys, s, t.Without(i))
			if err != nil {
				return nil, err
			}
			if ok {
				t = t.Without(i)
				changed = true
			}
		}
	}
	return check(sys, s, t)
}
