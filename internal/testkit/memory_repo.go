package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"goadmit/domain/core"
	"goadmit/ports"
)

// InMemoryRunRepository is a map-backed run repository for tests and for
// running the service without a database.
type InMemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]core.AnalysisRun
}

// NewInMemoryRunRepository creates an empty in-memory repository.
func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]core.AnalysisRun)}
}

var _ ports.RunRepository = (*InMemoryRunRepository)(nil)

func (r *InMemoryRunRepository) Save(_ context.Context, run *core.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.runs[run.ID]; dup {
		return fmt.Errorf("duplicate run id %s", run.ID)
	}
	r.runs[run.ID] = *run
	return nil
}

func (r *InMemoryRunRepository) Get(_ context.Context, id core.RunID) (*core.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return &run, nil
}

func (r *InMemoryRunRepository) List(_ context.Context, limit int) ([]core.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.AnalysisRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports how many runs were recorded.
func (r *InMemoryRunRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}
