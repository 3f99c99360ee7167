package ports

import (
	"context"

	"goadmit/domain/core"
)

// RunRepository persists analysis runs. Implementations return
// core.ErrRunNotFound for unknown ids.
type RunRepository interface {
	Save(ctx context.Context, run *core.AnalysisRun) error
	Get(ctx context.Context, id core.RunID) (*core.AnalysisRun, error)
	List(ctx context.Context, limit int) ([]core.AnalysisRun, error)
}
