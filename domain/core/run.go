package core

import (
	"encoding/json"
	"time"
)

// Run statuses.
const (
	RunStatusCompleted = "completed"
	RunStatusNegative  = "negative"
	RunStatusFailed    = "failed"
)

// AnalysisRun records one invocation of an analysis operation: what was
// asked, what came back, and when. Input and Output are stored as raw JSON
// so the record survives schema evolution of individual analyses.
type AnalysisRun struct {
	ID        RunID           `json:"id" db:"id"`
	Kind      string          `json:"kind" db:"kind"`
	Status    string          `json:"status" db:"status"`
	Input     json.RawMessage `json:"input" db:"input"`
	Output    json.RawMessage `json:"output" db:"output"`
	Error     string          `json:"error,omitempty" db:"error"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
