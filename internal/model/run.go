package model

import "time"

// RunStatus tracks a prediction run through the run log.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one prediction invocation recorded in the run log.
type Run struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Host      string    `json:"host,omitempty"`
	Status    RunStatus `json:"status"`
	Stats     *RunStats `json:"stats,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
