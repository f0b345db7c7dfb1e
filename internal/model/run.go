package model

import "time"

// RunStatus tracks the lifecycle of a batch run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning     RunStatus = "running"
	RunStatusCompleted   RunStatus = "completed"
	RunStatusInterrupted RunStatus = "interrupted"
	RunStatusFailed      RunStatus = "failed"
)

// TierCounts holds per-tier totals for a run.
type TierCounts struct {
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Assumed    int `json:"assumed"`
	None       int `json:"none"`
	Unresolved int `json:"unresolved"`
}

// Add counts a record into the totals.
func (c *TierCounts) Add(r Record) {
	switch r.Tier {
	case TierHigh:
		c.High++
	case TierMedium:
		c.Medium++
	case TierAssumed:
		c.Assumed++
	case TierNone:
		c.None++
	}
	if r.Unresolved() {
		c.Unresolved++
	}
}

// Identified returns the number of records classified as parking-related.
func (c TierCounts) Identified() int {
	return c.High + c.Medium + c.Assumed
}

// Run is a recorded batch run, persisted for audit and resume inspection.
type Run struct {
	ID        string     `json:"id"`
	Input     string     `json:"input"`
	Status    RunStatus  `json:"status"`
	Total     int        `json:"total"`
	Processed int        `json:"processed"`
	Counts    TierCounts `json:"counts"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
