// Package store persists batch-run history so interrupted and completed runs
// can be inspected after the fact.
package store

import (
	"context"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

// Store records batch runs.
type Store interface {
	Migrate(ctx context.Context) error
	CreateRun(ctx context.Context, input string, total int) (*model.Run, error)
	UpdateProgress(ctx context.Context, runID string, processed int, counts model.TierCounts) error
	FinishRun(ctx context.Context, runID string, status model.RunStatus) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	Close() error
}
