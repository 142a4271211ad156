// Package store persists discovery runs and a short-lived rendered-page
// cache in SQLite.
package store

import (
	"context"
	"time"

	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/internal/render"
)

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Status model.RunStatus
	CAS    string
	Limit  int
	Offset int
}

// Store persists discovery runs and cached pages.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	CreateRun(ctx context.Context, query model.ChemicalQuery) (*model.Run, error)
	MarkRunning(ctx context.Context, runID string) error
	CompleteRun(ctx context.Context, runID string, result *model.DiscoveryResult) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	GetCachedPage(ctx context.Context, pageURL string) (*render.Page, error)
	SetCachedPage(ctx context.Context, page *render.Page, ttl time.Duration) error
	DeleteExpiredPages(ctx context.Context) (int, error)
}
