// Package searches caches past searches and their latest inquiry snapshots
// locally, so the "past searches" view works offline and survives restarts.
package searches

import (
	"context"

	"github.com/example/movequote/internal/client/models"
)

// CachedSearch is one MovingQuery plus the most recent inquiry rows seen for it.
type CachedSearch struct {
	Query     models.MovingQuery     `json:"query"`
	Inquiries []models.MovingInquiry `json:"inquiries"`
}

type Repository interface {
	// Save replaces the cached snapshot for the query.
	Save(ctx context.Context, s CachedSearch) error
	// List returns the user's cached searches, most recent first.
	List(ctx context.Context, userID string) ([]CachedSearch, error)
	// Get returns the snapshot for one query id, or common.ErrNotFound.
	Get(ctx context.Context, queryID int64) (*CachedSearch, error)
	// Clear drops all cached searches (e.g. on sign-out).
	Clear(ctx context.Context) error
}
