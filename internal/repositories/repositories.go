package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
)

// Tables is the remote table API the repositories reconcile against. [*services.Client] implements it.
type Tables interface {
	Select(ctx context.Context, table string, q services.Query, dst any) error
	Upsert(ctx context.Context, table string, rows any, onConflict string) error
	Delete(ctx context.Context, table string, filters ...services.Filter) error
}

// MediaRemover deletes stored media by public URL.
type MediaRemover interface {
	DeleteByURL(ctx context.Context, url string) error
}

// SyncResult reports whether a write reached the remote backend after the local write succeeded.
type SyncResult struct {
	Synced bool   `json:"synced"`
	Error  string `json:"error,omitempty"`
}

func synced() SyncResult { return SyncResult{Synced: true} }

func unsynced(err error) SyncResult {
	return SyncResult{Synced: false, Error: err.Error()}
}

// Err returns nil when synced, otherwise the sync failure wrapping [shared.ErrSync].
func (r SyncResult) Err() error {
	if r.Synced {
		return nil
	}
	return fmt.Errorf("%w: %s", shared.ErrSync, r.Error)
}

// Local reports whether the change only reached the local mirror because no backend is configured.
func (r SyncResult) Local() bool {
	return !r.Synced && r.Error == shared.ErrBackendNotConfigured.Error()
}

// isNil reports whether remote is absent, including a typed nil client.
func isNil(remote Tables) bool {
	if remote == nil {
		return true
	}
	c, ok := remote.(*services.Client)
	return ok && c == nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", shared.ErrNotFound, kind, id)
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool { return errors.Is(err, shared.ErrNotFound) }
