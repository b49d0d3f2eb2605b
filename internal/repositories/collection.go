package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
)

// Collection is an ordered content collection mirrored locally and reconciled with a remote table.
type Collection[T models.Entity[T]] struct {
	codec  codec[T]
	local  *LocalStore
	remote Tables
	media  MediaRemover
	logger *log.Logger
	now    func() time.Time
}

// CollectionOpts holds the dependencies shared by every collection. Remote and Media may be nil.
type CollectionOpts struct {
	Local  *LocalStore
	Remote Tables
	Media  MediaRemover
	Logger *log.Logger
}

func newCollection[T models.Entity[T]](c codec[T], opts CollectionOpts) *Collection[T] {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}
	remote := opts.Remote
	if isNil(remote) {
		remote = nil
	}
	return &Collection[T]{
		codec:  c,
		local:  opts.Local,
		remote: remote,
		media:  opts.Media,
		logger: shared.WithLogger(logger, "table", c.table),
		now:    time.Now,
	}
}

// NewBanners creates the banners collection.
func NewBanners(opts CollectionOpts) *Collection[models.Banner] {
	return newCollection(bannerCodec, opts)
}

// NewVideos creates the video cards collection.
func NewVideos(opts CollectionOpts) *Collection[models.VideoCard] {
	return newCollection(videoCodec, opts)
}

// NewNotices creates the notices collection.
func NewNotices(opts CollectionOpts) *Collection[models.Notice] {
	return newCollection(noticeCodec, opts)
}

// Name returns the remote table name.
func (c *Collection[T]) Name() string { return c.codec.table }

// Configured reports whether a remote backend is attached.
func (c *Collection[T]) Configured() bool { return c.remote != nil }

// All returns the collection ordered by sort position.
//
// The remote table is preferred; on any remote failure, or without a backend, the local mirror is
// read instead. Mirror entries with a missing or malformed identifier get a fresh UUID and the
// repair is written back so repeated reads agree.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	if c.remote != nil {
		items, err := c.codec.fetch(ctx, c.remote)
		if err == nil {
			return items, nil
		}
		c.logger.Warn("remote read failed, using local mirror", "error", err)
	}
	return c.readLocal(ctx)
}

// Refresh fetches the remote collection and writes it through to the mirror.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	if c.remote == nil {
		return nil, shared.ErrBackendNotConfigured
	}

	items, err := c.codec.fetch(ctx, c.remote)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh %s: %w", c.codec.table, err)
	}

	if err := c.writeLocal(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Find returns the item with the given identifier.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if item.Identifier() == id {
			return item, nil
		}
	}
	return zero, notFound(c.codec.table, id)
}

// SaveAll replaces the whole collection.
//
// Items without a valid identifier get a fresh UUID and every sort position is reset to the item's
// index. Every item is validated before anything is written. The mirror is overwritten first; a
// failure there is the only returned error. Then the remote table is reconciled: existing ids are
// fetched, every item is upserted on id, and remote rows absent from items are deleted. The first
// remote failure ends reconciliation and is reported in the result.
func (c *Collection[T]) SaveAll(ctx context.Context, items []T) (SyncResult, error) {
	prepared, err := c.prepare(items)
	if err != nil {
		return SyncResult{}, err
	}

	if err := c.writeLocal(ctx, prepared); err != nil {
		return SyncResult{}, err
	}

	if c.remote == nil {
		return unsynced(shared.ErrBackendNotConfigured), nil
	}

	if err := c.reconcile(ctx, prepared); err != nil {
		c.logger.Warn("remote sync failed, saved locally only", "error", err)
		return unsynced(err), nil
	}
	return synced(), nil
}

// Delete removes one item from the remote table and the mirror after cleaning up its media.
//
// Media URLs come from the remote record, falling back to the mirror. Media deletes are best-effort.
func (c *Collection[T]) Delete(ctx context.Context, id string) (SyncResult, error) {
	c.deleteMedia(ctx, c.mediaFor(ctx, id))

	var remoteErr error
	if c.remote != nil {
		if err := c.remote.Delete(ctx, c.codec.table, services.Eq("id", id)); err != nil {
			remoteErr = fmt.Errorf("failed to delete remote %s %s: %w", c.codec.table, id, err)
			c.logger.Warn("remote delete failed", "id", id, "error", err)
		}
	}

	items, err := c.readLocal(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if item.Identifier() != id {
			kept = append(kept, item)
		}
	}
	if err := c.writeLocal(ctx, kept); err != nil {
		return SyncResult{}, err
	}

	switch {
	case c.remote == nil:
		return unsynced(shared.ErrBackendNotConfigured), nil
	case remoteErr != nil:
		return unsynced(remoteErr), nil
	default:
		return synced(), nil
	}
}

func (c *Collection[T]) prepare(items []T) ([]T, error) {
	prepared := make([]T, len(items))
	for i, item := range items {
		if !shared.IsUUID(item.Identifier()) {
			item = item.WithIdentifier(shared.GenerateID())
		}
		item = item.WithSortOrder(i)
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		prepared[i] = item
	}
	return prepared, nil
}

func (c *Collection[T]) reconcile(ctx context.Context, items []T) error {
	var existing []struct {
		ID string `json:"id"`
	}
	if err := c.remote.Select(ctx, c.codec.table, services.Query{Columns: "id"}, &existing); err != nil {
		return fmt.Errorf("failed to fetch remote ids: %w", err)
	}

	if len(items) > 0 {
		if err := c.remote.Upsert(ctx, c.codec.table, c.codec.rows(items, c.now()), "id"); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", c.codec.table, err)
		}
	}

	keep := make(map[string]bool, len(items))
	for _, item := range items {
		keep[item.Identifier()] = true
	}

	var stale []string
	for _, row := range existing {
		if !keep[row.ID] {
			stale = append(stale, row.ID)
		}
	}

	if len(stale) > 0 {
		if err := c.remote.Delete(ctx, c.codec.table, services.In("id", stale...)); err != nil {
			return fmt.Errorf("failed to delete stale %s: %w", c.codec.table, err)
		}
	}
	return nil
}

func (c *Collection[T]) mediaFor(ctx context.Context, id string) []string {
	if c.remote != nil {
		items, err := c.codec.fetch(ctx, c.remote, services.Eq("id", id))
		if err == nil && len(items) > 0 {
			return items[0].MediaURLs()
		}
		if err != nil {
			c.logger.Warn("failed to read remote record for media cleanup", "id", id, "error", err)
		}
	}

	items, err := c.readLocal(ctx)
	if err != nil {
		c.logger.Warn("failed to read local record for media cleanup", "id", id, "error", err)
		return nil
	}
	for _, item := range items {
		if item.Identifier() == id {
			return item.MediaURLs()
		}
	}
	return nil
}

func (c *Collection[T]) deleteMedia(ctx context.Context, urls []string) {
	if c.media == nil {
		return
	}
	for _, url := range urls {
		if err := c.media.DeleteByURL(ctx, url); err != nil {
			c.logger.Warn("failed to delete media", "url", url, "error", err)
		}
	}
}

func (c *Collection[T]) readLocal(ctx context.Context) ([]T, error) {
	items := []T{}
	if _, err := c.local.GetJSON(ctx, c.codec.key, &items); err != nil {
		return nil, err
	}

	repaired := false
	for i, item := range items {
		if !shared.IsUUID(item.Identifier()) {
			items[i] = item.WithIdentifier(shared.GenerateID())
			repaired = true
		}
	}

	if repaired {
		c.logger.Info("assigned identifiers to local entries", "key", c.codec.key)
		if err := c.writeLocal(ctx, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (c *Collection[T]) writeLocal(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.local.PutJSON(ctx, c.codec.key, items)
}
