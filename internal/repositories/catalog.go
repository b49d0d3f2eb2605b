package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/onlyhub/internal/models"
)

// Catalog groups every content repository behind one handle.
type Catalog struct {
	Banners *Collection[models.Banner]
	Videos  *Collection[models.VideoCard]
	Notices *Collection[models.Notice]
	Promos  *Promos
}

// NewCatalog builds all repositories over the same mirror and remote.
func NewCatalog(opts CollectionOpts) *Catalog {
	return &Catalog{
		Banners: NewBanners(opts),
		Videos:  NewVideos(opts),
		Notices: NewNotices(opts),
		Promos:  NewPromos(opts.Local, opts.Remote, opts.Logger),
	}
}

// Configured reports whether the catalog writes through to a backend.
func (c *Catalog) Configured() bool { return c.Banners.Configured() }

// Snapshot is the full content of the storefront at one point in time.
type Snapshot struct {
	Banners     []models.Banner                  `json:"banners"`
	Videos      []models.VideoCard               `json:"videos"`
	Notices     []models.Notice                  `json:"notices"`
	Promos      map[models.Slot]models.PromoCard `json:"promos"`
	GeneratedAt time.Time                        `json:"generatedAt"`
}

// Snapshot reads every collection with the usual remote-first, mirror-fallback behavior.
func (c *Catalog) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)

	if snap.Banners, err = c.Banners.All(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load banners: %w", err)
	}
	if snap.Videos, err = c.Videos.All(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load videos: %w", err)
	}
	if snap.Notices, err = c.Notices.All(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load notices: %w", err)
	}
	if snap.Promos, err = c.Promos.All(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load promos: %w", err)
	}

	snap.GeneratedAt = time.Now().UTC()
	return snap, nil
}
