package repositories

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/shared"
)

func TestCollection(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, remote Tables) (*LocalStore, *fakeMedia, CollectionOpts) {
		local := NewLocalStore(setupTestDB(t))
		media := &fakeMedia{}
		return local, media, CollectionOpts{Local: local, Remote: remote, Media: media}
	}

	t.Run("banner save with reachable backend", func(t *testing.T) {
		remote := newFakeTables()
		_, _, opts := setup(t, remote)
		banners := NewBanners(opts)

		banner := models.NewBanner("https://shop", "https://cdn/x.jpg")
		result, err := banners.SaveAll(ctx, []models.Banner{banner})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Synced {
			t.Fatalf("expected synced result, got %+v", result)
		}

		row := remote.row(TableBanners, banner.ID)
		if row == nil {
			t.Fatal("expected remote row")
		}
		if row["image_url"] != "https://cdn/x.jpg" || row["sort_order"] != float64(0) || row["type"] != "image" {
			t.Errorf("unexpected remote row %v", row)
		}
		if row["updated_at"] == "" || row["updated_at"] == nil {
			t.Error("expected updated_at on upsert")
		}
	})

	t.Run("banner save without backend", func(t *testing.T) {
		local, _, opts := setup(t, nil)
		banners := NewBanners(opts)

		banner := models.NewBanner("", "https://cdn/x.jpg")
		result, err := banners.SaveAll(ctx, []models.Banner{banner})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Synced || result.Error != "supabase client not initialized" {
			t.Errorf("expected local-only result, got %+v", result)
		}
		if !result.Local() {
			t.Error("expected Local() for unconfigured backend")
		}
		if !errors.Is(result.Err(), shared.ErrSync) {
			t.Errorf("expected ErrSync from result, got %v", result.Err())
		}

		var stored []models.Banner
		if ok, err := local.GetJSON(ctx, KeyBanners, &stored); err != nil || !ok {
			t.Fatalf("expected mirror entry, ok=%v err=%v", ok, err)
		}
		if len(stored) != 1 || stored[0].ID != banner.ID {
			t.Errorf("unexpected mirror contents %+v", stored)
		}
	})

	t.Run("blank media slots are dropped before validation", func(t *testing.T) {
		_, _, opts := setup(t, nil)
		banners := NewBanners(opts)

		wide := models.NewBanner("", "https://x/a.png")
		wide.Images = []string{"https://x/a.png", "", "", "", "", ""}
		gap := models.NewBanner("", "https://x/a.png")
		gap.Images = []string{"", "https://x/a.png"}
		if _, err := banners.SaveAll(ctx, []models.Banner{wide, gap}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		items, err := banners.All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, b := range items {
			if !reflect.DeepEqual(b.Images, []string{"https://x/a.png"}) {
				t.Errorf("expected blank slots removed, got %q", b.Images)
			}
		}

		videos := NewVideos(opts)
		card := models.NewVideoCard("https://x/c.jpg")
		card.Previews = []string{"", "https://x/p.mp4", ""}
		if _, err := videos.SaveAll(ctx, []models.VideoCard{card}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored, err := videos.All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stored) != 1 || !reflect.DeepEqual(stored[0].Previews, []string{"https://x/p.mp4"}) {
			t.Errorf("expected blank previews removed, got %+v", stored)
		}
	})

	t.Run("save then read is stable", func(t *testing.T) {
		remote := newFakeTables()
		_, _, opts := setup(t, remote)
		videos := NewVideos(opts)

		first := []models.VideoCard{
			models.NewVideoCard("https://cdn/c1.jpg", "https://cdn/p1.mp4"),
			models.NewVideoCard("https://cdn/c2.jpg"),
		}
		if _, err := videos.SaveAll(ctx, first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		before, err := videos.All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := videos.SaveAll(ctx, before); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		after, err := videos.All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(before, after) {
			t.Errorf("expected identical collections\nbefore: %+v\nafter:  %+v", before, after)
		}
		if after[1].SortOrder != 1 {
			t.Errorf("expected sort order to follow index, got %d", after[1].SortOrder)
		}
	})

	t.Run("notice reconciliation deletes removed rows", func(t *testing.T) {
		remote := newFakeTables()
		_, _, opts := setup(t, remote)
		notices := NewNotices(opts)

		a := models.NewNotice("A", "first")
		b := models.NewNotice("B", "second")
		if _, err := notices.SaveAll(ctx, []models.Notice{a, b}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := notices.SaveAll(ctx, []models.Notice{b})
		if err != nil || !result.Synced {
			t.Fatalf("expected synced save, result=%+v err=%v", result, err)
		}

		if ids := remote.ids(TableNotices); len(ids) != 1 || ids[0] != b.ID {
			t.Fatalf("expected only B remotely, got %v", ids)
		}
		if row := remote.row(TableNotices, b.ID); row["sort_order"] != float64(0) {
			t.Errorf("expected B at position 0, got %v", row["sort_order"])
		}
	})

	t.Run("empty save clears remote", func(t *testing.T) {
		remote := newFakeTables()
		_, _, opts := setup(t, remote)
		notices := NewNotices(opts)

		remote.seed(TableNotices, []noticeRow{{ID: shared.GenerateID(), Title: "x", Content: "y"}, {ID: shared.GenerateID(), Title: "z", Content: "w"}})

		result, err := notices.SaveAll(ctx, nil)
		if err != nil || !result.Synced {
			t.Fatalf("expected synced save, result=%+v err=%v", result, err)
		}
		if ids := remote.ids(TableNotices); len(ids) != 0 {
			t.Errorf("expected empty remote table, got %v", ids)
		}
		if remote.called("upsert") != 0 {
			t.Error("empty save should not upsert")
		}
	})

	t.Run("validation runs before any write", func(t *testing.T) {
		remote := newFakeTables()
		local, _, opts := setup(t, remote)
		notices := NewNotices(opts)

		_, err := notices.SaveAll(ctx, []models.Notice{models.NewNotice("", "no title")})
		if !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if _, ok, _ := local.Get(ctx, KeyNotices); ok {
			t.Error("mirror should not be written on validation failure")
		}
		if len(remote.calls) != 0 {
			t.Errorf("expected no remote calls, got %v", remote.calls)
		}
	})

	t.Run("remote failure keeps local write", func(t *testing.T) {
		remote := newFakeTables()
		remote.fail["upsert"] = fmt.Errorf("%w: boom", shared.ErrAPIRequest)
		local, _, opts := setup(t, remote)
		notices := NewNotices(opts)

		result, err := notices.SaveAll(ctx, []models.Notice{models.NewNotice("A", "B")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Synced || !strings.Contains(result.Error, "boom") {
			t.Errorf("expected unsynced result carrying the error, got %+v", result)
		}
		if _, ok, _ := local.Get(ctx, KeyNotices); !ok {
			t.Error("expected local write despite remote failure")
		}
		if remote.called("delete") != 0 {
			t.Error("reconciliation should stop at the first failure")
		}
	})

	t.Run("id fetch failure aborts reconciliation", func(t *testing.T) {
		remote := newFakeTables()
		remote.fail["select"] = errors.New("offline")
		_, _, opts := setup(t, remote)
		notices := NewNotices(opts)

		result, _ := notices.SaveAll(ctx, []models.Notice{models.NewNotice("A", "B")})
		if result.Synced {
			t.Error("expected unsynced result")
		}
		if remote.called("upsert") != 0 {
			t.Error("upsert should not run after id fetch failure")
		}
	})

	t.Run("All falls back to mirror", func(t *testing.T) {
		remote := newFakeTables()
		local, _, opts := setup(t, remote)
		notices := NewNotices(opts)

		n := models.NewNotice("cached", "body")
		if err := local.PutJSON(ctx, KeyNotices, []models.Notice{n}); err != nil {
			t.Fatal(err)
		}
		remote.fail["select"] = errors.New("offline")

		items, err := notices.All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 || items[0].ID != n.ID {
			t.Errorf("expected mirror contents, got %+v", items)
		}
	})

	t.Run("All with empty mirror", func(t *testing.T) {
		_, _, opts := setup(t, nil)
		items, err := NewBanners(opts).All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", items)
		}
	})

	t.Run("identifier repair is persisted", func(t *testing.T) {
		local, _, opts := setup(t, nil)
		banners := NewBanners(opts)

		legacy := `[{"id":"banner-1","images":["https://cdn/a.jpg"],"type":"image"},{"images":["https://cdn/b.jpg"]}]`
		if err := local.Put(ctx, KeyBanners, []byte(legacy)); err != nil {
			t.Fatal(err)
		}

		first, err := banners.All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := banners.All(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i := range first {
			if !shared.IsUUID(first[i].ID) {
				t.Errorf("entry %d not repaired: %q", i, first[i].ID)
			}
			if first[i].ID != second[i].ID {
				t.Errorf("entry %d changed id between reads: %s vs %s", i, first[i].ID, second[i].ID)
			}
		}
	})

	t.Run("Delete removes record and media", func(t *testing.T) {
		remote := newFakeTables()
		local, media, opts := setup(t, remote)
		videos := NewVideos(opts)

		v := models.NewVideoCard("https://cdn/cover.jpg", "https://cdn/p1.mp4", "https://cdn/p2.mp4")
		keep := models.NewVideoCard("https://cdn/other.jpg")
		if _, err := videos.SaveAll(ctx, []models.VideoCard{v, keep}); err != nil {
			t.Fatal(err)
		}

		result, err := videos.Delete(ctx, v.ID)
		if err != nil || !result.Synced {
			t.Fatalf("expected synced delete, result=%+v err=%v", result, err)
		}

		if remote.row(TableVideos, v.ID) != nil {
			t.Error("remote record should be removed")
		}
		if len(media.deleted) != 3 {
			t.Errorf("expected cover and previews deleted, got %v", media.deleted)
		}

		var stored []models.VideoCard
		local.GetJSON(ctx, KeyVideos, &stored)
		if len(stored) != 1 || stored[0].ID != keep.ID {
			t.Errorf("expected only the kept video locally, got %+v", stored)
		}
	})

	t.Run("Delete tolerates media failures", func(t *testing.T) {
		remote := newFakeTables()
		_, media, opts := setup(t, remote)
		media.fail = errors.New("foreign url")
		banners := NewBanners(opts)

		b := models.NewBanner("", "https://elsewhere/x.jpg")
		if _, err := banners.SaveAll(ctx, []models.Banner{b}); err != nil {
			t.Fatal(err)
		}

		result, err := banners.Delete(ctx, b.ID)
		if err != nil || !result.Synced {
			t.Fatalf("media failure should not fail delete, result=%+v err=%v", result, err)
		}
	})

	t.Run("Delete without backend uses mirror media", func(t *testing.T) {
		_, media, opts := setup(t, nil)
		banners := NewBanners(opts)

		b := models.NewBanner("", "https://cdn/a.jpg", "https://cdn/b.jpg")
		banners.SaveAll(ctx, []models.Banner{b})

		result, err := banners.Delete(ctx, b.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Synced {
			t.Error("expected unsynced result without backend")
		}
		if len(media.deleted) != 2 {
			t.Errorf("expected mirror media deleted, got %v", media.deleted)
		}
	})

	t.Run("Refresh writes through", func(t *testing.T) {
		remote := newFakeTables()
		local, _, opts := setup(t, remote)
		notices := NewNotices(opts)

		id := shared.GenerateID()
		remote.seed(TableNotices, []noticeRow{{ID: id, Title: "remote", Content: "body"}})

		items, err := notices.Refresh(ctx)
		if err != nil || len(items) != 1 {
			t.Fatalf("unexpected refresh result %+v err=%v", items, err)
		}

		var stored []models.Notice
		local.GetJSON(ctx, KeyNotices, &stored)
		if len(stored) != 1 || stored[0].ID != id {
			t.Errorf("expected mirror updated, got %+v", stored)
		}
	})

	t.Run("Refresh without backend", func(t *testing.T) {
		_, _, opts := setup(t, nil)
		if _, err := NewNotices(opts).Refresh(ctx); !errors.Is(err, shared.ErrBackendNotConfigured) {
			t.Errorf("expected ErrBackendNotConfigured, got %v", err)
		}
	})

	t.Run("Find", func(t *testing.T) {
		_, _, opts := setup(t, nil)
		notices := NewNotices(opts)
		n := models.NewNotice("A", "B")
		notices.SaveAll(ctx, []models.Notice{n})

		got, err := notices.Find(ctx, n.ID)
		if err != nil || got.Title != "A" {
			t.Errorf("unexpected find result %+v err=%v", got, err)
		}
		if _, err := notices.Find(ctx, "missing"); !IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("remote rows map legacy image_url", func(t *testing.T) {
		remote := newFakeTables()
		_, _, opts := setup(t, remote)
		id := shared.GenerateID()
		remote.seed(TableBanners, []map[string]any{{"id": id, "image_url": "https://cdn/legacy.jpg", "sort_order": 0}})

		items, err := NewBanners(opts).All(ctx)
		if err != nil || len(items) != 1 {
			t.Fatalf("unexpected result %+v err=%v", items, err)
		}
		if items[0].PrimaryImage() != "https://cdn/legacy.jpg" || items[0].Type != models.MediaImage {
			t.Errorf("unexpected mapping %+v", items[0])
		}
	})
}
