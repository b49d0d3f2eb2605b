package formatter

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/repositories"
	th "github.com/desertthunder/onlyhub/internal/testing"
)

func testSnapshot() repositories.Snapshot {
	banner := models.NewBanner("https://shop.example.com", "https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg")
	video := models.NewVideoCard("https://cdn.example.com/cover.jpg", "https://cdn.example.com/p1.mp4")
	video.Title = "Pack, Vol. 1"
	notice := models.NewNotice("Holiday", "Closed on Monday")
	notice.Date = "24/12/2025"

	return repositories.Snapshot{
		Banners: []models.Banner{banner},
		Videos:  []models.VideoCard{video},
		Notices: []models.Notice{notice},
		Promos: map[models.Slot]models.PromoCard{
			models.SlotTop:    {Title: "Sale", ButtonText: "Go", ButtonLink: "https://shop", IsActive: true},
			models.SlotBottom: {},
		},
		GeneratedAt: time.Date(2025, 12, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestExporters(t *testing.T) {
	snap := testSnapshot()

	t.Run("BannersToCSV", func(t *testing.T) {
		data, err := BannersToCSV(snap.Banners)
		if err != nil {
			t.Fatalf("BannersToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Position,Type,Link,ButtonText,Images") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, snap.Banners[0].ID) {
			t.Errorf("CSV missing banner ID")
		}
		if !strings.Contains(output, "https://cdn.example.com/a.jpg https://cdn.example.com/b.jpg") {
			t.Errorf("CSV missing joined images, got: %s", output)
		}
	})

	t.Run("VideosToCSV quotes fields with commas", func(t *testing.T) {
		data, err := VideosToCSV(snap.Videos)
		if err != nil {
			t.Fatalf("VideosToCSV failed: %v", err)
		}
		if !strings.Contains(string(data), `"Pack, Vol. 1"`) {
			t.Errorf("expected quoted title, got: %s", data)
		}
	})

	t.Run("NoticesToCSV", func(t *testing.T) {
		data, err := NoticesToCSV(snap.Notices)
		if err != nil {
			t.Fatalf("NoticesToCSV failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %d lines", len(lines))
		}
		if !strings.HasSuffix(lines[1], ",24/12/2025,Holiday,Closed on Monday") {
			t.Errorf("unexpected row %q", lines[1])
		}
	})

	t.Run("empty collections keep headers", func(t *testing.T) {
		data, err := NoticesToCSV(nil)
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(string(data)) != "ID,Position,Date,Title,Content" {
			t.Errorf("unexpected output %q", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(snap)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Catalog",
			"**Generated**: 2025-12-01 10:30 UTC",
			"## Banners (1)",
			"1. ![Banner 1](https://cdn.example.com/a.jpg) [Saiba Mais](https://shop.example.com)",
			"## Videos (1)",
			"### Holiday (24/12/2025)",
			"- **top** (active): Sale [Go](https://shop)",
			"- **bottom** (hidden): ",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown video banner", func(t *testing.T) {
		video := models.NewBanner("", "https://cdn.example.com/clip.mp4")
		video.Type = models.MediaVideo
		data, _ := ExportToMarkdown(repositories.Snapshot{Banners: []models.Banner{video}})
		if strings.Contains(string(data), "![Banner") {
			t.Errorf("video banners should not render as images:\n%s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(snap)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Banners: 1") || !strings.Contains(output, "Notices: 1") {
			t.Errorf("text missing counts, got: %s", output)
		}
		if !strings.Contains(output, "  1. [24/12/2025] Holiday") {
			t.Errorf("text missing notice line, got: %s", output)
		}
		if !strings.Contains(output, "Promos: 1 active") {
			t.Errorf("text missing promo count, got: %s", output)
		}
	})
}

func TestWriters(t *testing.T) {
	snap := testSnapshot()

	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "store")

			result, err := WriteCSVExport(snap, base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			for _, path := range []string{result.BannersFile, result.VideosFile, result.NoticesFile} {
				th.AssertFileExists(t, path)
			}
			if result.NoticesFile != base+"_notices.csv" {
				t.Errorf("unexpected notices file %s", result.NoticesFile)
			}
			if content := th.MustReadFile(t, result.BannersFile); !strings.Contains(content, snap.Banners[0].ID) {
				t.Errorf("banners file missing banner ID")
			}
		})

		t.Run("WithDefaultPath", func(t *testing.T) {
			originalDir := th.MustGetwd(t)
			defer th.MustChdir(t, originalDir)
			th.MustChdir(t, t.TempDir())

			result, err := WriteCSVExport(snap, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.BannersFile != "catalog_banners.csv" {
				t.Errorf("expected default base filename, got %s", result.BannersFile)
			}
			th.AssertFileExists(t, "catalog_videos.csv")
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithCustomDirectory", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "export")

			path, err := WriteMarkdownExport(snap, dir)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if path != filepath.Join(dir, "README.md") {
				t.Errorf("unexpected path %s", path)
			}
			if content := th.MustReadFile(t, path); !strings.Contains(content, "# Catalog") {
				t.Errorf("README missing title")
			}
		})

		t.Run("WithDefaultDirectory", func(t *testing.T) {
			originalDir := th.MustGetwd(t)
			defer th.MustChdir(t, originalDir)
			th.MustChdir(t, t.TempDir())

			if _, err := WriteMarkdownExport(snap, ""); err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			th.AssertFileExists(t, filepath.Join("catalog", "README.md"))
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "summary.txt")

		got, err := WriteTextExport(snap, path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Videos: 1") {
			t.Errorf("text file missing video count")
		}
	})

	t.Run("WriteTextExport to missing directory fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "summary.txt")
		if _, err := WriteTextExport(snap, path); err == nil {
			t.Error("expected write error")
		}
	})
}
