// package formatter exports catalog snapshots to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/repositories"
)

// BannersToCSV converts banners to CSV with columns: ID, Position, Type, Link, ButtonText, Images
func BannersToCSV(banners []models.Banner) ([]byte, error) {
	rows := make([][]string, 0, len(banners))
	for _, b := range banners {
		rows = append(rows, []string{
			b.ID,
			strconv.Itoa(b.SortOrder),
			string(b.Type),
			b.Link,
			b.ButtonText,
			strings.Join(b.Images, " "),
		})
	}
	return writeCSV([]string{"ID", "Position", "Type", "Link", "ButtonText", "Images"}, rows)
}

// VideosToCSV converts video cards to CSV with columns: ID, Position, Title, Cover, Previews, BuyLink, TelegramLink
func VideosToCSV(videos []models.VideoCard) ([]byte, error) {
	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{
			v.ID,
			strconv.Itoa(v.SortOrder),
			v.Title,
			v.CoverURL,
			strings.Join(v.Previews, " "),
			v.BuyLink,
			v.TelegramLink,
		})
	}
	return writeCSV([]string{"ID", "Position", "Title", "Cover", "Previews", "BuyLink", "TelegramLink"}, rows)
}

// NoticesToCSV converts notices to CSV with columns: ID, Position, Date, Title, Content
func NoticesToCSV(notices []models.Notice) ([]byte, error) {
	rows := make([][]string, 0, len(notices))
	for _, n := range notices {
		rows = append(rows, []string{n.ID, strconv.Itoa(n.SortOrder), n.Date, n.Title, n.Content})
	}
	return writeCSV([]string{"ID", "Position", "Date", "Title", "Content"}, rows)
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the whole catalog as one Markdown document.
func ExportToMarkdown(snap repositories.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Catalog\n\n")
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n\n", snap.GeneratedAt.Format("2006-01-02 15:04 MST")))

	buf.WriteString(fmt.Sprintf("## Banners (%d)\n\n", len(snap.Banners)))
	for i, b := range snap.Banners {
		if primary := b.PrimaryImage(); primary != "" && b.Type != models.MediaVideo {
			buf.WriteString(fmt.Sprintf("%d. ![Banner %d](%s)", i+1, i+1, primary))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s (%d file(s))", i+1, b.Type, len(b.Images)))
		}
		if b.Link != "" {
			buf.WriteString(fmt.Sprintf(" [%s](%s)", b.ButtonText, b.Link))
		}
		buf.WriteString("\n")
	}

	buf.WriteString(fmt.Sprintf("\n## Videos (%d)\n\n", len(snap.Videos)))
	for i, v := range snap.Videos {
		buf.WriteString(fmt.Sprintf("%d. **%s** ![Cover](%s) [%d preview(s)]\n", i+1, v.Title, v.CoverURL, len(v.Previews)))
	}

	buf.WriteString(fmt.Sprintf("\n## Notices (%d)\n\n", len(snap.Notices)))
	for _, n := range snap.Notices {
		buf.WriteString(fmt.Sprintf("### %s (%s)\n\n%s\n\n", n.Title, n.Date, n.Content))
	}

	buf.WriteString("## Promos\n\n")
	for _, slot := range models.Slots {
		card := snap.Promos[slot]
		status := "hidden"
		if card.IsActive {
			status = "active"
		}
		buf.WriteString(fmt.Sprintf("- **%s** (%s): %s", slot, status, card.Title))
		if card.ButtonLink != "" {
			buf.WriteString(fmt.Sprintf(" [%s](%s)", card.ButtonText, card.ButtonLink))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts the catalog to a plain text summary
func ExportToText(snap repositories.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Banners: %d\n", len(snap.Banners)))
	for i, b := range snap.Banners {
		buf.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, b.ID, b.PrimaryImage()))
	}
	buf.WriteString(fmt.Sprintf("Videos: %d\n", len(snap.Videos)))
	for i, v := range snap.Videos {
		buf.WriteString(fmt.Sprintf("  %d. %s - %s\n", i+1, v.Title, v.CoverURL))
	}
	buf.WriteString(fmt.Sprintf("Notices: %d\n", len(snap.Notices)))
	for i, n := range snap.Notices {
		buf.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, n.Date, n.Title))
	}

	active := 0
	for _, card := range snap.Promos {
		if card.IsActive {
			active++
		}
	}
	buf.WriteString(fmt.Sprintf("Promos: %d active\n", active))

	return buf.Bytes(), nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	BannersFile string
	VideosFile  string
	NoticesFile string
}

// WriteCSVExport writes one CSV file per collection: {base}_banners.csv, {base}_videos.csv and {base}_notices.csv.
//
// Defaults to "catalog" as the base filename.
func WriteCSVExport(snap repositories.Snapshot, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "catalog"
	}

	result := &CSVExportResult{
		BannersFile: baseFilepath + "_banners.csv",
		VideosFile:  baseFilepath + "_videos.csv",
		NoticesFile: baseFilepath + "_notices.csv",
	}

	for _, part := range []struct {
		path   string
		render func() ([]byte, error)
	}{
		{result.BannersFile, func() ([]byte, error) { return BannersToCSV(snap.Banners) }},
		{result.VideosFile, func() ([]byte, error) { return VideosToCSV(snap.Videos) }},
		{result.NoticesFile, func() ([]byte, error) { return NoticesToCSV(snap.Notices) }},
	} {
		data, err := part.render()
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSV: %w", err)
		}
		if err := os.WriteFile(part.path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write CSV file: %w", err)
		}
	}

	return result, nil
}

// WriteMarkdownExport writes the catalog to {dir}/README.md. Directory name defaults to "catalog".
func WriteMarkdownExport(snap repositories.Snapshot, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "catalog"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(snap)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports the catalog to plain text format.
//
// Defaults to catalog.txt as the filename.
func WriteTextExport(snap repositories.Snapshot, path string) (string, error) {
	if path == "" {
		path = "catalog.txt"
	}

	textData, err := ExportToText(snap)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
