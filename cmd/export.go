package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/onlyhub/internal/formatter"
	"github.com/desertthunder/onlyhub/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes a catalog snapshot to disk in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	snap, err := r.catalog.Snapshot(ctx)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	switch format := cmd.String("format"); format {
	case "csv":
		result, err := formatter.WriteCSVExport(snap, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported catalog to CSV\n")
		r.writePlain("Banners: %s\n", result.BannersFile)
		r.writePlain("Videos:  %s\n", result.VideosFile)
		return r.writePlain("Notices: %s\n", result.NoticesFile)
	case "markdown", "md":
		path, err := formatter.WriteMarkdownExport(snap, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported catalog to %s\n", path)
	case "text", "txt":
		path, err := formatter.WriteTextExport(snap, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported catalog to %s\n", path)
	case "json":
		if output == "" {
			return r.writeJSON(snap, true)
		}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON file: %w", err)
		}
		return r.writePlain("✓ Exported catalog to %s\n", output)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
