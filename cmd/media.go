package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/onlyhub/internal/media"
	"github.com/desertthunder/onlyhub/internal/shared"
	"github.com/urfave/cli/v3"
)

var buckets = []string{media.BucketBanners, media.BucketVideoCovers, media.BucketVideoPreviews}

// MediaUpload validates a local file for its bucket and uploads it.
func (r *Runner) MediaUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	var upload func(context.Context, *media.File) (*media.UploadResult, error)
	switch bucket := cmd.String("bucket"); bucket {
	case media.BucketBanners:
		upload = r.gateway.UploadBannerMedia
	case media.BucketVideoCovers:
		upload = r.gateway.UploadVideoCover
	case media.BucketVideoPreviews:
		upload = r.gateway.UploadVideoPreview
	default:
		return fmt.Errorf("%w: unknown bucket %q (expected one of %s)", shared.ErrInvalidArgument, bucket, strings.Join(buckets, ", "))
	}

	file, err := media.OpenFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := upload(ctx, file)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, false)
	}
	r.writePlain("✓ Uploaded %s\n", file.Name)
	return r.writePlain("URL: %s\n", result.URL)
}

// MediaDelete deletes the object behind a public URL. URLs outside the backend are ignored.
func (r *Runner) MediaDelete(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	bucket, path, ok := r.gateway.ParseURL(rawURL)
	if !ok {
		r.logger.Warn("not a storage URL of this backend, nothing deleted", "url", rawURL)
		return r.writePlain("! %s is not stored in this backend; nothing deleted\n", rawURL)
	}

	if err := r.gateway.DeleteByURL(ctx, rawURL); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s/%s\n", bucket, path)
}

// MediaCheck reports whether a local file would be accepted as an image or a video.
func (r *Runner) MediaCheck(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	file, err := media.OpenFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	validate, kind := media.ValidateImage, "image"
	if strings.HasPrefix(file.ContentType, "video/") {
		validate, kind = media.ValidateVideo, "video"
	}
	if err := validate(file); err != nil {
		return err
	}
	return r.writePlain("✓ %s is a valid %s (%s, %.1f MB)\n", file.Name, kind, file.ContentType, float64(file.Size)/media.MB)
}

// MediaList prints uploads recorded in the local mirror.
func (r *Runner) MediaList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	records, err := r.uploads.List(ctx, cmd.String("bucket"), cmd.Bool("all"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("uploads (%d)", len(records)))
	for _, rec := range records {
		state := ""
		if rec.DeletedAt != nil {
			state = " (deleted)"
		}
		r.writePlain("%s  %-15s %s%s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Bucket, rec.URL, state)
	}
	return nil
}
