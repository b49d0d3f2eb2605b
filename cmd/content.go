package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/desertthunder/onlyhub/internal/media"
	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/repositories"
	"github.com/desertthunder/onlyhub/internal/shared"
	"github.com/urfave/cli/v3"
)

// BannersList prints the banners, optionally refreshing the mirror from the backend first.
func (r *Runner) BannersList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	return listCollection(ctx, r, cmd, r.catalog.Banners, func(i int, b models.Banner) {
		r.writePlain("%d. %s [%s] %d image(s)\n", i+1, b.ID, b.Type, len(b.Images))
		if primary := b.PrimaryImage(); primary != "" {
			r.writePlain("   image:  %s\n", r.gateway.OptimizedImageURL(primary, 1200, 0))
		}
		if b.Link != "" {
			r.writePlain("   link:   %s (%s)\n", b.Link, b.ButtonText)
		}
	})
}

// BannersAdd appends a banner, uploading local image or video files to the banners bucket.
func (r *Runner) BannersAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	sources := cmd.StringSlice("image")
	if len(sources) > models.MaxBannerImages {
		return fmt.Errorf("%w: a banner holds at most %d images", shared.ErrInvalidArgument, models.MaxBannerImages)
	}

	banner := models.NewBanner(cmd.String("link"))
	if text := cmd.String("button-text"); text != "" {
		banner.ButtonText = text
	}
	for _, source := range sources {
		url, contentType, err := r.resolveMedia(ctx, source, r.gateway.UploadBannerMedia)
		if err != nil {
			return err
		}
		if strings.HasPrefix(contentType, "video/") {
			banner.Type = models.MediaVideo
		}
		banner.Images = append(banner.Images, url)
	}

	existing, err := r.catalog.Banners.All(ctx)
	if err != nil {
		return err
	}
	result, err := r.catalog.Banners.SaveAll(ctx, append(existing, banner))
	if err != nil {
		return err
	}
	return r.reportSync("banner "+banner.ID, result)
}

// BannersEdit changes the flags given on one banner in place. --image replaces the whole image list.
func (r *Runner) BannersEdit(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	return editInCollection(ctx, r, cmd.StringArg("id"), r.catalog.Banners, func(b models.Banner) (models.Banner, error) {
		if cmd.IsSet("link") {
			b.Link = cmd.String("link")
		}
		if cmd.IsSet("button-text") {
			b.ButtonText = cmd.String("button-text")
		}
		if !cmd.IsSet("image") {
			return b, nil
		}

		sources := models.CleanURLs(cmd.StringSlice("image"))
		if len(sources) == 0 {
			return b, fmt.Errorf("%w: --image needs at least one value", shared.ErrInvalidArgument)
		}
		if len(sources) > models.MaxBannerImages {
			return b, fmt.Errorf("%w: a banner holds at most %d images", shared.ErrInvalidArgument, models.MaxBannerImages)
		}

		images, kinds, err := r.replaceAll(ctx, sources, b.MediaURLs(), media.BucketBanners, media.ValidateMedia)
		if err != nil {
			return b, err
		}
		if len(kinds) > 0 {
			b.Type = models.MediaImage
			if slices.ContainsFunc(kinds, func(k string) bool { return strings.HasPrefix(k, "video/") }) {
				b.Type = models.MediaVideo
			}
		}
		b.Images = images
		return b, nil
	})
}

// BannersImport replaces every banner with the contents of a JSON file.
func (r *Runner) BannersImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}
	return importCollection(ctx, r, cmd.String("file"), r.catalog.Banners)
}

// BannersDelete deletes one banner and its stored media.
func (r *Runner) BannersDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}
	return deleteFromCollection(ctx, r, cmd.StringArg("id"), r.catalog.Banners)
}

// VideosList prints the video cards.
func (r *Runner) VideosList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	return listCollection(ctx, r, cmd, r.catalog.Videos, func(i int, v models.VideoCard) {
		r.writePlain("%d. %s %q %d preview(s)\n", i+1, v.ID, v.Title, len(v.Previews))
		r.writePlain("   cover:  %s\n", r.gateway.OptimizedImageURL(v.CoverURL, 600, 0))
		if v.BuyLink != "" {
			r.writePlain("   buy:    %s (%s)\n", v.BuyLink, v.BuyButtonText)
		}
		if v.TelegramLink != "" {
			r.writePlain("   dm:     %s (%s)\n", v.TelegramLink, v.TelegramButtonText)
		}
	})
}

// VideosAdd appends a video card, uploading a local cover and local previews first.
func (r *Runner) VideosAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	previews := cmd.StringSlice("preview")
	if len(previews) > models.MaxVideoPreview {
		return fmt.Errorf("%w: a video card holds at most %d previews", shared.ErrInvalidArgument, models.MaxVideoPreview)
	}

	cover, _, err := r.resolveMedia(ctx, cmd.String("cover"), r.gateway.UploadVideoCover)
	if err != nil {
		return err
	}

	urls := make([]string, 0, len(previews))
	for _, source := range previews {
		url, _, err := r.resolveMedia(ctx, source, r.gateway.UploadVideoPreview)
		if err != nil {
			return err
		}
		urls = append(urls, url)
	}

	card := models.NewVideoCard(cover, urls...)
	if title := cmd.String("title"); title != "" {
		card.Title = title
	}
	card.BuyLink = cmd.String("buy-link")
	card.TelegramLink = cmd.String("telegram-link")

	existing, err := r.catalog.Videos.All(ctx)
	if err != nil {
		return err
	}
	result, err := r.catalog.Videos.SaveAll(ctx, append(existing, card))
	if err != nil {
		return err
	}
	return r.reportSync("video "+card.ID, result)
}

// VideosEdit changes the flags given on one video card in place. --preview replaces the whole preview list.
func (r *Runner) VideosEdit(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	return editInCollection(ctx, r, cmd.StringArg("id"), r.catalog.Videos, func(v models.VideoCard) (models.VideoCard, error) {
		for flag, field := range map[string]*string{
			"title":                &v.Title,
			"buy-link":             &v.BuyLink,
			"buy-button-text":      &v.BuyButtonText,
			"telegram-link":        &v.TelegramLink,
			"telegram-button-text": &v.TelegramButtonText,
		} {
			if cmd.IsSet(flag) {
				*field = cmd.String(flag)
			}
		}

		if cmd.IsSet("cover") {
			source := strings.TrimSpace(cmd.String("cover"))
			if source == "" {
				return v, fmt.Errorf("%w: cover is required", shared.ErrInvalidArgument)
			}
			cover, _, err := r.replaceMedia(ctx, source, v.CoverURL, media.BucketVideoCovers, media.ValidateImage)
			if err != nil {
				return v, err
			}
			v.CoverURL = cover
		}

		if cmd.IsSet("preview") {
			sources := models.CleanURLs(cmd.StringSlice("preview"))
			if len(sources) > models.MaxVideoPreview {
				return v, fmt.Errorf("%w: a video card holds at most %d previews", shared.ErrInvalidArgument, models.MaxVideoPreview)
			}
			previews, _, err := r.replaceAll(ctx, sources, models.CleanURLs(v.Previews), media.BucketVideoPreviews, media.ValidateMedia)
			if err != nil {
				return v, err
			}
			v.Previews = previews
		}
		return v, nil
	})
}

// VideosImport replaces every video card with the contents of a JSON file.
func (r *Runner) VideosImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}
	return importCollection(ctx, r, cmd.String("file"), r.catalog.Videos)
}

// VideosDelete deletes one video card and its stored media.
func (r *Runner) VideosDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}
	return deleteFromCollection(ctx, r, cmd.StringArg("id"), r.catalog.Videos)
}

// NoticesList prints the notices.
func (r *Runner) NoticesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	return listCollection(ctx, r, cmd, r.catalog.Notices, func(i int, n models.Notice) {
		r.writePlain("%d. [%s] %s\n", i+1, n.Date, n.Title)
		r.writePlain("   %s\n", n.Content)
	})
}

// NoticesAdd appends a notice.
func (r *Runner) NoticesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	notice := models.NewNotice(cmd.String("title"), cmd.String("content"))
	if date := cmd.String("date"); date != "" {
		notice.Date = date
	}

	existing, err := r.catalog.Notices.All(ctx)
	if err != nil {
		return err
	}
	result, err := r.catalog.Notices.SaveAll(ctx, append(existing, notice))
	if err != nil {
		return err
	}
	return r.reportSync("notice "+notice.ID, result)
}

// NoticesEdit changes the title, content or date of one notice in place.
func (r *Runner) NoticesEdit(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}

	return editInCollection(ctx, r, cmd.StringArg("id"), r.catalog.Notices, func(n models.Notice) (models.Notice, error) {
		if cmd.IsSet("title") {
			n.Title = cmd.String("title")
		}
		if cmd.IsSet("content") {
			n.Content = cmd.String("content")
		}
		if cmd.IsSet("date") {
			n.Date = cmd.String("date")
		}
		return n, nil
	})
}

// NoticesImport replaces every notice with the contents of a JSON file.
func (r *Runner) NoticesImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}
	return importCollection(ctx, r, cmd.String("file"), r.catalog.Notices)
}

// NoticesDelete deletes one notice.
func (r *Runner) NoticesDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAdmin(ctx); err != nil {
		return err
	}
	return deleteFromCollection(ctx, r, cmd.StringArg("id"), r.catalog.Notices)
}

func listCollection[T models.Entity[T]](ctx context.Context, r *Runner, cmd *cli.Command, c *repositories.Collection[T], render func(int, T)) error {
	var (
		items []T
		err   error
	)
	if cmd.Bool("refresh") {
		items, err = c.Refresh(ctx)
	} else {
		items, err = c.All(ctx)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", c.Name(), len(items)))
	if len(items) == 0 {
		return r.writePlain("nothing here yet\n")
	}
	for i, item := range items {
		render(i, item)
	}
	return nil
}

func importCollection[T models.Entity[T]](ctx context.Context, r *Runner, path string, c *repositories.Collection[T]) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: %s is not a JSON array of %s: %v", shared.ErrInvalidArgument, path, c.Name(), err)
	}

	result, err := c.SaveAll(ctx, items)
	if err != nil {
		return err
	}
	r.logger.Info("imported collection", "collection", c.Name(), "count", len(items), "synced", result.Synced)
	return r.reportSync(fmt.Sprintf("%d %s", len(items), c.Name()), result)
}

func deleteFromCollection[T models.Entity[T]](ctx context.Context, r *Runner, id string, c *repositories.Collection[T]) error {
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	if _, err := c.Find(ctx, id); err != nil {
		return err
	}

	result, err := c.Delete(ctx, id)
	if err != nil {
		return err
	}
	return r.reportSync("deletion of "+id, result)
}

// editInCollection swaps the item with id for edit's result, keeping its position, and saves the collection.
func editInCollection[T models.Entity[T]](ctx context.Context, r *Runner, id string, c *repositories.Collection[T], edit func(T) (T, error)) error {
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	items, err := c.All(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(items, func(item T) bool { return item.Identifier() == id })
	if i < 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, c.Name(), id)
	}

	edited, err := edit(items[i])
	if err != nil {
		return err
	}
	items[i] = edited

	result, err := c.SaveAll(ctx, items)
	if err != nil {
		return err
	}
	return r.reportSync("update of "+id, result)
}

// replaceAll resolves sources slot by slot against previous. Previous URLs that the new list no longer
// references are removed from storage. kinds holds the content type of every uploaded local file.
func (r *Runner) replaceAll(ctx context.Context, sources, previous []string, bucket string, validate func(*media.File) error) (urls, kinds []string, err error) {
	retired := func(i int) string {
		if i < len(previous) && !slices.Contains(sources, previous[i]) {
			return previous[i]
		}
		return ""
	}

	urls = make([]string, 0, len(sources))
	for i, source := range sources {
		url, contentType, err := r.replaceMedia(ctx, source, retired(i), bucket, validate)
		if err != nil {
			return nil, nil, err
		}
		if contentType != "" {
			kinds = append(kinds, contentType)
		}
		urls = append(urls, url)
	}
	for i := len(sources); i < len(previous); i++ {
		r.dropMedia(ctx, retired(i))
	}
	return urls, kinds, nil
}

// replaceMedia resolves source in place of previous. Local files are validated and stored through
// [media.Gateway.Replace]; a URL source only retires previous.
func (r *Runner) replaceMedia(ctx context.Context, source, previous, bucket string, validate func(*media.File) error) (url, contentType string, err error) {
	if isURL(source) {
		if previous != source {
			r.dropMedia(ctx, previous)
		}
		return source, "", nil
	}

	file, err := media.OpenFile(source)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	if err := validate(file); err != nil {
		return "", "", err
	}
	result, err := r.gateway.Replace(ctx, file, bucket, previous)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload %s: %w", source, err)
	}
	return result.URL, file.ContentType, nil
}

// dropMedia deletes a replaced asset. Failures are logged only.
func (r *Runner) dropMedia(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := r.gateway.DeleteByURL(ctx, url); err != nil {
		r.logger.Warn("failed to delete replaced media", "url", url, "error", err)
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// resolveMedia returns source unchanged when it is a URL, otherwise uploads the local file with upload.
func (r *Runner) resolveMedia(ctx context.Context, source string, upload func(context.Context, *media.File) (*media.UploadResult, error)) (url, contentType string, err error) {
	source = strings.TrimSpace(source)
	if source == "" || isURL(source) {
		return source, "", nil
	}

	file, err := media.OpenFile(source)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	result, err := upload(ctx, file)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload %s: %w", source, err)
	}
	return result.URL, file.ContentType, nil
}

// requireAdmin opens the catalog and, when a backend is configured, insists on a valid admin session.
//
// The session is bound to the client so writes carry the admin's token.
func (r *Runner) requireAdmin(ctx context.Context) error {
	if err := r.open(); err != nil {
		return err
	}
	if !r.online() {
		return nil
	}

	user, err := r.auth.Session(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: run 'onlyhub auth login' first", shared.ErrNoSession)
	}
	r.logger.Debug("acting as admin", "email", user.Email)
	return nil
}
