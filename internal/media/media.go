// Package media uploads, validates and deletes catalog media in the backend object storage.
package media

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"

	"github.com/desertthunder/onlyhub/internal/repositories"
	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
)

// Buckets used by the catalog.
const (
	BucketBanners       = "banners"
	BucketVideoCovers   = "video-covers"
	BucketVideoPreviews = "video-previews"
)

const (
	MB = 1024 * 1024

	MaxImageSize = 10 * MB
	MaxVideoSize = 100 * MB

	cacheControlSeconds = 3600
	imageQuality        = 80
	suffixAlphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength        = 6
)

var (
	ImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	VideoTypes = []string{"video/mp4", "video/webm", "video/quicktime"}
)

// ObjectStore is the storage API the gateway needs. [*services.Client] implements it.
type ObjectStore interface {
	UploadObject(ctx context.Context, bucket, objectPath string, body io.Reader, opts services.UploadOptions) error
	RemoveObjects(ctx context.Context, bucket string, paths ...string) error
	PublicURL(bucket, objectPath string) string
	PublicPrefix() string
}

// Recorder keeps a log of uploaded and deleted objects. [*repositories.UploadLog] implements it.
type Recorder interface {
	RecordUpload(ctx context.Context, rec repositories.UploadRecord) error
	RecordDelete(ctx context.Context, url string) error
}

// File is an asset to upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Close closes the body when it is closable.
func (f *File) Close() error {
	if c, ok := f.Body.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenFile opens the file at path, taking its MIME type from the content with the extension as fallback.
func OpenFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidArgument, path)
	}

	contentType := ""
	if detected, err := mimetype.DetectFile(path); err == nil {
		contentType = normalizeType(detected.String())
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := normalizeType(mime.TypeByExtension(filepath.Ext(path))); byExt != "" {
			contentType = byExt
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &File{Name: filepath.Base(path), ContentType: contentType, Size: info.Size(), Body: f}, nil
}

// UploadResult locates an uploaded object.
type UploadResult struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	Bucket string `json:"bucket"`
}

// Gateway uploads and deletes objects. Without a store every upload fails with [shared.ErrBackendNotConfigured].
type Gateway struct {
	store    ObjectStore
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
	suffix   func() string
}

// NewGateway creates a [Gateway]. Store and recorder may be nil.
func NewGateway(store ObjectStore, recorder Recorder, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = shared.NopLogger()
	}
	if c, ok := store.(*services.Client); ok && c == nil {
		store = nil
	}
	if l, ok := recorder.(*repositories.UploadLog); ok && l == nil {
		recorder = nil
	}
	return &Gateway{
		store:    store,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "media"),
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// Configured reports whether a backend store is attached.
func (g *Gateway) Configured() bool { return g.store != nil }

// Upload stores file in bucket under a generated unique name and returns its public URL.
func (g *Gateway) Upload(ctx context.Context, file *File, bucket string) (*UploadResult, error) {
	if g.store == nil {
		return nil, shared.ErrBackendNotConfigured
	}

	objectPath := g.objectName(file)
	opts := services.UploadOptions{ContentType: file.ContentType, CacheControl: cacheControlSeconds}
	if err := g.store.UploadObject(ctx, bucket, objectPath, file.Body, opts); err != nil {
		g.logger.Error("upload failed", "bucket", bucket, "name", file.Name, "error", err)
		return nil, fmt.Errorf("%w: %w", shared.ErrUpload, err)
	}

	result := &UploadResult{URL: g.store.PublicURL(bucket, objectPath), Path: objectPath, Bucket: bucket}
	g.logger.Info("uploaded", "bucket", bucket, "path", objectPath, "type", file.ContentType, "size", file.Size)

	if g.recorder != nil {
		rec := repositories.UploadRecord{
			Bucket:      bucket,
			Path:        objectPath,
			URL:         result.URL,
			ContentType: file.ContentType,
			Size:        file.Size,
			CreatedAt:   g.now().UTC(),
		}
		if err := g.recorder.RecordUpload(ctx, rec); err != nil {
			g.logger.Warn("failed to record upload", "path", objectPath, "error", err)
		}
	}
	return result, nil
}

// DeleteByURL deletes the object behind a public URL of this backend.
//
// Empty URLs, URLs outside the backend's public storage prefix and a missing backend are all no-ops.
func (g *Gateway) DeleteByURL(ctx context.Context, rawURL string) error {
	if g.store == nil {
		return nil
	}

	bucket, objectPath, ok := g.ParseURL(rawURL)
	if !ok {
		return nil
	}

	if err := g.store.RemoveObjects(ctx, bucket, objectPath); err != nil {
		g.logger.Warn("failed to delete object", "bucket", bucket, "path", objectPath, "error", err)
		return fmt.Errorf("failed to delete %s/%s: %w", bucket, objectPath, err)
	}

	if g.recorder != nil {
		if err := g.recorder.RecordDelete(ctx, rawURL); err != nil {
			g.logger.Warn("failed to record delete", "url", rawURL, "error", err)
		}
	}
	return nil
}

// Replace uploads file and then deletes oldURL. A failed delete of the old asset is logged only.
func (g *Gateway) Replace(ctx context.Context, file *File, bucket, oldURL string) (*UploadResult, error) {
	result, err := g.Upload(ctx, file, bucket)
	if err != nil {
		return nil, err
	}
	if oldURL != "" && oldURL != result.URL {
		_ = g.DeleteByURL(ctx, oldURL)
	}
	return result, nil
}

// ParseURL splits a public storage URL of this backend into bucket and object path.
func (g *Gateway) ParseURL(rawURL string) (bucket, objectPath string, ok bool) {
	if g.store == nil || rawURL == "" {
		return "", "", false
	}

	prefix := g.store.PublicPrefix()
	if !strings.HasPrefix(rawURL, prefix) {
		return "", "", false
	}

	rest := rawURL[len(prefix):]
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	bucket, escaped, found := strings.Cut(rest, "/")
	if !found || bucket == "" || escaped == "" {
		return "", "", false
	}

	objectPath, err := url.PathUnescape(escaped)
	if err != nil {
		return "", "", false
	}
	return bucket, objectPath, true
}

// OptimizedImageURL adds resize parameters to backend storage URLs. Other URLs are returned unchanged.
func (g *Gateway) OptimizedImageURL(rawURL string, width, height int) string {
	if _, _, ok := g.ParseURL(rawURL); !ok {
		return rawURL
	}

	params := url.Values{}
	if width > 0 {
		params.Set("width", strconv.Itoa(width))
	}
	if height > 0 {
		params.Set("height", strconv.Itoa(height))
	}
	params.Set("quality", strconv.Itoa(imageQuality))

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + params.Encode()
}

// UploadBannerMedia validates file as an image or a video and uploads it to the banners bucket.
func (g *Gateway) UploadBannerMedia(ctx context.Context, file *File) (*UploadResult, error) {
	if err := ValidateMedia(file); err != nil {
		return nil, err
	}
	return g.Upload(ctx, file, BucketBanners)
}

// UploadVideoCover validates file as an image and uploads it to the video covers bucket.
func (g *Gateway) UploadVideoCover(ctx context.Context, file *File) (*UploadResult, error) {
	if err := ValidateImage(file); err != nil {
		return nil, err
	}
	return g.Upload(ctx, file, BucketVideoCovers)
}

// UploadVideoPreview validates file as an image or a video and uploads it to the video previews bucket.
func (g *Gateway) UploadVideoPreview(ctx context.Context, file *File) (*UploadResult, error) {
	if err := ValidateMedia(file); err != nil {
		return nil, err
	}
	return g.Upload(ctx, file, BucketVideoPreviews)
}

func (g *Gateway) objectName(file *File) string {
	ext := strings.TrimPrefix(filepath.Ext(file.Name), ".")
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(file.ContentType); len(exts) > 0 {
			ext = strings.TrimPrefix(exts[0], ".")
		} else {
			ext = "bin"
		}
	}
	return fmt.Sprintf("%d-%s.%s", g.now().UnixMilli(), g.suffix(), strings.ToLower(ext))
}

func randomSuffix() string {
	b := make([]byte, suffixLength)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}

func normalizeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
