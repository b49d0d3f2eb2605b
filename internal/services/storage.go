package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/onlyhub/internal/shared"
)

const (
	storagePath       = "/storage/v1/object/"
	publicStoragePath = storagePath + "public/"
)

// UploadOptions controls how an object is stored.
type UploadOptions struct {
	ContentType  string
	CacheControl int // CacheControl is the max-age in seconds
	Upsert       bool
}

// UploadObject stores body at bucket/objectPath.
func (c *Client) UploadObject(ctx context.Context, bucket, objectPath string, body io.Reader, opts UploadOptions) error {
	if bucket == "" || objectPath == "" {
		return fmt.Errorf("%w: bucket and path are required", shared.ErrInvalidArgument)
	}

	req := request{
		service: "storage",
		method:  http.MethodPost,
		path:    storagePath + bucket + "/" + escapePath(objectPath),
		header:  http.Header{},
		body:    body,
	}
	if opts.ContentType != "" {
		req.header.Set("Content-Type", opts.ContentType)
	}
	if opts.CacheControl > 0 {
		req.header.Set("Cache-Control", "max-age="+strconv.Itoa(opts.CacheControl))
	}
	req.header.Set("x-upsert", strconv.FormatBool(opts.Upsert))

	return c.doRequest(ctx, req, nil)
}

// RemoveObjects deletes the given object paths from bucket.
func (c *Client) RemoveObjects(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	req, err := jsonRequest("storage", http.MethodDelete, storagePath+bucket, map[string][]string{"prefixes": paths})
	if err != nil {
		return err
	}
	return c.doRequest(ctx, req, nil)
}

// PublicURL returns the public URL of an object in a public bucket.
func (c *Client) PublicURL(bucket, objectPath string) string {
	return c.PublicPrefix() + bucket + "/" + escapePath(objectPath)
}

// PublicPrefix is the URL prefix shared by every public object of this project.
func (c *Client) PublicPrefix() string {
	return c.baseURL + publicStoragePath
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
