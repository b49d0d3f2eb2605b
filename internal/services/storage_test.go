package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("UploadObject", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/storage/v1/object/banners/1700000000000-abc.png" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if r.Header.Get("Content-Type") != "image/png" {
				t.Errorf("expected image/png, got %q", r.Header.Get("Content-Type"))
			}
			if r.Header.Get("Cache-Control") != "max-age=3600" || r.Header.Get("x-upsert") != "false" {
				t.Errorf("unexpected cache/upsert headers %v", r.Header)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != "png-bytes" {
				t.Errorf("unexpected body %q", body)
			}
			w.Write([]byte(`{"Key":"banners/1700000000000-abc.png"}`))
		})

		err := client.UploadObject(ctx, "banners", "1700000000000-abc.png", strings.NewReader("png-bytes"), UploadOptions{
			ContentType:  "image/png",
			CacheControl: 3600,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("RemoveObjects", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/storage/v1/object/video-covers" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var body map[string][]string
			json.NewDecoder(r.Body).Decode(&body)
			if len(body["prefixes"]) != 1 || body["prefixes"][0] != "a.jpg" {
				t.Errorf("unexpected prefixes %v", body)
			}
			w.Write([]byte("[]"))
		})

		if err := client.RemoveObjects(ctx, "video-covers", "a.jpg"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("PublicURL", func(t *testing.T) {
		client, _ := NewClient(ClientOpts{URL: "https://demo.supabase.co", AnonKey: "k"})
		want := "https://demo.supabase.co/storage/v1/object/public/banners/a%20b.png"
		if got := client.PublicURL("banners", "a b.png"); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}
