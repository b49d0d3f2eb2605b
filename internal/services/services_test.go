package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"github.com/desertthunder/onlyhub/internal/shared"
)

const testAnonKey = "anon-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{URL: server.URL, AnonKey: testAnonKey})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("missing values", func(t *testing.T) {
		tests := []ClientOpts{
			{},
			{URL: "https://demo.supabase.co"},
			{AnonKey: "key"},
			{URL: "  ", AnonKey: "key"},
		}
		for _, opts := range tests {
			if _, err := NewClient(opts); !errors.Is(err, shared.ErrBackendNotConfigured) {
				t.Errorf("NewClient(%+v) expected ErrBackendNotConfigured, got %v", opts, err)
			}
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if _, err := NewClient(ClientOpts{URL: "not a url", AnonKey: "key"}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := NewClient(ClientOpts{URL: "https://demo.supabase.co/", AnonKey: "key"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.URL() != "https://demo.supabase.co" {
			t.Errorf("expected trimmed url, got %s", client.URL())
		}
	})
}

func TestAuthHeaders(t *testing.T) {
	var gotAuth, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		w.Write([]byte("[]"))
	})
	ctx := context.Background()

	t.Run("anonymous bearer", func(t *testing.T) {
		var rows []map[string]any
		if err := client.Select(ctx, "banners", Query{}, &rows); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotKey != testAnonKey {
			t.Errorf("expected apikey header %q, got %q", testAnonKey, gotKey)
		}
		if gotAuth != "Bearer "+testAnonKey {
			t.Errorf("expected anon bearer, got %q", gotAuth)
		}
	})

	t.Run("session bearer", func(t *testing.T) {
		client.SetSession(&oauth2.Token{AccessToken: "session-token"})
		defer client.ClearSession()

		var rows []map[string]any
		if err := client.Select(ctx, "banners", Query{}, &rows); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotAuth != "Bearer session-token" {
			t.Errorf("expected session bearer, got %q", gotAuth)
		}
	})

	t.Run("As overrides session", func(t *testing.T) {
		client.SetSession(&oauth2.Token{AccessToken: "session-token"})
		defer client.ClearSession()

		var rows []map[string]any
		if err := client.As("temp").Select(ctx, "banners", Query{}, &rows); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotAuth != "Bearer temp" {
			t.Errorf("expected override bearer, got %q", gotAuth)
		}
	})
}

func TestPostgREST(t *testing.T) {
	ctx := context.Background()

	t.Run("Select", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			if r.URL.Path != "/rest/v1/banners" {
				t.Errorf("expected path /rest/v1/banners, got %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("select") != "*" || q.Get("order") != "sort_order.asc" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode([]map[string]any{{"id": "a"}, {"id": "b"}})
		})

		var rows []struct {
			ID string `json:"id"`
		}
		if err := client.Select(ctx, "banners", Query{Order: "sort_order.asc"}, &rows); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[1].ID != "b" {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("Select single not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != singleObjectMIME {
				t.Errorf("expected single object accept header, got %q", r.Header.Get("Accept"))
			}
			if r.URL.Query().Get("id") != "eq.top" {
				t.Errorf("expected id=eq.top, got %s", r.URL.RawQuery)
			}
			w.WriteHeader(http.StatusNotAcceptable)
			w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
		})

		var row map[string]any
		err := client.Select(ctx, "promos", Query{Filters: []Filter{Eq("id", "top")}, Single: true}, &row)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("API error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"column banners.foo does not exist"}`))
		})

		var rows []map[string]any
		err := client.Select(ctx, "banners", Query{}, &rows)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if StatusCode(err) != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", StatusCode(err))
		}
		if want := "postgrest API error (status 400): column banners.foo does not exist"; err.Error() != want {
			t.Errorf("expected %q, got %q", want, err.Error())
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Query().Get("on_conflict") != "id" {
				t.Errorf("expected on_conflict=id, got %s", r.URL.RawQuery)
			}
			if r.Header.Get("Prefer") != "resolution=merge-duplicates,return=minimal" {
				t.Errorf("unexpected Prefer header %q", r.Header.Get("Prefer"))
			}
			body, _ := io.ReadAll(r.Body)
			var rows []map[string]any
			if err := json.Unmarshal(body, &rows); err != nil || len(rows) != 2 {
				t.Errorf("expected two rows, got %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		})

		rows := []map[string]any{{"id": "a"}, {"id": "b"}}
		if err := client.Upsert(ctx, "notices", rows, "id"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			if got := r.URL.Query().Get("id"); got != `in.("a","b")` {
				t.Errorf("expected in filter, got %q", got)
			}
			w.WriteHeader(http.StatusNoContent)
		})

		if err := client.Delete(ctx, "videos", In("id", "a", "b")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Delete requires filter", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		if err := client.Delete(ctx, "videos"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("ActiveAdmin", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if r.URL.Path != "/rest/v1/admins" || q.Get("user_id") != "eq.u1" || q.Get("is_active") != "eq.true" {
				t.Errorf("unexpected admin query %s %s", r.URL.Path, r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(map[string]any{"user_id": "u1", "role": "owner", "is_active": true})
		})

		rec, err := client.ActiveAdmin(ctx, "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Role != "owner" {
			t.Errorf("expected role owner, got %s", rec.Role)
		}
	})
}
