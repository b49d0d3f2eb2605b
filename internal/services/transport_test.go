package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/onlyhub/internal/shared"
	tu "github.com/desertthunder/onlyhub/internal/testing"
)

func TestTransport(t *testing.T) {
	ctx := context.Background()

	newClient := func(t *testing.T, rt http.RoundTripper) *Client {
		t.Helper()
		client, err := NewClient(ClientOpts{
			URL:        "https://project.supabase.co",
			AnonKey:    testAnonKey,
			HTTPClient: &http.Client{Transport: rt},
		})
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		return client
	}

	t.Run("request failure", func(t *testing.T) {
		client := newClient(t, tu.NewMockRoundTripper(nil, errors.New("connection failed")))

		var rows []map[string]any
		err := client.Select(ctx, "banners", Query{}, &rows)
		if err == nil || !strings.Contains(err.Error(), "request failed") {
			t.Errorf("expected request failure, got %v", err)
		}
	})

	t.Run("decode failure", func(t *testing.T) {
		client := newClient(t, tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &tu.FCloser{},
		}, nil))

		var rows []map[string]any
		err := client.Select(ctx, "banners", Query{}, &rows)
		if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
			t.Errorf("expected decode failure, got %v", err)
		}
	})

	t.Run("error body", func(t *testing.T) {
		client := newClient(t, tu.NewMockRoundTripper(
			tu.JSONResponse(http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`), nil))

		_, err := client.SignInWithPassword(ctx, "a@b.c", "x")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if StatusCode(err) != http.StatusBadRequest || !strings.Contains(err.Error(), "Invalid login credentials") {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("empty token grant", func(t *testing.T) {
		client := newClient(t, tu.NewMockRoundTripper(tu.JSONResponse(http.StatusOK, `{}`), nil))

		if _, err := client.RefreshSession(ctx, "r1"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}
