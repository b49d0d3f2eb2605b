package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Key is a fixed local mirror key.
type Key string

const (
	KeyBanners     Key = "vh_banners"
	KeyVideos      Key = "vh_videos"
	KeyNotices     Key = "vh_notices"
	KeyTopPromo    Key = "vh_promo"
	KeyBottomPromo Key = "vh_bottom_promo"
	KeySession     Key = "admin_session"
)

// LocalStore is a key/value mirror on the local_store table. Each write fully replaces the value.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore creates a [LocalStore] with the given database connection
func NewLocalStore(db *sql.DB) *LocalStore {
	return &LocalStore{db: db}
}

// Get returns the raw value for key and whether it exists.
func (s *LocalStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM local_store WHERE key = ?", string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put overwrites the value for key.
func (s *LocalStore) Put(ctx context.Context, key Key, value []byte) error {
	query := `
		INSERT INTO local_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, string(key), string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *LocalStore) Remove(ctx context.Context, key Key) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM local_store WHERE key = ?", string(key)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value for key into dst and reports whether the key existed.
func (s *LocalStore) GetJSON(ctx context.Context, key Key, dst any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func (s *LocalStore) PutJSON(ctx context.Context, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}
