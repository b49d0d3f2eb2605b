package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UploadRecord is one media object uploaded through the gateway.
type UploadRecord struct {
	Bucket      string     `json:"bucket"`
	Path        string     `json:"path"`
	URL         string     `json:"url"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// UploadLog records uploaded media on the upload_log table. Deleted objects are soft deleted.
type UploadLog struct {
	db *sql.DB
}

// NewUploadLog creates an [UploadLog] with the given database connection
func NewUploadLog(db *sql.DB) *UploadLog {
	return &UploadLog{db: db}
}

// RecordUpload inserts or revives the record for bucket/path.
func (l *UploadLog) RecordUpload(ctx context.Context, rec UploadRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO upload_log (bucket, path, url, content_type, size, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(bucket, path) DO UPDATE SET
			url = excluded.url,
			content_type = excluded.content_type,
			size = excluded.size,
			created_at = excluded.created_at,
			deleted_at = NULL
	`
	_, err := l.db.ExecContext(ctx, query, rec.Bucket, rec.Path, rec.URL, rec.ContentType, rec.Size, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// RecordDelete marks the object behind url as deleted. Unknown URLs are ignored.
func (l *UploadLog) RecordDelete(ctx context.Context, url string) error {
	query := `UPDATE upload_log SET deleted_at = ? WHERE url = ? AND deleted_at IS NULL`
	if _, err := l.db.ExecContext(ctx, query, time.Now().UTC(), url); err != nil {
		return fmt.Errorf("failed to record delete: %w", err)
	}
	return nil
}

// Get returns the record for bucket/path, including soft-deleted records.
func (l *UploadLog) Get(ctx context.Context, bucket, path string) (*UploadRecord, error) {
	query := `
		SELECT bucket, path, url, content_type, size, created_at, deleted_at
		FROM upload_log
		WHERE bucket = ? AND path = ?
	`
	rec, err := scanUpload(l.db.QueryRowContext(ctx, query, bucket, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("upload", bucket+"/"+path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload: %w", err)
	}
	return rec, nil
}

// List returns live uploads, newest first. An empty bucket lists every bucket.
func (l *UploadLog) List(ctx context.Context, bucket string, includeDeleted bool) ([]UploadRecord, error) {
	query := `
		SELECT bucket, path, url, content_type, size, created_at, deleted_at
		FROM upload_log
		WHERE (? = '' OR bucket = ?) AND (? OR deleted_at IS NULL)
		ORDER BY created_at DESC, path
	`
	rows, err := l.db.QueryContext(ctx, query, bucket, bucket, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var records []UploadRecord
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uploads: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*UploadRecord, error) {
	var (
		rec       UploadRecord
		deletedAt sql.NullTime
	)
	if err := s.Scan(&rec.Bucket, &rec.Path, &rec.URL, &rec.ContentType, &rec.Size, &rec.CreatedAt, &deletedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}
	return &rec, nil
}
