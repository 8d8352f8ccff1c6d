// SPDX-License-Identifier: MIT

// Package store provides SQLite persistence for video metadata.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: video not found")

// Store provides SQLite persistence for the videos relation.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dbPath and runs migrations.
// busy_timeout avoids "database locked" errors under concurrent commits.
func NewStore(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		owner_user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		visibility TEXT NOT NULL DEFAULT 'public' CHECK(visibility IN ('public', 'private')),
		video_url TEXT NOT NULL,
		thumbnail_url TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos(owner_user_id);
	CREATE INDEX IF NOT EXISTS idx_videos_created ON videos(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// videoRow mirrors the relation with TEXT timestamps for scanning.
type videoRow struct {
	ID              string `db:"id"`
	OwnerUserID     string `db:"owner_user_id"`
	Title           string `db:"title"`
	Description     string `db:"description"`
	Visibility      string `db:"visibility"`
	VideoURL        string `db:"video_url"`
	ThumbnailURL    string `db:"thumbnail_url"`
	DurationSeconds int    `db:"duration_seconds"`
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
}

func (r videoRow) toRecord() VideoRecord {
	rec := VideoRecord{
		ID:              r.ID,
		OwnerUserID:     r.OwnerUserID,
		Title:           r.Title,
		Description:     r.Description,
		Visibility:      r.Visibility,
		VideoURL:        r.VideoURL,
		ThumbnailURL:    r.ThumbnailURL,
		DurationSeconds: r.DurationSeconds,
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return rec
}

// Insert writes a new video record.
func (s *Store) Insert(ctx context.Context, rec VideoRecord) error {
	query := `
	INSERT INTO videos (id, owner_user_id, title, description, visibility, video_url, thumbnail_url, duration_seconds, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerUserID,
		rec.Title,
		rec.Description,
		rec.Visibility,
		rec.VideoURL,
		rec.ThumbnailURL,
		rec.DurationSeconds,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: insert video: %w", err)
	}
	return nil
}

// GetByID retrieves a single video record.
func (s *Store) GetByID(ctx context.Context, id string) (*VideoRecord, error) {
	var row videoRow
	query := `SELECT * FROM videos WHERE id = ?`
	if err := sqlscan.Get(ctx, s.db, &row, query, id); err != nil {
		if sqlscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get video: %w", err)
	}
	rec := row.toRecord()
	return &rec, nil
}

// Count returns the number of records in the relation. Used by tests to
// assert that failed commits leave the relation untouched.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count videos: %w", err)
	}
	return n, nil
}

// List returns one page of video records visible to the viewer, with the
// pagination envelope for the full filtered set.
func (s *Store) List(ctx context.Context, q ListQuery) ([]VideoRecord, Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 8
	}

	where := `(visibility = 'public' OR owner_user_id = ?)`
	args := []any{q.ViewerID}
	if q.Query != "" {
		where += ` AND LOWER(title) LIKE '%' || LOWER(?) || '%'`
		args = append(args, q.Query)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM videos WHERE ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, Pagination{}, fmt.Errorf("store: count listing: %w", err)
	}

	query := `SELECT * FROM videos WHERE ` + where + ` ORDER BY ` + orderClause(q.Sort) + ` LIMIT ? OFFSET ?`
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	var rows []videoRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, Pagination{}, fmt.Errorf("store: list videos: %w", err)
	}

	records := make([]VideoRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}

	totalPages := (total + q.PageSize - 1) / q.PageSize
	return records, Pagination{
		CurrentPage: q.Page,
		TotalPages:  totalPages,
		TotalVideos: total,
		PageSize:    q.PageSize,
	}, nil
}

// orderClause maps a named sort option to its ORDER BY clause. Unknown
// options fall back to newest-first.
func orderClause(sort string) string {
	switch sort {
	case SortOldest:
		return "created_at ASC"
	case SortAlphabetical:
		return "LOWER(title) ASC"
	case SortReverseAlphabetical:
		return "LOWER(title) DESC"
	default:
		return "created_at DESC"
	}
}
