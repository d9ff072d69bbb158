// Package history keeps a local record of completed transcriptions.
// It is the collaborator behind the orchestrator's refresh hook: the
// orchestrator never mutates it directly, it only signals completion.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Record struct {
	TaskID       string
	Title        string
	SourceType   string
	SRTURL       string
	MarkdownURL  string
	Duration     float64
	SegmentCount int
	CreatedAt    time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database and runs migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "history.db"))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, err
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts or replaces a history entry.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.TaskID == "" {
		return fmt.Errorf("history record requires a task id")
	}
	// Stored as an RFC3339 string and ordered lexicographically, so
	// every row must carry the same (UTC) offset.
	createdAt := rec.CreatedAt.UTC()
	if rec.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO history
			(task_id, title, source_type, srt_url, markdown_url, duration_seconds, segment_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TaskID, rec.Title, rec.SourceType, rec.SRTURL, rec.MarkdownURL,
		rec.Duration, rec.SegmentCount, createdAt.Format(time.RFC3339),
	)
	return err
}

// List returns the most recent entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, title, source_type, srt_url, markdown_url, duration_seconds, segment_count, created_at
		FROM history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.TaskID, &rec.Title, &rec.SourceType, &rec.SRTURL,
			&rec.MarkdownURL, &rec.Duration, &rec.SegmentCount, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes an entry by task id.
func (s *Store) Delete(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE task_id = ?`, taskID)
	return err
}
