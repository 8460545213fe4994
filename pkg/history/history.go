package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"coubcrawl/pkg/crawler"
)

// DB is the crawl history database
type DB struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the history database at path, creating parent
// directories as needed.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	h := &DB{db: db, path: path, now: time.Now}
	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Path returns the database file path
func (h *DB) Path() string {
	return h.path
}

// Close closes the database connection
func (h *DB) Close() error {
	return h.db.Close()
}

func (h *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		categories TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		category TEXT NOT NULL,
		kind TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT,
		stop TEXT,
		pages INTEGER DEFAULT 0,
		raw_items INTEGER DEFAULT 0,
		emitted INTEGER DEFAULT 0,
		reposts INTEGER DEFAULT 0,
		segment_bundles INTEGER DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(category);
	CREATE INDEX IF NOT EXISTS idx_categories_run ON categories(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one crawl invocation. It satisfies crawler.Recorder.
type Run struct {
	ID int64
	db *DB
}

// BeginRun records the start of a run over the given categories
func (h *DB) BeginRun(ctx context.Context, categories []string) (*Run, error) {
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (categories, started_at) VALUES (?, ?)`,
		strings.Join(categories, ","), formatTime(h.now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get run id: %w", err)
	}

	return &Run{ID: id, db: h}, nil
}

// Record stores the report for one category of the run
func (r *Run) Record(ctx context.Context, report crawler.CategoryReport) error {
	_, err := r.db.db.ExecContext(ctx, `
	INSERT INTO categories (run_id, category, kind, outcome, reason, stop,
		pages, raw_items, emitted, reposts, segment_bundles, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		report.Category.String(),
		string(report.Kind),
		string(report.Outcome),
		report.Reason,
		string(report.Stop),
		report.Pages,
		report.RawItems,
		report.Emitted,
		report.Reposts,
		report.SegmentBundles,
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", report.Category, err)
	}
	return nil
}

// Finish stamps the run's finish time
func (r *Run) Finish(ctx context.Context) error {
	_, err := r.db.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		formatTime(r.db.now()), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", r.ID, err)
	}
	return nil
}

// Close closes the database the run was started on
func (r *Run) Close() error {
	return r.db.Close()
}

// Entry is one stored category row
type Entry struct {
	RunID          int64
	Category       string
	Kind           string
	Outcome        string
	Reason         string
	Stop           string
	Pages          int
	RawItems       int
	Emitted        int
	Reposts        int
	SegmentBundles int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// List returns stored rows newest first. An empty category lists every
// category; limit <= 0 means no limit.
func (h *DB) List(ctx context.Context, category string, limit int) ([]Entry, error) {
	query := `
	SELECT run_id, category, kind, outcome, COALESCE(reason, ''), COALESCE(stop, ''),
		pages, raw_items, emitted, reposts, segment_bundles, started_at, finished_at
	FROM categories`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, strings.ToLower(category))
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished string
		if err := rows.Scan(&e.RunID, &e.Category, &e.Kind, &e.Outcome, &e.Reason, &e.Stop,
			&e.Pages, &e.RawItems, &e.Emitted, &e.Reposts, &e.SegmentBundles, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.StartedAt = parseTime(started)
		e.FinishedAt = parseTime(finished)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
