package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mediashelf/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    year INTEGER NOT NULL DEFAULT 0,
    images TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_entries_title ON entries (title);
`

// Compile-time check that SQLite implements Store.
var _ Store = (*SQLite)(nil)

// SQLite implements Store backed by SQLite. Image ids are stored as a JSON
// array in the images column, mirroring the document shape of the entry
// records.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) an SQLite database at dsn and runs migrations.
// For in-memory use pass "file::memory:?cache=shared".
func NewSQLite(dsn string) (*SQLite, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	} else if !strings.Contains(dsn, "_journal_mode") {
		dsn += "&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Create(ctx context.Context, e *model.Entry) error {
	images, err := marshalImageIDs(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (id, title, year, images)
		VALUES (?, ?, ?, ?)`,
		e.ID, e.Title, e.Year, images,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, year, images FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *SQLite) List(ctx context.Context) ([]*model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, year, images FROM entries ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var result []*model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan entries: %w", err)
	}
	return result, nil
}

func (s *SQLite) Update(ctx context.Context, e *model.Entry) error {
	images, err := marshalImageIDs(e)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE entries SET title = ?, year = ?, images = ? WHERE id = ?`,
		e.Title, e.Year, images, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*model.Entry, error) {
	var (
		e      model.Entry
		images string
	)
	if err := s.Scan(&e.ID, &e.Title, &e.Year, &images); err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(images), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal image ids for entry %s: %w", e.ID, err)
	}
	e.ImageIDs = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		e.ImageIDs[id] = struct{}{}
	}
	return &e, nil
}

func marshalImageIDs(e *model.Entry) (string, error) {
	data, err := json.Marshal(e.SortedImageIDs())
	if err != nil {
		return "", fmt.Errorf("marshal image ids: %w", err)
	}
	return string(data), nil
}
