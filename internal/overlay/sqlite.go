package overlay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/composebox/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps placements in a sqlite table keyed by application.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	s, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open database and creates the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate placements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS placements (
		app_key TEXT PRIMARY KEY,
		x REAL NOT NULL,
		y REAL NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, key string, pt model.Point) error {
	if err := checkKey(key); err != nil {
		return err
	}
	query := `INSERT INTO placements (app_key, x, y, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(app_key) DO UPDATE SET x = excluded.x, y = excluded.y, updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query, key, pt.X, pt.Y, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save placement: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (model.Point, bool, error) {
	var pt model.Point
	err := s.db.QueryRowContext(ctx, `SELECT x, y FROM placements WHERE app_key = ?`, key).Scan(&pt.X, &pt.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Point{}, false, nil
	}
	if err != nil {
		return model.Point{}, false, fmt.Errorf("failed to load placement: %w", err)
	}
	return pt, true, nil
}

func (s *SQLiteStore) List(ctx context.Context) (map[string]model.Point, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT app_key, x, y FROM placements ORDER BY app_key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]model.Point)
	for rows.Next() {
		var (
			key string
			pt  model.Point
		)
		if err := rows.Scan(&key, &pt.X, &pt.Y); err != nil {
			return nil, err
		}
		out[key] = pt
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
