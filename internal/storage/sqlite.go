package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/infinite-adventure/pkg/storage"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS worlds (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS worlds_updated_at ON worlds (updated_at DESC);
`

// SQLiteStorage keeps saves in a single table of JSON documents.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Storage = (*SQLiteStorage)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// NewSQLiteStorage opens (creating if needed) the database at path.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) SaveWorld(ctx context.Context, save *storage.Save) error {
	if err := stamp(save); err != nil {
		return err
	}
	data, err := encodeSave(save, false)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO worlds (id, name, created_at, updated_at, data)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   updated_at = excluded.updated_at,
		   data = excluded.data`,
		save.ID.String(),
		save.Name,
		toMillis(save.CreatedAt),
		toMillis(save.UpdatedAt),
		string(data),
	)
	if err != nil {
		s.logger.Error("Failed to save world", "world_id", save.ID, "error", err)
		return fmt.Errorf("failed to save world: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadWorld(ctx context.Context, id uuid.UUID) (*storage.Save, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM worlds WHERE id = ?`, id.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("World not found", "world_id", id)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	return decodeSave([]byte(data))
}

func (s *SQLiteStorage) DeleteWorld(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM worlds WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete world: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListWorlds(ctx context.Context) ([]storage.SaveInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, updated_at FROM worlds ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	infos := make([]storage.SaveInfo, 0)
	for rows.Next() {
		var (
			rawID     string
			info      storage.SaveInfo
			updatedAt int64
		)
		if err := rows.Scan(&rawID, &info.Name, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan world: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			s.logger.Warn("Skipping world with malformed id", "id", rawID, "error", err)
			continue
		}
		info.ID = id
		info.UpdatedAt = fromMillis(updatedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	return infos, nil
}
