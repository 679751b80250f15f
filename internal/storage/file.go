package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/pkg/storage"
)

// FileStorage writes one pretty-printed JSON document per world into dir.
type FileStorage struct {
	dir    string
	logger *slog.Logger
}

var _ storage.Storage = (*FileStorage)(nil)

// NewFileStorage creates dir if needed.
func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "saves"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &FileStorage{dir: dir, logger: logger}, nil
}

func (f *FileStorage) path(id uuid.UUID) string {
	return filepath.Join(f.dir, id.String()+".json")
}

// Ping checks that the save directory is still there.
func (f *FileStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("save directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("save path %s is not a directory", f.dir)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}

// SaveWorld writes through a temp file and rename so a crash never leaves
// a half-written save.
func (f *FileStorage) SaveWorld(ctx context.Context, s *storage.Save) error {
	if err := stamp(s); err != nil {
		return err
	}
	data, err := encodeSave(s, true)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".save-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write save: %w", err)
	}
	if err := os.Rename(tmpName, f.path(s.ID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write save: %w", err)
	}

	f.logger.Debug("Saved world", "world_id", s.ID, "name", s.Name)
	return nil
}

func (f *FileStorage) LoadWorld(ctx context.Context, id uuid.UUID) (*storage.Save, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Warn("World not found", "world_id", id)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	return decodeSave(data)
}

func (f *FileStorage) DeleteWorld(ctx context.Context, id uuid.UUID) error {
	if err := os.Remove(f.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// ListWorlds reads every *.json file in the save directory. Unreadable
// files are logged and skipped.
func (f *FileStorage) ListWorlds(ctx context.Context) ([]storage.SaveInfo, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []storage.SaveInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read save directory: %w", err)
	}

	infos := make([]storage.SaveInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(f.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			f.logger.Warn("Failed to read save file", "path", path, "error", err)
			continue
		}
		info, err := decodeInfo(data)
		if err != nil {
			f.logger.Warn("Failed to decode save file", "path", path, "error", err)
			continue
		}
		infos = append(infos, info)
	}

	storage.SortNewestFirst(infos)
	return infos, nil
}
