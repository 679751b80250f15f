package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/pkg/storage"
)

// MemoryStorage keeps encoded saves in a map. Used for tests and for
// sessions that should not outlive the process.
type MemoryStorage struct {
	mu        sync.RWMutex
	saves     map[uuid.UUID][]byte
	pingError error
}

// Ensure MemoryStorage implements Storage interface
var _ storage.Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		saves: make(map[uuid.UUID][]byte),
	}
}

// SetPingError configures Ping to fail with err. nil restores success.
func (m *MemoryStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) SaveWorld(ctx context.Context, s *storage.Save) error {
	if err := stamp(s); err != nil {
		return err
	}
	data, err := encodeSave(s, false)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[s.ID] = data
	return nil
}

func (m *MemoryStorage) LoadWorld(ctx context.Context, id uuid.UUID) (*storage.Save, error) {
	m.mu.RLock()
	data, ok := m.saves[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeSave(data)
}

func (m *MemoryStorage) DeleteWorld(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

func (m *MemoryStorage) ListWorlds(ctx context.Context) ([]storage.SaveInfo, error) {
	m.mu.RLock()
	infos := make([]storage.SaveInfo, 0, len(m.saves))
	for _, data := range m.saves {
		info, err := decodeInfo(data)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	m.mu.RUnlock()

	storage.SortNewestFirst(infos)
	return infos, nil
}
