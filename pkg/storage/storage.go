package storage

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

// Save is one named world and its bookkeeping.
type Save struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	World     *world.World `json:"world"`
}

// NewSave wraps a world for storage under a fresh id.
func NewSave(name string, w *world.World) *Save {
	now := time.Now().UTC()
	return &Save{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		World:     w,
	}
}

// SaveInfo describes a save without loading its world.
type SaveInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Save) Info() SaveInfo {
	return SaveInfo{ID: s.ID, Name: s.Name, UpdatedAt: s.UpdatedAt}
}

// Storage persists worlds. Loading a missing save returns nil, nil.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveWorld writes s and stamps UpdatedAt.
	SaveWorld(ctx context.Context, s *Save) error
	LoadWorld(ctx context.Context, id uuid.UUID) (*Save, error)
	DeleteWorld(ctx context.Context, id uuid.UUID) error
	// ListWorlds returns every save, most recently updated first.
	ListWorlds(ctx context.Context) ([]SaveInfo, error)
}

// SortNewestFirst orders infos by UpdatedAt descending, then by name.
func SortNewestFirst(infos []SaveInfo) {
	slices.SortFunc(infos, func(a, b SaveInfo) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
