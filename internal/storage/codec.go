package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/pkg/storage"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

var errNilSave = errors.New("save cannot be nil")

// now is the clock used to stamp UpdatedAt.
var now = func() time.Time { return time.Now().UTC() }

type envelope struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	World     json.RawMessage `json:"world"`
}

// stamp validates s and sets its UpdatedAt.
func stamp(s *storage.Save) error {
	if s == nil || s.World == nil {
		return errNilSave
	}
	if s.ID == uuid.Nil {
		return errors.New("save id is required")
	}
	s.UpdatedAt = now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	return nil
}

func encodeSave(s *storage.Save, pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save: %w", err)
	}
	return data, nil
}

func decodeSave(data []byte) (*storage.Save, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	w, err := world.Decode(env.World)
	if err != nil {
		return nil, err
	}
	return &storage.Save{
		ID:        env.ID,
		Name:      env.Name,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		World:     w,
	}, nil
}

// decodeInfo reads only the header fields of an encoded save.
func decodeInfo(data []byte) (storage.SaveInfo, error) {
	var info storage.SaveInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	if info.ID == uuid.Nil {
		return info, errors.New("save has no id")
	}
	return info, nil
}
