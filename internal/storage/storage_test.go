package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/infinite-adventure/internal/config"
	"github.com/jwebster45206/infinite-adventure/pkg/storage"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// tickingClock makes every stamp one second after the last.
func tickingClock(t *testing.T) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	t.Cleanup(func() { now = prev })
}

func sampleWorld() *world.World {
	w := world.NewWithStart()
	w.Items["lamp"] = &world.Item{ID: "lamp", Name: "Brass Lamp", ItemType: world.ItemTool, State: world.Normal(), Properties: world.DefaultProperties()}
	w.Player.Inventory = []string{"lamp"}
	w.Player.Money = 7
	w.Locations[world.Coord{X: -2, Y: 3}] = &world.Location{Name: "Far Field", Exits: map[world.Direction]*world.Coord{}}
	w.CurrentPos = world.Coord{X: -2, Y: 3}
	return w
}

type backend struct {
	name  string
	store storage.Storage
}

func backends(t *testing.T) []backend {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rs, err := NewRedisStorage("redis://"+mr.Addr(), 0, quietLogger())
	require.NoError(t, err)

	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "saves"), quietLogger())
	require.NoError(t, err)

	ss, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "db", "worlds.db"), quietLogger())
	require.NoError(t, err)

	out := []backend{
		{name: "memory", store: NewMemoryStorage()},
		{name: "file", store: fs},
		{name: "redis", store: rs},
		{name: "sqlite", store: ss},
	}
	t.Cleanup(func() {
		for _, b := range out {
			_ = b.store.Close()
		}
	})
	return out
}

func TestStorage_RoundTrip(t *testing.T) {
	tickingClock(t)
	ctx := context.Background()

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.Ping(ctx))

			s := storage.NewSave("Misty Isles", sampleWorld())
			require.NoError(t, b.store.SaveWorld(ctx, s))
			assert.False(t, s.UpdatedAt.IsZero())

			loaded, err := b.store.LoadWorld(ctx, s.ID)
			require.NoError(t, err)
			require.NotNil(t, loaded)

			assert.Equal(t, s.ID, loaded.ID)
			assert.Equal(t, "Misty Isles", loaded.Name)
			assert.Equal(t, world.Coord{X: -2, Y: 3}, loaded.World.CurrentPos)
			assert.Equal(t, []string{"lamp"}, loaded.World.Player.Inventory)
			assert.Equal(t, 7, loaded.World.Player.Money)
			require.Contains(t, loaded.World.Items, "lamp")
			assert.Equal(t, "Brass Lamp", loaded.World.Items["lamp"].Name)
			require.Contains(t, loaded.World.Locations, world.Coord{X: -2, Y: 3})
			assert.Equal(t, "Far Field", loaded.World.Locations[world.Coord{X: -2, Y: 3}].Name)
			assert.Equal(t, "The Beginning", loaded.World.Locations[world.Coord{}].Name)
		})
	}
}

func TestStorage_LoadMissingIsNil(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			loaded, err := b.store.LoadWorld(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, loaded)
		})
	}
}

func TestStorage_ListNewestFirst(t *testing.T) {
	tickingClock(t)
	ctx := context.Background()

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			first := storage.NewSave("first", world.NewWithStart())
			second := storage.NewSave("second", world.NewWithStart())
			require.NoError(t, b.store.SaveWorld(ctx, first))
			require.NoError(t, b.store.SaveWorld(ctx, second))

			infos, err := b.store.ListWorlds(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "second", infos[0].Name)
			assert.Equal(t, "first", infos[1].Name)

			// Saving again moves a world to the front.
			require.NoError(t, b.store.SaveWorld(ctx, first))
			infos, err = b.store.ListWorlds(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, first.ID, infos[0].ID)
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	tickingClock(t)
	ctx := context.Background()

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			s := storage.NewSave("doomed", world.NewWithStart())
			require.NoError(t, b.store.SaveWorld(ctx, s))
			require.NoError(t, b.store.DeleteWorld(ctx, s.ID))

			loaded, err := b.store.LoadWorld(ctx, s.ID)
			require.NoError(t, err)
			assert.Nil(t, loaded)

			infos, err := b.store.ListWorlds(ctx)
			require.NoError(t, err)
			assert.Empty(t, infos)

			// Deleting again is not an error.
			assert.NoError(t, b.store.DeleteWorld(ctx, s.ID))
		})
	}
}

func TestStorage_RejectsNil(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			assert.Error(t, b.store.SaveWorld(ctx, nil))
			assert.Error(t, b.store.SaveWorld(ctx, &storage.Save{ID: uuid.New()}))
			assert.Error(t, b.store.SaveWorld(ctx, &storage.Save{World: world.New()}))
		})
	}
}

func TestFileStorage_PrettyJSONAndSkipsJunk(t *testing.T) {
	tickingClock(t)
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStorage(dir, quietLogger())
	require.NoError(t, err)

	s := storage.NewSave("pretty", world.NewWithStart())
	require.NoError(t, fs.SaveWorld(ctx, s))

	data, err := os.ReadFile(filepath.Join(dir, s.ID.String()+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"name\": \"pretty\"")
	assert.Contains(t, string(data), `"0,0"`)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	infos, err := fs.ListWorlds(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "pretty", infos[0].Name)
}

func TestRedisStorage_TTLAndPruning(t *testing.T) {
	tickingClock(t)
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rs, err := NewRedisStorage(mr.Addr(), time.Hour, quietLogger())
	require.NoError(t, err)
	defer func() { _ = rs.Close() }()

	s := storage.NewSave("short lived", world.NewWithStart())
	require.NoError(t, rs.SaveWorld(ctx, s))
	assert.Equal(t, time.Hour, mr.TTL(worldKey(s.ID)))

	mr.FastForward(2 * time.Hour)

	infos, err := rs.ListWorlds(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	members, err := mr.ZMembers(worldIndexKey)
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestRedisStorage_BadURL(t *testing.T) {
	_, err := NewRedisStorage("redis://host:notaport/x/y", 0, nil)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := map[string]struct {
		cfg    config.Config
		expErr bool
	}{
		"memory": {cfg: config.Config{StorageBackend: config.StorageMemory}},
		"file":   {cfg: config.Config{StorageBackend: config.StorageFile, SaveDir: filepath.Join(dir, "f")}},
		"sqlite": {cfg: config.Config{StorageBackend: config.StorageSQLite, SQLitePath: filepath.Join(dir, "s.db")}},
		"bogus":  {cfg: config.Config{StorageBackend: "tape"}, expErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			st, err := Open(ctx, &tt.cfg, quietLogger())
			if tt.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = st.Close() }()
			assert.NoError(t, st.Ping(ctx))
		})
	}
}
