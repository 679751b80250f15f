package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/internal/agent"
	"github.com/jwebster45206/infinite-adventure/pkg/storage"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

const (
	WelcomeNarrative = "Welcome to the Infinite Text Adventure."

	saveTimeout = 10 * time.Second
)

var (
	ErrWorldNotFound = errors.New("world not found")
	ErrEmptyName     = errors.New("world name cannot be empty")
	ErrEmptyInput    = errors.New("input cannot be empty")
)

// Game owns the open worlds and their saves. Turns on one world run one
// at a time; different worlds play independently.
type Game struct {
	store  storage.Storage
	runner *agent.Runner
	log    *agent.DebugLog
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	pending  sync.WaitGroup
}

func New(store storage.Storage, runner *agent.Runner, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Game{
		store:    store,
		runner:   runner,
		log:      runner.Agent().DebugLog(),
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
	g.log.Add("Game initialized.")
	return g
}

// DebugLog is shared with the agent so front ends see both.
func (g *Game) DebugLog() *agent.DebugLog { return g.log }

// Create starts a new world at "The Beginning" and saves it before
// returning.
func (g *Game) Create(ctx context.Context, name string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	save := storage.NewSave(name, world.NewWithStart())
	if err := g.store.SaveWorld(ctx, save); err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	g.log.Addf("Created new world: %s", name)
	g.logger.Info("Created world", "world_id", save.ID, "name", name)

	s := g.open(save)
	s.narrative = fmt.Sprintf("Created new world: '%s'. What do you want to do?", name)
	return s, nil
}

// Load returns the open session for id, reading the save when the world
// is not open yet.
func (g *Game) Load(ctx context.Context, id uuid.UUID) (*Session, error) {
	g.mu.Lock()
	s, ok := g.sessions[id]
	g.mu.Unlock()
	if ok {
		return s, nil
	}

	save, err := g.store.LoadWorld(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	if save == nil {
		return nil, ErrWorldNotFound
	}

	g.log.Addf("Loaded world: %s", save.Name)
	g.logger.Info("Loaded world", "world_id", id, "name", save.Name)

	g.mu.Lock()
	defer g.mu.Unlock()
	// Another caller may have opened it meanwhile.
	if s, ok := g.sessions[id]; ok {
		return s, nil
	}
	s = newSession(g, save)
	s.narrative = fmt.Sprintf("Loaded world: %s. What do you want to do?", save.Name)
	g.sessions[id] = s
	return s, nil
}

func (g *Game) open(save *storage.Save) *Session {
	s := newSession(g, save)
	g.mu.Lock()
	g.sessions[save.ID] = s
	g.mu.Unlock()
	return s
}

// List returns every saved world, most recently played first.
func (g *Game) List(ctx context.Context) ([]storage.SaveInfo, error) {
	infos, err := g.store.ListWorlds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	return infos, nil
}

// Delete closes the world and removes its save.
func (g *Game) Delete(ctx context.Context, id uuid.UUID) error {
	g.mu.Lock()
	s, open := g.sessions[id]
	delete(g.sessions, id)
	g.mu.Unlock()

	if !open {
		save, err := g.store.LoadWorld(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load world: %w", err)
		}
		if save == nil {
			return ErrWorldNotFound
		}
	} else {
		// Saves queued after this point are dropped; one already
		// running finishes first.
		s.deleted.Store(true)
		s.saveMu.Lock()
		defer s.saveMu.Unlock()
	}

	if err := g.store.DeleteWorld(ctx, id); err != nil {
		return fmt.Errorf("failed to delete world: %w", err)
	}
	g.log.Addf("Deleted world: %s", id)
	g.logger.Info("Deleted world", "world_id", id)
	return nil
}

// Wait blocks until background saves have finished.
func (g *Game) Wait() {
	g.pending.Wait()
}
