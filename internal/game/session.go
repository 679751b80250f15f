package game

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/internal/agent"
	"github.com/jwebster45206/infinite-adventure/pkg/storage"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

// Session is one open world.
type Session struct {
	game *Game

	mu        sync.Mutex
	save      *storage.Save
	narrative string
	options   []string
	deleted   atomic.Bool

	// saveMu orders background saves; saveSeq/savedSeq keep an older
	// snapshot from overwriting a newer one.
	saveMu   sync.Mutex
	saveSeq  uint64
	savedSeq uint64
}

// State is a copy of a session safe to hand to a front end.
type State struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	Narrative        string       `json:"narrative"`
	SuggestedActions []string     `json:"suggested_actions"`
	World            *world.World `json:"world"`
}

func newSession(g *Game, save *storage.Save) *Session {
	return &Session{
		game:      g,
		save:      save,
		narrative: WelcomeNarrative,
	}
}

func (s *Session) ID() uuid.UUID { return s.save.ID }

func (s *Session) Name() string { return s.save.Name }

// State snapshots the session.
func (s *Session) State() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.save.World.Clone()
	if err != nil {
		return nil, err
	}
	return &State{
		ID:               s.save.ID,
		Name:             s.save.Name,
		Narrative:        s.narrative,
		SuggestedActions: slices.Clone(s.options),
		World:            w,
	}, nil
}

// Turn plays one input. A number picks one of the last suggested
// actions, and /north, /south, /east and /west move without asking the
// model. The world is saved in the background after every turn that
// did not fail.
func (s *Session) Turn(ctx context.Context, input string) (*agent.Response, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted.Load() {
		return nil, ErrWorldNotFound
	}

	log := s.game.log
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(s.options) {
		input = s.options[n-1]
		log.Addf("User selected option %d: %s", n, input)
	}

	w := s.save.World
	log.Addf("Processing input: '%s'", input)
	log.Addf("Current player position: %s", w.CurrentPos)

	var resp *agent.Response
	if dir, ok := quickMove(input); ok {
		resp = s.move(ctx, dir)
	} else {
		resp = s.game.runner.Run(ctx, w, input)
	}

	s.narrative = resp.Narrative
	if !resp.Failed {
		s.options = slices.Clone(resp.SuggestedActions)
		s.persist()
	}
	return resp, nil
}

func quickMove(input string) (world.Direction, bool) {
	name, ok := strings.CutPrefix(input, "/")
	if !ok {
		return "", false
	}
	return world.ParseDirection(name)
}

// move walks one step. An existing location is entered at once;
// otherwise one is generated, falling back to a placeholder.
func (s *Session) move(ctx context.Context, dir world.Direction) *agent.Response {
	w := s.save.World
	log := s.game.log
	from := w.CurrentPos
	target := from.Step(dir)

	var narrative string
	if dest, ok := w.Locations[target]; ok {
		if cur, ok := w.Locations[from]; ok {
			cur.Link(dir, target)
		}
		dest.Link(dir.Opposite(), from)
		dest.Visited = true
		w.CurrentPos = target
		narrative = fmt.Sprintf("You travel %s to %s.\n%s", dir, dest.Name, dest.Description)
		log.Addf("Moved to existing location (%d, %d)", target.X, target.Y)
	} else {
		log.Addf("Generating location at (%d, %d) heading %s", target.X, target.Y, dir)
		loc, generated := s.game.runner.Agent().Generator().Explore(ctx, w, from, dir)
		w.CurrentPos = target
		if generated {
			narrative = fmt.Sprintf("You travel %s to %s.\n%s", dir, loc.Name, loc.Description)
			log.Addf("Created and moved to (%d, %d)", target.X, target.Y)
		} else {
			narrative = fmt.Sprintf("You travel %s into the unknown.\n%s", dir, loc.Description)
			log.Addf("Used fallback location at (%d, %d)", target.X, target.Y)
		}
	}

	return &agent.Response{
		Narrative:        narrative,
		SuggestedActions: slices.Clone(agent.DefaultSuggestions),
	}
}

// persist saves a copy of the world in the background. Callers hold s.mu.
func (s *Session) persist() {
	w, err := s.save.World.Clone()
	if err != nil {
		s.game.logger.Error("Failed to copy world for saving", "world_id", s.save.ID, "error", err)
		return
	}
	snapshot := &storage.Save{
		ID:        s.save.ID,
		Name:      s.save.Name,
		CreatedAt: s.save.CreatedAt,
		World:     w,
	}
	s.saveSeq++
	seq := s.saveSeq

	g := s.game
	g.pending.Add(1)
	go func() {
		defer g.pending.Done()
		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		if seq < s.savedSeq || s.deleted.Load() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := g.store.SaveWorld(ctx, snapshot); err != nil {
			g.logger.Error("Failed to save world", "world_id", snapshot.ID, "error", err)
			g.log.Addf("Failed to save world: %v", err)
			return
		}
		s.savedSeq = seq
		g.logger.Debug("Saved world", "world_id", snapshot.ID)
	}()
}
