package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/prompts"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Source is the generation service. It answers a request with text.
type Source interface {
	Complete(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error)
}

// Generator creates locations for unexplored coordinates. With a nil
// source every request falls back to a placeholder location.
type Generator struct {
	source  Source
	logger  *slog.Logger
	timeout time.Duration
}

func New(source Source, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		source:  source,
		logger:  logger,
		timeout: DefaultTimeout,
	}
}

// WithTimeout bounds a single generation request. Zero disables the bound.
func (g *Generator) WithTimeout(d time.Duration) *Generator {
	g.timeout = d
	return g
}

// Generate asks the source for the location one step from `from` in dir.
// The returned location has no exits, items or actors.
func (g *Generator) Generate(ctx context.Context, current *world.Location, from world.Coord, dir world.Direction) (*world.Location, error) {
	if g.source == nil {
		return nil, fmt.Errorf("no generation source configured")
	}
	prompt, err := prompts.LocationPrompt(current, from, dir)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.source.Complete(ctx, chat.CompletionRequest{
		Messages: []chat.ChatMessage{
			{Role: chat.ChatRoleSystem, Content: prompts.LocationSystemPrompt},
			{Role: chat.ChatRoleUser, Content: prompt},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate location: %w", err)
	}
	return ParseLocation(resp.Content)
}

// Expand inserts a location at the coordinate one step from `from` and
// links both exits. Generation failures are logged and replaced with
// Fallback; Expand never fails.
func (g *Generator) Expand(ctx context.Context, w *world.World, from world.Coord, dir world.Direction) *world.Location {
	loc, _ := g.Explore(ctx, w, from, dir)
	return loc
}

// Explore is Expand that also reports whether the source produced the
// location. False means the fallback was used.
func (g *Generator) Explore(ctx context.Context, w *world.World, from world.Coord, dir world.Direction) (*world.Location, bool) {
	target := from.Step(dir)
	current := w.Locations[from]

	loc, err := g.Generate(ctx, current, from, dir)
	generated := err == nil
	if err != nil {
		g.logger.Warn("Location generation failed, using fallback",
			"from", from.String(),
			"to", target.String(),
			"direction", dir,
			"error", err)
		loc = Fallback(target)
	} else {
		g.logger.Info("Generated location",
			"to", target.String(),
			"name", loc.Name)
	}

	loc.Visited = true
	w.Locations[target] = loc
	if current != nil {
		current.Link(dir, target)
	}
	loc.Link(dir.Opposite(), from)
	return loc, generated
}

// Fallback is the placeholder used when generation fails.
func Fallback(pos world.Coord) *world.Location {
	return &world.Location{
		Name:        fmt.Sprintf("Mysterious area %s", pos),
		Description: "A mysterious place that appeared suddenly.",
		Items:       []string{},
		Actors:      []string{},
		Exits:       map[world.Direction]*world.Coord{},
		ImagePrompt: "A mysterious location with undefined characteristics.",
		Visited:     true,
	}
}

// generatedLocation holds the fields kept from model output. Exits,
// items and actors are owned by the engine and ignored.
type generatedLocation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImagePrompt string `json:"image_prompt"`
}

// ParseLocation recovers a location from raw model output.
func ParseLocation(text string) (*world.Location, error) {
	doc, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var gen generatedLocation
	if err := json.Unmarshal([]byte(doc), &gen); err != nil {
		return nil, fmt.Errorf("failed to parse location: %w", err)
	}

	loc := &world.Location{
		Name:        strings.TrimSpace(gen.Name),
		Description: strings.TrimSpace(gen.Description),
		Items:       []string{},
		Actors:      []string{},
		Exits:       map[world.Direction]*world.Coord{},
		ImagePrompt: strings.TrimSpace(gen.ImagePrompt),
	}
	if loc.Name == "" {
		loc.Name = "Unknown Location"
	}
	if loc.Description == "" {
		loc.Description = "An unknown place."
	}
	if loc.ImagePrompt == "" {
		loc.ImagePrompt = "A mysterious location"
	}
	return loc, nil
}
