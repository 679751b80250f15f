package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/pkg/storage"
)

const (
	wrapWidth = 100
	tailLines = 5
)

type phase int

const (
	phaseSplash phase = iota
	phaseNaming
	phasePlaying
)

func (p phase) String() string {
	switch p {
	case phaseSplash:
		return "SplashScreen"
	case phaseNaming:
		return "NamingWorld"
	default:
		return "WaitingForInput"
	}
}

// console is the line-oriented debug front end. Every loop prints the full
// state, reads one line, and applies it.
type console struct {
	game    *game.Game
	in      *bufio.Scanner
	out     io.Writer
	phase   phase
	saves   []storage.SaveInfo
	name    string
	session *game.Session
}

func newConsole(g *game.Game, in io.Reader, out io.Writer) *console {
	return &console{
		game: g,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

func (c *console) run(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== LLM Debug Mode ===")
	fmt.Fprintln(c.out, "Special commands: /north, /south, /east, /west, /exit")
	fmt.Fprintln(c.out, "Type any text to interact with the game.")
	fmt.Fprintln(c.out)

	if err := c.refreshSaves(ctx); err != nil {
		return err
	}

	for {
		if err := c.printState(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "\n> ")

		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		}
		input := strings.TrimSpace(c.in.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			fmt.Fprintln(c.out, "Exiting debug mode.")
			return nil
		}

		var err error
		switch c.phase {
		case phaseSplash:
			err = c.splash(ctx, input)
		case phaseNaming:
			err = c.naming(ctx, input)
		default:
			err = c.play(ctx, input)
		}
		if err != nil {
			return err
		}
	}
}

func (c *console) refreshSaves(ctx context.Context) error {
	saves, err := c.game.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list worlds: %w", err)
	}
	c.saves = saves
	return nil
}

func (c *console) splash(ctx context.Context, input string) error {
	switch input {
	case "new", "n":
		c.phase = phaseNaming
		c.name = ""
		return nil
	case "load", "l":
		if len(c.saves) == 0 {
			fmt.Fprintln(c.out, "No saved worlds. Use 'new' to create one.")
			return nil
		}
		return c.open(ctx, c.saves[0])
	}

	idx, err := strconv.Atoi(input)
	if err != nil {
		fmt.Fprintln(c.out, "Use 'new', 'load', or a number to select a save.")
		return nil
	}
	if idx < 0 || idx >= len(c.saves) {
		fmt.Fprintf(c.out, "No save numbered %d.\n", idx)
		return nil
	}
	return c.open(ctx, c.saves[idx])
}

func (c *console) naming(ctx context.Context, input string) error {
	switch input {
	case "back", "cancel":
		c.phase = phaseSplash
		c.name = ""
		return nil
	case "enter", "done":
		if c.name == "" {
			fmt.Fprintln(c.out, "Type a name first.")
			return nil
		}
		s, err := c.game.Create(ctx, c.name)
		if err != nil {
			return fmt.Errorf("failed to create world: %w", err)
		}
		c.session = s
		c.phase = phasePlaying
		return nil
	}

	c.name = input
	fmt.Fprintf(c.out, "World name set to: '%s'. Type 'enter' to confirm or 'back' to cancel.\n", input)
	return nil
}

func (c *console) open(ctx context.Context, info storage.SaveInfo) error {
	s, err := c.game.Load(ctx, info.ID)
	if errors.Is(err, game.ErrWorldNotFound) {
		fmt.Fprintf(c.out, "World '%s' is gone.\n", info.Name)
		return c.refreshSaves(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load world: %w", err)
	}
	c.session = s
	c.phase = phasePlaying
	return nil
}

// play runs one turn. Turn errors are shown, not fatal.
func (c *console) play(ctx context.Context, input string) error {
	if _, err := c.session.Turn(ctx, input); err != nil {
		fmt.Fprintf(c.out, "Error processing input: %v\n", err)
	}
	return nil
}

func (c *console) printState() error {
	fmt.Fprintln(c.out)

	if c.phase != phasePlaying {
		fmt.Fprintln(c.out, "========================================")
		fmt.Fprintln(c.out, game.WelcomeNarrative)
		fmt.Fprintln(c.out, "========================================")
		if c.phase == phaseNaming {
			fmt.Fprintf(c.out, "\nWorld name: '%s'\n", c.name)
		} else {
			fmt.Fprintln(c.out, "\n--- Saved Worlds ---")
			if len(c.saves) == 0 {
				fmt.Fprintln(c.out, "  (none)")
			}
			for i, s := range c.saves {
				fmt.Fprintf(c.out, "  %d. %s (%s)\n", i, s.Name, s.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			}
		}
	} else {
		st, err := c.session.State()
		if err != nil {
			return err
		}
		fmt.Fprint(c.out, wordwrap.String(game.Describe(st, c.game.DebugLog().Tail(tailLines)), wrapWidth))
		fmt.Fprintf(c.out, "\n--- Map ---\n%s\n", game.Map(st.World))
	}

	fmt.Fprintln(c.out, "\n--- Game State ---")
	fmt.Fprintf(c.out, "State: %s\n", c.phase)
	if c.session != nil {
		fmt.Fprintf(c.out, "World: %s (%s)\n", c.session.Name(), c.session.ID())
	} else {
		fmt.Fprintln(c.out, "World: None")
	}
	return nil
}
