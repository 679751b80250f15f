package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/infinite-adventure/internal/agent"
	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/internal/services"
	memstore "github.com/jwebster45206/infinite-adventure/internal/storage"
	"github.com/jwebster45206/infinite-adventure/pkg/storage"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func newTestUI(t *testing.T) ConsoleUI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := agent.NewRunner(agent.New(services.NewMockLLMAPI(), logger), 1, 0, logger)
	g := game.New(memstore.NewMemoryStorage(), runner, logger)
	t.Cleanup(g.Wait)
	return NewConsoleUI(g)
}

func TestWriteMetadata(t *testing.T) {
	w := world.NewWithStart()
	st := &game.State{
		Name:             "Glimmerdeep",
		World:            w,
		SuggestedActions: []string{"look around", "go north"},
	}

	out := writeMetadata(st, []string{"[12:00:00] Game initialized."}, 30)

	assert.Contains(t, out, "Glimmerdeep")
	assert.Contains(t, out, "Empty")
	assert.Contains(t, out, "Money: 0")
	assert.Contains(t, out, "Map:\n@\n")
	assert.Contains(t, out, "1. look around")
	assert.Contains(t, out, "2. go north")
	assert.Contains(t, out, "Game initialized.")
	assert.NotContains(t, out, "Combat (round")
}

func TestSplashNavigation(t *testing.T) {
	m := newTestUI(t)

	saves := []storage.SaveInfo{
		{ID: uuid.New(), Name: "Newest", UpdatedAt: time.Now()},
		{ID: uuid.New(), Name: "Older", UpdatedAt: time.Now().Add(-time.Hour)},
	}
	model, _ := m.Update(savesLoadedMsg{saves: saves})
	m = model.(ConsoleUI)
	require.False(t, m.loadingSaves)
	require.Len(t, m.saves, 2)

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = model.(ConsoleUI)
	assert.Equal(t, 0, m.selectedSave)

	for range 5 {
		model, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = model.(ConsoleUI)
	}
	assert.Equal(t, 2, m.selectedSave)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ConsoleUI)
	assert.True(t, m.loading)
	assert.NotNil(t, cmd)
}

func TestNewWorldFlow(t *testing.T) {
	m := newTestUI(t)
	model, _ := m.Update(savesLoadedMsg{})
	m = model.(ConsoleUI)

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ConsoleUI)
	require.Equal(t, phaseNaming, m.phase)

	// Esc goes back without quitting
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(ConsoleUI)
	assert.Equal(t, phaseSplash, m.phase)
	assert.False(t, m.showQuitModal)

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ConsoleUI)
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Ashfall")})
	m = model.(ConsoleUI)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ConsoleUI)
	require.True(t, m.loading)
	require.NotNil(t, cmd)

	opened, ok := cmd().(sessionOpenedMsg)
	require.True(t, ok)
	require.NoError(t, opened.err)

	model, _ = m.Update(opened)
	m = model.(ConsoleUI)
	assert.Equal(t, phasePlaying, m.phase)
	require.NotNil(t, m.state)
	assert.Equal(t, "Ashfall", m.state.Name)
	require.Len(t, m.history, 1)
	assert.Equal(t, "Created new world: 'Ashfall'. What do you want to do?", m.history[0].text)
}

func TestHandleCommand(t *testing.T) {
	m := newTestUI(t)

	handled, model, _ := m.handleCommand("/HELP")
	require.True(t, handled)
	assert.Len(t, model.(ConsoleUI).history, 1)

	handled, _, _ = m.handleCommand("/north")
	assert.False(t, handled, "movement is a turn, not a console command")

	handled, _, _ = m.handleCommand("open the chest")
	assert.False(t, handled)
}

func TestFormatNarratorResponse(t *testing.T) {
	out := formatNarratorResponse("The wind howls.", 80)
	assert.Contains(t, out, AgentName+": ")
	assert.Contains(t, out, "The wind howls.")

	out = formatNarratorResponse("Innkeeper: Welcome, traveler.", 80)
	assert.NotContains(t, out, AgentName+": ")
	assert.Contains(t, out, "Innkeeper:")
}
