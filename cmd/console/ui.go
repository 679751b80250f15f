package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/infinite-adventure/internal/agent"
	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/pkg/storage"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What do you do? A number picks a suggestion."
	metaDebugLines  = 8
)

type phase int

const (
	phaseSplash phase = iota
	phaseNaming
	phasePlaying
)

type entry struct {
	user bool
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game         *game.Game
	session      *game.Session
	state        *game.State
	history      []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	nameInput    textinput.Model
	phase        phase
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	status       string

	// Save selection state. Row 0 is "new world".
	saves        []storage.SaveInfo
	selectedSave int
	loadingSaves bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type savesLoadedMsg struct {
	saves []storage.SaveInfo
	err   error
}

type sessionOpenedMsg struct {
	session *game.Session
	err     error
}

type turnResultMsg struct {
	response *agent.Response
	err      error
}

type stateMsg struct {
	state *game.State
	err   error
}

// attemptMsg is sent by the runner before each try at a turn.
type attemptMsg struct {
	attempt int
	max     int
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(g *game.Game) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	ni := textinput.New()
	ni.Placeholder = "Name your world"
	ni.CharLimit = 80
	ni.Width = 40

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		game:         g,
		textarea:     ta,
		nameInput:    ni,
		chatViewport: chatVp,
		metaViewport: metaVp,
		phase:        phaseSplash,
		loadingSaves: true,
	}
}

func writeMetadata(st *game.State, debug []string, width int) string {
	var content strings.Builder
	w := st.World
	content.WriteString(titleStyle.Render("WORLD") + "\n")
	content.WriteString(st.Name + "\n\n")

	if loc, ok := w.CurrentLocation(); ok {
		content.WriteString("Location:\n")
		fmt.Fprintf(&content, "%s %s\n\n", loc.Name, w.CurrentPos)

		if exits := game.ExitLines(w, loc); len(exits) > 0 {
			content.WriteString("Exits:\n")
			for _, line := range exits {
				content.WriteString("• " + line + "\n")
			}
			content.WriteString("\n")
		}
	}

	content.WriteString("Inventory:\n")
	if names := w.ItemNames(w.Player.Inventory); len(names) > 0 {
		for _, name := range names {
			content.WriteString("• " + name + "\n")
		}
	} else {
		content.WriteString("Empty\n")
	}
	fmt.Fprintf(&content, "\nMoney: %d\n\n", w.Player.Money)

	content.WriteString("Map:\n")
	content.WriteString(game.Map(w) + "\n\n")

	if w.Combat.Active {
		fmt.Fprintf(&content, "Combat (round %d):\n", w.Combat.RoundNumber)
		for i, c := range w.Combat.Combatants {
			marker := "•"
			if i == w.Combat.CurrentTurnIndex {
				marker = "▶"
			}
			name := c.ID
			if c.IsPlayer {
				name = "You"
			} else if a, ok := w.Actors[c.ID]; ok {
				name = a.Name
			}
			fmt.Fprintf(&content, "%s %s %d/%d HP\n", marker, name, c.HP, c.MaxHP)
		}
		content.WriteString("\n")
	}

	if len(st.SuggestedActions) > 0 {
		content.WriteString("Suggestions:\n")
		for i, s := range st.SuggestedActions {
			fmt.Fprintf(&content, "%d. %s\n", i+1, s)
		}
		content.WriteString("\n")
	}

	content.WriteString("Debug log:\n")
	for _, line := range debug {
		content.WriteString(promptStyle.Render(wordwrap.String(line, max(width, 10))) + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• /north /south /east /west\n")
	content.WriteString("• /copy: Copy narrative\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

// writeChatContent builds the chat content for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("INFINITE ADVENTURE") + "\n\n")
	content.WriteString("Type what you do below. Move quickly with /north, /south, /east and /west.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, e := range m.history {
		if e.user {
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-6) + "\n\n")
			continue
		}
		content.WriteString(formatNarratorResponse(e.text, chatWidth) + "\n\n")
	}

	if m.loading {
		if m.status != "" {
			content.WriteString(loadingStyle.Render(m.status) + "\n")
		}
		content.WriteString(m.renderProgressBar())
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMeta() {
	if m.state == nil {
		return
	}
	debug := m.game.DebugLog().Tail(metaDebugLines)
	m.metaViewport.SetContent(writeMetadata(m.state, debug, m.metaViewport.Width))
}

func (m *ConsoleUI) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadSaves()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.phase != phasePlaying {
		return m.updateSplash(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeChatContent()
		m.writeMeta()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if handled, model, cmd := m.handleCommand(input); handled {
				return model, cmd
			}

			m.textarea.Reset()
			m.loading = true
			m.err = nil
			m.status = "Thinking..."
			m.progressTick = 0
			m.history = append(m.history, entry{user: true, text: input})
			m.writeChatContent()

			return m, tea.Batch(m.playTurn(input), progressTick())
		}

	case attemptMsg:
		m.status = fmt.Sprintf("Attempt %d/%d - Consulting the spirits...", msg.attempt, msg.max)
		m.writeChatContent()
		return m, nil

	case turnResultMsg:
		m.loading = false
		m.status = ""
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.history = append(m.history, entry{text: msg.response.Narrative})
		}
		m.writeChatContent()
		return m, m.refreshState()

	case stateMsg:
		if msg.err == nil && msg.state != nil {
			m.state = msg.state
			m.writeMeta()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func formatNarratorResponse(response string, width int) string {
	// Check if response already has a speaker prefix
	hasPrefix := false
	if idx := strings.Index(response, ":"); idx > 0 && idx <= 20 {
		speaker := response[:idx]
		if len(strings.Fields(speaker)) <= 2 {
			hasPrefix = true
		}
	}

	// If no prefix, we'll add "Narrator: " so reduce available width
	wrapWidth := width
	if !hasPrefix {
		wrapWidth = width - len(AgentName+": ")
	}

	wrappedResponse := wordwrap.String(response, wrapWidth)
	lines := strings.Split(wrappedResponse, "\n")
	formattedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			formattedLines = append(formattedLines, "")
			continue
		}

		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 {
			speaker := trimmed[:idx]
			rest := trimmed[idx+1:]
			if len(strings.Fields(speaker)) <= 2 {
				formattedLines = append(formattedLines, speakerStyle.Render(speaker+":")+rest)
				continue
			}
		}

		formattedLines = append(formattedLines, line)
	}

	result := strings.Join(formattedLines, "\n")
	if !hasPrefix {
		result = narratorStyle.Render(AgentName+": ") + result
	}
	return result
}

// handleCommand runs console-only commands. Movement commands are not
// handled here; they are turns.
func (m ConsoleUI) handleCommand(input string) (bool, tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /north, /south, /east, /west - Move one step
• /copy - Copy the last narrative to the clipboard
• /log - Show the whole debug log
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• Type the number of a suggestion to pick it
`
		m.history = append(m.history, entry{text: titleStyle.Render("Help:") + helpText})

	case "/copy":
		if m.state == nil {
			break
		}
		if err := clipboard.WriteAll(m.state.Narrative); err != nil {
			m.err = fmt.Errorf("copy failed: %w", err)
		} else {
			m.history = append(m.history, entry{text: "Copied the last narrative to the clipboard."})
		}

	case "/log":
		m.history = append(m.history, entry{text: "Debug log:\n" + strings.Join(m.game.DebugLog().Lines(), "\n")})

	default:
		return false, m, nil
	}

	m.textarea.Reset()
	m.writeChatContent()
	return true, m, nil
}

func (m ConsoleUI) playTurn(input string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		resp, err := s.Turn(context.Background(), input)
		return turnResultMsg{resp, err}
	}
}

func (m ConsoleUI) refreshState() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		st, err := s.State()
		return stateMsg{st, err}
	}
}

func (m ConsoleUI) loadSaves() tea.Cmd {
	g := m.game
	return func() tea.Msg {
		saves, err := g.List(context.Background())
		return savesLoadedMsg{saves, err}
	}
}

func (m ConsoleUI) createWorld(name string) tea.Cmd {
	g := m.game
	return func() tea.Msg {
		s, err := g.Create(context.Background(), name)
		return sessionOpenedMsg{s, err}
	}
}

func (m ConsoleUI) loadWorld(save storage.SaveInfo) tea.Cmd {
	g := m.game
	return func() tea.Msg {
		s, err := g.Load(context.Background(), save.ID)
		return sessionOpenedMsg{s, err}
	}
}

func (m ConsoleUI) updateSplash(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case savesLoadedMsg:
		m.loadingSaves = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.saves = msg.saves
		}

	case sessionOpenedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		st, err := msg.session.State()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.session = msg.session
		m.state = st
		m.history = []entry{{text: st.Narrative}}
		m.phase = phasePlaying
		m.err = nil
		m.layout()
		m.ready = m.width > 0
		m.writeChatContent()
		m.writeMeta()
		m.nameInput.Blur()
		return m, m.textarea.Focus()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		if m.loadingSaves || m.loading {
			return m, nil
		}
		if m.phase == phaseNaming {
			return m.updateNaming(msg)
		}

		switch msg.Type {
		case tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedSave > 0 {
				m.selectedSave--
			}
		case tea.KeyDown:
			if m.selectedSave < len(m.saves) {
				m.selectedSave++
			}
		case tea.KeyEnter:
			m.err = nil
			if m.selectedSave == 0 {
				m.phase = phaseNaming
				m.nameInput.Reset()
				return m, m.nameInput.Focus()
			}
			m.loading = true
			return m, m.loadWorld(m.saves[m.selectedSave-1])
		}
	}

	return m, nil
}

func (m ConsoleUI) updateNaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.phase = phaseSplash
		m.nameInput.Blur()
		m.nameInput.Reset()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			return m, nil
		}
		m.loading = true
		return m, m.createWorld(name)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.phase == phasePlaying {
					return m, m.textarea.Focus()
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSplash() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingSaves:
		content.WriteString(modalTitleStyle.Render("Loading Worlds..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we find your saved worlds..."))
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Opening World..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your adventure..."))
	case m.phase == phaseNaming:
		content.WriteString(modalTitleStyle.Render("Name Your World"))
		content.WriteString("\n\n")
		content.WriteString(m.nameInput.View())
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Enter to create, Esc to go back"))
	default:
		content.WriteString(modalTitleStyle.Render(game.WelcomeNarrative))
		content.WriteString("\n\n")

		rows := make([]string, 0, len(m.saves)+1)
		rows = append(rows, "+ New world")
		for _, s := range m.saves {
			rows = append(rows, fmt.Sprintf("%s (%s)", s.Name, s.UpdatedAt.Local().Format(time.DateTime)))
		}
		for i, row := range rows {
			if i == m.selectedSave {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + row))
			} else {
				content.WriteString(modalItemStyle.Render("  " + row))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	if m.err != nil {
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.phase != phasePlaying {
		return m.renderSplash()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	usable = min(max(usable, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
