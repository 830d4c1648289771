package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/campus-quest/internal/handlers"
	"github.com/jwebster45206/campus-quest/pkg/campus"
	"github.com/jwebster45206/campus-quest/pkg/game"
	"github.com/jwebster45206/campus-quest/pkg/progression"
	"github.com/jwebster45206/campus-quest/pkg/puzzle"
)

const (
	PlaceHolderText = "Type a command (help for a list)..."

	diceFrames    = 20
	diceFrameTime = 80 * time.Millisecond
)

type entryKind int

const (
	entryNarration entryKind = iota
	entryUser
	entrySystem
	entryEvent
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api    *apiClient
	gameID uuid.UUID
	campus *campus.Campus
	state  progression.Snapshot
	scene  *game.Scene

	transcript   []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	busy         bool

	// Dice animation; only runs once the API has returned the real roll.
	dice      *game.Result
	diceFrame int
	diceFaces [2]int
	faces     puzzle.Roller

	showQuitModal bool
}

type sceneMsg struct {
	scene *game.Scene
	err   error
}

type resultMsg struct {
	result *game.Result
	err    error
}

type hintMsg struct {
	hint string
	err  error
}

type gameMsg struct {
	game *handlers.GameResponse
	err  error
}

type eventsMsg struct {
	events []string
	err    error
}

type diceFrameMsg struct{}

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

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

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
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(api *apiClient, g *handlers.GameResponse, c *campus.Campus) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	m := ConsoleUI{
		api:          api,
		gameID:       g.ID,
		campus:       c,
		state:        g.State,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: viewport.New(20, 20),
		faces:        puzzle.NewRandomRoller(),
	}
	m.add(entrySystem, "You are a freshman. Pass every trial on campus to earn your admission. Type help for commands.")
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.visit(m.campus.OpeningLocation))
}

func (m *ConsoleUI) add(kind entryKind, text string) {
	m.transcript = append(m.transcript, entry{kind: kind, text: text})
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - chatWidth - 6
		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 6
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			m.add(entryUser, input)
			cmd := m.handleInput(input)
			m.refresh()
			return m, cmd
		}

	case sceneMsg:
		m.busy = false
		if msg.err != nil {
			m.add(entryError, msg.err.Error())
		} else {
			m.scene = msg.scene
			m.add(entryNarration, describeScene(msg.scene))
		}
		m.refresh()
		return m, m.refreshGame()

	case resultMsg:
		if msg.err != nil {
			m.busy = false
			m.add(entryError, msg.err.Error())
			m.refresh()
			return m, nil
		}
		m.state = msg.result.State
		if msg.result.Dice != nil {
			m.dice = msg.result
			m.diceFrame = 0
			m.refresh()
			return m, diceTick()
		}
		m.busy = false
		m.addResult(msg.result)
		m.refresh()
		return m, m.drainEvents()

	case diceFrameMsg:
		if m.dice == nil {
			return m, nil
		}
		m.diceFrame++
		if m.diceFrame < diceFrames {
			m.diceFaces = [2]int{m.faces.Roll(), m.faces.Roll()}
			m.refresh()
			return m, diceTick()
		}
		res := m.dice
		m.dice = nil
		m.busy = false
		m.add(entrySystem, fmt.Sprintf("🎲 You: %d   Opponent: %d", res.Dice.Player, res.Dice.Opponent))
		m.addResult(res)
		m.refresh()
		return m, m.drainEvents()

	case hintMsg:
		m.busy = false
		if msg.err != nil {
			m.add(entryError, msg.err.Error())
		} else {
			m.add(entrySystem, msg.hint)
		}
		m.refresh()

	case gameMsg:
		if msg.err == nil && msg.game != nil {
			m.state = msg.game.State
			m.refresh()
		}

	case eventsMsg:
		if msg.err == nil {
			for _, e := range msg.events {
				m.add(entryEvent, e)
			}
			m.refresh()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *ConsoleUI) handleInput(input string) tea.Cmd {
	c, err := parseCommand(input)
	if err != nil {
		m.add(entryError, err.Error())
		return nil
	}

	switch c.kind {
	case cmdHelp:
		m.add(entrySystem, helpText)
		return nil
	case cmdInv:
		m.add(entrySystem, inventoryText(m.state))
		return nil
	case cmdCopy:
		if err := clipboard.WriteAll(m.gameID.String()); err != nil {
			m.add(entryError, "Could not copy to clipboard: "+err.Error())
		} else {
			m.add(entrySystem, "Game ID copied to clipboard.")
		}
		return nil
	case cmdQuit:
		m.showQuitModal = true
		return nil
	}

	m.busy = true
	switch c.kind {
	case cmdGo:
		return m.visit(c.arg)
	case cmdHint:
		return m.hint()
	case cmdFloor:
		return m.act(game.ActionFloor, handlers.ActionRequest{Floor: c.floor})
	case cmdCode:
		return m.act(game.ActionCode, handlers.ActionRequest{Answer: c.arg})
	case cmdRoll:
		return m.act(game.ActionSquash, handlers.ActionRequest{})
	case cmdEscort:
		accept := c.accept
		return m.act(game.ActionEscort, handlers.ActionRequest{Accept: &accept})
	case cmdDecrypt:
		return m.act(game.ActionDecrypt, handlers.ActionRequest{Answer: c.arg})
	case cmdBell:
		return m.act(game.ActionBell, handlers.ActionRequest{Choice: c.arg})
	case cmdSummon:
		return m.act(game.ActionSummon, handlers.ActionRequest{})
	}
	m.busy = false
	return nil
}

func (m *ConsoleUI) addResult(res *game.Result) {
	m.add(entryNarration, res.Message)
	if res.Hint != "" {
		m.add(entrySystem, res.Hint)
	}
}

func describeScene(s *game.Scene) string {
	var b strings.Builder
	b.WriteString(s.Name)
	if s.Subtitle != "" {
		b.WriteString(" · " + s.Subtitle)
	}
	b.WriteString("\n" + s.Description)
	if s.Status != "" {
		b.WriteString("\n\n" + s.Status)
	}
	if s.Prompt != "" {
		b.WriteString("\n\n" + s.Prompt)
	}
	for _, key := range []string{"A", "B", "C"} {
		if v, ok := s.Choices[key]; ok {
			b.WriteString(fmt.Sprintf("\n  %s) %s", key, v))
		}
	}
	return b.String()
}

func inventoryText(s progression.Snapshot) string {
	if len(s.Inventory) == 0 {
		return "Your bag is empty."
	}
	var b strings.Builder
	b.WriteString("Inventory:")
	for _, item := range s.Inventory {
		b.WriteString("\n• " + item.Label())
	}
	return b.String()
}

func (m ConsoleUI) visit(location string) tea.Cmd {
	return func() tea.Msg {
		scene, err := m.api.visit(m.gameID, location)
		return sceneMsg{scene, err}
	}
}

func (m ConsoleUI) act(action game.Action, req handlers.ActionRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := m.api.act(m.gameID, action, req)
		return resultMsg{res, err}
	}
}

func (m ConsoleUI) hint() tea.Cmd {
	return func() tea.Msg {
		h, err := m.api.hint(m.gameID)
		return hintMsg{h, err}
	}
}

func (m ConsoleUI) refreshGame() tea.Cmd {
	return func() tea.Msg {
		g, err := m.api.getGame(m.gameID)
		return gameMsg{g, err}
	}
}

func (m ConsoleUI) drainEvents() tea.Cmd {
	return func() tea.Msg {
		events, err := m.api.drainEvents(m.gameID)
		return eventsMsg{events, err}
	}
}

func diceTick() tea.Cmd {
	return tea.Tick(diceFrameTime, func(time.Time) tea.Msg {
		return diceFrameMsg{}
	})
}

// refresh rebuilds both panels for the current width.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	width := m.chatViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(m.campus.Name)) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.transcript {
		text := wordwrap.String(e.text, width)
		switch e.kind {
		case entryUser:
			content.WriteString(userStyle.Render("> " + text))
		case entrySystem:
			content.WriteString(promptStyle.Render(text))
		case entryEvent:
			content.WriteString(eventStyle.Render("★ " + text))
		case entryError:
			content.WriteString(errorStyle.Render(text))
		default:
			content.WriteString(narratorStyle.Render(text))
		}
		content.WriteString("\n\n")
	}

	if m.dice != nil {
		content.WriteString(loadingStyle.Render(fmt.Sprintf("🎲 You: %d   Opponent: %d", m.diceFaces[0], m.diceFaces[1])))
		content.WriteString("\n")
	} else if m.busy {
		content.WriteString(loadingStyle.Render("..."))
		content.WriteString("\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
	m.metaViewport.SetContent(m.writeMetadata())
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("PROGRESS") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(m.gameID.String()[:8] + "...\n\n")

	if m.scene != nil {
		content.WriteString("Location:\n" + m.scene.Name + "\n\n")
	}

	content.WriteString("Tokens:\n")
	for _, item := range progression.RequiredTokens() {
		mark := "○"
		if m.state.Has(item) {
			mark = "●"
		}
		content.WriteString(fmt.Sprintf("%s %s\n", mark, item.Label()))
	}

	content.WriteString("\nOpen places:\n")
	for _, key := range campus.LocationKeys {
		if !m.state.IsUnlocked(key) {
			continue
		}
		name := key
		if loc, ok := m.campus.Location(key); ok {
			name = loc.Name
		}
		content.WriteString("• " + name + "\n")
	}

	if m.state.SummonCompleted {
		content.WriteString("\n" + eventStyle.Render("Magic circle active") + "\n")
	}

	content.WriteString("\nCtrl+C: Quit\nhelp: Commands\n")
	return content.String()
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
				m.textarea.Focus()
				return m, textarea.Blink
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
	content.WriteString("Your progress is not saved. Leave campus anyway?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
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
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
