package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/worldmap"
)

const PlaceHolderText = "look, go north, talk talk_guard, 1, attack, use potion..."

type lineKind int

const (
	lineNarration lineKind = iota
	lineInput
	lineError
	lineInfo
)

type logLine struct {
	kind lineKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	game         Game
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	world WorldSummary
	view  *state.View
	lines []logLine

	showQuitModal bool
	progressTick  int
}

type gameStartedMsg struct {
	world WorldSummary
	view  state.View
	err   error
}

type viewMsg struct {
	view state.View
	err  error
}

type mapMsg struct {
	snap worldmap.Snapshot
	err  error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
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
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, game Game) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		game:         game,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: metaVp,
		loading:      true,
	}
}

// writeMetadata renders the side panel: player, room options and quests.
func writeMetadata(v *state.View) string {
	var b strings.Builder
	if v == nil {
		b.WriteString(titleStyle.Render("GAME") + "\n\n")
		b.WriteString(loadingStyle.Render("Starting...") + "\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render(strings.ToUpper(v.Player.Name)) + "\n")
	b.WriteString(fmt.Sprintf("HP %d/%d  Gold %d\n", v.Player.Health, v.Player.MaxHealth, v.Player.Gold))
	if v.Player.XP > 0 {
		b.WriteString(fmt.Sprintf("XP %d\n", v.Player.XP))
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render(v.Room.Name) + "\n")
	switch {
	case v.Combat != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s %d/%d", v.Combat.Enemy, v.Combat.EnemyHP, v.Combat.EnemyMaxHP)) + "\n")
		b.WriteString("• attack\n• use <item>\n• flee\n")
	case v.Dialogue != nil:
		b.WriteString(speakerStyle.Render(state.Label(v.Dialogue.NPC)+":") + "\n")
		for i, r := range v.Dialogue.Responses {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r))
		}
	default:
		for _, a := range v.Room.Actions {
			b.WriteString(fmt.Sprintf("• %s (%s)\n", a.Label, a.ID))
		}
		if len(v.Room.Exits) > 0 {
			names := make([]string, 0, len(v.Room.Exits))
			for _, e := range v.Room.Exits {
				names = append(names, e.Name)
			}
			b.WriteString("Exits: " + strings.Join(names, ", ") + "\n")
		}
		if len(v.Room.Items) > 0 {
			b.WriteString("Here: " + strings.Join(v.Room.Items, ", ") + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("Inventory:\n")
	if len(v.Player.Inventory) == 0 {
		b.WriteString("Empty\n")
	}
	for _, it := range v.Player.Inventory {
		line := "• " + it.Name
		if it.Count > 1 {
			line += fmt.Sprintf(" x%d", it.Count)
		}
		if it.Equipped {
			line += " (equipped)"
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if len(v.Quests) > 0 {
		b.WriteString("Quests:\n")
		for _, q := range v.Quests {
			b.WriteString(fmt.Sprintf("• %s [%s]\n", q.Title, q.State))
			for _, o := range q.Objectives {
				b.WriteString(fmt.Sprintf("  - %s %s\n", o.Description, o.Progress))
			}
		}
		b.WriteString("\n")
	}
	if len(v.AvailableQuests) > 0 {
		b.WriteString("Offered:\n")
		for _, q := range v.AvailableQuests {
			b.WriteString(fmt.Sprintf("• %s (accept %s)\n", q.Title, q.ID))
		}
	}
	return b.String()
}

// renderMap lists what the player has discovered on a map.
func renderMap(snap worldmap.Snapshot) string {
	var b strings.Builder
	b.WriteString("Map " + snap.MapID + ":\n")
	if len(snap.Pins) == 0 {
		b.WriteString("Nothing discovered yet.\n")
		return b.String()
	}
	for _, p := range snap.Pins {
		b.WriteString(fmt.Sprintf("• %s (%g, %g)\n", p.DisplayName, p.Position.X, p.Position.Y))
	}
	for _, p := range snap.Paths {
		b.WriteString(fmt.Sprintf("  %s ~ %s\n", p.FromLocationID, p.ToLocationID))
	}
	return b.String()
}

func formatLine(l logLine, width int) string {
	if width < 10 {
		width = 10
	}
	switch l.kind {
	case lineInput:
		return userStyle.Render("> ") + wordwrap.String(l.text, width-2)
	case lineError:
		return errorStyle.Render(wordwrap.String(l.text, width))
	case lineInfo:
		return promptStyle.Render(wordwrap.String(l.text, width))
	}
	return narratorStyle.Render(wordwrap.String(l.text, width))
}

// writeLogContent rebuilds the log for the current viewport width
func (m *ConsoleUI) writeLogContent() {
	width := m.logViewport.Width - 6

	var content strings.Builder
	title := "QUEST ENGINE"
	if m.world.Name != "" {
		title = strings.ToUpper(m.world.Name)
	}
	content.WriteString(titleStyle.Render(title) + "\n\n")
	if m.world.Description != "" {
		content.WriteString(wordwrap.String(m.world.Description, width) + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width, 1))) + "\n\n")

	for _, l := range m.lines {
		content.WriteString(formatLine(l, width) + "\n\n")
	}
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m *ConsoleUI) appendMessages(msgs []string) {
	for _, msg := range msgs {
		m.lines = append(m.lines, logLine{kind: lineNarration, text: msg})
	}
}

// lastNarration returns the most recent narration line for /copy.
func (m *ConsoleUI) lastNarration() string {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if m.lines[i].kind == lineNarration {
			return m.lines[i].text
		}
	}
	return ""
}

func (m *ConsoleUI) layout() {
	logWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - logWidth - 6

	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(logWidth - 4)
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.startGame(), progressTick())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeLogContent()
		m.metaViewport.SetContent(writeMetadata(m.view))

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
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleSlash(input)
			}

			m.lines = append(m.lines, logLine{kind: lineInput, text: input})
			m.loading = true
			m.progressTick = 0
			m.writeLogContent()
			return m, tea.Batch(m.send(input), progressTick())
		}

	case gameStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.lines = append(m.lines, logLine{kind: lineError, text: "Error: " + msg.err.Error()})
		} else {
			m.world = msg.world
			m.view = &msg.view
			m.appendMessages(msg.view.Messages)
			m.lines = append(m.lines, logLine{kind: lineInfo, text: "Type /help for commands."})
		}
		m.writeLogContent()
		m.metaViewport.SetContent(writeMetadata(m.view))

	case viewMsg:
		m.loading = false
		if msg.err != nil {
			m.lines = append(m.lines, logLine{kind: lineError, text: msg.err.Error()})
		} else {
			m.view = &msg.view
			m.appendMessages(msg.view.Messages)
			m.metaViewport.SetContent(writeMetadata(m.view))
		}
		m.writeLogContent()

	case mapMsg:
		m.loading = false
		if msg.err != nil {
			m.lines = append(m.lines, logLine{kind: lineError, text: "Map: " + msg.err.Error()})
		} else {
			m.lines = append(m.lines, logLine{kind: lineInfo, text: renderMap(msg.snap)})
		}
		m.writeLogContent()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLogContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleSlash(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")

	switch strings.ToLower(name) {
	case "/help":
		m.lines = append(m.lines, logLine{kind: lineInfo, text: `Commands:
look | go <exit> | talk <action> | <n> to answer | take <item>
attack | use <item> | flee | equip <item>
accept <quest> | turn in <quest> | abandon <quest>
/map [id] - show discovered places
/copy - copy the last narration
/quit - leave the game`})
	case "/map":
		mapID := strings.TrimSpace(arg)
		if mapID == "" {
			mapID = m.config.MapID
		}
		m.loading = true
		m.writeLogContent()
		return m, tea.Batch(m.loadMap(mapID), progressTick())
	case "/copy":
		text := m.lastNarration()
		if err := clipboard.WriteAll(text); err != nil {
			m.lines = append(m.lines, logLine{kind: lineError, text: "Copy failed: " + err.Error()})
		} else {
			m.lines = append(m.lines, logLine{kind: lineInfo, text: "Copied."})
		}
	case "/quit":
		m.showQuitModal = true
		return m, nil
	default:
		m.lines = append(m.lines, logLine{kind: lineError, text: "Unknown command " + name})
	}
	m.writeLogContent()
	return m, nil
}

func (m ConsoleUI) startGame() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		w, err := m.game.World(ctx)
		if err != nil {
			return gameStartedMsg{err: err}
		}
		v, err := m.game.Start(ctx)
		return gameStartedMsg{world: w, view: v, err: err}
	}
}

func (m ConsoleUI) send(line string) tea.Cmd {
	return func() tea.Msg {
		v, err := m.game.Send(context.Background(), line)
		return viewMsg{view: v, err: err}
	}
}

func (m ConsoleUI) loadMap(mapID string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.game.Map(context.Background(), mapID)
		return mapMsg{snap: snap, err: err}
	}
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
	content.WriteString("Are you sure you want to quit your adventure?")
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

	logWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(logWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

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
