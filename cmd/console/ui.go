package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const PlaceHolderText = "What do you do?"

var titleCaser = cases.Title(language.English)

// setupPhase tracks the setup modal's progression: pick a world, wait for
// the instance, pick an actor.
type setupPhase int

const (
	phaseWorlds setupPhase = iota
	phaseCreating
	phaseActors
)

// storyEntry is one line of the console's local transcript.
type storyEntry struct {
	role    string // "user", "narrator", "event", "error"
	content string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	instance     *Instance
	actor        string
	view         *viewState
	history      []storyEntry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Setup modal state
	showSetupModal bool
	phase          setupPhase
	worlds         []string
	worldMap       map[string]string
	selectedWorld  int
	loadingWorlds  bool
	actors         []string
	selectedActor  int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

// viewState is the last projected view, kept for the metadata panel.
type viewState struct {
	room     string
	presence string
	exits    []string
	items    []string
	carried  []string
	equipped []string
	others   []string
}

type worldsLoadedMsg struct {
	worlds   []string
	worldMap map[string]string
	err      error
}

type instanceCreatedMsg struct {
	instance *Instance
	err      error
}

type turnMsg struct {
	result *TurnResult
	err    error
}

type viewMsg struct {
	result *TurnResult // only View is populated
	err    error
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

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // grey

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

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		ready:          false,
		showSetupModal: true,
		loadingWorlds:  true,
		phase:          phaseWorlds,
	}
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD") + "\n\n")

	if m.instance != nil {
		content.WriteString("Instance:\n")
		content.WriteString(m.instance.ID.String()[:8] + "...\n\n")

		content.WriteString("Seed:\n")
		content.WriteString(m.instance.Seed + "\n\n")

		content.WriteString("Turns:\n")
		content.WriteString(fmt.Sprintf("%d taken\n\n", len(m.instance.Turns)))
	}

	content.WriteString("Playing as:\n")
	content.WriteString(m.actor + "\n\n")

	if m.view != nil {
		content.WriteString(titleStyle.Render(titleCaser.String(m.view.room)) + "\n")
		if m.view.presence != "" {
			content.WriteString(m.view.presence + "\n")
		}
		content.WriteString("\n")

		writeMetaList(&content, "Exits", m.view.exits)
		writeMetaList(&content, "Here", m.view.items)
		writeMetaList(&content, "Carried", m.view.carried)
		writeMetaList(&content, "Equipped", m.view.equipped)
		writeMetaList(&content, "Others", m.view.others)
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /look: Refresh view\n")
	content.WriteString("• /copy: Copy narration\n")

	return content.String()
}

func writeMetaList(content *strings.Builder, heading string, entries []string) {
	if len(entries) == 0 {
		return
	}
	content.WriteString(heading + ":\n")
	for _, e := range entries {
		content.WriteString("• " + e + "\n")
	}
	content.WriteString("\n")
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	worldName := ""
	if m.instance != nil && m.instance.State != nil {
		worldName = titleCaser.String(m.instance.State.Name)
	}
	content.WriteString(titleStyle.Render(worldName) + "\n\n")
	content.WriteString("Type what you do and press Enter. The world answers.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, entry := range m.history {
		switch entry.role {
		case "user":
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(entry.content, chatWidth-6) + "\n\n")
		case "narrator":
			content.WriteString(narratorStyle.Render(wordwrap.String(entry.content, chatWidth)) + "\n\n")
		case "event":
			content.WriteString(eventStyle.Render(wordwrap.String("· "+entry.content, chatWidth)) + "\n")
		case "error":
			content.WriteString(errorStyle.Render(wordwrap.String(entry.content, chatWidth)) + "\n\n")
		}
	}

	// If currently loading, add the progress bar
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showSetupModal {
		return m.loadWorlds()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle setup modal first
	if m.showSetupModal {
		return m.updateSetupModal(msg)
	}

	// Handle quit modal second
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
		// Pass mouse events to all components; each ignores events
		// outside its bounds.
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.ready = true

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

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0 // Reset progress animation

			m.history = append(m.history, storyEntry{role: "user", content: input})
			m.writeChatContent()

			return m, tea.Batch(m.sendTurn(input), progressTick())
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			if rejected, ok := msg.err.(*rejectedError); ok {
				// A rejected turn is part of play: the world stayed as it
				// was and explains itself.
				for _, problem := range rejected.messages {
					m.history = append(m.history, storyEntry{role: "event", content: problem})
				}
				m.history = append(m.history, storyEntry{role: "narrator", content: "Nothing happens."})
			} else {
				m.err = msg.err
				m.history = append(m.history, storyEntry{role: "error", content: "Error: " + msg.err.Error()})
			}
			m.writeChatContent()
			return m, nil
		}

		for _, event := range msg.result.Turn.Events {
			m.history = append(m.history, storyEntry{role: "event", content: event})
		}
		m.history = append(m.history, storyEntry{role: "narrator", content: msg.result.Turn.Narration})
		if m.instance != nil {
			m.instance.Turns = append(m.instance.Turns, *msg.result.Turn)
			m.instance.State = msg.result.Turn.State
		}
		m.applyView(msg.result)
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil

	case viewMsg:
		if msg.err == nil && msg.result != nil {
			m.applyView(msg.result)
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()     // Refresh the chat content to update the progress bar
			return m, progressTick() // Continue the animation
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resizePanels() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// applyView folds the projected view into the metadata panel state.
func (m *ConsoleUI) applyView(result *TurnResult) {
	if result == nil || result.View == nil {
		return
	}
	v := result.View
	vs := &viewState{
		room:     v.Room.Name,
		presence: v.Presence,
		exits:    v.Room.Exits,
	}
	for _, it := range v.Room.Items {
		vs.items = append(vs.items, it.Name)
	}
	for _, it := range v.Carried {
		vs.carried = append(vs.carried, it.Name)
	}
	for _, it := range v.Equipped {
		vs.equipped = append(vs.equipped, it.Name)
	}
	for _, o := range v.Others {
		vs.others = append(vs.others, o.Name)
	}
	m.view = vs
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /look - Refresh your view of the room
• /copy - Copy the last narration to the clipboard
• Ctrl+C - Quit

How to play:
• Type what you do and press Enter
• Take, drop, equip and combine items; move between rooms
• Be descriptive for better responses
`
		m.history = append(m.history, storyEntry{role: "event", content: strings.TrimSpace(helpText)})
		m.writeChatContent()

	case "/look":
		return m, m.refreshView()

	case "/copy":
		narration := ""
		for i := len(m.history) - 1; i >= 0; i-- {
			if m.history[i].role == "narrator" {
				narration = m.history[i].content
				break
			}
		}
		if narration == "" {
			m.history = append(m.history, storyEntry{role: "event", content: "Nothing to copy yet."})
		} else if err := clipboard.WriteAll(narration); err != nil {
			m.history = append(m.history, storyEntry{role: "error", content: "Copy failed: " + err.Error()})
		} else {
			m.history = append(m.history, storyEntry{role: "event", content: "Narration copied to clipboard."})
		}
		m.writeChatContent()
	}

	return m, nil
}

func (m ConsoleUI) sendTurn(input string) tea.Cmd {
	return func() tea.Msg {
		result, err := runTurn(m.client, m.config.APIBaseURL, m.instance.ID, m.actor, input)
		return turnMsg{result, err}
	}
}

func (m ConsoleUI) refreshView() tea.Cmd {
	return func() tea.Msg {
		view, err := getView(m.client, m.config.APIBaseURL, m.instance.ID, m.actor)
		if err != nil {
			return viewMsg{nil, err}
		}
		return viewMsg{&TurnResult{View: view}, nil}
	}
}

func (m ConsoleUI) loadWorlds() tea.Cmd {
	return func() tea.Msg {
		names, worldMap, err := listWorlds(m.client, m.config.APIBaseURL)
		return worldsLoadedMsg{names, worldMap, err}
	}
}

func (m ConsoleUI) createInstanceFromWorld(worldFile string) tea.Cmd {
	return func() tea.Msg {
		inst, err := createInstance(m.client, m.config.APIBaseURL, worldFile)
		return instanceCreatedMsg{inst, err}
	}
}

func (m ConsoleUI) updateSetupModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case worldsLoadedMsg:
		m.loadingWorlds = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.worlds = msg.worlds
			m.worldMap = msg.worldMap
		}

	case instanceCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseWorlds
			return m, nil
		}
		m.instance = msg.instance

		var actors []string
		if msg.instance.State != nil {
			for name := range msg.instance.State.Players {
				actors = append(actors, name)
			}
		}
		sort.Strings(actors)
		m.actors = actors
		m.selectedActor = 0

		if len(actors) == 1 {
			return m.beginPlay(actors[0])
		}
		m.phase = phaseActors
		return m, nil

	case tea.KeyMsg:
		if m.loadingWorlds || m.phase == phaseCreating {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.phase == phaseActors {
				if m.selectedActor > 0 {
					m.selectedActor--
				}
			} else if m.selectedWorld > 0 {
				m.selectedWorld--
			}
		case tea.KeyDown:
			if m.phase == phaseActors {
				if m.selectedActor < len(m.actors)-1 {
					m.selectedActor++
				}
			} else if m.selectedWorld < len(m.worlds)-1 {
				m.selectedWorld++
			}
		case tea.KeyEnter:
			if m.phase == phaseActors {
				if len(m.actors) > 0 {
					return m.beginPlay(m.actors[m.selectedActor])
				}
				return m, nil
			}
			if len(m.worlds) > 0 {
				worldName := m.worlds[m.selectedWorld]
				m.phase = phaseCreating
				return m, m.createInstanceFromWorld(m.worldMap[worldName])
			}
		}
	}

	return m, nil
}

// beginPlay closes the setup modal and enters the main game for the
// chosen actor.
func (m ConsoleUI) beginPlay(actor string) (tea.Model, tea.Cmd) {
	m.actor = actor
	m.showSetupModal = false
	if m.width > 0 && m.height > 0 {
		m.resizePanels()
	}
	m.writeChatContent()
	m.metaViewport.SetContent(m.writeMetadata())
	m.textarea.Focus()
	m.ready = true
	return m, tea.Batch(textarea.Blink, m.refreshView())
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
				if m.showSetupModal {
					return m, nil
				}
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
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the world?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSetupModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingWorlds:
		content.WriteString(modalTitleStyle.Render("Loading Worlds..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available worlds..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Setup failed: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.phase == phaseCreating:
		content.WriteString(modalTitleStyle.Render("Creating Instance..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Building the world..."))
	case m.phase == phaseActors:
		content.WriteString(modalTitleStyle.Render("Choose Your Character"))
		content.WriteString("\n\n")
		for i, actor := range m.actors {
			if i == m.selectedActor {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", titleCaser.String(actor))))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", titleCaser.String(actor))))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	default:
		content.WriteString(modalTitleStyle.Render("Select a World"))
		content.WriteString("\n\n")
		for i, world := range m.worlds {
			if i == m.selectedWorld {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", titleCaser.String(world))))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", titleCaser.String(world))))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSetupModal {
		return m.renderSetupModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"", // Add empty line for spacing
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
