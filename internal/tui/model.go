package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/whiskerion/internal/chat"
	"github.com/diogo/whiskerion/internal/render"
	"github.com/diogo/whiskerion/internal/transcript"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	startedMsg struct {
		err error
	}
	replyMsg struct {
		reply string
		err   error
	}
)

// Model is the chat TUI. Everything it draws is a projection of the
// controller snapshot it last observed.
type Model struct {
	ctx  context.Context
	ctrl *chat.Controller

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	snap           chat.Snapshot
	ready          bool
	startErr       error
	feedback       string
	animationFrame int

	renderOpts render.Options
	copyText   func(string) error
	now        func() time.Time

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat TUI over a controller that has not been started yet
func NewChatModel(ctx context.Context, ctrl *chat.Controller, opts render.Options) Model {
	persona := ctrl.Persona()

	ta := textarea.New()
	ta.Placeholder = persona.Placeholder
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:        ctx,
		ctrl:       ctrl,
		textarea:   ta,
		spinner:    s,
		snap:       ctrl.Snapshot(),
		renderOpts: opts,
		copyText:   clipboard.WriteAll,
		now:        time.Now,
	}
}

// Init starts the session in the background
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.startSession(),
	)
}

func (m Model) startSession() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: m.ctrl.Start(m.ctx)}
	}
}

func (m Model) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.ctrl.Send(m.ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "enter":
			return m.submit()
		}

	case startedMsg:
		m.startErr = msg.err
		m.sync()
		if m.snap.Ready() {
			cmds = append(cmds, m.textarea.Focus())
		}

	case replyMsg:
		m.ctrl.Complete(msg.reply, msg.err)
		m.sync()
		cmds = append(cmds, m.textarea.Focus())

	case spinner.TickMsg:
		if m.snap.Awaiting || m.snap.Phase == chat.PhaseInitializing {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.snap.Awaiting {
			m.animationFrame++
			m.updateViewport()
			m.viewport.GotoBottom()
			cmds = append(cmds, animationTick())
		}
	}

	// Only KeyMsg reaches the textarea to prevent escape sequence leaks
	if !m.snap.InputDisabled() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: local commands first, then a round trip
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return m, tea.Quit
	case input == "/save" || strings.HasPrefix(input, "/save "):
		m.saveTranscript(strings.TrimSpace(strings.TrimPrefix(input, "/save")))
		m.textarea.Reset()
		return m, nil
	}

	text, ok := m.ctrl.Begin(input)
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.textarea.Blur()
	m.feedback = ""
	m.animationFrame = 0
	m.sync()

	return m, tea.Batch(
		m.sendMessage(text),
		m.spinner.Tick,
		animationTick(),
	)
}

// sync pulls a fresh snapshot and redraws the transcript pinned to the bottom
func (m *Model) sync() {
	m.snap = m.ctrl.Snapshot()
	if m.snap.InputDisabled() {
		m.textarea.Blur()
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) copyLastReply() {
	msg, ok := m.snap.LastBotMessage()
	if !ok {
		return
	}
	if err := m.copyText(msg.Text); err != nil {
		m.feedback = "Copy failed: " + err.Error()
		return
	}
	m.feedback = "Copied last reply to clipboard"
}

func (m *Model) saveTranscript(path string) {
	if path == "" {
		path = transcript.DefaultFileName(m.now())
	}
	persona := m.ctrl.Persona()
	meta := transcript.Meta{
		Title:      persona.Title,
		Persona:    persona.Name,
		Model:      m.ctrl.Model(),
		ExportedAt: m.now(),
	}
	if err := transcript.WriteFile(path, m.snap, meta); err != nil {
		m.feedback = "Save failed: " + err.Error()
		return
	}
	m.feedback = "Saved transcript to " + path
}

func (m *Model) resize() {
	contentWidth := m.width - 4

	headerHeight := lipgloss.Height(m.renderHeader(contentWidth))
	inputHeight := 4  // Input panel with border
	statusHeight := 1 // Status bar
	padding := 2      // Messages panel border

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth-2, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth - 2
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 6)
	m.updateViewport()
	m.viewport.GotoBottom()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4

	sections := []string{
		m.renderHeader(contentWidth),
		messagesAreaStyle.
			Width(contentWidth).
			Height(m.viewport.Height).
			Render(m.viewport.View()),
		inputPanelStyle.Width(contentWidth).Render(m.renderInput()),
		m.renderStatusBar(contentWidth),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	persona := m.ctrl.Persona()

	info := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("✦ "+persona.Title),
		subtitleStyle.Render(m.ctrl.Model()),
		hintStyle.Render(persona.Description),
	)
	content := lipgloss.JoinHorizontal(
		lipgloss.Center,
		portraitStyle.Render(render.PortraitASCII),
		info,
	)
	return headerStyle.Width(width).Render(content)
}

func (m Model) renderInput() string {
	switch {
	case m.snap.Awaiting:
		return hintStyle.Render("Waiting for the reply...")
	case m.snap.Phase == chat.PhaseInitializing:
		return loadingStyle.Render(m.spinner.View() + " Initializing...")
	case m.snap.Phase == chat.PhaseDisabled:
		return errorStyle.Render("Input disabled") + hintStyle.Render("  "+m.startHint())
	default:
		return lipgloss.JoinHorizontal(
			lipgloss.Top,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
}

func (m Model) startHint() string {
	if m.startErr == nil {
		return ""
	}
	return "(" + m.startErr.Error() + ")"
}

// renderLoadingAnimation renders the animated pending indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	stars := []string{"·", "✧", "✦", "★", "✦", "✧"}

	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	var trail strings.Builder
	for i := 0; i < 12; i++ {
		style := lipgloss.NewStyle().Foreground(gradientColors[(i+frame)%len(gradientColors)])
		trail.WriteString(style.Render(stars[(i+frame/2)%len(stars)]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(m.ctrl.Persona().Pending)

	return fmt.Sprintf("%s %s %s", spin, text, trail.String())
}

// renderStatusBar renders the shortcuts, or the last action feedback
func (m Model) renderStatusBar(width int) string {
	if m.feedback != "" {
		return statusBarStyle.Width(width).Align(lipgloss.Center).Render(feedbackStyle.Render(m.feedback))
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy"},
		{"/save", "Export"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	botLabel := botLabelStyle.Render("✦ " + m.ctrl.Persona().Title)

	for i, msg := range m.snap.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Sender == chat.SenderUser {
			label := userLabelStyle.Render("● You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			rendered := render.Reply(msg.Text, m.renderOpts.WithWidth(bubbleWidth-4))
			bubble := botBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(botLabel + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	// The pending block trails the transcript until the reply lands
	if m.snap.Awaiting {
		if len(m.snap.Messages) > 0 {
			content.WriteString("\n")
		}
		content.WriteString(botLabel + "\n" + pendingBubbleStyle.Width(bubbleWidth).Render(m.renderLoadingAnimation()))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(ctx context.Context, ctrl *chat.Controller, opts render.Options) error {
	m := NewChatModel(ctx, ctrl, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
