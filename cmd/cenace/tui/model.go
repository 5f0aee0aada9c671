package tuicmder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/references"
	"github.com/anmerino-pnd/proyectoCenace/pkg/render"
)

const (
	inputHeight = 3
	// header, two dividers, status and help
	chromeHeight = 5
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var filterCycle = []string{"None", "documentos", "tickets", "soluciones"}

type keyMap struct {
	Send       key.Binding
	Cancel     key.Binding
	Like       key.Binding
	New        key.Binding
	Next       key.Binding
	Prev       key.Binding
	Filter     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Cancel, k.Like, k.New, k.Next, k.Filter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Cancel, k.Like},
		{k.New, k.Next, k.Prev, k.Filter},
		{k.ScrollUp, k.ScrollDown, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
		Like:       key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "like")),
		New:        key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next conversation")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous conversation")),
		Filter:     key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "filter")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

type sendDoneMsg struct{ err error }

type opDoneMsg struct{ err error }

type model struct {
	ctx     context.Context
	ctrl    *chat.Controller
	md      render.Renderer
	apiBase string
	user    string

	entries       []chat.Entry
	conversations []backend.Conversation
	status        string
	busy          bool

	input      textarea.Model
	transcript viewport.Model
	spinner    spinner.Model
	keys       keyMap
	help       help.Model
	width      int
	height     int
}

func newModel(ctx context.Context, ctrl *chat.Controller, md render.Renderer, apiBase, user string) model {
	input := textarea.New()
	input.Placeholder = "Escribe tu pregunta…"
	input.ShowLineNumbers = false
	input.CharLimit = 4000
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	return model{
		ctx:        ctx,
		ctrl:       ctrl,
		md:         md,
		apiBase:    apiBase,
		user:       user,
		input:      input,
		transcript: viewport.New(0, 0),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
}

func (m model) Init() bubbletea.Cmd {
	return bubbletea.Batch(textarea.Blink, m.spinner.Tick, m.op(func() error {
		return m.ctrl.Login(m.ctx, m.user)
	}))
}

func (m model) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh(true)
		return m, nil

	case resetMsg:
		m.entries = nil
		m.refresh(true)
		return m, nil

	case entryAppendedMsg:
		m.entries = append(m.entries, msg.entry)
		m.refresh(true)
		return m, nil

	case entryUpdatedMsg:
		follow := m.transcript.AtBottom()
		for i := range m.entries {
			if m.entries[i].Seq == msg.entry.Seq {
				m.entries[i] = msg.entry
			}
		}
		m.refresh(follow)
		return m, nil

	case alertMsg:
		m.status = msg.text
		return m, nil

	case conversationsMsg:
		m.conversations = msg.conversations
		return m, nil

	case sendDoneMsg:
		m.busy = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.status = msg.err.Error()
		}
		m.refresh(true)
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy {
			m.refresh(m.transcript.AtBottom())
		}
		return m, cmd

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Cancel()
		return m, bubbletea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.busy {
			m.ctrl.Cancel()
			m.status = "respuesta cancelada"
		}
		return m, nil

	case key.Matches(msg, m.keys.Send):
		query := strings.TrimSpace(m.input.Value())
		if query == "" || m.busy {
			return m, nil
		}
		m.input.Reset()
		m.busy = true
		m.status = ""
		ctx, ctrl := m.ctx, m.ctrl
		return m, func() bubbletea.Msg {
			_, err := ctrl.SendMessage(ctx, query)
			return sendDoneMsg{err: err}
		}

	case key.Matches(msg, m.keys.Like):
		entry, found := m.lastAnswer()
		if !found {
			m.status = "no answer to mark yet"
			return m, nil
		}
		return m, m.op(func() error {
			return m.ctrl.Like(m.ctx, entry.MessageID, !entry.Liked)
		})

	case key.Matches(msg, m.keys.New):
		return m, m.op(func() error {
			_, err := m.ctrl.NewConversation(m.ctx, "")
			return err
		})

	case key.Matches(msg, m.keys.Next):
		return m.switchConversation(1)

	case key.Matches(msg, m.keys.Prev):
		return m.switchConversation(-1)

	case key.Matches(msg, m.keys.Filter):
		k, filter := m.ctrl.Retrieval()
		next := nextFilter(filter)
		m.ctrl.SetRetrieval(k, next)
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd bubbletea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// op runs fn off the event loop; the controller reports back through the
// program view.
func (m model) op(fn func() error) bubbletea.Cmd {
	return func() bubbletea.Msg {
		return opDoneMsg{err: fn()}
	}
}

func (m model) switchConversation(delta int) (bubbletea.Model, bubbletea.Cmd) {
	if len(m.conversations) == 0 {
		return m, nil
	}

	current := m.ctrl.Session().ConversationID()
	idx := 0
	for i, conv := range m.conversations {
		if conv.ConversationID == current {
			idx = (i + delta + len(m.conversations)) % len(m.conversations)
			break
		}
	}

	id := m.conversations[idx].ConversationID
	if id == current {
		return m, nil
	}
	m.status = ""
	return m, m.op(func() error {
		return m.ctrl.LoadHistory(m.ctx, id)
	})
}

func (m model) lastAnswer() (chat.Entry, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Likeable() {
			return m.entries[i], true
		}
	}
	return chat.Entry{}, false
}

func nextFilter(current string) string {
	if current == "" {
		current = "None"
	}
	for i, f := range filterCycle {
		if f == current {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return filterCycle[0]
}

func (m *model) layout() {
	m.input.SetWidth(m.width)
	m.help.Width = m.width
	m.transcript.Width = m.width
	m.transcript.Height = max(m.height-inputHeight-chromeHeight, 3)
}

func (m *model) refresh(follow bool) {
	m.transcript.SetContent(m.renderEntries())
	if follow {
		m.transcript.GotoBottom()
	}
}

func (m model) renderEntries() string {
	wrap := lipgloss.NewStyle()
	if m.width > 0 {
		wrap = wrap.Width(m.width)
	}

	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		switch {
		case e.Notice:
			blocks = append(blocks, wrap.Render(cliui.BotPrompt+cliui.DimStyle.Render(e.Text)))
		case e.Role == backend.RoleUser:
			blocks = append(blocks, wrap.Render(cliui.UserPrompt+e.Text))
		case e.Streaming:
			blocks = append(blocks, cliui.BotPrompt+"\n"+wrap.Render(e.Text)+m.spinner.View())
		default:
			blocks = append(blocks, cliui.BotPrompt+"\n"+m.renderAnswer(e, wrap))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m model) renderAnswer(e chat.Entry, wrap lipgloss.Style) string {
	var b strings.Builder

	text := wrap.Render(e.Text)
	if m.md != nil {
		if out, err := m.md.Render(e.Text); err == nil {
			text = strings.TrimRight(out, "\n")
		}
	}
	b.WriteString(text)

	for _, c := range references.DescribeAll(e.References, m.apiBase) {
		b.WriteString("\n  " + cliui.DimStyle.Render(strings.ReplaceAll(c.String(), "\n", "\n  ")))
	}
	if e.MessageID != "" {
		line := cliui.KeyStyle.Render("id:") + " " + cliui.IDStyle.Render(e.MessageID)
		if e.Liked {
			line += " " + cliui.LikedMark
		}
		b.WriteString("\n  " + line)
	}
	return b.String()
}

func (m model) View() string {
	divider := dividerStyle.Render(strings.Repeat("─", max(m.width, 1)))

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.transcript.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m model) header() string {
	title := "nueva conversación"
	current := m.ctrl.Session().ConversationID()
	for _, conv := range m.conversations {
		if conv.ConversationID == current {
			title = conv.DisplayTitle()
		}
	}

	k, filter := m.ctrl.Retrieval()
	if filter == "" {
		filter = "None"
	}
	return fmt.Sprintf("%s %s %s %s",
		titleStyle.Render("CENACE"),
		cliui.NameStyle.Render(m.user),
		mutedStyle.Render("· "+title+" ·"),
		mutedStyle.Render(fmt.Sprintf("k %d · filtro %s", k, filter)),
	)
}
