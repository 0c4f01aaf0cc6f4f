package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/story-editor/internal/editor"
	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/event"
	"github.com/jwebster45206/story-editor/pkg/eventset"
	"github.com/muesli/reflow/wordwrap"
)

const entriesWidth = 22

type pane int

const (
	paneEntries pane = iota
	paneRows
)

// ConsoleUI is the BubbleTea model that runs the editor.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ws       *editor.Workspace
	keys     keyMap
	focus    pane
	entry    int
	rows     []row
	selected int
	details  viewport.Model
	ready    bool
	width    int
	height   int
	status   string
	err      error

	// Quit confirmation state
	showQuitModal bool
}

type savedMsg struct {
	err error
}

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Switch    key.Binding
	Edit      key.Binding
	Commit    key.Binding
	Cancel    key.Binding
	Delete    key.Binding
	ShiftUp   key.Binding
	ShiftDown key.Binding
	Copy      key.Binding
	Save      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Switch:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Commit:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "commit")),
		Cancel:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		ShiftUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		ShiftDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy address")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.
				BorderForeground(lipgloss.Color("62"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	editingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

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

func NewConsoleUI(ws *editor.Workspace) ConsoleUI {
	m := ConsoleUI{
		ws:      ws,
		keys:    defaultKeys(),
		details: viewport.New(40, 10),
	}
	m.rebuild()
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m *ConsoleUI) currentEntry() *document.Entry {
	entries := m.ws.Document().Entries
	if m.entry < 0 || m.entry >= len(entries) {
		return nil
	}
	return entries[m.entry]
}

// currentSet is the working copy when the entry is being edited and the
// committed set otherwise.
func (m *ConsoleUI) currentSet() *eventset.EventSet {
	entry := m.currentEntry()
	if entry == nil {
		return nil
	}
	if s := m.ws.Session(entry); s != nil {
		return s.Working()
	}
	return entry.Set
}

func (m *ConsoleUI) currentRow() *row {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return &m.rows[m.selected]
}

func (m *ConsoleUI) rebuild() {
	set := m.currentSet()
	if set == nil {
		m.rows = nil
		m.selected = 0
	} else {
		m.rows = buildRows(set)
		if m.selected >= len(m.rows) {
			m.selected = len(m.rows) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
	}
	m.details.SetContent(m.renderDetails())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.details.Width = m.detailsWidth() - 4
		m.details.Height = m.height - 6
		m.ready = true
		m.details.SetContent(m.renderDetails())

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else {
			m.err = nil
			m.status = "Saved " + m.ws.Filename()
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	return m, cmd
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	entry := m.currentEntry()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.ws.Dirty() {
			m.showQuitModal = true
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Switch):
		if m.focus == paneEntries {
			m.focus = paneRows
		} else {
			m.focus = paneEntries
		}

	case key.Matches(msg, m.keys.Up):
		m.move(-1)

	case key.Matches(msg, m.keys.Down):
		m.move(1)

	case key.Matches(msg, m.keys.Save):
		return m, m.save()

	case entry == nil:
		m.status = "Document has no event sets"

	case key.Matches(msg, m.keys.Edit):
		s := m.ws.Edit(entry)
		m.status = fmt.Sprintf("Editing %s (session %s)", entry.Label(), s.ID.String()[:8])
		m.focus = paneRows

	case key.Matches(msg, m.keys.Commit):
		if m.ws.Commit(entry) {
			m.status = "Committed " + entry.Label()
		} else {
			m.status = "Nothing to commit"
		}

	case key.Matches(msg, m.keys.Cancel):
		if m.ws.Cancel(entry) {
			m.status = "Discarded changes to " + entry.Label()
		}

	case key.Matches(msg, m.keys.Copy):
		m.copyAddress()

	case key.Matches(msg, m.keys.Delete):
		m.deleteRow(entry)

	case key.Matches(msg, m.keys.ShiftUp):
		m.shiftRow(entry, -1)

	case key.Matches(msg, m.keys.ShiftDown):
		m.shiftRow(entry, 1)
	}

	m.rebuild()
	return m, nil
}

func (m *ConsoleUI) move(delta int) {
	if m.focus == paneEntries {
		n := len(m.ws.Document().Entries)
		if next := m.entry + delta; next >= 0 && next < n {
			m.entry = next
			m.selected = 0
		}
		return
	}
	if next := m.selected + delta; next >= 0 && next < len(m.rows) {
		m.selected = next
	}
}

func (m *ConsoleUI) copyAddress() {
	r := m.currentRow()
	if r == nil || r.kind != rowNode {
		m.status = "Select a conversation node to copy its address"
		return
	}
	if err := clipboard.WriteAll(r.addr.String()); err != nil {
		m.err = fmt.Errorf("clipboard: %w", err)
		return
	}
	m.status = "Copied " + r.addr.String()
}

func (m *ConsoleUI) deleteRow(entry *document.Entry) {
	s := m.ws.Session(entry)
	if s == nil {
		m.status = "Press e to edit before changing the event set"
		return
	}
	r := m.currentRow()
	if r == nil {
		return
	}
	set := s.Working()

	switch r.kind {
	case rowLocked:
		set.UnsetLocked()
		m.status = "Cleared locked event"
	case rowUnlocked:
		if set.UnsetUnlockedAt(r.index) {
			m.status = fmt.Sprintf("Removed unlocked event %d", r.index)
		}
	case rowNode:
		if len(r.addr) == 1 {
			r.ev.SetBlank()
			m.status = "Removed conversation"
			return
		}
		if r.ev.DeleteConversation(r.addr) {
			m.status = "Deleted node " + r.addr.String()
		} else {
			m.status = "Could not delete " + r.addr.String()
		}
	}
}

func (m *ConsoleUI) shiftRow(entry *document.Entry, delta int) {
	s := m.ws.Session(entry)
	if s == nil {
		m.status = "Press e to edit before changing the event set"
		return
	}
	r := m.currentRow()
	if r == nil || r.kind != rowUnlocked {
		m.status = "Select an unlocked event to move it"
		return
	}

	var moved int
	if delta < 0 {
		moved = s.Working().ShiftUnlockedUp(r.index)
	} else {
		moved = s.Working().ShiftUnlockedDown(r.index)
	}
	if moved < 0 {
		m.status = "Already at the edge of the list"
		return
	}

	// follow the moved event to its new header row
	for i, candidate := range buildRows(s.Working()) {
		if candidate.kind == rowUnlocked && candidate.index == moved {
			m.selected = i
			break
		}
	}
	m.status = fmt.Sprintf("Moved unlocked event %d to %d", r.index, moved)
}

func (m *ConsoleUI) save() tea.Cmd {
	ws := m.ws
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return savedMsg{err: ws.Save(ctx)}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) detailsWidth() int {
	return (m.width - entriesWidth) / 2
}

func (m ConsoleUI) rowsWidth() int {
	return m.width - entriesWidth - m.detailsWidth()
}

func (m ConsoleUI) renderEntries(height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Event Sets"))
	b.WriteString("\n\n")

	entries := m.ws.Document().Entries
	start, end := visibleWindow(len(entries), m.entry, height-2)
	for i := start; i < end; i++ {
		e := entries[i]
		label := truncate(e.Label(), entriesWidth-6)
		if m.ws.Session(e) != nil {
			label += "*"
		}
		switch {
		case i == m.entry:
			b.WriteString(selectedStyle.Render(label))
		case m.ws.Session(e) != nil:
			b.WriteString(editingStyle.Render(label))
		default:
			b.WriteString(label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ConsoleUI) renderRows(width, height int) string {
	var b strings.Builder
	title := "Events"
	if entry := m.currentEntry(); entry != nil && m.ws.Session(entry) != nil {
		title += editingStyle.Render(" (working copy)")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	start, end := visibleWindow(len(m.rows), m.selected, height-2)
	for i := start; i < end; i++ {
		line := m.rows[i].label(width)
		if i == m.selected && m.focus == paneRows {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m ConsoleUI) renderDetails() string {
	set := m.currentSet()
	if set == nil {
		return "No event set selected."
	}
	width := m.details.Width
	if width <= 0 {
		width = 40
	}

	var b strings.Builder
	for _, line := range set.Summarize() {
		b.WriteString(wordwrap.String(line, width))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Access: %s\n", set.Access())

	r := m.currentRow()
	if r == nil || r.kind != rowNode {
		return b.String()
	}

	n := r.node
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Node " + r.addr.String()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Category: %s\n", n.Category)
	fmt.Fprintf(&b, "Speaker: %s\n", speakerLabel(n.ThingID))
	if !n.Action.IsNone() {
		b.WriteString(wordwrap.String("Action: "+n.Action.Summary(), width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(wordwrap.String(n.Text, width))
	b.WriteString("\n")
	if n.Category == event.CategoryOption {
		b.WriteString("\nChoices:\n")
		for i, child := range n.Next {
			b.WriteString(wordwrap.String(fmt.Sprintf("%d. %s", i+1, child.Text), width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func speakerLabel(thingID int) string {
	switch thingID {
	case event.ThingNone:
		return "none"
	case event.ThingSelf:
		return "this thing"
	default:
		return fmt.Sprintf("thing %d", thingID)
	}
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Editor?"))
	content.WriteString("\n\n")
	content.WriteString("Some event sets have uncommitted changes that will be lost.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep editing"))

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

	panelHeight := m.height - 4

	entriesStyle, rowsStyle := panelStyle, panelStyle
	if m.focus == paneEntries {
		entriesStyle = focusedPanelStyle
	} else {
		rowsStyle = focusedPanelStyle
	}

	entries := entriesStyle.Width(entriesWidth - 2).Height(panelHeight).Render(m.renderEntries(panelHeight))
	rows := rowsStyle.Width(m.rowsWidth() - 2).Height(panelHeight).Render(m.renderRows(m.rowsWidth()-4, panelHeight))
	details := panelStyle.Width(m.detailsWidth() - 2).Height(panelHeight).Render(m.details.View())

	var footer string
	switch {
	case m.err != nil:
		footer = errorStyle.Render(m.err.Error())
	case m.status != "":
		footer = statusStyle.Render(m.status)
	default:
		footer = promptStyle.Render("e edit · c commit · x discard · d delete · K/J move · y copy address · s save · q quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, entries, rows, details),
		footer,
	)
}
