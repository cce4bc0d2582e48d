package tui

import (
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nextuponstream/todo/pkg/store"
)

// FileChangedMsg is sent when the file watcher detects changes.
type FileChangedMsg struct{}

type mode int

const (
	modeNormal mode = iota
	modeAdding
	modeFiltering
	modeConfirmDelete
)

// Model is the Bubble Tea model for the interactive list.
type Model struct {
	store  *store.Store
	keys   KeyMap
	width  int
	height int

	items  []*store.Item
	cursor int

	showCompleted bool
	tagFilter     string

	mode         mode
	input        textinput.Model
	deleteTarget string // id pending confirmation

	status string
}

// NewModel creates a model with the current directory contents loaded.
func NewModel(s *store.Store) Model {
	ti := textinput.New()
	ti.CharLimit = 120

	m := Model{
		store: s,
		keys:  DefaultKeyMap(),
		input: ti,
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

func (m *Model) reload() {
	opts := store.ListOptions{IncludeCompleted: m.showCompleted}
	if m.tagFilter != "" {
		opts.Tags = []string{m.tagFilter}
	}
	items, err := m.store.List(opts)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.items = items
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() *store.Item {
	if len(m.items) == 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor]
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case FileChangedMsg:
		m.reload()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdding:
			return m.updateAdding(msg)
		case modeFiltering:
			return m.updateFiltering(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Complete):
		if item := m.selected(); item != nil {
			if _, err := m.store.Complete(item.ID); err != nil {
				m.status = err.Error()
			}
			m.reload()
		}

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdding
		m.input.Placeholder = "title #tag #tag"
		m.input.SetValue("")
		m.input.Focus()

	case key.Matches(msg, m.keys.Delete):
		if item := m.selected(); item != nil {
			m.mode = modeConfirmDelete
			m.deleteTarget = item.ID
		}

	case key.Matches(msg, m.keys.Edit):
		if item := m.selected(); item != nil {
			cmd := openEditor(item.FilePath)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFiltering
		m.input.Placeholder = "tag"
		m.input.SetValue(m.tagFilter)
		m.input.Focus()

	case key.Matches(msg, m.keys.ShowCompleted):
		m.showCompleted = !m.showCompleted
		m.reload()

	case key.Matches(msg, m.keys.Reload):
		m.reload()
	}

	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title, tags := splitTitleAndTags(m.input.Value())
		if strings.TrimSpace(title) != "" {
			if _, err := m.store.Create(title, tags, nil, ""); err != nil {
				m.status = err.Error()
			}
		}
		m.mode = modeNormal
		m.input.Blur()
		m.reload()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.tagFilter = strings.TrimSpace(strings.TrimPrefix(m.input.Value(), "#"))
		m.mode = modeNormal
		m.input.Blur()
		m.reload()
		return m, nil
	case "esc":
		m.tagFilter = ""
		m.mode = modeNormal
		m.input.Blur()
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "y" {
		if err := m.store.Delete(m.deleteTarget); err != nil {
			m.status = err.Error()
		}
	}
	m.mode = modeNormal
	m.deleteTarget = ""
	m.reload()
	return m, nil
}

// splitTitleAndTags pulls #tag words out of an input line.
func splitTitleAndTags(input string) (string, []string) {
	var titleParts, tags []string
	for _, word := range strings.Fields(input) {
		if strings.HasPrefix(word, "#") && len(word) > 1 {
			tags = append(tags, strings.TrimPrefix(word, "#"))
			continue
		}
		titleParts = append(titleParts, word)
	}
	return strings.Join(titleParts, " "), tags
}

func openEditor(path string) tea.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	c := exec.Command(parts[0], append(parts[1:], path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return FileChangedMsg{}
	})
}
