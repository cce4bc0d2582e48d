package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nextuponstream/todo/pkg/store"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.listView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	header := HeaderStyle.Render("todo") + " " + HeaderCountStyle.Render(m.store.Dir)

	open := 0
	for _, item := range m.items {
		if !item.IsCompleted() {
			open++
		}
	}
	counts := fmt.Sprintf("%d open", open)
	if m.showCompleted {
		counts = fmt.Sprintf("%d open, %d done", open, len(m.items)-open)
	}
	if m.tagFilter != "" {
		counts += "  " + TagStyle.Render("#"+m.tagFilter)
	}
	return header + "  " + HeaderCountStyle.Render("("+counts+")")
}

func (m Model) listView() string {
	if len(m.items) == 0 && m.mode != modeAdding {
		return HeaderCountStyle.Render("  Nothing to do. Press 'a' to add a todo.") + "\n"
	}

	now := time.Now()
	var b strings.Builder
	for i, item := range m.items {
		line := itemLine(item, now)
		if i == m.cursor && m.mode == modeNormal {
			line = SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.mode == modeAdding {
		b.WriteString("  " + m.input.View())
		b.WriteString("\n")
	}
	return b.String()
}

func itemLine(item *store.Item, now time.Time) string {
	marker := "○"
	title := item.Title
	if item.IsCompleted() {
		marker = CompleteStyle.Render("✓")
		title = CompletedTitleStyle.Render(title)
	}

	parts := []string{marker, IDStyle.Render(item.ID), title}
	if item.Deadline != nil {
		parts = append(parts, deadlineLabel(item, now))
	}
	if len(item.Tags) > 0 {
		parts = append(parts, TagStyle.Render("#"+strings.Join(item.Tags, " #")))
	}
	return strings.Join(parts, "  ")
}

func deadlineLabel(item *store.Item, now time.Time) string {
	d := *item.Deadline
	layout := "2006-01-02"
	if d.Hour() != 0 || d.Minute() != 0 {
		layout = "2006-01-02 15:04"
	}
	text := "due " + d.Format(layout)

	switch {
	case item.IsCompleted():
		return HeaderCountStyle.Render(text)
	case d.Before(now):
		return OverdueStyle.Render(text)
	case sameDay(d, now):
		return DueTodayStyle.Render(text)
	default:
		return text
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (m Model) footerView() string {
	switch m.mode {
	case modeConfirmDelete:
		return StatusStyle.Render(fmt.Sprintf("Delete todo %s? (y/n)", m.deleteTarget))
	case modeFiltering:
		return "filter: " + m.input.View()
	}
	if m.status != "" {
		return StatusStyle.Render(m.status)
	}
	return FooterStyle.Render(m.keys.ShortHelp())
}
