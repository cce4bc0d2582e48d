// Package render formats todo items for terminal output. It does no I/O;
// ordering is decided by the store and preserved here.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nextuponstream/todo/pkg/store"
)

var (
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
	doneTitle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#626262"))
	overdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E05252"))
	dueTodayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	deadlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4285F4"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C678DD"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Render returns one line per item, in the order given.
func Render(items []*store.Item) string {
	return renderAt(items, time.Now())
}

func renderAt(items []*store.Item, now time.Time) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(line(item, now))
		b.WriteString("\n")
	}
	return b.String()
}

func line(item *store.Item, now time.Time) string {
	marker := "○"
	title := item.Title
	if item.IsCompleted() {
		marker = doneStyle.Render("✓")
		title = doneTitle.Render(title)
	}

	parts := []string{marker, idStyle.Render(item.ID), title}
	if item.Deadline != nil {
		parts = append(parts, formatDeadline(item, now))
	}
	if len(item.Tags) > 0 {
		parts = append(parts, tagStyle.Render("#"+strings.Join(item.Tags, " #")))
	}
	return strings.Join(parts, "  ")
}

// RenderItem returns the multi-line detail view of a single item.
func RenderItem(item *store.Item) string {
	var b strings.Builder
	b.WriteString(line(item, time.Now()))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("created:"), item.Created.Format(time.RFC3339)))
	if item.Completed != nil {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("completed:"), item.Completed.Format(time.RFC3339)))
	}
	if item.Body != "" {
		b.WriteString("\n")
		b.WriteString(item.Body)
		if !strings.HasSuffix(item.Body, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatDeadline(item *store.Item, now time.Time) string {
	d := *item.Deadline
	layout := "2006-01-02"
	if d.Hour() != 0 || d.Minute() != 0 {
		layout = "2006-01-02 15:04"
	}
	text := "due " + d.Format(layout)

	switch {
	case item.IsCompleted():
		return labelStyle.Render(text)
	case d.Before(now):
		return overdueStyle.Render(text)
	case sameDay(d, now):
		return dueTodayStyle.Render(text)
	default:
		return deadlineStyle.Render(text)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
