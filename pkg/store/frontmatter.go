package store

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ParseFrontmatter splits a backing file into YAML frontmatter and body.
// Files without frontmatter are rejected: the store directory may contain
// foreign files (sync conflict copies, stray notes) and those must not be
// mistaken for items.
func ParseFrontmatter(content string) (*Item, error) {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return nil, fmt.Errorf("missing frontmatter delimiter")
	}

	rest := content[len(frontmatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx == -1 {
		return nil, fmt.Errorf("unclosed frontmatter delimiter")
	}

	yamlContent := rest[:idx]
	body := rest[idx+len("\n"+frontmatterDelimiter):]
	body = strings.TrimLeft(body, "\n")

	var item Item
	if err := yaml.Unmarshal([]byte(yamlContent), &item); err != nil {
		return nil, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}

	if strings.TrimSpace(item.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if item.Completed != nil && item.Completed.Before(item.Created) {
		return nil, fmt.Errorf("completed timestamp precedes created timestamp")
	}

	item.Body = body
	return &item, nil
}

// SerializeFrontmatter renders an Item back to markdown with YAML frontmatter.
func SerializeFrontmatter(item *Item) (string, error) {
	yamlBytes, err := yaml.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("serializing frontmatter YAML: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(string(yamlBytes), "\n"))
	b.WriteString("\n")
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	if item.Body != "" {
		b.WriteString("\n")
		b.WriteString(item.Body)
		if !strings.HasSuffix(item.Body, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}
