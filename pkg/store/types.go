package store

import "time"

// Item represents a single todo entry loaded from an <id>.md file.
type Item struct {
	// Frontmatter fields
	Title     string     `yaml:"title"`
	Tags      []string   `yaml:"tags,omitempty"`
	Deadline  *time.Time `yaml:"deadline,omitempty"`
	Created   time.Time  `yaml:"created"`
	Completed *time.Time `yaml:"completed,omitempty"`

	// Markdown body below the frontmatter
	Body string `yaml:"-"`

	// Filesystem metadata (not serialized to YAML)
	ID       string `yaml:"-"` // filename without the .md extension
	FilePath string `yaml:"-"` // absolute path to the backing file
}

// IsCompleted returns true if the item has been marked done.
func (i *Item) IsCompleted() bool {
	return i.Completed != nil
}

// HasTag reports whether the item carries the given tag.
func (i *Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAllTags reports whether the item carries every tag in the list.
func (i *Item) HasAllTags(tags []string) bool {
	for _, t := range tags {
		if !i.HasTag(t) {
			return false
		}
	}
	return true
}
