package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Store manages the filesystem-backed todo data. It holds no state
// between calls: every operation re-reads the directory, so several
// machines can point at the same synced folder.
type Store struct {
	Dir string // e.g. ~/Dropbox/todo
}

// NewStore creates a Store rooted at the given directory.
// It creates the directory if it doesn't exist.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory not configured")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// ItemPath returns the backing file path for an id.
func (s *Store) ItemPath(id string) string {
	return filepath.Join(s.Dir, id+".md")
}

// Create validates the title, collapses duplicate tags, claims a fresh id
// and writes the backing file.
func (s *Store) Create(title string, tags []string, deadline *time.Time, body string) (*Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	item := &Item{
		Title:    title,
		Tags:     normalizeTags(tags),
		Deadline: deadline,
		Created:  now(),
		Body:     body,
	}

	id, path, err := s.claimID()
	if err != nil {
		return nil, err
	}
	item.ID = id
	item.FilePath = path

	if err := s.save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// claimID generates ids until one can be claimed with an exclusive file
// create. O_EXCL makes the claim atomic even when another invocation is
// creating against the same directory concurrently.
func (s *Store) claimID() (string, string, error) {
	const maxAttempts = 100
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := newID()
		path := s.ItemPath(id)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			f.Close()
			return id, path, nil
		}
		if !os.IsExist(err) {
			return "", "", fmt.Errorf("creating todo file: %w", err)
		}
	}
	return "", "", fmt.Errorf("could not claim a unique id after %d attempts", maxAttempts)
}

// Get loads a single item by id.
func (s *Store) Get(id string) (*Item, error) {
	path := s.ItemPath(id)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading todo %s: %w", id, err)
	}

	item, err := ParseFrontmatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing todo %s: %w", id, err)
	}
	item.ID = id
	item.FilePath = path
	return item, nil
}

// ListOptions filter a listing.
type ListOptions struct {
	Tags             []string // item must carry every tag
	IncludeCompleted bool
}

// List re-reads the directory and returns matching items ordered by
// deadline ascending, items without a deadline last, ties broken by
// creation time. Files that fail to parse are skipped with a warning so
// one corrupt or foreign file never hides the rest.
func (s *Store) List(opts ListOptions) ([]*Item, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var items []*Item
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		item, err := s.Get(id)
		if err != nil {
			log.Warn("skipping unparseable todo file", "file", entry.Name(), "err", err)
			continue
		}
		if item.IsCompleted() && !opts.IncludeCompleted {
			continue
		}
		if !item.HasAllTags(opts.Tags) {
			continue
		}
		items = append(items, item)
	}

	sortItems(items)
	return items, nil
}

// Complete marks an item done and rewrites its backing file. Completing
// an already-completed item is an error, not a no-op: a second `done` on
// the same id usually means the wrong id was typed.
func (s *Store) Complete(id string) (*Item, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.IsCompleted() {
		return nil, fmt.Errorf("todo %s: %w", id, ErrAlreadyCompleted)
	}

	completed := now()
	// Clocks on synced machines can disagree; Completed never precedes Created.
	if completed.Before(item.Created) {
		completed = item.Created
	}
	item.Completed = &completed

	if err := s.save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item's backing file.
func (s *Store) Delete(id string) error {
	path := s.ItemPath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	return nil
}

// Move re-homes an item into another store. The id is kept unless it
// collides at the destination, in which case a fresh one is claimed.
func (s *Store) Move(id string, dest *Store) (*Item, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	destID := id
	destPath := dest.ItemPath(id)
	if _, err := os.Stat(destPath); err == nil {
		destID, destPath, err = dest.claimID()
		if err != nil {
			return nil, err
		}
	}

	item.ID = destID
	item.FilePath = destPath
	if err := dest.save(item); err != nil {
		return nil, err
	}
	if err := os.Remove(s.ItemPath(id)); err != nil {
		return nil, fmt.Errorf("removing todo %s after move: %w", id, err)
	}
	return item, nil
}

func (s *Store) save(item *Item) error {
	content, err := SerializeFrontmatter(item)
	if err != nil {
		return fmt.Errorf("serializing todo %s: %w", item.ID, err)
	}
	if err := os.WriteFile(item.FilePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing todo %s: %w", item.ID, err)
	}
	return nil
}

// now returns a second-resolution UTC timestamp. Sub-second precision
// doesn't survive a YAML round-trip cleanly and buys nothing here.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func sortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Deadline == nil && b.Deadline == nil:
			return a.Created.Before(b.Created)
		case a.Deadline == nil:
			return false
		case b.Deadline == nil:
			return true
		case a.Deadline.Equal(*b.Deadline):
			return a.Created.Before(b.Created)
		default:
			return a.Deadline.Before(*b.Deadline)
		}
	})
}

// normalizeTags trims whitespace, drops empties and duplicates, and sorts
// so the serialized form is deterministic.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}
