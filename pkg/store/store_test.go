package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

// writeItem plants a backing file with chosen timestamps, bypassing
// Create, so ordering tests don't depend on wall-clock resolution.
func writeItem(t *testing.T, s *Store, id string, item *Item) {
	t.Helper()
	content, err := SerializeFrontmatter(item)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.ItemPath(id), []byte(content), 0644))
}

func TestNewStoreEmptyDir(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	s := setupTestStore(t)

	item, err := s.Create("Buy milk", []string{"errands"}, nil, "")
	require.NoError(t, err)
	assert.Len(t, item.ID, idLength)
	assert.Equal(t, "Buy milk", item.Title)
	assert.Equal(t, []string{"errands"}, item.Tags)
	assert.False(t, item.Created.IsZero())
	assert.Nil(t, item.Completed)

	_, err = os.Stat(filepath.Join(s.Dir, item.ID+".md"))
	assert.NoError(t, err)
}

func TestCreateTrimsTitle(t *testing.T) {
	s := setupTestStore(t)

	item, err := s.Create("  Buy milk  ", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", item.Title)
}

func TestCreateEmptyTitle(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Create("", nil, nil, "")
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = s.Create("   ", nil, nil, "")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestCreateNormalizesTags(t *testing.T) {
	s := setupTestStore(t)

	item, err := s.Create("Buy milk", []string{"work", "errands", "work", " errands ", ""}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"errands", "work"}, item.Tags)
}

func TestCreateGetRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	deadline := time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC)
	created, err := s.Create("Renew passport", []string{"travel"}, &deadline, "Two photos needed.")
	require.NoError(t, err)

	loaded, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, created.Title, loaded.Title)
	assert.Equal(t, created.Tags, loaded.Tags)
	assert.Equal(t, created.Body, loaded.Body)
	require.NotNil(t, loaded.Deadline)
	assert.True(t, loaded.Deadline.Equal(deadline))
	assert.True(t, loaded.Created.Equal(created.Created))
}

func TestGetNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get("deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdering(t *testing.T) {
	s := setupTestStore(t)

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	soon := base.Add(24 * time.Hour)
	later := base.Add(72 * time.Hour)

	writeItem(t, s, "nodeadln", &Item{Title: "No deadline", Created: base})
	writeItem(t, s, "duelater", &Item{Title: "Due later", Deadline: &later, Created: base})
	writeItem(t, s, "duesoon1", &Item{Title: "Due soon", Deadline: &soon, Created: base.Add(time.Hour)})
	writeItem(t, s, "duesoon2", &Item{Title: "Due soon, created first", Deadline: &soon, Created: base})

	items, err := s.List(ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "duesoon2", items[0].ID) // deadline tie broken by created
	assert.Equal(t, "duesoon1", items[1].ID)
	assert.Equal(t, "duelater", items[2].ID)
	assert.Equal(t, "nodeadln", items[3].ID) // no deadline sorts last
}

func TestListCreatedTieBreakWithoutDeadlines(t *testing.T) {
	s := setupTestStore(t)

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	// Filename order (ReadDir) is the reverse of creation order here, so
	// the sort has to actually reorder.
	writeItem(t, s, "aaaanewer", &Item{Title: "Newer", Created: base.Add(time.Minute)})
	writeItem(t, s, "zzzzolder", &Item{Title: "Older", Created: base})

	items, err := s.List(ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Older", items[0].Title)
	assert.Equal(t, "Newer", items[1].Title)
}

func TestListFiltersByTag(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Create("Work thing", []string{"work"}, nil, "")
	require.NoError(t, err)
	_, err = s.Create("Errand", []string{"errands"}, nil, "")
	require.NoError(t, err)
	_, err = s.Create("Both", []string{"work", "errands"}, nil, "")
	require.NoError(t, err)

	items, err := s.List(ListOptions{Tags: []string{"work"}})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// Multiple tags require all of them
	items, err = s.List(ListOptions{Tags: []string{"work", "errands"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Both", items[0].Title)
}

func TestListExcludesCompletedByDefault(t *testing.T) {
	s := setupTestStore(t)

	open, err := s.Create("Open", nil, nil, "")
	require.NoError(t, err)
	done, err := s.Create("Done", nil, nil, "")
	require.NoError(t, err)
	_, err = s.Complete(done.ID)
	require.NoError(t, err)

	items, err := s.List(ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, open.ID, items[0].ID)

	items, err = s.List(ListOptions{IncludeCompleted: true})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, item := range items {
		if item.ID == done.ID {
			assert.NotNil(t, item.Completed)
		}
	}
}

func TestListSkipsUnparseableFiles(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Create("Valid", nil, nil, "")
	require.NoError(t, err)

	// A foreign file and a sync conflict artifact should be skipped, not abort
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "garbage.md"), []byte("not an item"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "notes.txt"), []byte("ignored entirely"), 0644))

	items, err := s.List(ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Valid", items[0].Title)
}

func TestComplete(t *testing.T) {
	s := setupTestStore(t)

	item, err := s.Create("Buy milk", nil, nil, "")
	require.NoError(t, err)

	completed, err := s.Complete(item.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.Completed)
	assert.False(t, completed.Completed.Before(completed.Created))

	// Persisted
	loaded, err := s.Get(item.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsCompleted())
}

func TestCompleteAlreadyCompleted(t *testing.T) {
	s := setupTestStore(t)

	item, err := s.Create("Buy milk", nil, nil, "")
	require.NoError(t, err)
	_, err = s.Complete(item.ID)
	require.NoError(t, err)

	_, err = s.Complete(item.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Complete("deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)

	item, err := s.Create("Buy milk", nil, nil, "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(item.ID))

	// Every subsequent operation on the id reports not found
	_, err = s.Get(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Complete(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(item.ID), ErrNotFound)
}

func TestMove(t *testing.T) {
	src := setupTestStore(t)
	dest := setupTestStore(t)

	item, err := src.Create("Buy milk", []string{"errands"}, nil, "")
	require.NoError(t, err)

	moved, err := src.Move(item.ID, dest)
	require.NoError(t, err)
	assert.Equal(t, item.ID, moved.ID) // no collision, id kept

	_, err = src.Get(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	loaded, err := dest.Get(moved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", loaded.Title)
}

func TestMoveCollisionRegeneratesID(t *testing.T) {
	src := setupTestStore(t)
	dest := setupTestStore(t)

	item, err := src.Create("Buy milk", nil, nil, "")
	require.NoError(t, err)

	// Occupy the same id at the destination
	writeItem(t, dest, item.ID, &Item{Title: "Occupied", Created: time.Now().UTC()})

	moved, err := src.Move(item.ID, dest)
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, moved.ID)

	occupied, err := dest.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Occupied", occupied.Title)

	loaded, err := dest.Get(moved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", loaded.Title)
}

func TestMoveNotFound(t *testing.T) {
	src := setupTestStore(t)
	dest := setupTestStore(t)

	_, err := src.Move("deadbeef", dest)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCreateUniqueIDs(t *testing.T) {
	s := setupTestStore(t)

	const workers = 8
	const perWorker = 5

	var mu sync.Mutex
	ids := make(map[string]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				item, err := s.Create("Concurrent", nil, nil, "")
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, ids[item.ID], "duplicate id %s", item.ID)
				ids[item.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, workers*perWorker)
}
