package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionFilter(t *testing.T) {
	filter := ExtensionFilter(".hb", ".handlebar")

	assert.True(t, filter("templates/page.hb"))
	assert.True(t, filter("templates/page.HB"))
	assert.True(t, filter("a/b/c.handlebar"))
	assert.False(t, filter("templates/page.html"))
	assert.False(t, filter("noextension"))
}

func TestDebouncerGroupsBursts(t *testing.T) {
	var mutex sync.Mutex
	var batches [][]ChangeEvent

	d := NewDebouncer(30*time.Millisecond, func(events []ChangeEvent) {
		mutex.Lock()
		defer mutex.Unlock()
		batches = append(batches, events)
	})

	for i := 0; i < 5; i++ {
		d.Add(ChangeEvent{Type: EventTypeModified, Path: "a.hb"})
	}

	require.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return len(batches) == 1
	}, time.Second, 10*time.Millisecond)

	mutex.Lock()
	defer mutex.Unlock()
	assert.Len(t, batches[0], 5)
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var mutex sync.Mutex
	flushed := false

	d := NewDebouncer(20*time.Millisecond, func([]ChangeEvent) {
		mutex.Lock()
		defer mutex.Unlock()
		flushed = true
	})

	d.Add(ChangeEvent{Path: "a.hb"})
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	mutex.Lock()
	defer mutex.Unlock()
	assert.False(t, flushed)
}

func TestFileWatcherDetectsChanges(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(ExtensionFilter(".hb"))

	var mutex sync.Mutex
	var seen []ChangeEvent
	fw.AddHandler(func(events []ChangeEvent) {
		mutex.Lock()
		defer mutex.Unlock()
		seen = append(seen, events...)
	})

	require.NoError(t, fw.AddPath(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	path := filepath.Join(dir, "page.hb")
	require.NoError(t, os.WriteFile(path, []byte("{{x}}"), 0o644))
	// A filtered-out neighbor must not be reported.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return len(seen) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mutex.Lock()
	defer mutex.Unlock()
	for _, event := range seen {
		assert.Equal(t, path, event.Path)
	}
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventTypeCreated.String())
	assert.Equal(t, "modified", EventTypeModified.String())
	assert.Equal(t, "deleted", EventTypeDeleted.String())
	assert.Equal(t, "renamed", EventTypeRenamed.String())
	assert.Equal(t, "unknown", EventType(9).String())
}
