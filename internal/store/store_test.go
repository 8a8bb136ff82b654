package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaufortfrancois/templates/internal/config"
	"github.com/beaufortfrancois/templates/internal/logging"
	"github.com/beaufortfrancois/templates/internal/watcher"
)

func newTestStore(t *testing.T, files map[string]string) *Store {
	t.Helper()
	dir := t.TempDir()
	for name, source := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	}

	cfg := &config.Config{
		Templates: config.TemplatesConfig{
			Dir:        dir,
			Extensions: []string{".hb"},
		},
	}
	return NewStore(cfg, logging.Discard())
}

func TestLoadAndRender(t *testing.T) {
	s := newTestStore(t, map[string]string{
		"page.hb":  "hello {{name}}",
		"notes.md": "not a template",
	})
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"page"}, s.Names())
	assert.Empty(t, s.Problems())

	result, err := s.Render("page", map[string]any{"name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Text)
}

func TestNestedTemplateNames(t *testing.T) {
	s := newTestStore(t, map[string]string{
		"partials/header.hb": "== {{title}} ==",
		"page.hb":            "{{+partials.header}}|body",
	})
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"page", "partials.header"}, s.Names())

	result, err := s.Render("page", map[string]any{"title": "T"})
	require.NoError(t, err)
	assert.Equal(t, "== T ==|body", result.Text)
	assert.Empty(t, result.Errors)
}

func TestRenderUnknownTemplate(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.Render("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRecordsCompileProblems(t *testing.T) {
	s := newTestStore(t, map[string]string{
		"good.hb":   "fine",
		"broken.hb": "{{#x}}never closed",
	})
	require.NoError(t, s.Load(context.Background()))

	// The broken file is reported but does not block its neighbors.
	assert.Equal(t, []string{"good"}, s.Names())
	require.Len(t, s.Problems(), 1)
	for path, err := range s.Problems() {
		assert.Contains(t, path, "broken.hb")
		assert.Contains(t, err.Error(), "compile")
	}
}

func TestApplyChanges(t *testing.T) {
	s := newTestStore(t, map[string]string{"page.hb": "v1"})
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	// Rewrite the file and replay the change event.
	path := filepath.Join(s.dir, "page.hb")
	require.NoError(t, os.WriteFile(path, []byte("v2 {{x}}"), 0o644))
	s.applyChanges(ctx, []watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: path},
	})

	result, err := s.Render("page", map[string]any{"x": "!"})
	require.NoError(t, err)
	assert.Equal(t, "v2 !", result.Text)

	s.applyChanges(ctx, []watcher.ChangeEvent{
		{Type: watcher.EventTypeDeleted, Path: path},
	})
	_, err = s.Render("page")
	assert.Error(t, err)
}

func TestWatchReloads(t *testing.T) {
	s := newTestStore(t, map[string]string{"page.hb": "v1"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Watch(ctx))

	path := filepath.Join(s.dir, "page.hb")
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	require.Eventually(t, func() bool {
		result, err := s.Render("page")
		return err == nil && result.Text == "v2"
	}, 2*time.Second, 20*time.Millisecond)
}
