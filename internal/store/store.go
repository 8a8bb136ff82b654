// Package store loads a directory of template files into a registry and
// keeps it current as files change on disk.
//
// Template names are derived from file paths: the store root is stripped,
// the extension dropped, and path separators become dots, so that
// "partials/header.hb" is included as {{+partials.header}}.
package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/beaufortfrancois/templates/internal/config"
	"github.com/beaufortfrancois/templates/internal/errors"
	"github.com/beaufortfrancois/templates/internal/logging"
	"github.com/beaufortfrancois/templates/internal/registry"
	"github.com/beaufortfrancois/templates/internal/watcher"
	"github.com/beaufortfrancois/templates/pkg/handlebar"
)

const debounceDelay = 100 * time.Millisecond

// Store is the filesystem-backed template collection
type Store struct {
	dir        string
	extensions []string
	registry   *registry.TemplateRegistry
	logger     logging.Logger
	watcher    *watcher.FileWatcher

	mutex    sync.RWMutex
	problems map[string]error // compile failures by path
}

// NewStore creates a store over the configured template directory
func NewStore(cfg *config.Config, logger logging.Logger) *Store {
	return &Store{
		dir:        cfg.Templates.Dir,
		extensions: cfg.Templates.Extensions,
		registry:   registry.NewTemplateRegistry(),
		logger:     logger.WithComponent("store"),
		problems:   make(map[string]error),
	}
}

// Registry exposes the underlying registry, for event subscription.
func (s *Store) Registry() *registry.TemplateRegistry {
	return s.registry
}

// Load walks the template directory and compiles every template file.
// I/O failures abort; compile failures are recorded per file and reported
// by Problems.
func (s *Store) Load(ctx context.Context) error {
	start := time.Now()
	count := 0

	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !s.accepts(path) {
			return nil
		}
		s.loadFile(ctx, path)
		count++
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.OpLoad, "", s.dir, err)
	}

	s.logger.Info(ctx, "templates loaded",
		"dir", s.dir,
		"files", count,
		"templates", s.registry.Count(),
		"duration", time.Since(start).String(),
	)
	return nil
}

// Watch recompiles templates as their files change, until the context is
// cancelled.
func (s *Store) Watch(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(debounceDelay)
	if err != nil {
		return errors.Wrap(errors.OpWatch, "", s.dir, err)
	}
	fw.AddFilter(watcher.ExtensionFilter(s.extensions...))
	fw.AddHandler(func(events []watcher.ChangeEvent) {
		s.applyChanges(ctx, events)
	})
	if err := fw.AddRecursive(s.dir); err != nil {
		fw.Stop()
		return errors.Wrap(errors.OpWatch, "", s.dir, err)
	}

	s.watcher = fw
	fw.Start(ctx)

	go func() {
		<-ctx.Done()
		if err := fw.Stop(); err != nil {
			s.logger.Warn(context.Background(), err, "stopping watcher")
		}
	}()
	return nil
}

// Render renders a stored template by name. The store's own templates are
// appended as the lowest-priority context so that inclusions resolve.
func (s *Store) Render(name string, contexts ...any) (*handlebar.RenderResult, error) {
	entry, ok := s.registry.Get(name)
	if !ok {
		return nil, &errors.TemplateError{Op: errors.OpRender, Template: name, Err: os.ErrNotExist}
	}
	contexts = append(contexts, s.registry.Context())
	return entry.Template.Render(contexts...), nil
}

// Names lists the stored template names in sorted order.
func (s *Store) Names() []string {
	return s.registry.Names()
}

// Problems returns the current compile failures, keyed by file path.
func (s *Store) Problems() map[string]error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[string]error, len(s.problems))
	for path, err := range s.problems {
		out[path] = err
	}
	return out
}

func (s *Store) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range s.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// templateName derives the registry name from a file path.
func (s *Store) templateName(path string) string {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

func (s *Store) loadFile(ctx context.Context, path string) {
	name := s.templateName(path)

	source, err := os.ReadFile(path)
	if err != nil {
		s.recordProblem(ctx, path, errors.Wrap(errors.OpLoad, name, path, err))
		return
	}

	tmpl, err := handlebar.CompileNamed(name, string(source))
	if err != nil {
		s.recordProblem(ctx, path, errors.Wrap(errors.OpCompile, name, path, err))
		return
	}

	s.clearProblem(path)
	info, _ := os.Stat(path)
	entry := &registry.Entry{Name: name, Path: path, Template: tmpl}
	if info != nil {
		entry.LastMod = info.ModTime()
	}
	s.registry.Register(entry)
	s.logger.Debug(ctx, "template compiled", "name", name, "path", path)
}

func (s *Store) applyChanges(ctx context.Context, events []watcher.ChangeEvent) {
	for _, event := range events {
		switch event.Type {
		case watcher.EventTypeCreated, watcher.EventTypeModified:
			s.loadFile(ctx, event.Path)
		case watcher.EventTypeDeleted, watcher.EventTypeRenamed:
			s.clearProblem(event.Path)
			s.registry.Remove(s.templateName(event.Path))
			s.logger.Debug(ctx, "template removed", "path", event.Path)
		}
	}
}

func (s *Store) recordProblem(ctx context.Context, path string, err error) {
	s.mutex.Lock()
	s.problems[path] = err
	s.mutex.Unlock()
	s.logger.Error(ctx, err, "template failed to load", "path", path)
}

func (s *Store) clearProblem(path string) {
	s.mutex.Lock()
	delete(s.problems, path)
	s.mutex.Unlock()
}
