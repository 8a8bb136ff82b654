// Package registry keeps the compiled templates of a project in memory and
// fans change events out to subscribers, such as the preview server's live
// reload channel.
package registry

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/beaufortfrancois/templates/pkg/handlebar"
)

// TemplateRegistry manages all loaded templates
type TemplateRegistry struct {
	templates map[string]*Entry
	mutex     sync.RWMutex
	watchers  []chan Event
}

// Entry holds a compiled template and where it came from
type Entry struct {
	Name     string
	Path     string
	Template *handlebar.Template
	LastMod  time.Time
}

// Event represents a change in the template registry
type Event struct {
	Type      EventType
	Name      string
	Timestamp time.Time
}

// EventType represents the type of registry event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// NewTemplateRegistry creates a new template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*Entry),
		watchers:  make([]chan Event, 0),
	}
}

// Register adds or updates a template in the registry
func (r *TemplateRegistry) Register(entry *Entry) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.templates[entry.Name]; exists {
		eventType = EventTypeUpdated
	}

	r.templates[entry.Name] = entry
	r.notify(Event{Type: eventType, Name: entry.Name, Timestamp: time.Now()})
}

// Get retrieves a template by name
func (r *TemplateRegistry) Get(name string) (*Entry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, exists := r.templates[name]
	return entry, exists
}

// Remove removes a template from the registry
func (r *TemplateRegistry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.templates[name]; !exists {
		return
	}
	delete(r.templates, name)
	r.notify(Event{Type: EventTypeRemoved, Name: name, Timestamp: time.Now()})
}

// Names returns the registered template names in sorted order
func (r *TemplateRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered templates
func (r *TemplateRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.templates)
}

// Context assembles a render context mapping every template name to its
// compiled template, so that {{+name}} inclusions resolve by name. Dotted
// names nest, making "partials.header" reachable one path segment at a
// time. It is passed to Render alongside the caller's data contexts.
func (r *TemplateRegistry) Context() map[string]any {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ctx := make(map[string]any, len(r.templates))
	for name, entry := range r.templates {
		insert(ctx, strings.Split(name, "."), entry.Template)
	}
	return ctx
}

func insert(ctx map[string]any, segments []string, value any) {
	head := segments[0]
	if len(segments) == 1 {
		if _, taken := ctx[head]; !taken {
			ctx[head] = value
		}
		return
	}
	child, ok := ctx[head].(map[string]any)
	if !ok {
		if _, taken := ctx[head]; taken {
			// A template occupies this name; the nested one is unreachable.
			return
		}
		child = make(map[string]any)
		ctx[head] = child
	}
	insert(child, segments[1:], value)
}

// Watch returns a channel that receives registry events
func (r *TemplateRegistry) Watch() <-chan Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan Event, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *TemplateRegistry) UnWatch(ch <-chan Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

func (r *TemplateRegistry) notify(event Event) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
