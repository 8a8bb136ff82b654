package handlebar

import (
	"fmt"
	"strings"
)

// RenderResult is the outcome of a render: the best-effort output text and
// the resolution errors collected along the way, in occurrence order. A
// non-empty Errors never prevents Text from being produced; callers decide
// whether it constitutes failure.
type RenderResult struct {
	Text   string
	Errors []string
}

// partialOrigin links a nested render state back to the include that
// created it, so resolution errors inside partials carry their inclusion
// chain.
type partialOrigin struct {
	parent *renderState
	id     identifier
}

// renderState is the transient per-render state: the context stacks, the
// output buffer and the error collector. Decorators and partials render
// into forked states and merge the result back.
type renderState struct {
	name           string
	contexts       *contextStack
	buf            strings.Builder
	errors         []string
	errorsDisabled bool
	origin         *partialOrigin
}

// fork creates a state sharing this one's context stacks but with its own
// buffer and error list.
func (rs *renderState) fork() *renderState {
	return &renderState{
		name:           rs.name,
		contexts:       rs.contexts,
		errorsDisabled: rs.errorsDisabled,
		origin:         rs.origin,
	}
}

// forkPartial creates the state a partial renders in: the caller's global
// contexts are shared, the local stack starts empty.
func (rs *renderState) forkPartial(t *Template, id identifier) *renderState {
	name := t.name
	if name == "" {
		name = id.String()
	}
	return &renderState{
		name:     name,
		contexts: &contextStack{globals: rs.contexts.globals},
		origin:   &partialOrigin{parent: rs, id: id},
	}
}

// merge appends a forked state's errors and its text, optionally passed
// through a layout transform.
func (rs *renderState) merge(child *renderState, transform func(string) string) {
	rs.errors = append(rs.errors, child.errors...)
	text := child.buf.String()
	if transform != nil {
		text = transform(text)
	}
	rs.buf.WriteString(text)
}

func (rs *renderState) addError(format string, args ...any) {
	if rs.errorsDisabled {
		return
	}
	rs.errors = append(rs.errors, fmt.Sprintf(format, args...))
}

func (rs *renderState) addResolutionError(id identifier) {
	if rs.errorsDisabled {
		return
	}
	rs.errors = append(rs.errors,
		fmt.Sprintf("failed to resolve %s in %s", id.description(), rs.name))
	for origin := rs.origin; origin != nil; origin = origin.parent.origin {
		rs.errors = append(rs.errors,
			fmt.Sprintf("  included as %s in %s", origin.id.description(), origin.parent.name))
	}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// stringify converts a resolved value to output text: scalars render
// plainly, arrays and objects render as JSON.
func stringify(v View) string {
	switch v.Kind() {
	case Boolean:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.AsNumber())
	case String:
		return v.AsString()
	case Array, Object:
		return ToJSON(v)
	default:
		return ""
	}
}

func (n *textNode) render(rs *renderState) {
	rs.buf.WriteString(n.text)
}

func (n *escapedNode) render(rs *renderState) {
	v := rs.resolve(n.id)
	if v == nil || v.Kind() == Null {
		return
	}
	rs.buf.WriteString(htmlEscaper.Replace(stringify(v)))
}

func (n *unescapedNode) render(rs *renderState) {
	v := rs.resolve(n.id)
	if v == nil || v.Kind() == Null {
		return
	}
	rs.buf.WriteString(stringify(v))
}

func (n *jsonNode) render(rs *renderState) {
	v := rs.resolve(n.id)
	if v == nil || v.Kind() == Null {
		return
	}
	rs.buf.WriteString(ToJSON(v))
}

func (n *commentNode) render(*renderState) {}

func (n *sectionNode) render(rs *renderState) {
	v := rs.resolve(n.id)
	if v == nil {
		return
	}
	switch v.Kind() {
	case Null:
		// Nothing to enter.
	case Boolean, Number, String:
		rs.addError("{{#%s}} cannot be rendered with a %s", n.id, v.Kind())
	case Array:
		v.EachItem(func(_ int, item View) {
			// Push even scalar items so the body can refer to them as @.
			rs.contexts.pushLocal(item)
			n.content.render(rs)
			rs.contexts.popLocal()
		})
	case Object:
		rs.contexts.pushLocal(v)
		n.content.render(rs)
		rs.contexts.popLocal()
	}
}

// resolveQuiet resolves for an existence test: failing to resolve is not a
// user-facing error there, merely falsy.
func (rs *renderState) resolveQuiet(id identifier) View {
	disabled := rs.errorsDisabled
	rs.errorsDisabled = true
	v := rs.resolve(id)
	rs.errorsDisabled = disabled
	return v
}

func (n *vertedSectionNode) render(rs *renderState) {
	v := rs.resolveQuiet(n.id)
	if v != nil && shouldRender(v) {
		rs.contexts.pushLocal(v)
		n.content.render(rs)
		rs.contexts.popLocal()
	}
}

func (n *invertedSectionNode) render(rs *renderState) {
	v := rs.resolveQuiet(n.id)
	if v == nil || !shouldRender(v) {
		n.content.render(rs)
	}
}

func (n *partialNode) render(rs *renderState) {
	v := rs.resolve(n.id)
	if v == nil {
		return
	}
	t, ok := v.Unwrap().(*Template)
	if !ok || t == nil {
		rs.addError("%s did not resolve to a template in %s", n.id.description(), rs.name)
		return
	}

	ps := rs.forkPartial(t, n.id)

	if top := rs.contexts.topLocal(); top != nil {
		ps.contexts.pushLocal(top)
	}
	if len(n.args) > 0 {
		members := make(objectView, len(n.args))
		for key, argID := range n.args {
			if av := rs.resolve(argID); av != nil {
				members[key] = av
			}
		}
		ps.contexts.pushLocal(members)
	}
	if n.localContext != nil {
		if lv := rs.resolve(*n.localContext); lv != nil {
			ps.contexts.pushLocal(lv)
		}
	}

	if t.root != nil {
		t.root.render(ps)
	}

	// Partials render "clean": the caller supplies any trailing newline.
	rs.merge(ps, func(text string) string {
		return strings.TrimSuffix(text, "\n")
	})
}

func (n *switchNode) render(rs *renderState) {
	v := rs.resolve(n.id)
	if v == nil {
		return
	}
	if v.Kind() != String {
		rs.addError("{{:%s}} did not resolve to a string, instead a %s", n.id, v.Kind())
		return
	}
	if body := n.cases[v.AsString()]; body != nil {
		body.render(rs)
	}
}

func (c *collection) render(rs *renderState) {
	for _, n := range c.nodes {
		n.render(rs)
	}
}
