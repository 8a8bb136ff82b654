package handlebar

// contextStack is the two-tier stack identifiers resolve against. globals
// holds the arguments of the render call in priority order (first argument
// first) and never changes during a render; locals is pushed and popped as
// sections are entered and exited.
type contextStack struct {
	globals []View
	locals  []View
}

func (cs *contextStack) pushLocal(v View) {
	cs.locals = append(cs.locals, v)
}

func (cs *contextStack) popLocal() {
	cs.locals = cs.locals[:len(cs.locals)-1]
}

func (cs *contextStack) topLocal() View {
	if len(cs.locals) == 0 {
		return nil
	}
	return cs.locals[len(cs.locals)-1]
}

// head is the context "@" refers to: the innermost local scope, or the
// highest-priority global when no section has been entered.
func (cs *contextStack) head() View {
	if top := cs.topLocal(); top != nil {
		return top
	}
	if len(cs.globals) == 0 {
		return nil
	}
	return cs.globals[0]
}

// resolve interprets an identifier against the context stacks, recording a
// resolution error (unless errors are disabled) and returning nil when the
// identifier does not resolve.
func (rs *renderState) resolve(id identifier) View {
	if id.this {
		head := rs.contexts.head()
		if head == nil {
			rs.addResolutionError(id)
			return nil
		}
		if id.path == "" {
			return head
		}
		// "@.path" resolves against the head context only; no fallback.
		var found View
		if head.Kind() == Object {
			found = head.Get(id.path)
		}
		if found == nil {
			rs.addResolutionError(id)
		}
		return found
	}

	locals := rs.contexts.locals
	for i := len(locals) - 1; i >= 0; i-- {
		if found := lookup(locals[i], id.path); found != nil {
			return found
		}
	}
	for _, ctx := range rs.contexts.globals {
		if found := lookup(ctx, id.path); found != nil {
			return found
		}
	}
	rs.addResolutionError(id)
	return nil
}

// lookup tries one context; only object contexts expose paths.
func lookup(ctx View, path string) View {
	if ctx == nil || ctx.Kind() != Object {
		return nil
	}
	return ctx.Get(path)
}

// shouldRender is the truthiness rule for existence tests. The permissive
// variant of the language: any non-null number and any object, empty or
// not, is truthy; strings and arrays are truthy when non-empty.
func shouldRender(v View) bool {
	switch v.Kind() {
	case Null:
		return false
	case Boolean:
		return v.AsBool()
	case Number:
		return true
	case String:
		return v.AsString() != ""
	case Array:
		return !v.ArrayEmpty()
	case Object:
		return true
	}
	return false
}
