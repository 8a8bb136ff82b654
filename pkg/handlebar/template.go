package handlebar

import "fmt"

// ParseError is the fatal, construction-only failure class: a malformed
// template never yields a Template.
type ParseError struct {
	Message string
	Line    int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
}

// Template is a compiled template: its source text and the root of the
// immutable node tree. A Template is safe for concurrent rendering.
type Template struct {
	name   string
	source string
	root   node
}

// Compile parses source into a Template, or returns a *ParseError.
func Compile(source string) (*Template, error) {
	return CompileNamed("", source)
}

// CompileNamed is Compile with a name used in resolution error messages,
// typically the file the template was loaded from.
func CompileNamed(name, source string) (*Template, error) {
	root, err := parseTemplate(source)
	if err != nil {
		return nil, err
	}
	return &Template{name: name, source: source, root: root}, nil
}

// MustCompile is Compile, panicking on parse failure. Intended for
// templates baked into program source.
func MustCompile(source string) *Template {
	t, err := Compile(source)
	if err != nil {
		panic("handlebar: " + err.Error())
	}
	return t
}

// Name returns the template's name, empty unless compiled with
// CompileNamed.
func (t *Template) Name() string { return t.name }

// Source returns the text the template was compiled from.
func (t *Template) Source() string { return t.source }

// Render evaluates the template against the given contexts and returns the
// output text plus any resolution errors. Contexts are adapted with
// NewView unless they already implement View; on a name collision the
// first context wins. Resolution failures never abort the render.
func (t *Template) Render(contexts ...any) *RenderResult {
	globals := make([]View, 0, len(contexts))
	for _, c := range contexts {
		globals = append(globals, NewView(c))
	}
	name := t.name
	if name == "" {
		name = "<root>"
	}
	rs := &renderState{
		name:     name,
		contexts: &contextStack{globals: globals},
	}
	if t.root != nil {
		t.root.render(rs)
	}
	return &RenderResult{Text: rs.buf.String(), Errors: rs.errors}
}
