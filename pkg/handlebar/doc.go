// Package handlebar implements a logic-light, data-binding template
// language. Templates are plain text interspersed with {{...}} tags,
// compiled once into an immutable node tree and rendered any number of
// times against hierarchical data:
//
//	t, err := handlebar.Compile("hello {{#foo}}{{bar}}{{/foo}} world")
//	if err != nil {
//		// malformed template
//	}
//	result := t.Render(map[string]any{
//		"foo": []any{
//			map[string]any{"bar": 1},
//			map[string]any{"bar": 2},
//		},
//	})
//	fmt.Println(result.Text)
//
// The tag surface:
//
//	{{id}}              HTML-escaped value
//	{{{id}}}            raw value
//	{{*id}}             JSON-serialized value
//	{{+id k:v ...}}     include a compiled partial, with optional arguments
//	{{#id}}...{{/}}     iterate an array / enter an object scope
//	{{?id}}...{{:}}...{{/}}   existence test, optional else
//	{{^id}}...{{:}}...{{/}}   negated existence test, optional else
//	{{:id}}{{=case}}...{{/}}  string switch/case
//	{{- ... -}}         comment, nestable
//	@                   the current head-of-stack value
//	@.path              path resolved against the head of the stack only
//
// Identifiers are dotted paths resolved against a stack of contexts: the
// scopes pushed by enclosing sections first, then the arguments given to
// Render in call order. Resolution failures never abort a render; they are
// collected on the returned RenderResult while rendering continues.
//
// A compiled Template is immutable, so a single Template may be rendered
// concurrently from multiple goroutines without coordination.
package handlebar
