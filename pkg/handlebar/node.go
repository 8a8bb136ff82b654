package handlebar

import "strings"

// node is the closed set of tree variants a template compiles to. Besides
// rendering, every variant supports the trim operations the layout pass
// uses to decide how a tag interacts with the whitespace around it. Nodes
// are mutated only during that pass; after Compile returns the tree is
// immutable.
type node interface {
	render(rs *renderState)

	startsWithNewline() bool
	trimStartingNewline()
	// trimEndingSpaces removes trailing spaces and returns how many were
	// removed; the count becomes the indentation of an indented sibling.
	trimEndingSpaces() int
	trimEndingNewline()
	endsWithEmptyLine() bool

	startLine() int
	endLine() int
}

// isLeafTag reports whether a node is a single self-closing tag, the only
// shape eligible for indented layout.
func isLeafTag(n node) bool {
	switch n.(type) {
	case *escapedNode, *unescapedNode, *jsonNode, *partialNode, *commentNode:
		return true
	}
	return false
}

// leaf carries line tracking and no-op trims for self-closing tags.
type leaf struct {
	start int
	end   int
}

func (l *leaf) startsWithNewline() bool { return false }
func (l *leaf) trimStartingNewline()    {}
func (l *leaf) trimEndingSpaces() int   { return 0 }
func (l *leaf) trimEndingNewline()      {}
func (l *leaf) endsWithEmptyLine() bool { return false }
func (l *leaf) startLine() int          { return l.start }
func (l *leaf) endLine() int            { return l.end }

// wrapper delegates the layout operations to a wrapped node; sections and
// the layout decorators embed it.
type wrapper struct {
	content node
}

func (w *wrapper) startsWithNewline() bool { return w.content.startsWithNewline() }
func (w *wrapper) trimStartingNewline()    { w.content.trimStartingNewline() }
func (w *wrapper) trimEndingSpaces() int   { return w.content.trimEndingSpaces() }
func (w *wrapper) trimEndingNewline()      { w.content.trimEndingNewline() }
func (w *wrapper) endsWithEmptyLine() bool { return w.content.endsWithEmptyLine() }
func (w *wrapper) startLine() int          { return w.content.startLine() }
func (w *wrapper) endLine() int            { return w.content.endLine() }

// textNode is a literal run of characters.
type textNode struct {
	text  string
	start int
	end   int
}

func (n *textNode) startsWithNewline() bool {
	return strings.HasPrefix(n.text, "\n")
}

func (n *textNode) trimStartingNewline() {
	if n.startsWithNewline() {
		n.text = n.text[1:]
	}
}

func (n *textNode) trimEndingSpaces() int {
	trimmed := n.text[:n.lastIndexOfSpaces()]
	removed := len(n.text) - len(trimmed)
	n.text = trimmed
	return removed
}

func (n *textNode) trimEndingNewline() {
	n.text = strings.TrimSuffix(n.text, "\n")
}

func (n *textNode) endsWithEmptyLine() bool {
	i := n.lastIndexOfSpaces()
	return i == 0 || n.text[i-1] == '\n'
}

// lastIndexOfSpaces finds where the run of trailing space characters
// begins.
func (n *textNode) lastIndexOfSpaces() int {
	i := len(n.text)
	for i > 0 && n.text[i-1] == ' ' {
		i--
	}
	return i
}

func (n *textNode) startLine() int { return n.start }
func (n *textNode) endLine() int   { return n.end }

// escapedNode is {{foo}}.
type escapedNode struct {
	leaf
	id identifier
}

// unescapedNode is {{{foo}}}.
type unescapedNode struct {
	leaf
	id identifier
}

// jsonNode is {{*foo}}.
type jsonNode struct {
	leaf
	id identifier
}

// commentNode is {{- ... -}}. It renders nothing but takes part in layout
// so that a comment on its own line leaves no trace in the output.
type commentNode struct {
	leaf
}

// partialNode is {{+foo k:v ...}}. args binds each key to the identifier
// whose resolved value seeds the partial's context; an argument keyed "@"
// instead pushes its resolved value itself onto the partial's local stack.
type partialNode struct {
	leaf
	id           identifier
	args         map[string]identifier
	localContext *identifier
}

func (n *partialNode) addArgument(key string, id identifier) {
	if n.args == nil {
		n.args = make(map[string]identifier)
	}
	n.args[key] = id
}

// sectionNode is {{#foo}} ... {{/}}.
type sectionNode struct {
	wrapper
	id identifier
}

// vertedSectionNode is {{?foo}} ... {{/}}.
type vertedSectionNode struct {
	wrapper
	id identifier
}

// invertedSectionNode is {{^foo}} ... {{/}}.
type invertedSectionNode struct {
	wrapper
	id identifier
}

// switchNode is {{:foo}}{{=case}} ... {{/}}. Case bodies may be nil when a
// case is empty.
type switchNode struct {
	leaf
	id    identifier
	cases map[string]node
}

func (n *switchNode) addCase(value string, body node) {
	if n.cases == nil {
		n.cases = make(map[string]node)
	}
	n.cases[value] = body
}

// collection is an ordered sibling sequence.
type collection struct {
	nodes []node
}

func (c *collection) startsWithNewline() bool { return c.nodes[0].startsWithNewline() }
func (c *collection) trimStartingNewline()    { c.nodes[0].trimStartingNewline() }
func (c *collection) trimEndingSpaces() int   { return c.nodes[len(c.nodes)-1].trimEndingSpaces() }
func (c *collection) trimEndingNewline()      { c.nodes[len(c.nodes)-1].trimEndingNewline() }
func (c *collection) endsWithEmptyLine() bool { return c.nodes[len(c.nodes)-1].endsWithEmptyLine() }
func (c *collection) startLine() int          { return c.nodes[0].startLine() }
func (c *collection) endLine() int            { return c.nodes[len(c.nodes)-1].endLine() }
