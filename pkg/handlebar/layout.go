package handlebar

import "strings"

// The layout decorators are assigned exactly once per node, after its
// sibling list has been parsed. They are what lets a block tag own its
// source line without leaving a blank line in the output, while the same
// tag used mid-sentence stays on the line it appears in.

// blockNode wraps a tag whose body spans multiple physical lines. Its
// construction trims the newline that follows the opening tag and the
// spaces that precede the closing one; rendering is a passthrough.
type blockNode struct {
	wrapper
}

func newBlockNode(content node) *blockNode {
	content.trimStartingNewline()
	content.trimEndingSpaces()
	return &blockNode{wrapper{content}}
}

// indentedNode wraps a leaf tag that sits alone on its own line, preceded
// by indentation. Rendering re-applies that indentation to every line the
// tag produces and closes with a single newline.
type indentedNode struct {
	wrapper
	indent int
}

// inlineNode wraps a tag that sits in the middle of a line of other text;
// any newlines its body produces are stripped at render time.
type inlineNode struct {
	wrapper
}

// applyLayout classifies every non-text node in a completed sibling list
// and trims the surrounding whitespace accordingly. Walks left to right so
// that a node's trims are visible to the classification of the next one.
func applyLayout(nodes []node) {
	for i, n := range nodes {
		if _, ok := n.(*textNode); ok {
			continue
		}

		var prev, next node
		if i > 0 {
			prev = nodes[i-1]
		}
		if i < len(nodes)-1 {
			next = nodes[i+1]
		}

		switch {
		case n.startLine() != n.endLine():
			// The tag's body spans lines: it owns them.
			if prev != nil {
				prev.trimEndingSpaces()
			}
			if next != nil {
				next.trimStartingNewline()
			}
			nodes[i] = newBlockNode(n)

		case isLeafTag(n) &&
			(prev == nil || prev.endsWithEmptyLine()) &&
			(next == nil || next.startsWithNewline()):
			indent := 0
			if prev != nil {
				indent = prev.trimEndingSpaces()
			}
			if next != nil {
				next.trimStartingNewline()
			}
			nodes[i] = &indentedNode{wrapper{n}, indent}

		default:
			nodes[i] = &inlineNode{wrapper{n}}
		}
	}
}

func (n *blockNode) render(rs *renderState) {
	n.content.render(rs)
}

func (n *indentedNode) render(rs *renderState) {
	if _, ok := n.content.(*commentNode); ok {
		return
	}
	child := rs.fork()
	n.content.render(child)
	pad := strings.Repeat(" ", n.indent)
	rs.merge(child, func(text string) string {
		return pad + strings.ReplaceAll(text, "\n", "\n"+pad) + "\n"
	})
}

func (n *inlineNode) render(rs *renderState) {
	child := rs.fork()
	n.content.render(child)
	rs.merge(child, func(text string) string {
		return strings.ReplaceAll(text, "\n", "")
	})
}
