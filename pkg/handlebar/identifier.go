package handlebar

import (
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)

// identifier is an immutable reference of the form "@", "foo.bar.baz" or
// "@.foo.bar.baz". The "@" forms resolve against the head of the context
// stack only; a plain path searches the whole stack.
type identifier struct {
	// path is the dotted path, empty for the bare this-marker.
	path string
	// this marks the "@" and "@." forms.
	this bool
	// line is where the identifier appeared, for error messages.
	line int
}

// parseIdentifier validates and decomposes the text of an identifier.
func parseIdentifier(text string, line int) (identifier, error) {
	id := identifier{line: line}
	switch {
	case text == "":
		return id, &ParseError{Message: "empty identifier", Line: line}
	case text == "@":
		id.this = true
		return id, nil
	case strings.HasPrefix(text, "@."):
		id.this = true
		id.path = text[len("@."):]
	default:
		id.path = text
	}
	if !identPattern.MatchString(id.path) {
		return id, &ParseError{
			Message: fmt.Sprintf("%q is not a valid identifier", text),
			Line:    line,
		}
	}
	return id, nil
}

// String returns the identifier as written in the template.
func (id identifier) String() string {
	if !id.this {
		return id.path
	}
	if id.path == "" {
		return "@"
	}
	return "@." + id.path
}

// description is the form used in resolution error messages.
func (id identifier) description() string {
	return fmt.Sprintf("'%s' at line %d", id.String(), id.line)
}
