package handlebar

import (
	"strings"
)

// tokenKind classifies the markers that can appear in template source.
type tokenKind int

const (
	tokenStartSection         tokenKind = iota // {{#
	tokenStartVertedSection                    // {{?
	tokenStartInvertedSection                  // {{^
	tokenStartJSON                             // {{*
	tokenStartPartial                          // {{+
	tokenElse                                  // {{: (also opens a switch)
	tokenCase                                  // {{=
	tokenEndSection                            // {{/
	tokenOpenUnescaped                         // {{{
	tokenCloseTriple                           // }}}
	tokenOpenComment                           // {{-
	tokenCloseComment                          // -}}
	tokenOpenVariable                          // {{
	tokenClose                                 // }}
	tokenCharacter                             // any single character
)

// tokenLiterals is consulted in order, longest literals first, so that
// "{{" never matches ahead of "{{#" and friends.
var tokenLiterals = [...]struct {
	kind    tokenKind
	literal string
}{
	{tokenStartSection, "{{#"},
	{tokenStartVertedSection, "{{?"},
	{tokenStartInvertedSection, "{{^"},
	{tokenStartJSON, "{{*"},
	{tokenStartPartial, "{{+"},
	{tokenElse, "{{:"},
	{tokenCase, "{{="},
	{tokenEndSection, "{{/"},
	{tokenOpenUnescaped, "{{{"},
	{tokenCloseTriple, "}}}"},
	{tokenOpenComment, "{{-"},
	{tokenCloseComment, "-}}"},
	{tokenOpenVariable, "{{"},
	{tokenClose, "}}"},
}

func (k tokenKind) String() string {
	for _, t := range tokenLiterals {
		if t.kind == k {
			return "'" + t.literal + "'"
		}
	}
	return "character"
}

// tokenStream is the tokenizer cursor: it exposes the next token and its
// literal contents, and the line the next token starts on.
type tokenStream struct {
	remainder string
	next      tokenKind
	contents  string
	line      int
	done      bool
}

func newTokenStream(source string) *tokenStream {
	ts := &tokenStream{remainder: source, line: 1}
	ts.advance()
	return ts
}

func (ts *tokenStream) hasNext() bool {
	return !ts.done
}

// advance consumes the current token and scans the next one. The line
// counter moves when the consumed token was a single newline character.
func (ts *tokenStream) advance() {
	if ts.contents == "\n" {
		ts.line++
	}

	ts.next = tokenCharacter
	ts.contents = ""

	if ts.remainder == "" {
		ts.done = true
		return
	}

	width := 1
	for _, t := range tokenLiterals {
		if strings.HasPrefix(ts.remainder, t.literal) {
			ts.next = t.kind
			width = len(t.literal)
			break
		}
	}

	ts.contents = ts.remainder[:width]
	ts.remainder = ts.remainder[width:]
}

// advanceOver consumes the next token, failing if it is not the expected
// kind.
func (ts *tokenStream) advanceOver(expected tokenKind) error {
	if ts.done {
		return &ParseError{
			Message: "expected " + expected.String() + " but reached the end of the template",
			Line:    ts.line,
		}
	}
	if ts.next != expected {
		return &ParseError{
			Message: "expected " + expected.String() + " but found " + ts.next.String(),
			Line:    ts.line,
		}
	}
	ts.advance()
	return nil
}

// nextString consumes a run of character tokens, stopping at the first
// non-character token or at any character in excluded.
func (ts *tokenStream) nextString(excluded string) string {
	var buf strings.Builder
	for !ts.done && ts.next == tokenCharacter &&
		(excluded == "" || !strings.Contains(excluded, ts.contents)) {
		buf.WriteString(ts.contents)
		ts.advance()
	}
	return buf.String()
}

// nextToWhitespace consumes character tokens up to the next whitespace.
func (ts *tokenStream) nextToWhitespace() string {
	return ts.nextString(" \n\r\t")
}

// skipWhitespace consumes any run of whitespace character tokens.
func (ts *tokenStream) skipWhitespace() {
	for !ts.done && ts.next == tokenCharacter &&
		strings.Contains(" \n\r\t", ts.contents) {
		ts.advance()
	}
}
