package handlebar

import "fmt"

// parser consumes a token stream recursively. Each parseSection call
// builds one sibling list and runs the layout pass over it before handing
// it back.
type parser struct {
	tokens *tokenStream
}

// parseTemplate builds the root node of a template, or nil when the
// template is empty.
func parseTemplate(source string) (node, error) {
	p := &parser{tokens: newTokenStream(source)}
	root, err := p.parseSection(false)
	if err != nil {
		return nil, err
	}
	if p.tokens.hasNext() {
		return nil, p.errorf(
			"there are still tokens remaining; was there an end-section without a start-section?")
	}
	return root, nil
}

// parseSection consumes tokens until a terminating token ({{/, {{=, the
// end of input, or {{: while an enclosing existence test may take an else
// branch) and returns the collected siblings as a single node. elseOK is
// true only while parsing the primary body of a {{?}} or {{^}} section;
// everywhere else {{: opens a switch.
func (p *parser) parseSection(elseOK bool) (node, error) {
	var nodes []node

loop:
	for p.tokens.hasNext() {
		switch p.tokens.next {
		case tokenCharacter:
			start := p.tokens.line
			text := p.tokens.nextString("")
			nodes = append(nodes, &textNode{text: text, start: start, end: p.tokens.line})

		case tokenOpenVariable, tokenOpenUnescaped, tokenStartJSON:
			open := p.tokens.next
			id, err := p.openTag(open)
			if err != nil {
				return nil, err
			}
			line := p.tokens.line
			switch open {
			case tokenOpenVariable:
				nodes = append(nodes, &escapedNode{leaf{line, line}, id})
			case tokenOpenUnescaped:
				nodes = append(nodes, &unescapedNode{leaf{line, line}, id})
			case tokenStartJSON:
				nodes = append(nodes, &jsonNode{leaf{line, line}, id})
			}

		case tokenStartPartial:
			pn, err := p.parsePartial()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, pn)

		case tokenStartSection:
			id, err := p.openTag(tokenStartSection)
			if err != nil {
				return nil, err
			}
			body, err := p.parseSection(false)
			if err != nil {
				return nil, err
			}
			if err := p.closeSection(id); err != nil {
				return nil, err
			}
			if body != nil {
				nodes = append(nodes, &sectionNode{wrapper{body}, id})
			}

		case tokenStartVertedSection, tokenStartInvertedSection:
			open := p.tokens.next
			id, err := p.openTag(open)
			if err != nil {
				return nil, err
			}
			body, err := p.parseSection(true)
			if err != nil {
				return nil, err
			}
			var elseBody node
			if p.tokens.hasNext() && p.tokens.next == tokenElse {
				if err := p.openElse(id); err != nil {
					return nil, err
				}
				if elseBody, err = p.parseSection(false); err != nil {
					return nil, err
				}
			}
			if err := p.closeSection(id); err != nil {
				return nil, err
			}
			// The else branch is the same construct with its sense
			// flipped, attached as a sibling under the same identifier.
			if open == tokenStartVertedSection {
				if body != nil {
					nodes = append(nodes, &vertedSectionNode{wrapper{body}, id})
				}
				if elseBody != nil {
					nodes = append(nodes, &invertedSectionNode{wrapper{elseBody}, id})
				}
			} else {
				if body != nil {
					nodes = append(nodes, &invertedSectionNode{wrapper{body}, id})
				}
				if elseBody != nil {
					nodes = append(nodes, &vertedSectionNode{wrapper{elseBody}, id})
				}
			}

		case tokenElse:
			if elseOK {
				break loop
			}
			sw, err := p.parseSwitch()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, sw)

		case tokenOpenComment:
			start := p.tokens.line
			if err := p.parseComment(); err != nil {
				return nil, err
			}
			nodes = append(nodes, &commentNode{leaf{start, p.tokens.line}})

		case tokenCase, tokenEndSection:
			// Terminating tokens, handled by the caller that opened the
			// construct. An orphaned end-section at the top level shows up
			// as leftover tokens after parseTemplate's root call returns.
			break loop

		default:
			return nil, p.errorf("orphaned %s", p.tokens.next)
		}
	}

	applyLayout(nodes)

	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nodes[0], nil
	default:
		return &collection{nodes}, nil
	}
}

// openTag consumes an opening marker, its identifier and the matching
// close marker (triple for {{{, double otherwise).
func (p *parser) openTag(open tokenKind) (identifier, error) {
	if err := p.tokens.advanceOver(open); err != nil {
		return identifier{}, err
	}
	line := p.tokens.line
	id, err := parseIdentifier(p.tokens.nextString(""), line)
	if err != nil {
		return identifier{}, err
	}
	closing := tokenClose
	if open == tokenOpenUnescaped {
		closing = tokenCloseTriple
	}
	if err := p.tokens.advanceOver(closing); err != nil {
		return identifier{}, err
	}
	return id, nil
}

// parsePartial handles {{+name key:value ... }}.
func (p *parser) parsePartial() (*partialNode, error) {
	if err := p.tokens.advanceOver(tokenStartPartial); err != nil {
		return nil, err
	}
	line := p.tokens.line
	id, err := parseIdentifier(p.tokens.nextToWhitespace(), line)
	if err != nil {
		return nil, err
	}
	pn := &partialNode{id: id}

	for p.tokens.hasNext() && p.tokens.next == tokenCharacter {
		p.tokens.skipWhitespace()
		if !p.tokens.hasNext() || p.tokens.next != tokenCharacter {
			break
		}
		key := p.tokens.nextString(":")
		if key == "" || !p.tokens.hasNext() || p.tokens.contents != ":" {
			return nil, p.errorf("malformed argument to partial '%s'", id)
		}
		p.tokens.advance()
		argLine := p.tokens.line
		argID, err := parseIdentifier(p.tokens.nextToWhitespace(), argLine)
		if err != nil {
			return nil, err
		}
		if key == "@" {
			pn.localContext = &argID
		} else {
			pn.addArgument(key, argID)
		}
	}

	if err := p.tokens.advanceOver(tokenClose); err != nil {
		return nil, err
	}
	pn.leaf = leaf{p.tokens.line, p.tokens.line}
	return pn, nil
}

// parseSwitch handles {{:condition}}{{=case}} ... {{/}}.
func (p *parser) parseSwitch() (*switchNode, error) {
	start := p.tokens.line
	id, err := p.openTag(tokenElse)
	if err != nil {
		return nil, err
	}
	sw := &switchNode{id: id}

	// Chew up any stray text between the condition and the first case.
	for p.tokens.hasNext() && p.tokens.next == tokenCharacter {
		p.tokens.advance()
	}

	for p.tokens.hasNext() && p.tokens.next == tokenCase {
		p.tokens.advance()
		caseValue := p.tokens.nextString("")
		if err := p.tokens.advanceOver(tokenClose); err != nil {
			return nil, err
		}
		body, err := p.parseSection(false)
		if err != nil {
			return nil, err
		}
		sw.addCase(caseValue, body)
	}

	if err := p.closeSection(id); err != nil {
		return nil, err
	}
	sw.leaf = leaf{start, p.tokens.line}
	return sw, nil
}

// parseComment consumes {{- ... -}}, tracking nesting depth.
func (p *parser) parseComment() error {
	if err := p.tokens.advanceOver(tokenOpenComment); err != nil {
		return err
	}
	depth := 1
	for p.tokens.hasNext() && depth > 0 {
		switch p.tokens.next {
		case tokenOpenComment:
			depth++
		case tokenCloseComment:
			depth--
		}
		p.tokens.advance()
	}
	if depth > 0 {
		return p.errorf("unterminated comment")
	}
	return nil
}

// closeSection consumes {{/name}}, requiring name, when present, to match
// the identifier that opened the section.
func (p *parser) closeSection(id identifier) error {
	if err := p.tokens.advanceOver(tokenEndSection); err != nil {
		return err
	}
	name := p.tokens.nextString("")
	if name != "" && name != id.String() {
		return p.errorf("start section '%s' does not match end section '%s'", id, name)
	}
	return p.tokens.advanceOver(tokenClose)
}

// openElse consumes {{:name}}, requiring name, when present, to match the
// identifier of the section it branches.
func (p *parser) openElse(id identifier) error {
	if err := p.tokens.advanceOver(tokenElse); err != nil {
		return err
	}
	name := p.tokens.nextString("")
	if name != "" && name != id.String() {
		return p.errorf("start section '%s' does not match else '%s'", id, name)
	}
	return p.tokens.advanceOver(tokenClose)
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    p.tokens.line,
	}
}
