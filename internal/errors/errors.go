package errors

import (
	"fmt"
	"strings"
)

// Op identifies the operation that failed
type Op string

const (
	OpLoad    Op = "load"
	OpCompile Op = "compile"
	OpRender  Op = "render"
	OpWatch   Op = "watch"
	OpConfig  Op = "config"
)

// TemplateError is the structured error for template infrastructure failures
type TemplateError struct {
	Op       Op
	Template string // template name, when known
	Path     string // file path, when the failure is file-bound
	Err      error
}

// Error implements the error interface
func (e *TemplateError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Op))
	if e.Template != "" {
		fmt.Fprintf(&b, " %q", e.Template)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// Wrap annotates an error with the failing operation and template identity.
// A nil err yields nil.
func Wrap(op Op, template, path string, err error) error {
	if err == nil {
		return nil
	}
	return &TemplateError{Op: op, Template: template, Path: path, Err: err}
}

// RenderProblems aggregates the resolution errors of one render into a
// single error value, for callers that treat them as fatal.
type RenderProblems struct {
	Template string
	Problems []string
}

// Error implements the error interface
func (e *RenderProblems) Error() string {
	return fmt.Sprintf("rendering %q produced %d problem(s):\n  %s",
		e.Template, len(e.Problems), strings.Join(e.Problems, "\n  "))
}
