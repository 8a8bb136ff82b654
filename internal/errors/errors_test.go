package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateErrorMessage(t *testing.T) {
	err := &TemplateError{
		Op:       OpCompile,
		Template: "page",
		Path:     "templates/page.hb",
		Err:      stderrors.New("empty identifier (line 3)"),
	}
	assert.Equal(t,
		`compile "page" (templates/page.hb): empty identifier (line 3)`,
		err.Error())
}

func TestTemplateErrorPartialFields(t *testing.T) {
	err := &TemplateError{Op: OpWatch, Err: stderrors.New("too many open files")}
	assert.Equal(t, "watch: too many open files", err.Error())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(OpLoad, "x", "x.hb", nil))

	inner := stderrors.New("no such file")
	err := Wrap(OpLoad, "x", "x.hb", inner)
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, OpLoad, tmplErr.Op)
	assert.Equal(t, "x.hb", tmplErr.Path)
}

func TestRenderProblems(t *testing.T) {
	err := &RenderProblems{
		Template: "page",
		Problems: []string{"failed to resolve 'a' at line 1 in page", "failed to resolve 'b' at line 2 in page"},
	}
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Contains(t, err.Error(), "failed to resolve 'a'")
}
