package handlebar

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// render compiles a template and renders it against contexts, failing the
// test on parse errors.
func render(t *testing.T, source string, contexts ...any) *RenderResult {
	t.Helper()
	tmpl, err := Compile(source)
	require.NoError(t, err)
	return tmpl.Render(contexts...)
}

func TestRenderBehavior(t *testing.T) {
	tests := []struct {
		name     string
		template string
		context  any
		want     string
	}{
		{
			name:     "flat",
			template: "hello {{name}}",
			context:  map[string]any{"name": "world"},
			want:     "hello world",
		},
		{
			name:     "paths",
			template: "x{{a.b.c}}y",
			context:  map[string]any{"a": map[string]any{"b": map[string]any{"c": 42}}},
			want:     "x42y",
		},
		{
			name:     "this in iteration",
			template: "{{#list}} {{@}} {{/list}}",
			context:  map[string]any{"list": []any{1, 2, 3}},
			want:     " 1  2  3 ",
		},
		{
			name:     "object section promotes members",
			template: "a{{#obj}}{{x}}{{/obj}}b",
			context:  map[string]any{"obj": map[string]any{"x": "mid"}},
			want:     "amidb",
		},
		{
			name:     "nested scoping",
			template: "{{foo.bar.foo}} {{?foo}}{{bar.foo}}{{/foo}}",
			context:  map[string]any{"foo": map[string]any{"bar": map[string]any{"foo": 42}}},
			want:     "42 42",
		},
		{
			name:     "empty list renders nothing",
			template: "a{{#list}}x{{/list}}b",
			context:  map[string]any{"list": []any{}},
			want:     "ab",
		},
		{
			name:     "null section renders nothing",
			template: "a{{#gone}}x{{/gone}}b",
			context:  map[string]any{"gone": nil},
			want:     "ab",
		},
		{
			name:     "null variable renders nothing",
			template: "a{{gone}}b",
			context:  map[string]any{"gone": nil},
			want:     "ab",
		},
		{
			name:     "escaping",
			template: "x{{v}}y",
			context:  map[string]any{"v": "<a>&\"quoted\""},
			want:     "x&lt;a&gt;&amp;\"quoted\"y",
		},
		{
			name:     "unescaped",
			template: "x{{{v}}}y",
			context:  map[string]any{"v": "<a>&"},
			want:     "x<a>&y",
		},
		{
			name:     "existence falsy renders nothing",
			template: "x{{?missing}}a{{/missing}}y",
			context:  map[string]any{},
			want:     "xy",
		},
		{
			name:     "existence truthy pushes value",
			template: "x{{?s}}{{@}}{{/s}}y",
			context:  map[string]any{"s": "hi"},
			want:     "xhiy",
		},
		{
			name:     "inverted section",
			template: "x{{^missing}}a{{/missing}}y",
			context:  map[string]any{},
			want:     "xay",
		},
		{
			name:     "verted else taken",
			template: "{{?a}}yes{{:}}no{{/a}}",
			context:  map[string]any{},
			want:     "no",
		},
		{
			name:     "verted else not taken",
			template: "{{?a}}yes{{:}}no{{/a}}",
			context:  map[string]any{"a": 1},
			want:     "yes",
		},
		{
			name:     "inverted else",
			template: "{{^a}}no{{:}}yes{{/a}}",
			context:  map[string]any{"a": 1},
			want:     "yes",
		},
		{
			name:     "named else branch",
			template: "{{?a}}yes{{:a}}no{{/a}}",
			context:  map[string]any{},
			want:     "no",
		},
		{
			name:     "json tag",
			template: "x{{*v}}y",
			context:  map[string]any{"v": map[string]any{"b": 1, "a": []any{true, nil}}},
			want:     `x{"a":[true,null],"b":1}y`,
		},
		{
			name:     "switch dispatch",
			template: "{{:x}} {{=a}}A{{=b}}B{{/x}}",
			context:  map[string]any{"x": "b"},
			want:     "B",
		},
		{
			name:     "switch missing case renders nothing",
			template: "l{{:x}} {{=a}}A{{/x}}r",
			context:  map[string]any{"x": "zzz"},
			want:     "lr",
		},
		{
			name:     "comment",
			template: "a{{- this is ignored -}}b",
			context:  map[string]any{},
			want:     "ab",
		},
		{
			name:     "nested comment",
			template: "a{{- outer {{- inner -}} outer -}}b",
			context:  map[string]any{},
			want:     "ab",
		},
		{
			name:     "comment owns its line",
			template: "a\n{{- note -}}\nb",
			context:  map[string]any{},
			want:     "a\nb",
		},
		{
			name:     "optional end section name",
			template: "{{#a}}x{{/}}{{#a}}y{{/a}}",
			context:  map[string]any{"a": map[string]any{}},
			want:     "xy",
		},
		{
			name:     "booleans render as text",
			template: "{{t}}/{{f}}",
			context:  map[string]any{"t": true, "f": false},
			want:     "true/false",
		},
		{
			name:     "deep null path renders nothing inside existence",
			template: "x{{?a.b}}bad{{/}}y",
			context:  map[string]any{"a": nil},
			want:     "xy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := render(t, tt.template, tt.context)
			assert.Equal(t, tt.want, result.Text)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	t.Run("unresolved identifier records one error", func(t *testing.T) {
		result := render(t, "x{{missing}}y", map[string]any{})
		assert.Equal(t, "xy", result.Text)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "'missing'")
	})

	t.Run("existence test records no error", func(t *testing.T) {
		result := render(t, "x{{?missing}}a{{/}}y", map[string]any{})
		assert.Equal(t, "xy", result.Text)
		assert.Empty(t, result.Errors)
	})

	t.Run("section over scalar", func(t *testing.T) {
		result := render(t, "x{{#n}}a{{/n}}y", map[string]any{"n": 5})
		assert.Equal(t, "xy", result.Text)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "cannot be rendered with a number")
	})

	t.Run("switch over non-string", func(t *testing.T) {
		result := render(t, "{{:x}} {{=a}}A{{/x}}", map[string]any{"x": 3})
		assert.Empty(t, result.Text)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "did not resolve to a string")
	})

	t.Run("partial that is not a template", func(t *testing.T) {
		result := render(t, "a{{+p}}b", map[string]any{"p": "just a string"})
		assert.Equal(t, "ab", result.Text)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "did not resolve to a template")
	})

	t.Run("relative path does not fall back", func(t *testing.T) {
		result := render(t, "p{{#items}}{{@.name}}{{/}}q", map[string]any{
			"items": []any{map[string]any{}},
			"name":  "outer",
		})
		assert.Equal(t, "pq", result.Text)
		require.Len(t, result.Errors, 1)
	})

	t.Run("render with no contexts", func(t *testing.T) {
		result := render(t, "x{{a}}y")
		assert.Equal(t, "xy", result.Text)
		assert.Len(t, result.Errors, 1)
	})
}

func TestRenderPartials(t *testing.T) {
	t.Run("inline inclusion", func(t *testing.T) {
		partial := MustCompile("-{{x}}-")
		result := render(t, "a{{+p}}b", map[string]any{"p": partial, "x": 1})
		assert.Equal(t, "a-1-b", result.Text)
		assert.Empty(t, result.Errors)
	})

	t.Run("inherits the caller's innermost scope", func(t *testing.T) {
		partial := MustCompile("{{foo}}...")
		result := render(t, "{{#list}}{{+partial}}{{/list}}", map[string]any{
			"partial": partial,
			"list": []any{
				map[string]any{"foo": 42},
				map[string]any{"foo": 56},
			},
		})
		assert.Equal(t, "42...56...", result.Text)
		assert.Empty(t, result.Errors)
	})

	t.Run("named arguments", func(t *testing.T) {
		partial := MustCompile("[{{x}} {{y}}]")
		result := render(t, "a{{+p x:foo y:bar.baz}}b", map[string]any{
			"p":   partial,
			"foo": 1,
			"bar": map[string]any{"baz": "two"},
		})
		assert.Equal(t, "a[1 two]b", result.Text)
		assert.Empty(t, result.Errors)
	})

	t.Run("local context argument", func(t *testing.T) {
		partial := MustCompile("{{foo}}")
		result := render(t, "a{{+p @:item}}b", map[string]any{
			"p":    partial,
			"item": map[string]any{"foo": "inner"},
		})
		assert.Equal(t, "ainnerb", result.Text)
		assert.Empty(t, result.Errors)
	})

	t.Run("drops one trailing newline", func(t *testing.T) {
		partial := MustCompile("line\n")
		result := render(t, "a{{+p}}b", map[string]any{"p": partial})
		assert.Equal(t, "alineb", result.Text)
	})

	t.Run("newlines stripped when used mid-sentence", func(t *testing.T) {
		partial := MustCompile("x\ny\n")
		result := render(t, "a {{+p}} b", map[string]any{"p": partial})
		assert.Equal(t, "a xy b", result.Text)
	})

	t.Run("indented inclusion reproduces indentation", func(t *testing.T) {
		partial := MustCompile("a\nb\n")
		result := render(t, "  {{+p}}\n", map[string]any{"p": partial})
		assert.Equal(t, "  a\n  b\n", result.Text)
	})

	t.Run("error carries the inclusion chain", func(t *testing.T) {
		partial, err := CompileNamed("inner", "x{{missing}}y")
		require.NoError(t, err)
		result := render(t, "a{{+p}}b", map[string]any{"p": partial})
		assert.Equal(t, "axyb", result.Text)
		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[0], "in inner")
		assert.Contains(t, result.Errors[1], "included as")
	})

	t.Run("transitive partials", func(t *testing.T) {
		inner := MustCompile("core")
		outer := MustCompile("<{{+inner}}>")
		result := render(t, "a{{+outer}}b", map[string]any{
			"outer": outer,
			"inner": inner,
		})
		assert.Equal(t, "a<core>b", result.Text)
		assert.Empty(t, result.Errors)
	})
}

func TestRenderMultipleContexts(t *testing.T) {
	first := map[string]any{"name": "first", "only": "here"}
	second := map[string]any{"name": "second", "extra": "there"}

	result := render(t, "{{name}}/{{only}}/{{extra}}", first, second)
	assert.Equal(t, "first/here/there", result.Text)
	assert.Empty(t, result.Errors)
}

func TestRenderIdempotent(t *testing.T) {
	tmpl := MustCompile("{{#l}} {{@}} {{/l}}{{*m}}")
	ctx := map[string]any{
		"l": []any{1, 2},
		"m": map[string]any{"b": 2, "a": 1},
	}

	a := tmpl.Render(ctx)
	b := tmpl.Render(ctx)
	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Errors, b.Errors)
}

func TestRenderConcurrent(t *testing.T) {
	tmpl := MustCompile("{{#list}}{{@}},{{/list}}")
	ctx := map[string]any{"list": []any{1, 2, 3}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				result := tmpl.Render(ctx)
				if result.Text != "1,2,3," {
					t.Errorf("got %q", result.Text)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEmptyTemplate(t *testing.T) {
	tmpl, err := Compile("")
	require.NoError(t, err)
	result := tmpl.Render(map[string]any{"a": 1})
	assert.Empty(t, result.Text)
	assert.Empty(t, result.Errors)
}
