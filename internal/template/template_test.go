package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitekit/internal/buildctx"
)

func vars(kv ...string) *buildctx.Context {
	c := buildctx.New()
	for i := 0; i+1 < len(kv); i += 2 {
		c.SetText(kv[i], kv[i+1])
	}
	return c
}

func TestCompile_Interpolation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		vars *buildctx.Context
		want string
	}{
		{"plain text", "no markers here", vars(), "no markers here"},
		{"bound", "Hello ~{ name }!", vars("name", "World"), "Hello World!"},
		{"no spaces", "~{name}", vars("name", "x"), "x"},
		{"verbatim value", "~{ v }", vars("v", "~{ other }"), "~{ other }"},
		{"unbound echoes", "~{ missing }", vars(), "~{ missing }~"},
		{"unbound normalizes spacing", "~{missing}", vars(), "~{ missing }~"},
		{"trailing remainder", "a~{ x }b~{ y }c", vars("x", "1", "y", "2"), "a1b2c"},
		{"lone tilde", "~ and ~} stay", vars(), "~ and ~} stay"},
		{"empty source", "", vars(), ""},
		{"path identifiers", "~{ site.name/x:y-z }", vars("site.name/x:y-z", "ok"), "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.src, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_PartInterpolation(t *testing.T) {
	c := vars()
	c.SetPart(buildctx.Part{Path: "_header.html", Content: "<header/>", MediaType: "text/html"})
	c.Set("tags", buildctx.List("a", "b"))

	got, err := Compile("~{ _header }|~{ tags }", c)
	require.NoError(t, err)
	assert.Equal(t, "<header/>|~{ tags }~", got)
}

func TestCompile_IfTruthiness(t *testing.T) {
	tests := []struct {
		name   string
		vars   *buildctx.Context
		plain  string
		negate string
	}{
		{"truthy text", vars("x", "yes"), "A", ""},
		{"empty string is truthy", vars("x", ""), "A", ""},
		{"false literal", vars("x", "false"), "", "A"},
		{"zero literal", vars("x", "0"), "", "A"},
		{"absent", vars(), "", "A"},
		{"other numbers", vars("x", "10"), "A", ""},
		{"capitalised False is truthy", vars("x", "False"), "A", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile("~{ if x }A~{ end }", tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.plain, got)

			got, err = Compile("~{ if !x }A~{ end }", tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.negate, got)
		})
	}
}

func TestCompile_NestedBlocks(t *testing.T) {
	tests := []struct {
		name string
		vars *buildctx.Context
		want string
	}{
		{"both truthy", vars("a", "1", "b", "1"), "[AB]"},
		{"outer truthy inner falsy", vars("a", "1", "b", "0"), "[]"},
		{"outer falsy", vars("a", "0", "b", "1"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile("~{ if a }[~{ if b }AB~{ end }]~{ end }", tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := Compile("~{ if a }~{ if b }AB~{ end }~{ end }", vars("a", "yes", "b", "false"))
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestCompile_FalsyBlockSkipsUnsupportedConstructs(t *testing.T) {
	src := "x~{ if off }~{ for item in items }~{ item }~{ end }~{ include \"a\" }~{ end }y"

	got, err := Compile(src, vars("off", "false"))
	require.NoError(t, err)
	assert.Equal(t, "xy", got)

	_, err = Compile(src, vars("off", "true"))
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestCompile_NotImplemented(t *testing.T) {
	_, err := Compile(`~{ include "header.html" }`, vars())
	require.ErrorIs(t, err, ErrNotImplemented)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 0, ce.Offset)

	_, err = Compile("~{ for x }body~{ end }", vars())
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestCompile_BlockErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
	}{
		{"unmatched end", "text ~{ end }", ErrUnexpectedEnd},
		{"extra end after block", "~{ if a }x~{ end }~{ end }", ErrUnexpectedEnd},
		{"unterminated if", "~{ if x }never closed", ErrUnclosedBlock},
		{"unterminated nested", "~{ if a }~{ if b }~{ end }", ErrUnclosedBlock},
		{"unterminated for", "~{ for x }", ErrUnclosedBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, vars("a", "1", "x", "1"))
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestCompile_UnclosedNamesDanglingSpan(t *testing.T) {
	_, err := Compile("ok ~{ if x }dangling", vars())

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.Offset)
	assert.Equal(t, "~{ if x }dangling", ce.Snippet)
	assert.Contains(t, err.Error(), "unclosed block")
}

func TestCompile_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated marker", "a ~{ name"},
		{"empty expression", "~{ }"},
		{"string head", `~{ "x" }`},
		{"negated head", "~{ !x }"},
		{"if without condition", "~{ if }~{ end }"},
		{"if with two conditions", "~{ if a b }~{ end }"},
		{"if with string", `~{ if "a" }~{ end }`},
		{"end with args", "~{ if a }~{ end a }"},
		{"unterminated string", `~{ f "abc }`},
		{"bad character", "~{ a = b }"},
		{"negation in call", "~{ f !a }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, vars())
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParse_StringEscapes(t *testing.T) {
	tpl, err := Parse(`~{ f "a\"b" "c\nd" "e\tf" "g\\h" "\q" bare }`)
	require.NoError(t, err)

	tokens := tpl.Tokens()
	require.Len(t, tokens, 1)
	expr := tokens[0].Expr
	assert.Equal(t, ExprFunctionCall, expr.Kind)
	assert.Equal(t, "f", expr.Name)
	assert.Equal(t, []Arg{
		{Value: `a"b`, Quoted: true},
		{Value: "c\nd", Quoted: true},
		{Value: "e\tf", Quoted: true},
		{Value: `g\h`, Quoted: true},
		{Value: "q", Quoted: true},
		{Value: "bare"},
	}, expr.Args)
}

func TestParse_QuotedBraceDoesNotCloseMarker(t *testing.T) {
	tpl, err := Parse(`~{ f "}" }tail`)
	require.NoError(t, err)
	tokens := tpl.Tokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, "}", tokens[0].Expr.Args[0].Value)
	assert.Equal(t, TokenText, tokens[1].Kind)
}

func TestParse_TokenSpans(t *testing.T) {
	src := "a~{ if x }b~{ end }c"
	tpl, err := Parse(src)
	require.NoError(t, err)

	var spans []string
	for _, tok := range tpl.Tokens() {
		spans = append(spans, src[tok.Start:tok.End])
	}
	assert.Equal(t, []string{"a", "~{ if x }", "b", "~{ end }", "c"}, spans)
	assert.Equal(t, ExprIf, tpl.Tokens()[1].Expr.Kind)
	assert.False(t, tpl.Tokens()[1].Expr.Negated)
}

func TestTemplate_ExecuteIsReusable(t *testing.T) {
	tpl, err := Parse("~{ if on }~{ v }~{ end }")
	require.NoError(t, err)

	a, err := tpl.Execute(vars("on", "1", "v", "first"))
	require.NoError(t, err)
	b, err := tpl.Execute(vars("on", "0", "v", "second"))
	require.NoError(t, err)

	assert.Equal(t, "first", a)
	assert.Equal(t, "", b)
}
