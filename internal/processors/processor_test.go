package processors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/media"
)

func TestKinds_ExecutionOrderAndPhases(t *testing.T) {
	names := make([]string, 0)
	for _, k := range Kinds() {
		names = append(names, k.String())
	}
	assert.Equal(t, []string{
		"template", "markdown", "scss", "js-bundle", "image", "favicon",
		"pattern", "canonicalize", "minify-html", "minify-js",
	}, names)

	assert.Equal(t, PhaseTransform, KindFavicon.Phase())
	assert.Equal(t, PhaseWrap, KindPattern.Phase())
	assert.Equal(t, PhaseFinalize, KindCanonicalize.Phase())
	assert.Equal(t, PhaseFinalize, KindMinifyJS.Phase())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("sass")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestProcessingError_IsMatchesKind(t *testing.T) {
	err := Defer("waiting for %s", "blog")
	assert.True(t, errors.Is(err, ErrDeferred))
	assert.True(t, IsDeferred(err))
	assert.False(t, errors.Is(err, ErrNonTextual))
	assert.Equal(t, "deferred: waiting for blog", err.Error())

	wrapped := CompilationError(ErrCommandNotFound, "sass")
	assert.ErrorIs(t, wrapped, ErrCommandNotFound)
	assert.False(t, IsDeferred(wrapped))
}

func TestShapeErrors_WrapAssetErrors(t *testing.T) {
	bin := asset.NewBinary("a.png", media.PNG, []byte{1, 2})
	_, err := textOf(bin)
	assert.ErrorIs(t, err, ErrNonTextual)
	assert.ErrorIs(t, err, asset.ErrNonTextual)

	txt := asset.NewText("a.txt", media.PlainText, "x")
	_, err = bytesOf(txt)
	assert.ErrorIs(t, err, ErrNonBinary)

	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, NonBinary, pe.Kind)
}

func TestNewPlan_OrdersByPhase(t *testing.T) {
	plan, err := NewPlan([]Entry{
		{Kind: KindMinifyHTML},
		{Kind: KindMarkdown},
		{Kind: KindPattern},
		{Kind: KindCanonicalize, Canonicalize: CanonicalizeOptions{Root: "https://example.com"}},
		{Kind: KindTemplate},
	}, Env{})
	require.NoError(t, err)

	kinds := func(stages []Stage) []Kind {
		out := make([]Kind, 0, len(stages))
		for _, s := range stages {
			out = append(out, s.Kind)
		}
		return out
	}
	assert.Equal(t, []Kind{KindTemplate, KindMarkdown}, kinds(plan.Transform))
	assert.Equal(t, []Kind{KindCanonicalize, KindMinifyHTML}, kinds(plan.Finalize))
	assert.True(t, plan.Pattern)
	assert.Equal(t, "https://example.com/", plan.CanonicalRoot)
	assert.True(t, plan.Canonicalizes())
	assert.True(t, plan.Has(KindMarkdown))
	assert.True(t, plan.Has(KindPattern))
	assert.False(t, plan.Has(KindSCSS))
}

func TestNewPlan_Errors(t *testing.T) {
	_, err := NewPlan([]Entry{{Kind: KindMarkdown}, {Kind: KindMarkdown}}, Env{})
	assert.ErrorIs(t, err, ErrDuplicateProcessor)

	_, err = NewPlan([]Entry{{Kind: KindCanonicalize}}, Env{})
	assert.ErrorIs(t, err, ErrMissingRoot)

	_, err = NewPlan([]Entry{{Kind: Kind(42)}}, Env{})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	fav, ok := New(Entry{Kind: KindFavicon}, Env{}).(*Favicon)
	require.True(t, ok)
	assert.Equal(t, DefaultFaviconSize, fav.Size)

	scss, ok := New(Entry{Kind: KindSCSS}, Env{SourceRoot: "src"}).(*SCSS)
	require.True(t, ok)
	assert.Equal(t, "sass", scss.Tool.Command)
	assert.Equal(t, "src", scss.LoadPath)

	js, ok := New(Entry{Kind: KindJSBundle, Tool: ToolOptions{Minify: true}}, Env{}).(*JSBundle)
	require.True(t, ok)
	assert.Equal(t, "esbuild", js.Tool.Command)
	assert.True(t, js.Tool.Minify)

	assert.Nil(t, New(Entry{Kind: KindPattern}, Env{}))
}
