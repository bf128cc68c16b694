package processors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/media"
	"git.home.luguber.info/inful/sitekit/internal/template"
)

func TestTemplate_FrontmatterAndInterpolation(t *testing.T) {
	ctx := buildctx.New()
	ctx.SetText("site", "Example")
	a := asset.NewText("about.md", media.Markdown, "---\ntitle: About\npattern: page\n---\n# ~{ title } at ~{ site }\n")

	require.NoError(t, Template{}.Process(ctx, a))

	text, _ := a.Text()
	assert.Equal(t, "# About at Example\n", text)
	p, _ := ctx.Text(buildctx.KeyPattern)
	assert.Equal(t, "page", p)
	front, _ := ctx.Text(buildctx.KeyFrontmatter)
	assert.Equal(t, "title: About\npattern: page\n", front)
	assert.True(t, ctx.Truthy(buildctx.KeyCompiled))
}

func TestTemplate_CompilesOncePerRound(t *testing.T) {
	ctx := buildctx.New()
	ctx.SetText("x", "1")
	a := asset.NewText("a.html", media.HTML, "~{ x }")
	require.NoError(t, Template{}.Process(ctx, a))

	a.SetText("~{ x }")
	require.NoError(t, Template{}.Process(ctx, a))
	text, _ := a.Text()
	assert.Equal(t, "~{ x }", text)
}

func TestTemplate_PatternFrontmatterDoesNotOverride(t *testing.T) {
	ctx := buildctx.New()
	ctx.SetText("title", "Page")
	ctx.SetText(buildctx.KeyContent, "<p>body</p>")
	a := asset.NewText("about.md", media.HTML, "---\ntitle: Layout\nlang: en\n---\n<h1>~{ title }</h1>~{ content }")

	require.NoError(t, Template{}.Process(ctx, a))

	text, _ := a.Text()
	assert.Equal(t, "<h1>Page</h1><p>body</p>", text)
	lang, _ := ctx.Text("lang")
	assert.Equal(t, "en", lang)
}

func TestTemplate_RequiresDefersOnPendingListing(t *testing.T) {
	src := "---\nrequires: [blog]\n---\nindex"

	tests := []struct {
		name     string
		prepare  func(*buildctx.Context)
		deferred bool
	}{
		{name: "pending listing", prepare: func(c *buildctx.Context) { c.SeedListing("blog") }, deferred: true},
		{name: "absent listing", prepare: func(*buildctx.Context) {}},
		{name: "ready listing", prepare: func(c *buildctx.Context) {
			c.AppendListing("blog", buildctx.NewTable().SetText(buildctx.KeyPath, "blog/a.md"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := buildctx.New()
			tt.prepare(ctx)
			a := asset.NewText("index.html", media.HTML, src)
			err := Template{}.Process(ctx, a)
			if tt.deferred {
				assert.ErrorIs(t, err, ErrDeferred)
				return
			}
			require.NoError(t, err)
			text, _ := a.Text()
			assert.Equal(t, "index", text)
		})
	}
}

func TestTemplate_CompileErrorIsTyped(t *testing.T) {
	a := asset.NewText("a.html", media.HTML, "~{ end }")
	err := Template{}.Process(buildctx.New(), a)

	var ce *template.CompileError
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, template.ErrUnexpectedEnd)
}

func TestTemplate_Errors(t *testing.T) {
	err := Template{}.Process(buildctx.New(), asset.New("a.html", media.HTML))
	assert.ErrorIs(t, err, ErrNonTextual)

	err = Template{}.Process(buildctx.New(), asset.NewText("a.md", media.Markdown, "---\ntitle: x\n"))
	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, Malformed, pe.Kind)

	// binary types are skipped
	assert.NoError(t, Template{}.Process(buildctx.New(), asset.NewBinary("a.png", media.PNG, []byte{0})))
}
