package processors

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/media"
)

// Markdown renders text/markdown assets to HTML.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a renderer with GitHub flavoured extensions and raw
// HTML passthrough.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

func (m *Markdown) Process(_ *buildctx.Context, a *asset.Asset) error {
	if a.MediaType() != media.Markdown {
		return nil
	}
	src, err := textOf(a)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return MalformedError(err, "%s", a.Path())
	}
	a.SetText(buf.String())
	a.SetMediaType(media.HTML)
	return nil
}
