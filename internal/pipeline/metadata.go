package pipeline

import (
	"path"
	"strings"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
)

// Metadata keys of a listing entry.
const (
	MetaPath        = "path"
	MetaOutput      = "output"
	MetaURL         = "url"
	MetaMediaType   = "media_type"
	MetaTitle       = "title"
	MetaFingerprint = "fingerprint"
)

// fragment builds the listing entry for a completed asset. Besides the fixed
// keys it carries every non-transient key the asset added or changed.
func fragment(snapshot, work *buildctx.Context, a *asset.Asset, output, url string) *buildctx.Table {
	front, _ := work.Text(buildctx.KeyFrontmatter)
	t := buildctx.NewTable().
		SetText(MetaPath, a.Path()).
		SetText(MetaOutput, output).
		SetText(MetaURL, url).
		SetText(MetaMediaType, a.MediaType().MIME()).
		SetText(MetaTitle, title(work, a.Path())).
		SetText(MetaFingerprint, mdfp.CalculateFingerprintFromParts(front, string(a.Raw())))

	work.Diff(snapshot).Each(func(key string, v buildctx.Value) bool {
		if !t.Has(key) && !buildctx.IsTransient(key) && !buildctx.IsReserved(key) {
			t.Set(key, v)
		}
		return true
	})
	return t
}

// title prefers a text title from the Context and falls back to the
// title-cased file stem ("getting-started.md" -> "Getting Started").
func title(work *buildctx.Context, p string) string {
	if s, ok := work.Text(buildctx.KeyTitle); ok && strings.TrimSpace(s) != "" {
		return s
	}
	stem := path.Base(p)
	stem = strings.TrimSuffix(stem, path.Ext(stem))
	if stem == "index" && path.Dir(p) != "." {
		stem = path.Base(path.Dir(p))
	}
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(strings.Join(strings.Fields(stem), " "))
}
