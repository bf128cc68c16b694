package processors

import (
	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/frontmatter"
	"git.home.luguber.info/inful/sitekit/internal/template"
)

// Template strips frontmatter into the working Context and expands template
// expressions in textual assets.
//
// Frontmatter of the page itself overwrites existing keys. When a pattern is
// being compiled (the Context already holds content) its frontmatter only
// fills keys that are not set yet.
//
// A compile failure is returned as *template.CompileError unchanged.
type Template struct{}

func (Template) Process(ctx *buildctx.Context, a *asset.Asset) error {
	if !a.MediaType().IsTextual() || ctx.Truthy(buildctx.KeyCompiled) {
		return nil
	}
	src, err := textOf(a)
	if err != nil {
		return err
	}

	front, body, had, err := frontmatter.Split(src)
	if err != nil {
		return MalformedError(err, "%s", a.Path())
	}
	if had {
		fields, err := frontmatter.Parse(front)
		if err != nil {
			return MalformedError(err, "%s", a.Path())
		}
		wrapping := ctx.Has(buildctx.KeyContent)
		fields.Each(func(key string, v buildctx.Value) bool {
			if !wrapping || !ctx.Has(key) {
				ctx.Set(key, v)
			}
			return true
		})
		if !ctx.Has(buildctx.KeyFrontmatter) {
			ctx.SetText(buildctx.KeyFrontmatter, front)
		}
	}

	if dir, waiting := pendingRequirement(ctx); waiting {
		return Defer("%s waits for listing %q", a.Path(), dir)
	}

	out, err := template.Compile(body, ctx)
	if err != nil {
		return err
	}
	a.SetText(out)
	ctx.SetText(buildctx.KeyCompiled, "true")
	return nil
}

// pendingRequirement returns the first required directory whose listing is
// known but still empty. Directories never observed do not block.
func pendingRequirement(ctx *buildctx.Context) (string, bool) {
	v, ok := ctx.Get(buildctx.KeyRequires)
	if !ok {
		return "", false
	}
	dirs, ok := v.AsList()
	if !ok {
		s, isText := v.AsText()
		if !isText || s == "" {
			return "", false
		}
		dirs = []string{s}
	}
	for _, dir := range dirs {
		if _, state := ctx.Listing(dir); state == buildctx.ListingPending {
			return dir, true
		}
	}
	return "", false
}
