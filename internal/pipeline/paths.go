package pipeline

import (
	"path"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitekit/internal/media"
)

const indexFile = "index.html"

// OutputPath computes the output path of an asset with logical path p and
// final media type mt. The extension becomes the type's primary extension
// unless p already carries one of the type's extensions. With clean URLs an
// HTML file not named index.html moves to <stem>/index.html.
func OutputPath(p string, mt media.MediaType, cleanURLs bool) string {
	out := withTypeExtension(p, mt)
	if cleanURLs && isHTML(out) && path.Base(out) != indexFile {
		out = strings.TrimSuffix(out, path.Ext(out)) + "/" + indexFile
	}
	return out
}

// ListingDir is the directory an asset is listed under: the directory of its
// output path before clean URL rewriting, "." for the root.
func ListingDir(p string, mt media.MediaType) string {
	return path.Dir(withTypeExtension(p, mt))
}

// CanonicalPath is the root-relative URL path advertised for an asset before
// processing. Markdown sources are assumed to become HTML. With clean URLs
// non-index pages map to <stem>/ and index pages to their directory without
// the trailing slash.
func CanonicalPath(p string, cleanURLs bool) string {
	if strings.EqualFold(path.Ext(p), ".md") {
		p = strings.TrimSuffix(p, path.Ext(p)) + ".html"
	}
	return cleanPath(p, cleanURLs)
}

// URLPath is the site-relative URL of an output path.
func URLPath(output string, cleanURLs bool) string {
	return "/" + cleanPath(output, cleanURLs)
}

func cleanPath(p string, cleanURLs bool) string {
	if !cleanURLs || !isHTML(p) {
		return p
	}
	if path.Base(p) == indexFile {
		return strings.TrimSuffix(strings.TrimSuffix(p, indexFile), "/")
	}
	return strings.TrimSuffix(p, path.Ext(p)) + "/"
}

func withTypeExtension(p string, mt media.MediaType) string {
	ext := media.Ext(p)
	if slices.Contains(mt.Extensions(), strings.ToLower(ext)) {
		return p
	}
	stem := p
	if ext != "" {
		stem = strings.TrimSuffix(p, "."+ext)
	}
	if primary := mt.Extension(); primary != "" {
		return stem + "." + primary
	}
	return stem
}

func isHTML(p string) bool {
	return strings.EqualFold(path.Ext(p), ".html")
}
