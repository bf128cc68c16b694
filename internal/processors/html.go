package processors

import (
	"bytes"
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/media"
)

var documentPattern = regexp.MustCompile(`(?i)<html[\s>]|<!doctype`)

// parseHTML parses full documents as such and anything else as a body
// fragment, so partial templates are not wrapped in html/head/body.
func parseHTML(src string) ([]*html.Node, error) {
	if documentPattern.MatchString(src) {
		doc, err := html.Parse(strings.NewReader(src))
		if err != nil {
			return nil, err
		}
		return []*html.Node{doc}, nil
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(src), body)
}

func renderHTML(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, fn)
		c = next
	}
}

var urlAttributes = map[string]bool{"href": true, "src": true, "poster": true, "action": true}

// Canonicalize rewrites relative and root-relative URLs in HTML to absolute
// URLs using the canonical root and asset URL published in the Context. It
// also advertises the asset URL with a rel=canonical link.
type Canonicalize struct{}

func (Canonicalize) Process(ctx *buildctx.Context, a *asset.Asset) error {
	if a.MediaType() != media.HTML {
		return nil
	}
	root, ok := ctx.Text(buildctx.KeyCanonicalRoot)
	if !ok || root == "" {
		return nil
	}
	canonical, _ := ctx.Text(buildctx.KeyCanonical)
	src, err := textOf(a)
	if err != nil {
		return err
	}
	out, err := CanonicalizeHTML(src, root, canonical, true)
	if err != nil {
		return MalformedError(err, "%s", a.Path())
	}
	a.SetText(out)
	return nil
}

// CanonicalizeHTML resolves URL attributes in src. Root-relative URLs resolve
// against root, relative ones against root+canonical. Absolute URLs,
// fragments and values holding template expressions are left untouched.
// When link is set and the document has a head without a canonical link, one
// pointing at root+canonical is inserted.
func CanonicalizeHTML(src, root, canonical string, link bool) (string, error) {
	rootURL, err := url.Parse(root)
	if err != nil {
		return "", err
	}
	canonical = strings.TrimPrefix(canonical, "/")
	canonURL, err := rootURL.Parse(canonical)
	if err != nil {
		return "", err
	}
	// Relative links in an index page resolve inside its directory.
	docURL := canonURL
	if canonical != "" && !strings.HasSuffix(canonical, "/") && path.Ext(canonical) == "" {
		if docURL, err = rootURL.Parse(canonical + "/"); err != nil {
			return "", err
		}
	}
	nodes, err := parseHTML(src)
	if err != nil {
		return "", err
	}

	var head *html.Node
	hasCanonical := false
	for _, n := range nodes {
		walk(n, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return true
			}
			switch {
			case n.DataAtom == atom.Head && head == nil:
				head = n
			case n.DataAtom == atom.Link && attr(n, "rel") == "canonical":
				hasCanonical = true
				return true
			}
			for i, at := range n.Attr {
				if at.Namespace != "" || !urlAttributes[at.Key] {
					continue
				}
				n.Attr[i].Val = resolveURL(rootURL, docURL, at.Val)
			}
			return true
		})
	}

	if link && head != nil && !hasCanonical {
		head.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "link",
			DataAtom: atom.Link,
			Attr: []html.Attribute{
				{Key: "rel", Val: "canonical"},
				{Key: "href", Val: canonURL.String()},
			},
		})
	}
	return renderHTML(nodes)
}

func resolveURL(root, doc *url.URL, v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") ||
		strings.Contains(trimmed, "~{") {
		return v
	}
	ref, err := url.Parse(trimmed)
	if err != nil || ref.Scheme != "" {
		return v
	}
	if strings.HasPrefix(trimmed, "/") {
		ref.Path = strings.TrimPrefix(ref.Path, "/")
		return root.ResolveReference(ref).String()
	}
	return doc.ResolveReference(ref).String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// MinifyHTML drops comments and collapses whitespace outside preformatted
// and raw text elements.
type MinifyHTML struct{}

var whitespaceRun = regexp.MustCompile(`\s+`)

var rawElements = map[atom.Atom]bool{
	atom.Pre: true, atom.Textarea: true, atom.Script: true, atom.Style: true,
}

// Text between these elements carries no meaning and is dropped when blank.
var blockElements = map[atom.Atom]bool{
	atom.Html: true, atom.Head: true, atom.Body: true, atom.Title: true, atom.Meta: true,
	atom.Link: true, atom.Div: true, atom.P: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tfoot: true, atom.Tr: true,
	atom.Td: true, atom.Th: true, atom.Header: true, atom.Footer: true, atom.Nav: true,
	atom.Main: true, atom.Section: true, atom.Article: true, atom.Aside: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Script: true, atom.Style: true, atom.Select: true, atom.Option: true, atom.Br: true,
	atom.Hr: true, atom.Form: true, atom.Figure: true, atom.Blockquote: true,
}

func (MinifyHTML) Process(_ *buildctx.Context, a *asset.Asset) error {
	if a.MediaType() != media.HTML {
		return nil
	}
	src, err := textOf(a)
	if err != nil {
		return err
	}
	out, err := MinifyHTMLString(src)
	if err != nil {
		return MalformedError(err, "%s", a.Path())
	}
	a.SetText(out)
	return nil
}

// MinifyHTMLString minifies an HTML document or fragment.
func MinifyHTMLString(src string) (string, error) {
	nodes, err := parseHTML(src)
	if err != nil {
		return "", err
	}
	for _, root := range nodes {
		walk(root, func(n *html.Node) bool {
			switch n.Type {
			case html.CommentNode:
				if n.Parent != nil {
					n.Parent.RemoveChild(n)
				}
				return false
			case html.ElementNode:
				return !rawElements[n.DataAtom]
			case html.TextNode:
				collapseText(n)
			}
			return true
		})
	}
	kept := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.CommentNode || (n.Type == html.TextNode && n.Data == "") {
			continue
		}
		kept = append(kept, n)
	}
	return renderHTML(kept)
}

func collapseText(n *html.Node) {
	n.Data = whitespaceRun.ReplaceAllString(n.Data, " ")
	if n.Data != " " {
		return
	}
	if nearBlock(n) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		} else {
			n.Data = ""
		}
	}
}

func nearBlock(n *html.Node) bool {
	if n.Parent == nil || blockElements[n.Parent.DataAtom] && (n.PrevSibling == nil || n.NextSibling == nil) {
		return true
	}
	for _, s := range []*html.Node{n.PrevSibling, n.NextSibling} {
		if s != nil && s.Type == html.ElementNode && blockElements[s.DataAtom] {
			return true
		}
	}
	return false
}
