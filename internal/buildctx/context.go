// Package buildctx holds the key/value build state shared by all assets.
//
// Keys are partitioned by convention:
//
//	_<name>        reusable parts (tables with content, media_type, path)
//	_assets:<dir>  listings of completed assets in an output directory
//	path, content, pattern, ...  transient keys for the asset being processed
//
// anything else comes from configuration seeds or asset frontmatter.
//
// A Context is never shared for writing: the scheduler hands each asset a
// clone of the pass snapshot and merges the returned fragments between passes.
package buildctx

import (
	"path"
	"slices"
	"strings"
)

// Well-known keys.
const (
	KeyPath          = "path"
	KeyContent       = "content"
	KeyPattern       = "pattern"
	KeyCompiled      = "compiled"
	KeyCanonicalRoot = "canonical_root"
	KeyCanonical     = "canonical"
	KeyRequires      = "requires"
	KeyFrontmatter   = "frontmatter"
	KeyTitle         = "title"

	PartPrefix    = "_"
	ListingPrefix = "_assets:"
)

// TransientKeys are meaningful only while one asset is processed and are
// never published as asset metadata.
var TransientKeys = []string{KeyPath, KeyContent, KeyPattern, KeyCompiled, KeyCanonicalRoot, KeyCanonical, KeyRequires, KeyFrontmatter}

// Context is the ordered build state.
type Context struct {
	*Table
}

func New() *Context {
	return &Context{Table: NewTable()}
}

// Clone returns a shared-nothing copy.
func (c *Context) Clone() *Context {
	return &Context{Table: c.Table.Clone()}
}

// Merge copies every entry of fragment into c, replacing existing keys.
func (c *Context) Merge(fragment *Table) {
	fragment.Each(func(k string, v Value) bool {
		c.Set(k, v.Clone())
		return true
	})
}

// Diff returns the entries of c that are absent from base or differ from it.
func (c *Context) Diff(base *Context) *Table {
	out := NewTable()
	c.Each(func(k string, v Value) bool {
		if old, ok := base.Get(k); !ok || !old.Equal(v) {
			out.Set(k, v.Clone())
		}
		return true
	})
	return out
}

// IsTransient reports whether key is per-asset scratch state.
func IsTransient(key string) bool {
	for _, k := range TransientKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsReserved reports whether key belongs to the part or listing namespaces.
func IsReserved(key string) bool {
	return strings.HasPrefix(key, PartPrefix)
}

// Truthy reports whether key holds a text value other than "false" or "0".
// Absent and non-text values are falsy; the empty string is truthy.
func (c *Context) Truthy(key string) bool {
	s, ok := c.Text(key)
	if !ok {
		return false
	}
	return s != "false" && s != "0"
}

// PartKey maps a part name or source path to its Context key: the extension
// is dropped and a single leading underscore is ensured.
//
//	_layouts/page.html -> _layouts/page
//	blog/_card.html    -> _blog/_card
//	layouts/page       -> _layouts/page
func PartKey(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	name = strings.TrimSuffix(name, path.Ext(name))
	if !strings.HasPrefix(name, PartPrefix) {
		name = PartPrefix + name
	}
	return name
}

// Part is a reusable fragment stored in the Context.
type Part struct {
	Path      string
	Content   string
	MediaType string
}

// SetPart stores p under its part key.
func (c *Context) SetPart(p Part) string {
	key := PartKey(p.Path)
	t := NewTable().
		SetText(KeyPath, p.Path).
		SetText(KeyContent, p.Content).
		SetText("media_type", p.MediaType)
	c.Set(key, TableValue(t))
	return key
}

// Part resolves a part by name (see PartKey).
func (c *Context) Part(name string) (Part, bool) {
	v, ok := c.Get(PartKey(name))
	if !ok {
		return Part{}, false
	}
	t, ok := v.AsTable()
	if !ok {
		return Part{}, false
	}
	content, ok := t.Text(KeyContent)
	if !ok {
		return Part{}, false
	}
	p, _ := t.Text(KeyPath)
	mt, _ := t.Text("media_type")
	return Part{Path: p, Content: content, MediaType: mt}, true
}

// ListingState distinguishes a directory never observed from one whose
// listing exists but has no completed assets yet.
type ListingState int

const (
	ListingAbsent ListingState = iota
	ListingPending
	ListingReady
)

func (s ListingState) String() string {
	switch s {
	case ListingPending:
		return "pending"
	case ListingReady:
		return "ready"
	default:
		return "absent"
	}
}

// ListingKey is the Context key for dir's listing; the root is ".".
func ListingKey(dir string) string {
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if dir == "" {
		dir = "."
	}
	return ListingPrefix + dir
}

// SeedListing registers dir as known with an empty listing, if not present.
func (c *Context) SeedListing(dir string) {
	key := ListingKey(dir)
	if !c.Has(key) {
		c.Set(key, Tables())
	}
}

// Listing returns the completed-asset entries for dir.
func (c *Context) Listing(dir string) ([]*Table, ListingState) {
	v, ok := c.Get(ListingKey(dir))
	if !ok {
		return nil, ListingAbsent
	}
	entries, ok := v.AsTables()
	if !ok {
		return nil, ListingAbsent
	}
	if len(entries) == 0 {
		return nil, ListingPending
	}
	return entries, ListingReady
}

// AppendListing adds entry to dir's listing, keeping entries ordered by
// their path so results do not depend on completion order.
func (c *Context) AppendListing(dir string, entry *Table) {
	existing, _ := c.Listing(dir)
	entries := append(append([]*Table(nil), existing...), entry)
	slices.SortStableFunc(entries, func(a, b *Table) int {
		return strings.Compare(entryPath(a), entryPath(b))
	})
	c.Set(ListingKey(dir), Tables(entries...))
}

func entryPath(t *Table) string {
	p, _ := t.Text(KeyPath)
	return p
}
