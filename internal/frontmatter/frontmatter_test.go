package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitekit/internal/buildctx"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	front, body, had, err := Split("# Title\n\nHello\n")
	require.NoError(t, err)
	assert.False(t, had)
	assert.Empty(t, front)
	assert.Equal(t, "# Title\n\nHello\n", body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	front, body, had, err := Split("---\npattern: page\n---\n# Title\n")
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "pattern: page\n", front)
	assert.Equal(t, "# Title\n", body)
}

func TestSplit_CRLF(t *testing.T) {
	front, body, had, err := Split("---\r\nkey: value\r\n---\r\n# Title\r\n")
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "key: value\r\n", front)
	assert.Equal(t, "# Title\r\n", body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	front, body, had, err := Split("---\n---\nbody")
	require.NoError(t, err)
	assert.True(t, had)
	assert.Empty(t, front)
	assert.Equal(t, "body", body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	front, body, had, err := Split("---\ntitle: x\n---")
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "title: x\n", front)
	assert.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split("---\nkey: value\n# Title\n")
	assert.ErrorIs(t, err, ErrMissingClosingDelimiter)
	assert.False(t, had)
}

func TestParse_PreservesOrderAndShapes(t *testing.T) {
	tbl, err := Parse("title: Hello\ndraft: false\nweight: 3\ntags: [a, b]\nauthor:\n  name: Kim\nlinks:\n  - href: /a\n  - href: /b\nempty:\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "draft", "weight", "tags", "author", "links", "empty"}, tbl.Keys())

	s, _ := tbl.Text("draft")
	assert.Equal(t, "false", s)
	s, _ = tbl.Text("weight")
	assert.Equal(t, "3", s)
	s, _ = tbl.Text("empty")
	assert.Equal(t, "", s)

	v, _ := tbl.Get("tags")
	tags, ok := v.AsList()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	v, _ = tbl.Get("author")
	author, ok := v.AsTable()
	require.True(t, ok)
	name, _ := author.Text("name")
	assert.Equal(t, "Kim", name)

	v, _ = tbl.Get("links")
	links, ok := v.AsTables()
	require.True(t, ok)
	require.Len(t, links, 2)
	assert.Equal(t, buildctx.KindTableList, v.Kind())
}

func TestParse_Empty(t *testing.T) {
	tbl, err := Parse("  \n")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"- a\n- b\n", "key: [unclosed", "nested: [[a]]\n", "mixed:\n  - a: 1\n  - b\n"} {
		_, err := Parse(src)
		assert.Error(t, err, src)
	}
}

func TestTable_NodeForms(t *testing.T) {
	tbl, err := Table(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("site: Example\nnav: [a, b]\n"), &doc))
	tbl, err = Table(&doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"site", "nav"}, tbl.Keys())
}
