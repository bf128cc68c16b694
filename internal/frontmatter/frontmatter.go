// Package frontmatter splits `---` delimited YAML blocks from textual assets
// and converts them into Context values.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitekit/internal/buildctx"
)

// ErrMissingClosingDelimiter indicates the text started with a frontmatter
// delimiter but did not contain a closing one.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter from the body. If content does not start
// with a delimiter line, had is false and body is the full input.
func Split(content string) (front string, body string, had bool, err error) {
	nl := detectNewline(content)
	open := "---" + nl
	if !strings.HasPrefix(content, open) {
		return "", content, false, nil
	}

	rest := content[len(open):]
	if strings.HasPrefix(rest, open) {
		return "", rest[len(open):], true, nil
	}

	closing := nl + "---" + nl
	idx := strings.Index(rest, closing)
	if idx < 0 {
		if strings.HasSuffix(rest, nl+"---") {
			return rest[:len(rest)-len(nl+"---")+len(nl)], "", true, nil
		}
		return "", "", false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
}

func detectNewline(content string) string {
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Parse decodes raw YAML (without delimiters) into an ordered table. Scalars
// become text, scalar sequences lists, mappings tables and sequences of
// mappings table lists.
func Parse(front string) (*buildctx.Table, error) {
	out := buildctx.NewTable()
	if strings.TrimSpace(front) == "" {
		return out, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(front), &doc); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if len(doc.Content) == 0 {
		return out, nil
	}
	return Table(doc.Content[0])
}

// Table converts a YAML mapping node using the same rules as Parse. A nil
// or null node yields an empty table.
func Table(n *yaml.Node) (*buildctx.Table, error) {
	out := buildctx.NewTable()
	if n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return out, nil
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return out, nil
		}
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping, got %s", kindName(n.Kind))
	}
	if err := fillTable(out, n); err != nil {
		return nil, err
	}
	return out, nil
}

func fillTable(t *buildctx.Table, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		v, err := convert(n.Content[i+1])
		if err != nil {
			return fmt.Errorf("frontmatter key %q: %w", key, err)
		}
		t.Set(key, v)
	}
	return nil
}

func convert(n *yaml.Node) (buildctx.Value, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return convert(n.Alias)
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return buildctx.Text(""), nil
		}
		return buildctx.Text(n.Value), nil
	case yaml.MappingNode:
		t := buildctx.NewTable()
		if err := fillTable(t, n); err != nil {
			return buildctx.Value{}, err
		}
		return buildctx.TableValue(t), nil
	case yaml.SequenceNode:
		return convertSequence(n)
	default:
		return buildctx.Value{}, fmt.Errorf("unsupported yaml %s", kindName(n.Kind))
	}
}

func convertSequence(n *yaml.Node) (buildctx.Value, error) {
	if len(n.Content) > 0 && n.Content[0].Kind == yaml.MappingNode {
		tables := make([]*buildctx.Table, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.MappingNode {
				return buildctx.Value{}, errors.New("mixed sequence of tables and scalars")
			}
			t := buildctx.NewTable()
			if err := fillTable(t, item); err != nil {
				return buildctx.Value{}, err
			}
			tables = append(tables, t)
		}
		return buildctx.Tables(tables...), nil
	}
	items := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return buildctx.Value{}, errors.New("lists may only hold scalars or tables")
		}
		items = append(items, item.Value)
	}
	return buildctx.List(items...), nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}
