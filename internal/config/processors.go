package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitekit/internal/processors"
)

// ProcessorOptions is the union of all processor options. Each processor
// reads only the fields it understands.
type ProcessorOptions struct {
	Command   string   `yaml:"command,omitempty"`
	Args      []string `yaml:"args,omitempty"`
	Minify    bool     `yaml:"minify,omitempty"`
	MaxWidth  int      `yaml:"max_width,omitempty"`
	MaxHeight int      `yaml:"max_height,omitempty"`
	Size      int      `yaml:"size,omitempty"`
	Root      string   `yaml:"root,omitempty"`
}

// ProcessorConfig is one entry of the processors mapping.
type ProcessorConfig struct {
	Kind    processors.Kind
	Options ProcessorOptions
}

// Entry converts the configuration into a processor entry.
func (p ProcessorConfig) Entry() processors.Entry {
	o := p.Options
	return processors.Entry{
		Kind:         p.Kind,
		Tool:         processors.ToolOptions{Command: o.Command, Args: o.Args, Minify: o.Minify},
		Image:        processors.ImageOptions{MaxWidth: o.MaxWidth, MaxHeight: o.MaxHeight},
		Favicon:      processors.FaviconOptions{Size: o.Size},
		Canonicalize: processors.CanonicalizeOptions{Root: o.Root},
	}
}

// ProcessorList is the ordered processors mapping. A processor that is not
// listed never runs.
type ProcessorList []ProcessorConfig

// Has reports whether kind is listed.
func (l ProcessorList) Has(kind processors.Kind) bool {
	_, ok := l.Get(kind)
	return ok
}

// Get returns the entry for kind.
func (l ProcessorList) Get(kind processors.Kind) (ProcessorConfig, bool) {
	for _, p := range l {
		if p.Kind == kind {
			return p, true
		}
	}
	return ProcessorConfig{}, false
}

// UnmarshalYAML decodes a mapping of processor name to options, keeping
// document order. Null or empty option values mean defaults.
func (l *ProcessorList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*l = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: processors must be a mapping of name to options", value.Line)
	}
	out := make(ProcessorList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		kind, ok := processors.ParseKind(key.Value)
		if !ok {
			return fmt.Errorf("line %d: unknown processor %q", key.Line, key.Value)
		}
		var opts ProcessorOptions
		if !(val.Kind == yaml.ScalarNode && (val.Tag == "!!null" || val.Value == "")) {
			if err := val.Decode(&opts); err != nil {
				return fmt.Errorf("line %d: processor %s: %w", val.Line, key.Value, err)
			}
		}
		out = append(out, ProcessorConfig{Kind: kind, Options: opts})
	}
	*l = out
	return nil
}

// MarshalYAML encodes the list back into an ordered mapping.
func (l ProcessorList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range l {
		val := &yaml.Node{}
		if err := val.Encode(p.Options); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Kind.String()},
			val)
	}
	return node, nil
}
