// Package config loads the sitekit.yaml build configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/frontmatter"
	"git.home.luguber.info/inful/sitekit/internal/processors"
	"git.home.luguber.info/inful/sitekit/internal/retry"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "sitekit.yaml"

// Config is the build configuration.
type Config struct {
	Source     string        `yaml:"source"`
	Target     string        `yaml:"target"`
	CleanURLs  bool          `yaml:"clean_urls"`
	Workers    int           `yaml:"workers,omitempty"`
	Processors ProcessorList `yaml:"processors"`
	Context    Seeds         `yaml:"context,omitempty"`
	Kits       []Kit         `yaml:"kits,omitempty"`
	KitRetry   RetryConfig   `yaml:"kit_retry,omitempty"`
}

// Kit is an external asset bundle mounted under a prefix.
type Kit struct {
	Name string `yaml:"name"`
	// Source is a local directory or a git URL.
	Source string `yaml:"source"`
	Ref    string `yaml:"ref,omitempty"`
	// Mount is the logical directory kit files appear under.
	Mount string `yaml:"mount,omitempty"`
}

// Seeds holds the initial Context values as raw YAML so key order survives.
type Seeds struct {
	node *yaml.Node
}

// UnmarshalYAML keeps the raw node.
func (s *Seeds) UnmarshalYAML(value *yaml.Node) error {
	s.node = value
	return nil
}

// MarshalYAML emits the raw node.
func (s Seeds) MarshalYAML() (any, error) {
	if s.node == nil {
		return nil, nil
	}
	return s.node, nil
}

// IsZero reports whether no seeds were configured.
func (s Seeds) IsZero() bool { return s.node == nil }

// Table converts the seeds into Context values: scalars become text, scalar
// lists become lists and mappings become tables.
func (s Seeds) Table() (*buildctx.Table, error) {
	return frontmatter.Table(s.node)
}

// SeedsFrom builds seeds from a YAML mapping.
func SeedsFrom(src string) (Seeds, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return Seeds{}, err
	}
	if len(doc.Content) == 0 {
		return Seeds{}, nil
	}
	return Seeds{node: doc.Content[0]}, nil
}

// Load reads, expands and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Fatal().
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration bytes, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			Build()
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Plan builds the processor plan described by the configuration.
func (c *Config) Plan() (processors.Plan, error) {
	entries := make([]processors.Entry, 0, len(c.Processors))
	for _, p := range c.Processors {
		entries = append(entries, p.Entry())
	}
	plan, err := processors.NewPlan(entries, processors.Env{SourceRoot: c.Source})
	if err != nil {
		return processors.Plan{}, errors.WrapError(err, errors.CategoryValidation, "invalid processor configuration").
			Fatal().
			Build()
	}
	return plan, nil
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).
			Build()
	}

	seeds, err := SeedsFrom("site_name: My Site\nlang: en\n")
	if err != nil {
		return errors.InternalError("failed to build example seeds").WithCause(err).Build()
	}
	example := Config{
		Source:    DefaultSource,
		Target:    DefaultTarget,
		CleanURLs: true,
		Processors: ProcessorList{
			{Kind: processors.KindTemplate},
			{Kind: processors.KindMarkdown},
			{Kind: processors.KindSCSS, Options: ProcessorOptions{Command: "sass"}},
			{Kind: processors.KindImage, Options: ProcessorOptions{MaxWidth: 1600, MaxHeight: 1600}},
			{Kind: processors.KindFavicon, Options: ProcessorOptions{Size: 32}},
			{Kind: processors.KindPattern},
			{Kind: processors.KindCanonicalize, Options: ProcessorOptions{Root: "https://example.com"}},
			{Kind: processors.KindMinifyHTML},
		},
		Context: seeds,
		Kits: []Kit{
			{Name: "base", Source: "https://github.com/example/sitekit-base.git", Ref: "main", Mount: "kit/base"},
		},
		KitRetry: RetryConfig{Mode: string(retry.Linear), Initial: time.Second, Max: 30 * time.Second},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.InternalError("failed to marshal config").WithCause(err).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
