package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/processors"
)

// Validate checks cross-field rules not expressible in YAML.
func Validate(cfg *Config) error {
	seen := map[processors.Kind]bool{}
	for _, p := range cfg.Processors {
		if seen[p.Kind] {
			return invalid(fmt.Sprintf("processor %s configured more than once", p.Kind), "processor", p.Kind.String())
		}
		seen[p.Kind] = true
	}
	if p, ok := cfg.Processors.Get(processors.KindCanonicalize); ok && strings.TrimSpace(p.Options.Root) == "" {
		return invalid("canonicalize requires a root URL", "processor", processors.KindCanonicalize.String())
	}
	if p, ok := cfg.Processors.Get(processors.KindImage); ok && (p.Options.MaxWidth < 0 || p.Options.MaxHeight < 0) {
		return invalid("image bounds must not be negative", "processor", processors.KindImage.String())
	}

	if _, err := cfg.Context.Table(); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid context seeds").Fatal().Build()
	}

	names := map[string]bool{}
	mounts := map[string]bool{}
	for _, k := range cfg.Kits {
		if strings.TrimSpace(k.Source) == "" {
			return invalid("kit source is required", "kit", k.Name)
		}
		if k.Name == "" {
			return invalid("kit name is required", "source", k.Source)
		}
		if names[k.Name] {
			return invalid("duplicate kit name", "kit", k.Name)
		}
		names[k.Name] = true
		if mounts[k.Mount] {
			return invalid("duplicate kit mount", "mount", k.Mount)
		}
		mounts[k.Mount] = true
	}

	r := cfg.KitRetry
	if !validMode(r.Mode) {
		return invalid(fmt.Sprintf("unknown kit_retry mode %q", r.Mode), "mode", r.Mode)
	}
	if r.Initial < 0 || r.Max < 0 {
		return invalid("kit_retry delays must not be negative", "section", "kit_retry")
	}
	if r.MaxRetries != nil && *r.MaxRetries < 0 {
		return invalid("kit_retry max_retries must not be negative", "max_retries", fmt.Sprint(*r.MaxRetries))
	}
	if err := cfg.RetryPolicy().Validate(); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid kit_retry policy").Fatal().Build()
	}
	return nil
}

func invalid(msg, key, value string) error {
	return errors.ValidationError(msg).WithContext(key, value).Build()
}
