package config

import (
	"path"
	"strings"
)

// Defaults.
const (
	DefaultSource = "./src"
	DefaultTarget = "./public"
)

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Source) == "" {
		cfg.Source = DefaultSource
	}
	if strings.TrimSpace(cfg.Target) == "" {
		cfg.Target = DefaultTarget
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	for i := range cfg.Kits {
		k := &cfg.Kits[i]
		if k.Name == "" {
			k.Name = kitName(k.Source)
		}
		if k.Mount == "" {
			k.Mount = k.Name
		}
		k.Mount = strings.Trim(path.Clean("/"+strings.TrimSpace(k.Mount)), "/")
	}
}

// kitName derives a name from the last element of a path or URL.
func kitName(source string) string {
	s := strings.TrimRight(strings.TrimSpace(source), "/")
	s = strings.TrimSuffix(s, ".git")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
