package processors

import (
	"errors"
	"fmt"
	"strings"
)

// ToolOptions configures processors that delegate to an external command.
type ToolOptions struct {
	Command string
	Args    []string
	Minify  bool
}

// ImageOptions bounds resized images; zero means unbounded.
type ImageOptions struct {
	MaxWidth  int
	MaxHeight int
}

// FaviconOptions sets the square icon size in pixels.
type FaviconOptions struct {
	Size int
}

// CanonicalizeOptions sets the absolute site root.
type CanonicalizeOptions struct {
	Root string
}

// Entry is one configured processor. Only the options field matching Kind is
// consulted.
type Entry struct {
	Kind         Kind
	Tool         ToolOptions
	Image        ImageOptions
	Favicon      FaviconOptions
	Canonicalize CanonicalizeOptions
}

// Env carries build-wide inputs some processors need.
type Env struct {
	// SourceRoot is the directory assets were read from; external tools
	// resolve imports relative to it.
	SourceRoot string
}

// Plan is the validated set of configured processors.
type Plan struct {
	Transform []Stage
	Finalize  []Stage
	Pattern   bool
	// CanonicalRoot is set only when canonicalize is configured.
	CanonicalRoot string
}

// Has reports whether k is configured.
func (p Plan) Has(k Kind) bool {
	if k == KindPattern {
		return p.Pattern
	}
	for _, s := range p.Transform {
		if s.Kind == k {
			return true
		}
	}
	for _, s := range p.Finalize {
		if s.Kind == k {
			return true
		}
	}
	return false
}

// Canonicalizes reports whether a canonicalize processor is configured.
func (p Plan) Canonicalizes() bool { return p.CanonicalRoot != "" }

// ErrDuplicateProcessor is returned when a kind is configured twice.
var ErrDuplicateProcessor = errors.New("processor configured more than once")

// ErrMissingRoot is returned when canonicalize has no root.
var ErrMissingRoot = errors.New("canonicalize requires a root URL")

// NewPlan validates entries and builds their processors in phase order.
func NewPlan(entries []Entry, env Env) (Plan, error) {
	var byKind [kindCount]*Entry
	for i := range entries {
		e := &entries[i]
		if e.Kind < 0 || e.Kind >= kindCount {
			return Plan{}, fmt.Errorf("unknown processor kind %d", e.Kind)
		}
		if byKind[e.Kind] != nil {
			return Plan{}, fmt.Errorf("%w: %s", ErrDuplicateProcessor, e.Kind)
		}
		byKind[e.Kind] = e
	}

	var plan Plan
	for _, k := range Kinds() {
		e := byKind[k]
		if e == nil {
			continue
		}
		switch k.Phase() {
		case PhaseWrap:
			plan.Pattern = true
			continue
		case PhaseFinalize:
			if k == KindCanonicalize {
				root := strings.TrimSpace(e.Canonicalize.Root)
				if root == "" {
					return Plan{}, ErrMissingRoot
				}
				plan.CanonicalRoot = strings.TrimSuffix(root, "/") + "/"
			}
			plan.Finalize = append(plan.Finalize, Stage{Kind: k, Processor: New(*e, env)})
		default:
			plan.Transform = append(plan.Transform, Stage{Kind: k, Processor: New(*e, env)})
		}
	}
	return plan, nil
}

// New builds the processor for e. Pattern wrapping is performed by the
// pipeline and yields nil.
func New(e Entry, env Env) Processor {
	switch e.Kind {
	case KindTemplate:
		return Template{}
	case KindMarkdown:
		return NewMarkdown()
	case KindSCSS:
		return &SCSS{Tool: withCommand(e.Tool, "sass"), LoadPath: env.SourceRoot}
	case KindJSBundle:
		return &JSBundle{Tool: withCommand(e.Tool, "esbuild"), SourceRoot: env.SourceRoot}
	case KindImage:
		return &Image{Options: e.Image}
	case KindFavicon:
		size := e.Favicon.Size
		if size <= 0 {
			size = DefaultFaviconSize
		}
		return &Favicon{Size: size}
	case KindCanonicalize:
		return Canonicalize{}
	case KindMinifyHTML:
		return MinifyHTML{}
	case KindMinifyJS:
		return &MinifyJS{Tool: withCommand(e.Tool, "esbuild")}
	default:
		return nil
	}
}

func withCommand(t ToolOptions, def string) ToolOptions {
	if strings.TrimSpace(t.Command) == "" {
		t.Command = def
	}
	return t
}
