// Package processors defines the content processor contract and the
// processors shipped with sitekit.
//
// Processors are selected by a closed set of kinds. Each kind belongs to one
// phase (transform, wrap or finalize) and has a fixed position within it, so
// the order in which processors run never depends on configuration order.
package processors

import (
	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
)

// Processor transforms one asset. It may read and write the asset's working
// Context and may change the asset's media type. Processors must tolerate
// being re-run from scratch when the asset is deferred and retried.
type Processor interface {
	Process(ctx *buildctx.Context, a *asset.Asset) error
}

// Func adapts a function to Processor.
type Func func(ctx *buildctx.Context, a *asset.Asset) error

// Process calls f.
func (f Func) Process(ctx *buildctx.Context, a *asset.Asset) error { return f(ctx, a) }

// Stage is a configured processor and the kind it was built for.
type Stage struct {
	Kind      Kind
	Processor Processor
}

// Phase groups kinds by when they run.
type Phase int

const (
	PhaseTransform Phase = iota
	PhaseWrap
	PhaseFinalize
)

func (p Phase) String() string {
	switch p {
	case PhaseTransform:
		return "transform"
	case PhaseWrap:
		return "wrap"
	case PhaseFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Kind identifies a processor. Declaration order is execution order within
// a phase.
type Kind int

const (
	KindTemplate Kind = iota
	KindMarkdown
	KindSCSS
	KindJSBundle
	KindImage
	KindFavicon
	KindPattern
	KindCanonicalize
	KindMinifyHTML
	KindMinifyJS

	kindCount
)

var kindNames = [kindCount]string{
	KindTemplate:     "template",
	KindMarkdown:     "markdown",
	KindSCSS:         "scss",
	KindJSBundle:     "js-bundle",
	KindImage:        "image",
	KindFavicon:      "favicon",
	KindPattern:      "pattern",
	KindCanonicalize: "canonicalize",
	KindMinifyHTML:   "minify-html",
	KindMinifyJS:     "minify-js",
}

// Kinds returns every kind in execution order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := range kindCount {
		out = append(out, k)
	}
	return out
}

// ParseKind resolves a configuration name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Phase reports the phase k runs in.
func (k Kind) Phase() Phase {
	switch {
	case k < KindPattern:
		return PhaseTransform
	case k == KindPattern:
		return PhaseWrap
	default:
		return PhaseFinalize
	}
}
