package build

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
)

// Failure records an asset that could not be built.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes one build.
type Report struct {
	BuildID   string
	Succeeded int
	Errored   []Failure
	// Cycled lists assets that were still deferred when progress stopped.
	Cycled []string
	Passes int
	// Written lists target-relative output paths in write order.
	Written  []string
	Duration time.Duration
}

// OK reports whether every asset completed.
func (r *Report) OK() bool { return len(r.Errored) == 0 && len(r.Cycled) == 0 }

// Err returns nil for a clean build, otherwise a build error summarizing the
// failures.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	var parts []string
	if n := len(r.Errored); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if n := len(r.Cycled); n > 0 {
		parts = append(parts, fmt.Sprintf("%d stuck in a dependency cycle", n))
	}
	b := errors.BuildError("build finished with errors: " + strings.Join(parts, ", ")).
		WithContext("build_id", r.BuildID).
		WithContext("succeeded", r.Succeeded)
	if len(r.Errored) > 0 {
		b = b.WithCause(r.Errored[0].Err).WithContext("first_failure", r.Errored[0].Path)
	}
	if len(r.Cycled) > 0 {
		b = b.WithContext("cycled", strings.Join(r.Cycled, ","))
	}
	return b.Build()
}
