package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitekit/internal/config"
)

// Service is the canonical interface for executing site builds. The build
// and watch commands are thin wrappers over it.
type Service interface {
	// Run executes a complete build: resolve kits, ingest, process, write.
	// A build whose assets fail still returns a Result; the error is then
	// the report's summary error.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs of one build.
type Request struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// Target overrides Config.Target when set.
	Target string

	// DryRun processes every asset without writing output.
	DryRun bool
}

// Result contains the outcome of a build execution.
type Result struct {
	// Status indicates overall build outcome.
	Status Status

	// Report holds per-asset outcomes. Nil when the build failed before
	// scheduling.
	Report *Report

	// Target is the directory output was written to.
	Target string

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// Status represents the final state of a build.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPartial Status = "partial"
)
