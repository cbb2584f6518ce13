package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/loki/internal/config"
	"git.home.luguber.info/inful/loki/internal/linkverify"
)

// BuildService is the canonical interface for executing site builds.
type BuildService interface {
	// Run executes the pipeline: validate → manifest → pre-load → register → post-load → build.
	// Returns a BuildResult with detailed outcomes and any error encountered.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// SourceDir holds views/, components/, assets/ and the configuration scripts.
	SourceDir string

	// OutputDir is the target directory for the generated site.
	OutputDir string

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// CheckOnly stops after registration and the post-load script; nothing is written.
	CheckOnly bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Status indicates overall build outcome.
	Status BuildStatus

	// BuildID identifies the run in logs.
	BuildID string

	// Documents is the count of registered documents, blog entries included.
	Documents int

	// Written lists the destination-relative files written, in order.
	Written []string

	// BrokenLinks is filled when link verification ran.
	BrokenLinks []linkverify.Broken

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
