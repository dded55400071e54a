// Package engine defines the build-engine collaborator contract. The launcher
// orchestrates an external dev-server/bundler through this interface and never
// bundles or transforms code itself.
package engine

import (
	"context"
	"time"

	"github.com/launchpad-dev/launchpad/internal/config"
	"github.com/launchpad-dev/launchpad/internal/plugin"
)

// DevServer is a live development server handle.
type DevServer interface {
	// Listen starts serving. Safe to call once per handle.
	Listen(ctx context.Context) error
	// Close stops the server. Idempotent: closing a stopped server succeeds.
	Close(ctx context.Context) error
	// URL returns the address the server listens on.
	URL() string
}

// PreviewServer is a live preview server handle for built output.
type PreviewServer interface {
	Close(ctx context.Context) error
	URL() string
}

// BuildResult reports the outcome of a production build.
type BuildResult struct {
	Success  bool
	Duration time.Duration
	Output   string
}

// Engine is the external build engine.
type Engine interface {
	CreateDevServer(ctx context.Context, cfg *config.Config, plugins []plugin.AssembledPlugin) (DevServer, error)
	Build(ctx context.Context, cfg *config.Config, plugins []plugin.AssembledPlugin) (*BuildResult, error)
	Preview(ctx context.Context, cfg *config.Config) (PreviewServer, error)
}
