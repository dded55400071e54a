// Package lifecycle owns the dev/build/preview process state machine. The
// Coordinator ties detection and plugin resolution into server startup, guards
// initialization behind a single flight, and restarts the running server when
// configuration changes arrive from the config watcher.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/launchpad-dev/launchpad/internal/config"
	"github.com/launchpad-dev/launchpad/internal/detect"
	"github.com/launchpad-dev/launchpad/internal/engine"
	"github.com/launchpad-dev/launchpad/internal/errors"
	"github.com/launchpad-dev/launchpad/internal/logging"
	"github.com/launchpad-dev/launchpad/internal/notify"
	"github.com/launchpad-dev/launchpad/internal/plugin"
)

// ConfigLoader supplies the launcher configuration. Invoked at most once per
// initialization flight regardless of caller concurrency.
type ConfigLoader func() (*config.Config, error)

// Options configures a Coordinator.
type Options struct {
	Loader   ConfigLoader
	Detector *detect.Engine
	Resolver *plugin.Resolver
	Engine   engine.Engine
	Bus      *notify.Bus
	Logger   logging.Logger

	// OnError receives every lifecycle error after state moves to Error.
	OnError func(error)
	// ExitOnError terminates the process for transition errors at or above
	// ExitSeverity. Off by default.
	ExitOnError  bool
	ExitSeverity errors.Severity

	// ForceDetection bypasses both detection caches.
	ForceDetection bool
}

// Coordinator owns all shared mutable launcher state: current configuration,
// server handles, lifecycle state, and the restart machine. External callers
// only read snapshots.
type Coordinator struct {
	loader   ConfigLoader
	detector *detect.Engine
	resolver *plugin.Resolver
	engine   engine.Engine
	bus      *notify.Bus
	logger   logging.Logger

	onError      func(error)
	exitOnError  bool
	exitSeverity errors.Severity
	exit         func(int) // swapped out in tests
	forceDetect  bool

	mutex         sync.Mutex
	state         State
	lastActivity  time.Time
	cfg           *config.Config
	devServer     engine.DevServer
	previewServer engine.PreviewServer

	initialized bool
	initFlight  singleflight.Group

	errs *errors.ErrorCollector

	restart restartMachine
}

// NewCoordinator creates a coordinator in the Idle state.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}
	if opts.Bus == nil {
		opts.Bus = notify.NewBus()
	}
	c := &Coordinator{
		loader:       opts.Loader,
		detector:     opts.Detector,
		resolver:     opts.Resolver,
		engine:       opts.Engine,
		bus:          opts.Bus,
		logger:       opts.Logger.WithComponent("lifecycle"),
		onError:      opts.OnError,
		exitOnError:  opts.ExitOnError,
		exitSeverity: opts.ExitSeverity,
		exit:         os.Exit,
		forceDetect:  opts.ForceDetection,
		state:        StateIdle,
		errs:         errors.NewErrorCollector(),
	}
	c.restart.init(c)
	return c
}

// State returns a snapshot of the current lifecycle state.
func (c *Coordinator) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Config returns a snapshot of the current configuration.
func (c *Coordinator) Config() *config.Config {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cfg
}

// ErrorCount returns the number of lifecycle errors recorded so far.
func (c *Coordinator) ErrorCount() int {
	return c.errs.Count()
}

// Bus exposes the coordinator's event bus for subscribers.
func (c *Coordinator) Bus() *notify.Bus {
	return c.bus
}

// Initialize loads configuration exactly once even under concurrent callers:
// overlapping calls share the in-flight load and observe the same completed
// outcome. The flight clears on completion, success or failure, so a failed
// initialization can be retried.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mutex.Lock()
	if c.initialized {
		c.mutex.Unlock()
		return nil
	}
	c.mutex.Unlock()

	_, err, _ := c.initFlight.Do("initialize", func() (interface{}, error) {
		cfg, loadErr := c.loader()
		if loadErr != nil {
			return nil, loadErr
		}
		c.mutex.Lock()
		c.cfg = cfg
		c.initialized = true
		c.mutex.Unlock()
		return cfg, nil
	})
	return err
}

// Start runs the full dev startup: initialize, detect, resolve plugins, hand
// the assembled configuration to the build engine, and track the returned
// server handle. Starting over a live server is safe: the previous handle is
// closed first and the new one supersedes it.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.start(ctx, false)
}

func (c *Coordinator) start(ctx context.Context, restartMode bool) error {
	c.mutex.Lock()
	if !validStarts[c.state] && c.state != StateStarting {
		from := c.state
		c.mutex.Unlock()
		return c.fail(ctx, "start", from, fmt.Errorf("cannot start from state %s", from))
	}
	from := c.state
	c.transitionLocked(StateStarting)
	c.mutex.Unlock()

	if err := c.Initialize(ctx); err != nil {
		return c.fail(ctx, "start", from, err)
	}

	cfg := c.Config()
	result := c.detectFramework(ctx, cfg)
	c.logger.Debug(ctx, "framework detected",
		"framework", string(result.Framework),
		"confidence", result.Confidence,
		"source", string(result.Source))

	plugins := c.assemblePlugins(ctx, cfg, result.Framework)

	server, err := c.engine.CreateDevServer(ctx, cfg, plugins)
	if err != nil {
		return c.fail(ctx, "start", from, err)
	}

	// Supersede any previous handle. Close is idempotent, so stopping a
	// server that already exited is a success.
	c.mutex.Lock()
	previous := c.devServer
	c.devServer = server
	c.mutex.Unlock()
	if previous != nil {
		_ = previous.Close(ctx)
	}

	if err := server.Listen(ctx); err != nil {
		return c.fail(ctx, "start", from, err)
	}

	c.mutex.Lock()
	c.transitionLocked(StateRunning)
	c.mutex.Unlock()

	c.bus.Publish(notify.EventServerReady, map[string]interface{}{"url": server.URL()})
	if restartMode {
		// Restart mode keeps the console quiet: one status line, no banner.
		c.logger.Info(ctx, "server restarted", "url", server.URL())
	} else {
		c.logger.Info(ctx, "dev server running",
			"url", server.URL(), "framework", string(result.Framework))
	}
	return nil
}

// detectFramework runs detection unless the configuration pins a framework
// explicitly, which skips both caches and the scan entirely.
func (c *Coordinator) detectFramework(ctx context.Context, cfg *config.Config) detect.Result {
	if name := cfg.Detection.Framework; name != "" {
		if framework, ok := detect.ParseFramework(name); ok {
			return detect.Result{Framework: framework, Confidence: 1.0, Source: detect.SourceConfig}
		}
		c.logger.Warn(ctx, fmt.Errorf("unknown framework %q", name),
			"configured framework override ignored")
	}
	return c.detector.Detect(ctx, cfg.Root, c.forceDetect)
}

// assemblePlugins resolves adapters for the detected framework, merges them
// with the user's declared plugins, and drops any names the configuration
// disables. User declarations win collisions; disabling wins over both.
func (c *Coordinator) assemblePlugins(ctx context.Context, cfg *config.Config, framework detect.Framework) []plugin.AssembledPlugin {
	resolved := c.resolver.Resolve(ctx, cfg.Root, framework, nil)

	user := make([]plugin.AssembledPlugin, 0, len(cfg.Plugins.Declared))
	for _, declared := range cfg.Plugins.Declared {
		user = append(user, plugin.AssembledPlugin{
			Name:   declared.Name,
			Handle: declared.Options,
		})
	}
	merged := plugin.MergeWithUser(resolved, user)
	return plugin.DropDisabled(merged, cfg.Plugins.Disabled)
}

// Stop closes the dev server. Stopping an already-stopped coordinator is a
// success, which makes stop the universal cancellation primitive.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mutex.Lock()
	server := c.devServer
	c.devServer = nil
	if server == nil {
		if c.state == StateRunning || c.state == StateStopping {
			c.transitionLocked(StateStopped)
		}
		c.mutex.Unlock()
		return nil
	}
	from := c.state
	c.transitionLocked(StateStopping)
	c.mutex.Unlock()

	if err := server.Close(ctx); err != nil {
		return c.fail(ctx, "stop", from, err)
	}

	c.mutex.Lock()
	c.transitionLocked(StateStopped)
	c.mutex.Unlock()
	return nil
}

// Build runs a production build and returns to Idle.
func (c *Coordinator) Build(ctx context.Context) (*engine.BuildResult, error) {
	c.mutex.Lock()
	if !validStarts[c.state] {
		from := c.state
		c.mutex.Unlock()
		return nil, c.fail(ctx, "build", from, fmt.Errorf("cannot build from state %s", from))
	}
	from := c.state
	c.transitionLocked(StateBuilding)
	c.mutex.Unlock()

	if err := c.Initialize(ctx); err != nil {
		return nil, c.fail(ctx, "build", from, err)
	}

	cfg := c.Config()
	result := c.detectFramework(ctx, cfg)
	plugins := c.assemblePlugins(ctx, cfg, result.Framework)

	c.bus.Publish(notify.EventBuildStart, map[string]interface{}{})
	buildResult, err := c.engine.Build(ctx, cfg, plugins)
	if err != nil {
		c.bus.Publish(notify.EventBuildEnd, map[string]interface{}{"success": false})
		return buildResult, c.fail(ctx, "build", from, err)
	}
	c.bus.Publish(notify.EventBuildEnd, map[string]interface{}{
		"success":     buildResult.Success,
		"duration_ms": buildResult.Duration.Milliseconds(),
	})

	c.mutex.Lock()
	c.transitionLocked(StateIdle)
	c.mutex.Unlock()
	return buildResult, nil
}

// Preview serves the built output and tracks the preview handle. At most one
// preview server is live: a new preview supersedes the previous handle.
func (c *Coordinator) Preview(ctx context.Context) error {
	c.mutex.Lock()
	// A running preview may be replaced in place, so StatePreviewing is a
	// valid origin here even though it is not a valid start state.
	if !validStarts[c.state] && c.state != StatePreviewing {
		from := c.state
		c.mutex.Unlock()
		return c.fail(ctx, "preview", from, fmt.Errorf("cannot preview from state %s", from))
	}
	from := c.state
	c.mutex.Unlock()

	if err := c.Initialize(ctx); err != nil {
		return c.fail(ctx, "preview", from, err)
	}

	server, err := c.engine.Preview(ctx, c.Config())
	if err != nil {
		return c.fail(ctx, "preview", from, err)
	}

	c.mutex.Lock()
	previous := c.previewServer
	c.previewServer = server
	c.transitionLocked(StatePreviewing)
	c.mutex.Unlock()
	if previous != nil {
		_ = previous.Close(ctx)
	}

	c.logger.Info(ctx, "preview server running", "url", server.URL())
	return nil
}

// Dispose stops both servers and clears coordinator-owned caches.
func (c *Coordinator) Dispose(ctx context.Context) error {
	err := c.Stop(ctx)

	c.mutex.Lock()
	preview := c.previewServer
	c.previewServer = nil
	c.mutex.Unlock()
	if preview != nil {
		_ = preview.Close(ctx)
	}

	if c.detector != nil {
		c.detector.Reset()
	}
	return err
}

// transitionLocked is the single mutation point for lifecycle state. Callers
// hold c.mutex. Every transition stamps activity and emits a status change.
func (c *Coordinator) transitionLocked(to State) {
	from := c.state
	c.state = to
	c.lastActivity = time.Now()
	c.bus.Publish(notify.EventStatusChange, map[string]interface{}{
		"from": from.String(),
		"to":   to.String(),
	})
}

// fail records an operation failure: state moves to Error, the error counter
// increments, the error callback fires, and the process continues unless the
// exit-on-error policy says otherwise.
func (c *Coordinator) fail(ctx context.Context, operation string, from State, err error) error {
	terr := errors.NewTransitionError(operation, from.String(), err)

	c.mutex.Lock()
	c.transitionLocked(StateError)
	c.mutex.Unlock()

	c.errs.Add(terr)
	c.logger.Error(ctx, terr, "lifecycle operation failed", "operation", operation)
	c.bus.Publish(notify.EventError, map[string]interface{}{
		"operation": operation,
		"error":     terr.Error(),
	})
	if c.onError != nil {
		c.onError(terr)
	}

	if c.exitOnError && terr.Severity >= c.exitSeverity {
		c.exit(1)
	}
	return terr
}
