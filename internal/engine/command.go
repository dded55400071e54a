package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/launchpad-dev/launchpad/internal/config"
	"github.com/launchpad-dev/launchpad/internal/logging"
	"github.com/launchpad-dev/launchpad/internal/manifest"
	"github.com/launchpad-dev/launchpad/internal/plugin"
)

// CommandEngine drives the project's own bundler through its package.json run
// scripts: `dev` for the dev server, `build` for production builds, `preview`
// for serving built output. Projects without a script fall back to the stock
// bundler invocation.
type CommandEngine struct {
	logger logging.Logger
}

// NewCommandEngine creates a command-backed engine.
func NewCommandEngine(logger logging.Logger) *CommandEngine {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &CommandEngine{logger: logger.WithComponent("engine")}
}

var fallbackCommands = map[string]string{
	"dev":     "npx vite",
	"build":   "npx vite build",
	"preview": "npx vite preview",
}

func (e *CommandEngine) command(cfg *config.Config, script string) (string, error) {
	m, err := manifest.Read(cfg.Root)
	if err != nil {
		return "", err
	}
	if cmd := m.Script(script); cmd != "" {
		return cmd, nil
	}
	return fallbackCommands[script], nil
}

// CreateDevServer prepares a dev-server process. The process starts on Listen.
func (e *CommandEngine) CreateDevServer(ctx context.Context, cfg *config.Config, plugins []plugin.AssembledPlugin) (DevServer, error) {
	command, err := e.command(cfg, "dev")
	if err != nil {
		return nil, err
	}
	e.logger.Debug(ctx, "dev server prepared",
		"command", command, "plugins", len(plugins))
	return &processServer{
		command: command,
		dir:     cfg.Root,
		url:     fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port),
		port:    cfg.Server.Port,
		host:    cfg.Server.Host,
		logger:  e.logger,
	}, nil
}

// Build runs the production build to completion.
func (e *CommandEngine) Build(ctx context.Context, cfg *config.Config, plugins []plugin.AssembledPlugin) (*BuildResult, error) {
	command, err := e.command(cfg, "build")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cmd := shellCommand(ctx, command, cfg.Root, cfg.Server.Port)
	output, err := cmd.CombinedOutput()
	result := &BuildResult{
		Success:  err == nil,
		Duration: time.Since(start),
		Output:   string(output),
	}
	if err != nil {
		return result, fmt.Errorf("build command %q: %w", command, err)
	}
	return result, nil
}

// Preview starts serving the built output.
func (e *CommandEngine) Preview(ctx context.Context, cfg *config.Config) (PreviewServer, error) {
	command, err := e.command(cfg, "preview")
	if err != nil {
		return nil, err
	}
	srv := &processServer{
		command: command,
		dir:     cfg.Root,
		url:     fmt.Sprintf("http://%s:%d", cfg.Preview.Host, cfg.Preview.Port),
		port:    cfg.Preview.Port,
		host:    cfg.Preview.Host,
		logger:  e.logger,
	}
	if err := srv.Listen(ctx); err != nil {
		return nil, err
	}
	return srv, nil
}

// processServer wraps a long-running bundler process as a server handle.
type processServer struct {
	command string
	dir     string
	url     string
	port    int
	host    string
	logger  logging.Logger

	mutex   sync.Mutex
	cmd     *exec.Cmd
	stopped bool
}

func (s *processServer) Listen(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cmd != nil {
		return fmt.Errorf("server already listening")
	}

	cmd := shellCommand(ctx, s.command, s.dir, s.port)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %q: %w", s.command, err)
	}
	s.cmd = cmd
	s.stopped = false
	s.logger.Debug(ctx, "server process started", "command", s.command, "url", s.url)
	return nil
}

// Close terminates the process. Closing an unstarted or already-closed server
// is a success, which is what makes restart supersession safe.
func (s *processServer) Close(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cmd == nil || s.stopped {
		return nil
	}
	s.stopped = true

	if s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil && !strings.Contains(err.Error(), "already finished") {
			return fmt.Errorf("stopping server process: %w", err)
		}
		_ = s.cmd.Wait()
	}
	s.logger.Debug(ctx, "server process stopped", "url", s.url)
	return nil
}

func (s *processServer) URL() string { return s.url }

func shellCommand(ctx context.Context, command, dir string, port int) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), fmt.Sprintf("PORT=%d", port))
	return cmd
}
