package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpad-dev/launchpad/internal/config"
	"github.com/launchpad-dev/launchpad/internal/logging"
)

func projectWithManifest(t *testing.T, body string) *config.Config {
	t.Helper()
	root := t.TempDir()
	if body != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(body), 0o644))
	}
	return &config.Config{
		Server:  config.ServerConfig{Port: 5000, Host: "localhost"},
		Preview: config.PreviewConfig{Port: 5001, Host: "localhost"},
		Root:    root,
	}
}

func TestCommandPrefersProjectScript(t *testing.T) {
	eng := NewCommandEngine(nil)
	cfg := projectWithManifest(t, `{"scripts":{"dev":"webpack serve","build":"webpack"}}`)

	cmd, err := eng.command(cfg, "dev")
	require.NoError(t, err)
	assert.Equal(t, "webpack serve", cmd)

	cmd, err = eng.command(cfg, "build")
	require.NoError(t, err)
	assert.Equal(t, "webpack", cmd)
}

func TestCommandFallsBackToStockBundler(t *testing.T) {
	eng := NewCommandEngine(nil)
	cfg := projectWithManifest(t, "")

	for script, want := range fallbackCommands {
		cmd, err := eng.command(cfg, script)
		require.NoError(t, err)
		assert.Equal(t, want, cmd)
	}
}

func TestCreateDevServerDoesNotStartProcess(t *testing.T) {
	eng := NewCommandEngine(nil)
	cfg := projectWithManifest(t, "")

	server, err := eng.CreateDevServer(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", server.URL())
	// The process only starts on Listen; an unstarted handle closes cleanly.
	assert.NoError(t, server.Close(context.Background()))
}

func TestProcessServerCloseIsIdempotent(t *testing.T) {
	server := &processServer{url: "http://localhost:5000"}

	assert.NoError(t, server.Close(context.Background()))
	assert.NoError(t, server.Close(context.Background()))
}

func TestProcessServerLifecycle(t *testing.T) {
	root := t.TempDir()
	server := &processServer{
		command: "sleep 30",
		dir:     root,
		url:     "http://localhost:5000",
		port:    5000,
		logger:  logging.NopLogger{},
	}

	require.NoError(t, server.Listen(context.Background()))
	assert.Error(t, server.Listen(context.Background()), "a handle listens once")

	require.NoError(t, server.Close(context.Background()))
	require.NoError(t, server.Close(context.Background()), "closing a stopped server succeeds")
}

func TestBuildRunsToCompletion(t *testing.T) {
	eng := NewCommandEngine(nil)
	cfg := projectWithManifest(t, `{"scripts":{"build":"echo built"}}`)

	result, err := eng.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, "built")
	assert.Positive(t, result.Duration)
}

func TestBuildFailureCarriesOutput(t *testing.T) {
	eng := NewCommandEngine(nil)
	cfg := projectWithManifest(t, `{"scripts":{"build":"echo oops >&2; exit 1"}}`)

	result, err := eng.Build(context.Background(), cfg, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Output, "oops")
}
