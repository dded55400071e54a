package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestString(t *testing.T) {
	info := BuildInfo{Version: "1.2.3", GitCommit: "abc123", GoVersion: "go1.24", Platform: "linux/amd64"}
	s := info.String()
	assert.Contains(t, s, "launchpad 1.2.3")
	assert.Contains(t, s, "abc123")
}
