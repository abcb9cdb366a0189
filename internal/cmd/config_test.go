package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/internal/version"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

func TestConfigCommands(t *testing.T) {
	f := newFixture(t)
	configFile := filepath.Join(f.home, "config.yaml")

	out, err := f.run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, configFile, strings.TrimSpace(out))

	out, err = f.run("config", "set", "defaults.page_size", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "Set defaults.page_size = 25")
	assert.FileExists(t, configFile)

	out, err = f.run("config", "get", "defaults.page_size")
	require.NoError(t, err)
	assert.Equal(t, "25", strings.TrimSpace(out))

	out, err = f.run("config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file: "+configFile)
	assert.Contains(t, out, "page_size: 25")

	assert.Zero(t, f.gw.total())
}

func TestConfigSetRejectsInvalidValues(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("config", "set", "api.base_url", "ftp://example.com")
	require.Error(t, err)
	assert.True(t, tberrors.HasCode(err, tberrors.ErrCodeConfigInvalid))

	_, err = f.run("config", "get", "no.such.key")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(f.home, "config.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfiguredPageSizeDrivesListing(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")
	f.gw.on("GET /api/tasks/list", http.StatusOK, types.TaskList{Tasks: []types.Task{}})

	_, err := f.run("config", "set", "defaults.page_size", "10")
	require.NoError(t, err)

	out, err := f.run("tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
	assert.Equal(t, "limit=10&skip=0", f.gw.callsTo("GET /api/tasks/list")[0].query)
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("TASKBOARD_HOME", t.TempDir())
	out, _, err := execute(t, "", "version", "-o", "json")
	require.NoError(t, err)

	info := decodeJSON[version.Info](t, out)
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, _, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taskboard")
}

func TestMetricsFileIsWritten(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")
	metricsFile := filepath.Join(t.TempDir(), "taskboard.prom")

	_, err := f.run("--metrics-file", metricsFile, "navigate", "/")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "taskboard_navigation_decisions_total")
	assert.Contains(t, string(data), "taskboard_api_requests_total")
}

func TestUnknownCommand(t *testing.T) {
	t.Setenv("TASKBOARD_HOME", t.TempDir())
	_, _, err := execute(t, "", "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
