package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/gpslocation/cmd/gpslocation/internal/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvLogLevel, "")
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestVersionAndHelp(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "gpslocation version "+Version)

	out, _, err = execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "get")

	out, _, err = execute(t, "get", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--maximum-age MS")

	_, _, err = execute(t, "teleport")
	assert.Error(t, err)
}

func TestGetSingleFix(t *testing.T) {
	out, _, err := execute(t, "get", "--delay", "1ms", "--timeout", "5000", "--json")
	require.NoError(t, err)

	var res getResult
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &res))
	assert.Equal(t, 1, res.Request)
	require.NotNil(t, res.Position)
	assert.Equal(t, 40.4168, res.Position.Coords.Latitude)
	assert.Nil(t, res.Error)
}

func TestGetSequentialUsesCache(t *testing.T) {
	out, _, err := execute(t, "get", "--delay", "1ms", "--count", "3", "--maximum-age", "60000", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "#1  ")
	assert.Contains(t, out, "#3  ")
	assert.Contains(t, out, `gpslocation_requests_total{outcome="cache_hit"} 2`)
	assert.Contains(t, out, `gpslocation_requests_total{outcome="success"} 1`)
}

func TestGetParallel(t *testing.T) {
	out, _, err := execute(t, "get", "--delay", "5ms", "--count", "4", "--parallel", "--json")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestGetFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"timeout", []string{"--delay", "1s", "--timeout", "20"}, "TIMEOUT"},
		{"zero timeout", []string{"--timeout", "0"}, "TIMEOUT"},
		{"denied", []string{"--deny", "--timeout", "1000"}, "PERMISSION_DENIED"},
		{"gps disabled", []string{"--gps-disabled", "--timeout", "1000"}, "GPS is disabled on this device."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"get"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "1 of 1 requests failed")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestGetRejectsBadFlags(t *testing.T) {
	_, _, err := execute(t, "get", "--count", "0")
	assert.Error(t, err)

	_, _, err = execute(t, "get", "extra")
	assert.Error(t, err)
}

func TestGetReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
request:
  timeout: 1000
simulator:
  latitude: 35.6762
  longitude: 139.6503
  delay: 1ms
`), 0o644))

	out, _, err := execute(t, "--config", path, "get", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"latitude":35.6762`)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gpslocation.yaml")

	out, _, err := execute(t, "--config="+path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	_, _, err = execute(t, "--config="+path, "config", "init")
	assert.Error(t, err, "init must not overwrite")

	out, _, err = execute(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "# source: "+path)
	assert.Contains(t, out, "latitude: 40.4168")
	assert.Contains(t, out, "timeout=Infinity")
}
