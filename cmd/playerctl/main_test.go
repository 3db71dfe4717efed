package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// playerctlBin is the path to the built binary.
	playerctlBin string
	// buildErr captures any build error.
	buildErr error
)

// TestMain builds the playerctl binary once before running tests.
func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "playerctl-test-*")
	if err != nil {
		buildErr = err
		os.Exit(m.Run())
	}
	playerctlBin = filepath.Join(tmpDir, "playerctl")

	cmd := exec.Command("go", "build", "-o", playerctlBin, ".")
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &buildError{err: err, output: string(output)}
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// cleanEnv returns os.Environ() without PLAYER_* and XDG_* variables.
func cleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "PLAYER_") || strings.HasPrefix(e, "XDG_") {
			continue
		}
		env = append(env, e)
	}
	return append(env, "NO_COLOR=1")
}

type result struct {
	stdout   string
	stderr   string
	exitCode int
}

// run executes the binary with the given environment additions.
func run(t *testing.T, env []string, args ...string) result {
	t.Helper()
	require.NoError(t, buildErr)

	cmd := exec.Command(playerctlBin, args...)
	cmd.Env = append(cleanEnv(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := result{}
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		require.True(t, ok, "run playerctl: %v", err)
		res.exitCode = exitErr.ExitCode()
	}
	res.stdout, res.stderr = stdout.String(), stderr.String()
	return res
}

func TestVersionCommand(t *testing.T) {
	res := run(t, nil, "version")
	assert.Equal(t, 0, res.exitCode)
	assert.Contains(t, res.stdout, "module: github.com/mesh-intelligence/player")
}

func TestEnvironmentDirectories(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	dataDir := filepath.Join(dir, "data")

	res := run(t, []string{"PLAYER_CONFIG_DIR=" + configDir, "PLAYER_DATA_DIR=" + dataDir}, "init")
	require.Equal(t, 0, res.exitCode, res.stderr)
	assert.FileExists(t, filepath.Join(configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dataDir, "player.db"))
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--config-dir", filepath.Join(dir, "config"), "--data-dir", filepath.Join(dir, "data")}
	ns := strings.Repeat("e5", 32)

	res := run(t, nil, append(base, "player", "get", strings.Repeat("d4", 32), ns)...)
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "player not found")

	res = run(t, nil, append(base, "class", "get", "nothex", ns)...)
	assert.Equal(t, 1, res.exitCode)
}
