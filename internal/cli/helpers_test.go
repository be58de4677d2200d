package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv runs commands in-process against an isolated config and data
// directory.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

// result is the outcome of one command line.
type result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(envPrefix+"_"+strings.ToUpper(key), "")
	}
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes bugtracker with the env's directories and the given args.
func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), full, &stdout, &stderr)
	return result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// mustRun runs the command and fails the test unless it exits 0.
func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.ExitCode, "bugtracker %v\nstderr: %s", args, r.Stderr)
	return r
}

// mustJSON runs the command with JSON output and decodes stdout into T.
func mustJSON[T any](e *testEnv, args ...string) T {
	e.t.Helper()
	r := e.mustRun(append([]string{"-o", "json"}, args...)...)
	var v T
	require.NoError(e.t, json.Unmarshal([]byte(r.Stdout), &v), "stdout: %s", r.Stdout)
	return v
}

// object is a decoded JSON object.
type object = map[string]any

// mustCreate creates an entity from flags and returns its generated ID.
func (e *testEnv) mustCreate(entity string, flags ...string) string {
	e.t.Helper()
	out := mustJSON[object](e, append([]string{entity, "create"}, flags...)...)
	id, _ := out["id"].(string)
	require.NotEmpty(e.t, id)
	return id
}
