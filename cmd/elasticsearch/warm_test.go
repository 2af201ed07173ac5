//go:build !windows

package elasticsearch

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stackvista/esconfig/internal/config"
	"github.com/stackvista/esconfig/internal/warmup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempErrorLog points warm-up runners at a per-test error log
func useTempErrorLog(t *testing.T) string {
	t.Helper()
	errorLog := filepath.Join(t.TempDir(), "error-output.txt")

	orig := newWarmRunner
	newWarmRunner = func(dir string, stdout io.Writer) *warmup.Runner {
		runner := warmup.NewRunner(dir, stdout)
		runner.ErrorLog = errorLog
		return runner
	}
	t.Cleanup(func() { newWarmRunner = orig })

	return errorLog
}

func TestRunWarm(t *testing.T) {
	errorLog := useTempErrorLog(t)
	dir := t.TempDir()
	writeConfig(t, dir, configWithHost("http://example.test:9200/",
		`"warm": {"DEVELOPMENT": "echo warming {{__HOST__}}/_status && touch warmed && echo oops >&2"}`))
	cliCtx, out := newTestContext(dir)

	require.NoError(t, runWarm(cliCtx, nil))

	assert.Contains(t, out.String(), "[Warm]")
	assert.Contains(t, out.String(), "Executing command: echo warming http://example.test:9200/_status && touch warmed")
	assert.Contains(t, out.String(), "\nwarming http://example.test:9200/_status\n")
	assert.NotContains(t, out.String(), "oops")
	assert.FileExists(t, filepath.Join(dir, "warmed"), "the command runs in the working directory")

	logged, err := os.ReadFile(errorLog)
	require.NoError(t, err)
	assert.Equal(t, "oops\n", string(logged))
}

func TestRunWarm_Undefined(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, configWithHost("http://example.test:9200", `"warm": {"PRODUCTION": "echo hi"}`))
	cliCtx, out := newTestContext(dir)

	err := runWarm(cliCtx, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrWarmUndefined)
	assert.Contains(t, out.String(), `[ERROR: no warm up defined for environment "DEVELOPMENT"]`)
	assert.NotContains(t, out.String(), "Executing command")
}

func TestRunWarm_NonZeroExit(t *testing.T) {
	useTempErrorLog(t)
	dir := t.TempDir()
	writeConfig(t, dir, configWithHost("http://example.test:9200", `"warm": {"DEVELOPMENT": "echo started; exit 3"}`))
	cliCtx, out := newTestContext(dir)

	err := runWarm(cliCtx, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 3")
	assert.Contains(t, out.String(), "started\n")
	assert.Contains(t, out.String(), "[ERROR: warm-up command exited with status 3")
}

func TestRunWarm_QuietStillEchoesOutput(t *testing.T) {
	useTempErrorLog(t)
	dir := t.TempDir()
	writeConfig(t, dir, configWithHost("http://example.test:9200", `"warm": {"DEVELOPMENT": "echo warmed"}`))
	cliCtx, out := newTestContext(dir)
	cliCtx.Config.Quiet = true

	require.NoError(t, runWarm(cliCtx, nil))

	assert.Equal(t, "warmed\n", out.String())
}
