package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusfold/kvstore/internal/testutil"
)

func TestTestCommandMissingArgs(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "test")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", stdout)
}

func TestTestCommandPassing(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "test", "testdata/scenarios/pass")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "test_pass_text", []byte(stdout))
}

func TestTestCommandFilter(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "test", "testdata/scenarios/pass", "--filter", "set_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ set_and_search")
	assert.NotContains(t, stdout, "clear_and_refill")
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommandInvalidFilter(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "test", "testdata/scenarios/pass", "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandFailing(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "test", "testdata/scenarios/fail")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))

	assert.Contains(t, stdout, "✗ wrong_value")
	assert.Contains(t, stdout, "assertions[0]")
	assert.Contains(t, stdout, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFailing_JSON(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "--format", "json", "test", "testdata/scenarios/fail")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "wrong_value", resp.Data.Scenarios[0].Name)
	assert.NotEmpty(t, resp.Data.Scenarios[0].RunID)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	isolateEnv(t)
	dir := copyScenario(t, "testdata/scenarios/pass/clear_and_refill.yaml")
	goldenPath := filepath.Join(dir, "golden", "clear_and_refill.golden")
	require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o755))
	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0o644))

	stdout, _, err := executeCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "trace does not match golden file")
}

func TestTestCommandUpdate(t *testing.T) {
	isolateEnv(t)
	dir := copyScenario(t, "testdata/scenarios/pass/clear_and_refill.yaml")

	stdout, _, err := executeCLI(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ clear_and_refill (golden updated)")

	written, err := os.ReadFile(filepath.Join(dir, "golden", "clear_and_refill.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/scenarios/pass/golden/clear_and_refill.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	// A second run compares against the file just written.
	_, _, err = executeCLI(t, "test", dir)
	require.NoError(t, err)
}

func TestTestCommandRunIDOverride(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(t.Context())

	opts := &TestOptions{
		RootOptions: &RootOptions{Format: "json", Logger: zerolog.Nop()},
		RunIDs:      testutil.NewFixedRunID("fixed-run"),
	}
	err := runTests(opts, "testdata/scenarios/fail", cmd)
	require.Error(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "fixed-run", resp.Data.Scenarios[0].RunID)
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles("testdata/scenarios/pass", "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata/scenarios/pass", "clear_and_refill.yaml"),
		filepath.Join("testdata/scenarios/pass", "set_and_search.yaml"),
	}, files)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "basic.golden"),
		goldenFilePath(filepath.Join("scenarios", "basic.yaml")))
}

// copyScenario copies one scenario file into a fresh directory.
func copyScenario(t *testing.T, src string) string {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.Base(src)), data, 0o644))
	return dir
}
