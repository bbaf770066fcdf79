package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicManifest = "../pipeline/testdata/basic/service.yml"
const badSchemaManifest = "../pipeline/testdata/badschema/service.yml"

// resetFlags restores every package-level flag var to its zero value
// between invocations, since cobra commands are package-level
// singletons shared across tests.
func resetFlags() {
	manifestPath = ""
	ciMode = false
	verbose = false
	noColor = true // tests assert on message content, not escape codes
	planOut = ""
	diffBaseline = ""
	destroyService = ""
}

func run(t *testing.T, args ...string) (stdout string, code int) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	code = Execute()

	w.Close()
	os.Stdout = old
	var captured bytes.Buffer
	captured.ReadFrom(r)

	return captured.String(), code
}

func TestValidateSucceedsOnBasicManifest(t *testing.T) {
	out, code := run(t, "validate", "--file", basicManifest)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "checkout-api")
}

func TestValidateTakesNoEnvFlag(t *testing.T) {
	// validate only runs stages 1-2 (Parse, SchemaValidate), neither of
	// which needs a target environment, so --env isn't a flag validate
	// recognizes at all.
	_, code := run(t, "validate", "--file", basicManifest, "--env", "staging")
	assert.NotEqual(t, 0, code)
}

func TestValidateFailsOnSchemaViolation(t *testing.T) {
	out, code := run(t, "validate", "--file", badSchemaManifest)
	assert.NotEqual(t, 0, code)
	assert.Contains(t, out, "SchemaViolation")
}

func TestPlanPrintsPrettyIRToStdout(t *testing.T) {
	out, code := run(t, "plan", "--file", basicManifest, "--env", "prod")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"service": "checkout-api"`)
}

func TestPlanWritesToOutFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "plan.json")
	_, code := run(t, "plan", "--file", basicManifest, "--env", "prod", "--out", out)
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "checkout-api")
}

func TestUpThenDiffReportsNoChanges(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)

	abs, err := filepath.Abs(basicManifest)
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	_, code := run(t, "up", "--file", abs, "--env", "prod")
	require.Equal(t, 0, code)

	out, code := run(t, "diff", "--file", abs, "--env", "prod")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "no changes")
}

func TestDestroyAfterUpRemovesPlan(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)

	abs, err := filepath.Abs(basicManifest)
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	_, code := run(t, "up", "--file", abs, "--env", "prod")
	require.Equal(t, 0, code)

	_, code = run(t, "destroy", "--file", abs, "--env", "prod")
	assert.Equal(t, 0, code)

	_, code = run(t, "diff", "--file", abs, "--env", "prod")
	assert.Equal(t, diffExitCode, code)
}

func TestInitScaffoldsManifestOnce(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(dir))

	_, code := run(t, "init")
	assert.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, manifestFilename))

	_, code = run(t, "init")
	assert.NotEqual(t, 0, code)
}

func TestVersionPrintsWithoutError(t *testing.T) {
	out, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "dev")
}
