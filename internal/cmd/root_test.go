package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netroute/netroute/internal/config"
)

func TestExecute_Help(t *testing.T) {
	setupTestEnv(t, nil)

	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)
	for _, want := range []string{"call", "batch", "classify", "profile", "version", "--dry-run"} {
		assert.Contains(t, stdout, want)
	}
}

func TestExecute_UnknownCommandSuggests(t *testing.T) {
	setupTestEnv(t, nil)

	_, stderr, err := execute(t, "clal")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, stderr, `unknown command "clal"`)
	assert.Contains(t, stderr, `Did you mean "call"?`)
}

func TestExecute_UnknownFlagSuggests(t *testing.T) {
	setupTestEnv(t, nil)

	_, stderr, err := execute(t, "call", "--methd", "GET")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, stderr, `Did you mean "--method"?`)
	assert.Contains(t, stderr, `Run "netroute call --help" to see supported flags.`)
}

func TestExecute_InvalidOutput(t *testing.T) {
	setupTestEnv(t, nil)

	_, _, err := execute(t, "classify", "200", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestExecute_QueryAndJQConflict(t *testing.T) {
	setupTestEnv(t, nil)

	_, _, err := execute(t, "classify", "200", "--query", ".[0]", "--jq", ".[1]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used together")

	stdout, _, err := execute(t, "classify", "200", "-o", "json", "--jq", ".[0].category")
	require.NoError(t, err)
	assert.Equal(t, "\"success\"\n", stdout)
}

func TestExecute_Template(t *testing.T) {
	setupTestEnv(t, nil)
	writeFile(t, "row.tmpl", `{{range .}}{{.status}}={{.category | upper}};{{end}}`)

	stdout, _, err := execute(t, "classify", "200", "500", "-o", "json", "--template", "@row.tmpl")
	require.NoError(t, err)
	assert.Equal(t, "200=SUCCESS;500=SERVER_ERROR;", stdout)
}

func TestExecute_OutputFromEnv(t *testing.T) {
	setupTestEnv(t, nil)
	t.Setenv(envOutput, "json")

	stdout, _, err := execute(t, "classify", "200", "--compact")
	require.NoError(t, err)
	assert.Equal(t, `[{"status":200,"category":"success"}]`+"\n", stdout)
}

func TestExecute_LoadsDotEnv(t *testing.T) {
	h := newRouteHandler().On("GET", "/env", jsonResponse(200, `"from dotenv"`))
	server := setupTestEnv(t, h)
	writeFile(t, ".env", config.EnvBaseURL+"="+server.URL+"\n")
	require.NoError(t, os.Unsetenv(config.EnvBaseURL))

	stdout, _, err := execute(t, "call", "/env", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, "from dotenv\n", stdout)
}

func TestExecute_MissingEnvFile(t *testing.T) {
	setupTestEnv(t, nil)

	_, _, err := execute(t, "version", "--env-file", "nope.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.env")
}

func TestExtractFlag(t *testing.T) {
	assert.Equal(t, "--methd", extractFlag("unknown flag: --methd"))
	assert.Equal(t, "-Z", extractFlag("unknown shorthand flag: 'Z' in -Z"))
	assert.Equal(t, "--x", extractFlag("unknown flag: --x=1"))
	assert.Equal(t, "", extractFlag("something else"))
}

func TestExtractQuoted(t *testing.T) {
	assert.Equal(t, "clal", extractQuoted(`unknown command "clal" for "netroute"`))
	assert.Equal(t, "", extractQuoted("no quotes"))
}
