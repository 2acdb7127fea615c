package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Table(t *testing.T) {
	setupTestEnv(t, nil)

	stdout, _, err := execute(t, "classify", "200", "403", "503", "302")
	require.NoError(t, err)
	assert.Contains(t, stdout, "STATUS")
	assert.Contains(t, stdout, "200     success")
	assert.Contains(t, stdout, "403     unauthenticated  You need to be authenticated first.")
	assert.Contains(t, stdout, "503     server_error     Server error")
	assert.Contains(t, stdout, "302     failed           Network request failed.")
}

func TestClassify_JSON(t *testing.T) {
	setupTestEnv(t, nil)

	stdout, _, err := execute(t, "classify", "400", "404", "-o", "json")
	require.NoError(t, err)

	var got []classification
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []classification{
		{Status: 400, Category: "bad_request", Message: "Bad request"},
		{Status: 404, Category: "client_error", Message: "Some client error occurred"},
	}, got)
}

func TestClassify_InvalidStatus(t *testing.T) {
	setupTestEnv(t, nil)

	_, stderr, err := execute(t, "classify", "teapot")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, stderr, "status must be an integer")
}
