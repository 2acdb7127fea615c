package resolve_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netroute/netroute/internal/resolve"
)

var methods = []string{"CONNECT", "DELETE", "GET", "HEAD", "OPTIONS", "PATCH", "POST", "PUT", "TRACE"}

func TestLookup_ExactCaseInsensitive(t *testing.T) {
	got, err := resolve.Lookup("method", "post", methods)
	require.NoError(t, err)
	assert.Equal(t, "POST", got)
}

func TestLookup_EmptyQuery(t *testing.T) {
	_, err := resolve.Lookup("method", "  ", methods)
	assert.ErrorIs(t, err, resolve.ErrEmptyQuery)
}

func TestLookup_UnknownCarriesSuggestion(t *testing.T) {
	_, err := resolve.Lookup("method", "delet", methods)
	require.Error(t, err)

	var unknown *resolve.UnknownError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "delet", unknown.Query)
	require.NotEmpty(t, unknown.Suggestions)
	assert.Equal(t, "DELETE", unknown.Suggestions[0])
	assert.Contains(t, err.Error(), `did you mean "DELETE"?`)
}

func TestSuggest_SubsequenceMatch(t *testing.T) {
	got := resolve.Suggest("pst", methods, 3)
	assert.Contains(t, got, "POST")
}

func TestSuggest_TranspositionFallsBackToEditDistance(t *testing.T) {
	got := resolve.Suggest("gte", methods, 3)
	assert.Contains(t, got, "GET")
}

func TestSuggest_NothingClose(t *testing.T) {
	assert.Empty(t, resolve.Suggest("zzzzzzzzzz", methods, 3))
}

func TestSuggest_RespectsLimit(t *testing.T) {
	got := resolve.Suggest("t", methods, 2)
	assert.Len(t, got, 2)
}

func TestUnknownError_NoSuggestions(t *testing.T) {
	err := &resolve.UnknownError{Kind: "profile", Query: "prod"}
	assert.Equal(t, `unknown profile "prod"`, err.Error())
}
