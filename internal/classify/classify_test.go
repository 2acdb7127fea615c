package classify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize_Ranges(t *testing.T) {
	for status := 0; status < 1000; status++ {
		var want Category
		switch {
		case status >= 100 && status <= 299:
			want = Success
		case status == 400:
			want = BadRequest
		case status == 403:
			want = AuthenticationError
		case status >= 400 && status <= 499:
			want = ClientError
		case status >= 500 && status <= 599:
			want = ServerError
		default:
			want = Failed
		}
		require.Equal(t, want, Categorize(status), "status %d", status)
	}
}

func TestCategorize_Boundaries(t *testing.T) {
	tests := []struct {
		status int
		want   Category
	}{
		{99, Failed},
		{100, Success},
		{204, Success},
		{299, Success},
		{300, Failed},
		{304, Failed},
		{399, Failed},
		{400, BadRequest},
		{401, ClientError},
		{403, AuthenticationError},
		{404, ClientError},
		{499, ClientError},
		{500, ServerError},
		{599, ServerError},
		{600, Failed},
		{-1, Failed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.status), "status %d", tt.status)
	}
}

func TestDefaultHandler_Messages(t *testing.T) {
	h := NewDefaultHandler()
	tests := []struct {
		status int
		want   Outcome
	}{
		{200, Outcome{Category: Success}},
		{400, Outcome{BadRequest, "Bad request"}},
		{403, Outcome{AuthenticationError, "You need to be authenticated first."}},
		{404, Outcome{ClientError, "Some client error occurred"}},
		{503, Outcome{ServerError, "Server error"}},
		{302, Outcome{Failed, "Network request failed."}},
	}
	for _, tt := range tests {
		got := h.Classify(tt.status)
		assert.Equal(t, tt.want, got, "status %d", tt.status)
		assert.Equal(t, tt.status >= 100 && tt.status <= 299, got.Success())
	}
	assert.Equal(t, MessageNoData, h.NoDataMessage())
	assert.Equal(t, MessageUnableToDecode, h.UnableToDecodeMessage())
}

func TestDefaultHandler_CustomWordingKeepsClassification(t *testing.T) {
	h := NewDefaultHandler()
	h.Messages = MessageMap(map[Category]string{
		AuthenticationError: "Please sign in.",
		ServerError:         "Try later.",
	})

	assert.Equal(t, Outcome{AuthenticationError, "Please sign in."}, h.Classify(403))
	assert.Equal(t, Outcome{ServerError, "Try later."}, h.Classify(500))
	// Categories missing from the table keep their default text.
	assert.Equal(t, Outcome{BadRequest, MessageBadRequest}, h.Classify(400))
	assert.True(t, h.Classify(201).Success())
}

func TestDefaultHandler_ConfiguredDecodeMessages(t *testing.T) {
	h := &DefaultHandler{NoDataErrorMessage: "empty!", UnableToDecodeErrorMessage: "garbled!"}
	assert.Equal(t, "empty!", h.NoDataMessage())
	assert.Equal(t, "garbled!", h.UnableToDecodeMessage())

	var zero DefaultHandler
	assert.Equal(t, MessageNoData, zero.NoDataMessage())
	assert.Equal(t, MessageUnableToDecode, zero.UnableToDecodeMessage())
	assert.Equal(t, MessageFailed, zero.Classify(700).Message)
}

func TestMessageMap_CopiesTable(t *testing.T) {
	table := map[Category]string{ClientError: "nope"}
	fn := MessageMap(table)
	table[ClientError] = "changed"
	assert.Equal(t, "nope", fn(ClientError))
}

func TestDefaultHandler_ConcurrentUse(t *testing.T) {
	h := NewDefaultHandler()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(status int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.Classify(status)
			}
		}(400 + i)
	}
	wg.Wait()
}

func TestCategoryCodesAreDistinct(t *testing.T) {
	seen := map[string]Category{}
	for c := Success; c <= UnableToDecode; c++ {
		code := c.Code()
		_, dup := seen[code]
		assert.False(t, dup, "duplicate code %s", code)
		seen[code] = c
		assert.Equal(t, code, c.String())
		if c != Success {
			assert.NotEmpty(t, DefaultMessage(c))
			assert.NotEmpty(t, c.Suggestion())
		}
	}
	assert.Equal(t, "category_42", Category(42).Code())
	assert.Empty(t, DefaultMessage(Success))
}
