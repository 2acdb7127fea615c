package outfmt

import (
	"bytes"
	"context"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input       string
		expected    Mode
		expectError bool
	}{
		{"text", Text, false},
		{"", Text, false},
		{"json", JSON, false},
		{"jsonl", JSONL, false},
		{"ndjson", JSONL, false},
		{"yaml", Text, true},
		{"JSON", Text, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := Parse(tt.input)
			if (err != nil) != tt.expectError {
				t.Fatalf("Parse(%q) error = %v, expectError %v", tt.input, err, tt.expectError)
			}
			if mode != tt.expected {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, mode, tt.expected)
			}
		})
	}
}

func TestModeContext(t *testing.T) {
	ctx := context.Background()
	if ModeFromContext(ctx) != Text || IsJSON(ctx) {
		t.Error("default mode should be text")
	}
	if !IsJSON(WithMode(ctx, JSONL)) {
		t.Error("jsonl should count as JSON")
	}
	if IsCompact(ctx) {
		t.Error("compact should default to false")
	}
	if !IsCompact(WithCompact(ctx, true)) {
		t.Error("WithCompact(true) not honored")
	}
	if !IsCompact(WithMode(ctx, JSONL)) {
		t.Error("jsonl is always compact")
	}
	if JSONL.String() != "jsonl" || Mode(42).String() != "text" {
		t.Error("unexpected Mode.String")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]any{"a": "<b>"}, false); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "{\n  \"a\": \"<b>\"\n}\n"; got != want {
		t.Errorf("WriteJSON = %q, want %q", got, want)
	}

	buf.Reset()
	if err := WriteJSON(&buf, []int{1, 2}, true); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[1,2]\n" {
		t.Errorf("compact WriteJSON = %q", got)
	}
}
