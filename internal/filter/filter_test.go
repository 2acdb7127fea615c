package filter

import (
	"bytes"
	"reflect"
	"testing"
)

func sampleBody() map[string]any {
	return map[string]any{
		"id":   float64(1),
		"name": "x",
		"tags": []any{"a", "b"},
		"items": []any{
			map[string]any{"sku": "s1", "stock": float64(0)},
			map[string]any{"sku": "s2", "stock": float64(3)},
		},
	}
}

func TestApply_EmptyExpressionReturnsInput(t *testing.T) {
	data := sampleBody()
	got, err := Apply(data, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Errorf("empty expression changed the input: %v", got)
	}
}

func TestApply_SingleResult(t *testing.T) {
	got, err := Apply(sampleBody(), ".name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "x" {
		t.Errorf("got %v, want x", got)
	}
}

func TestApply_MultipleResultsBecomeSlice(t *testing.T) {
	got, err := Apply(sampleBody(), ".tags[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []any{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApply_ShellEscapedNotEqual(t *testing.T) {
	got, err := Apply(sampleBody(), `.items[] | select(.stock \!= 0) | .sku`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s2" {
		t.Errorf("got %v, want s2", got)
	}
}

func TestApply_Errors(t *testing.T) {
	if _, err := Apply(sampleBody(), "invalid[[["); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Apply(sampleBody(), ".name | keys"); err == nil {
		t.Error("expected runtime error")
	}
}

func TestRun_ReusesCompiledCode(t *testing.T) {
	code, err := Compile(".id")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, want := range []float64{1, 2} {
		got, err := Run(code, map[string]any{"id": want})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestRun_NoResults(t *testing.T) {
	got, err := Apply(sampleBody(), "empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := got.([]any); !ok || len(s) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
}

func TestNormalizeExpression(t *testing.T) {
	tests := map[string]string{
		`select(.x \!= null)`: `select(.x != null)`,
		`select(.x != null)`:  `select(.x != null)`,
		`.a`:                  `.a`,
	}
	for in, want := range tests {
		if got := NormalizeExpression(in); got != want {
			t.Errorf("NormalizeExpression(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestApplyToJSON(t *testing.T) {
	raw := []byte(`{"id":1,"name":"x"}`)

	out, err := ApplyToJSON(raw, ".name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, []byte(`"x"`)) {
		t.Errorf("got %s", out)
	}

	out, err = ApplyToJSON(raw, "")
	if err != nil || !bytes.Equal(out, raw) {
		t.Errorf("empty expression should return input unchanged, got %s, %v", out, err)
	}

	if _, err := ApplyToJSON([]byte(`{bad}`), ".id"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestApplyFromJSON(t *testing.T) {
	got, err := ApplyFromJSON([]byte(`{"id":1,"name":"x"}`), ".id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != float64(1) {
		t.Errorf("got %v, want 1", got)
	}
}
