package dryrun

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/request"
)

func TestWithDryRun(t *testing.T) {
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
	if !IsEnabled(WithDryRun(context.Background(), true)) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
	if IsEnabled(WithDryRun(context.Background(), false)) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
}

func TestFor_JSON(t *testing.T) {
	p, err := For(endpoint.Descriptor{
		Base:    endpoint.MustParseURL("https://api.example.com/v1"),
		Route:   "items",
		Verb:    endpoint.Post,
		Query:   map[string]any{"q": "shoes"},
		Body:    map[string]any{"name": "x"},
		Headers: map[string]string{"Authorization": "Bearer secret"},
		Extra:   map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	if p.Method != "POST" {
		t.Errorf("Method = %q, want POST", p.Method)
	}
	if p.URL != "https://api.example.com/v1/items?q=shoes" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.Headers["Authorization"] != "[redacted]" {
		t.Errorf("Authorization = %q, want masked", p.Headers["Authorization"])
	}
	if p.Headers["Accept"] != "application/json" {
		t.Errorf("Accept = %q", p.Headers["Accept"])
	}
	if string(p.Body) != `{"name":"x"}` {
		t.Errorf("Body = %s", p.Body)
	}
	if p.ContentType != "application/json" {
		t.Errorf("ContentType = %q", p.ContentType)
	}
}

func TestFor_NoBody(t *testing.T) {
	p, err := For(endpoint.Descriptor{Base: endpoint.MustParseURL("https://api.example.com")})
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	if p.Method != "GET" || p.ContentType != "" || p.Body != nil {
		t.Errorf("unexpected preview %+v", p)
	}
}

func TestFor_MultipartWithMissingFile(t *testing.T) {
	p, err := For(endpoint.Descriptor{
		Base:     endpoint.MustParseURL("https://api.example.com"),
		Verb:     endpoint.Post,
		Encoding: endpoint.MultipartFormData,
		Body: map[string]any{
			"avatar": endpoint.FileUpload{Data: []byte("png"), FileName: "a.png", MIMEType: "image/png"},
			"doc":    &url.URL{Scheme: "file", Path: "/does/not/exist.txt"},
			"note":   "hello",
		},
	})
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	want := []string{
		"avatar: <file a.png, 3 bytes>",
		"doc: <file /does/not/exist.txt>",
		"note: hello",
	}
	if strings.Join(p.Parts, "|") != strings.Join(want, "|") {
		t.Errorf("Parts = %q, want %q", p.Parts, want)
	}
	if len(p.Warnings) != 1 {
		t.Errorf("expected one warning for the unreadable file, got %q", p.Warnings)
	}
}

func TestFor_UnbuildableURL(t *testing.T) {
	_, err := For(endpoint.Descriptor{})
	if err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if !strings.Contains(err.Error(), request.ErrBuildURL.Error()) {
		t.Errorf("error = %v", err)
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Method:      "POST",
		URL:         "https://api.example.com/items",
		Headers:     map[string]string{"B": "2", "A": "1"},
		ContentType: "application/json",
		Body:        []byte(`{"name":"x"}`),
		Warnings:    []string{"something odd"},
	}

	var buf bytes.Buffer
	p.Write(&buf)
	output := buf.String()

	for _, want := range []string{
		"[DRY-RUN] Would send POST https://api.example.com/items",
		"  A: 1\n  B: 2\n",
		`{"name":"x"}`,
		"Warnings:",
		"  ! something odd",
		"Nothing sent (dry-run mode)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}
