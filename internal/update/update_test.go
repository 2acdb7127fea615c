package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/netroute/netroute/internal/router"
)

// setupTestServer creates a test server and overrides ReleasesURL.
// Returns a cleanup function that restores the original URL.
func setupTestServer(handler http.HandlerFunc) (*httptest.Server, func()) {
	server := httptest.NewServer(handler)
	originalURL := ReleasesURL
	ReleasesURL = server.URL
	cleanup := func() {
		server.Close()
		ReleasesURL = originalURL
	}
	return server, cleanup
}

func releaseHandler(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Release{
			TagName: tag,
			HTMLURL: "https://github.com/netroute/netroute/releases/tag/" + tag,
		})
	}
}

func quietRouter() *router.Router {
	return router.New(router.WithLogger(nil))
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"v10.20.30", "v10.20.30"},
		{"", "v"},
		{"v", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeVersion(tt.input); got != tt.expected {
				t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Info
	}{
		{"1.2", Info{Raw: "1.2", Canonical: "v1.2.0", Major: "v1"}},
		{"v2.0.0-rc.1+abc", Info{Raw: "v2.0.0-rc.1+abc", Canonical: "v2.0.0-rc.1", Major: "v2", Prerelease: "-rc.1", Build: "+abc"}},
		{"dev", Info{Raw: "dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.Valid() != (tt.want.Canonical != "") {
				t.Errorf("Parse(%q).Valid() = %v", tt.input, got.Valid())
			}
		})
	}
}

func TestCheckForUpdate_DevAndEmptyVersion(t *testing.T) {
	for _, v := range []string{"dev", ""} {
		if result := CheckForUpdate(context.Background(), quietRouter(), v); result != nil {
			t.Errorf("Expected nil for version %q, got result", v)
		}
	}
}

func TestCheckForUpdate_UpdateAvailable(t *testing.T) {
	_, cleanup := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.Header.Get("Accept") != "application/vnd.github.v3+json" {
			t.Error("Expected GitHub API accept header")
		}
		releaseHandler("v2.0.0")(w, r)
	})
	defer cleanup()

	result := CheckForUpdate(context.Background(), quietRouter(), "1.0.0")
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	if !result.UpdateAvailable {
		t.Error("Expected update to be available")
	}
	if result.CurrentVersion != "1.0.0" {
		t.Errorf("Expected current version 1.0.0, got %s", result.CurrentVersion)
	}
	if result.LatestVersion != "2.0.0" {
		t.Errorf("Expected latest version 2.0.0, got %s", result.LatestVersion)
	}
	if result.UpdateURL != "https://github.com/netroute/netroute/releases/tag/v2.0.0" {
		t.Errorf("Unexpected update URL: %s", result.UpdateURL)
	}
}

func TestCheckForUpdate_Compare(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"same", "1.0.0", "v1.0.0", false},
		{"current newer", "2.0.0", "v1.0.0", false},
		{"prefixed current", "v1.0.0", "v2.0.0", true},
		{"patch", "1.0.0", "v1.0.1", true},
		{"minor", "1.0.0", "v1.1.0", true},
		{"prerelease", "1.0.0", "v2.0.0-beta.1", true},
		{"invalid current", "not-a-version", "v2.0.0", false},
		{"invalid latest", "1.0.0", "not-a-version", false},
		{"empty tag", "1.0.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cleanup := setupTestServer(releaseHandler(tt.latest))
			defer cleanup()

			result := CheckForUpdate(context.Background(), quietRouter(), tt.current)
			if result == nil {
				t.Fatal("Expected result, got nil")
			}
			if result.UpdateAvailable != tt.want {
				t.Errorf("UpdateAvailable = %v, want %v", result.UpdateAvailable, tt.want)
			}
		})
	}
}

func TestCheckForUpdate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("invalid json")) }},
		{"empty body", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cleanup := setupTestServer(tt.handler)
			defer cleanup()

			if result := CheckForUpdate(context.Background(), quietRouter(), "1.0.0"); result != nil {
				t.Errorf("Expected nil, got %+v", result)
			}
		})
	}
}

func TestCheckForUpdate_ContextCanceled(t *testing.T) {
	_, cleanup := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		releaseHandler("v2.0.0")(w, r)
	})
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if result := CheckForUpdate(ctx, quietRouter(), "1.0.0"); result != nil {
		t.Error("Expected nil on canceled context, got result")
	}
}

func TestCheckForUpdate_ConnectionError(t *testing.T) {
	originalURL := ReleasesURL
	ReleasesURL = "http://localhost:1"
	defer func() { ReleasesURL = originalURL }()

	if result := CheckForUpdate(context.Background(), quietRouter(), "1.0.0"); result != nil {
		t.Error("Expected nil on connection error, got result")
	}
}
