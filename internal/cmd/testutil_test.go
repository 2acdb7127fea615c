package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/netroute/netroute/internal/config"
)

// setupTestEnv isolates a test from the user's keyring, environment and
// working directory. When handler is non-nil a server is started and its
// URL becomes NETROUTE_BASE_URL.
func setupTestEnv(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
	t.Chdir(t.TempDir())

	for _, key := range []string{config.EnvBaseURL, config.EnvProfile, config.EnvHeaders, config.EnvEnvFile} {
		t.Setenv(key, "")
	}
	t.Setenv(envOutput, "text")

	if handler == nil {
		return nil
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	t.Setenv(config.EnvBaseURL, server.URL)
	return server
}

// execute runs the CLI in-process and returns what it wrote.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = executeRoot(context.Background(), root)
	return out.String(), errOut.String(), err
}

// jsonResponse creates an http.HandlerFunc that returns a JSON response with the given status and body.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes requests by exact "METHOD PATH" and records every
// request it sees. Unmatched requests get 404.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []*http.Request
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given HTTP method and path.
func (h *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	h.routes[method+" "+path] = handler
	return h
}

func (h *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.requests = append(h.requests, r.Clone(context.Background()))
	handler, ok := h.routes[r.Method+" "+r.URL.Path]
	h.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

func (h *routeHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.requests)
}

func (h *routeHandler) last() *http.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) == 0 {
		return nil
	}
	return h.requests[len(h.requests)-1]
}

// writeFile writes content under the current (temporary) directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(name, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return name
}
