// Package netlog observes requests before they are sent and responses after
// they arrive. Observers only read what they are given; they never change
// the outcome of a call.
package netlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/netroute/netroute/internal/endpoint"
)

// Logger is the instrumentation hook used by the router. Both methods run
// synchronously on the dispatching goroutine.
type Logger interface {
	// LogRequest is called once before the request is sent.
	LogRequest(ctx context.Context, ep endpoint.EndPoint)
	// LogResponse is called once after the transport completes. resp and
	// data are nil when no response was received.
	LogResponse(ctx context.Context, resp *http.Response, data []byte)
}

type callIDKey struct{}

// WithCallID tags ctx with the identifier of one dispatch.
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey{}, id)
}

// CallID returns the dispatch identifier stored in ctx, if any.
func CallID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// Nop discards everything.
type Nop struct{}

func (Nop) LogRequest(context.Context, endpoint.EndPoint)       {}
func (Nop) LogResponse(context.Context, *http.Response, []byte) {}

type multi []Logger

// Multi fans out to every non-nil logger in order.
func Multi(loggers ...Logger) Logger {
	out := make(multi, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (m multi) LogRequest(ctx context.Context, ep endpoint.EndPoint) {
	for _, l := range m {
		l.LogRequest(ctx, ep)
	}
}

func (m multi) LogResponse(ctx context.Context, resp *http.Response, data []byte) {
	for _, l := range m {
		l.LogResponse(ctx, resp, data)
	}
}

const redacted = "[redacted]"

var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
	"X-Api-Key":           true,
	"X-Auth-Token":        true,
}

// Redact returns value, or a placeholder when name carries credentials.
func Redact(name, value string) string {
	return headerValue(name, value, false)
}

// headerValue hides credentials unless reveal is set.
func headerValue(name, value string, reveal bool) string {
	if reveal || !sensitiveHeaders[http.CanonicalHeaderKey(strings.TrimSpace(name))] {
		return value
	}
	return redacted
}
