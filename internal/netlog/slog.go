package netlog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/request"
)

// SlogLogger emits one debug record per request and per response.
type SlogLogger struct {
	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
	// RevealSecrets logs credential headers verbatim.
	RevealSecrets bool
}

func (l SlogLogger) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l SlogLogger) LogRequest(ctx context.Context, ep endpoint.EndPoint) {
	logger := l.logger()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []any{
		"call_id", CallID(ctx),
		"method", ep.Method().String(),
		"content_type", ep.ContentType().String(),
		"body_params", len(ep.BodyParameters()),
	}
	if u, err := request.BuildURL(ep); err == nil {
		attrs = append(attrs, "url", u.String())
	}
	headers := request.BuildHeaders(ep)
	group := make([]any, 0, 2*len(headers))
	for _, name := range sortedKeys(headers) {
		group = append(group, name, headerValue(name, headers.Get(name), l.RevealSecrets))
	}
	attrs = append(attrs, slog.Group("headers", group...))
	logger.DebugContext(ctx, "outgoing request", attrs...)
}

func (l SlogLogger) LogResponse(ctx context.Context, resp *http.Response, data []byte) {
	logger := l.logger()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	if resp == nil {
		logger.DebugContext(ctx, "no response", "call_id", CallID(ctx))
		return
	}
	attrs := []any{
		"call_id", CallID(ctx),
		"status", resp.StatusCode,
		"bytes", len(data),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		attrs = append(attrs, "url", resp.Request.URL.String())
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		attrs = append(attrs, "content_type", ct)
	}
	logger.DebugContext(ctx, "incoming response", attrs...)
}
