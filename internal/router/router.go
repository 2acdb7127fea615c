// Package router dispatches endpoint descriptors: it builds the request,
// sends it through a Transport, classifies the status and decodes the body.
// Every call ends in exactly one outcome.
package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/netroute/netroute/internal/classify"
	"github.com/netroute/netroute/internal/debug"
	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/netlog"
	"github.com/netroute/netroute/internal/request"
)

// Router holds the collaborators shared by every call. It is never mutated
// after New returns and is safe for concurrent use.
type Router struct {
	transport Transport
	logger    netlog.Logger
	handler   classify.Handler
	decoder   Decoder
}

// Option configures a Router.
type Option func(*Router)

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) Option {
	return func(r *Router) {
		if t != nil {
			r.transport = t
		}
	}
}

// WithLogger replaces the instrumentation hook. A nil logger disables it.
func WithLogger(l netlog.Logger) Option {
	return func(r *Router) {
		if l == nil {
			l = netlog.Nop{}
		}
		r.logger = l
	}
}

// WithHandler replaces the status classifier.
func WithHandler(h classify.Handler) Option {
	return func(r *Router) {
		if h != nil {
			r.handler = h
		}
	}
}

// WithDecoder replaces the body decoder.
func WithDecoder(d Decoder) Option {
	return func(r *Router) {
		if d != nil {
			r.decoder = d
		}
	}
}

// New returns a Router. Without options it sends with NewHTTPTransport(nil),
// dumps traffic to stderr, classifies with classify.NewDefaultHandler and
// decodes JSON.
func New(opts ...Option) *Router {
	r := &Router{
		transport: NewHTTPTransport(nil),
		logger:    netlog.NewTextLogger(nil),
		handler:   classify.NewDefaultHandler(),
		decoder:   JSONDecoder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the asynchronous outcome of a call. Exactly one of Value and Err
// is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call produced a value.
func (r Result[T]) OK() bool { return r.Err == nil }

// Fetch performs one call and decodes the response into T.
func Fetch[T any](ctx context.Context, r *Router, ep endpoint.EndPoint) (T, error) {
	ctx = withNewCallID(ctx)
	call, err := build(ctx, ep)
	if err != nil {
		var zero T
		return zero, err
	}
	return run[T](ctx, r, ep, call)
}

// Request performs one call in a new goroutine and hands the outcome to
// completion exactly once. When the request cannot be built nothing is sent,
// completion is never invoked and the build error is returned instead.
func Request[T any](ctx context.Context, r *Router, ep endpoint.EndPoint, completion func(Result[T])) error {
	ctx = withNewCallID(ctx)
	call, err := build(ctx, ep)
	if err != nil {
		return err
	}
	go func() {
		v, err := run[T](ctx, r, ep, call)
		if completion != nil {
			completion(Result[T]{Value: v, Err: err})
		}
	}()
	return nil
}

func withNewCallID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return netlog.WithCallID(ctx, uuid.NewString())
}

func build(ctx context.Context, ep endpoint.EndPoint) (*Call, error) {
	u, err := request.BuildURL(ep)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.DebugContext(ctx, "request not built", "call_id", netlog.CallID(ctx), "error", err)
		}
		return nil, &Error{Kind: KindBuild, Message: err.Error(), Err: err}
	}
	return &Call{
		Method: ep.Method().String(),
		URL:    u,
		Header: request.BuildHeaders(ep),
		Body:   request.BuildBody(ep),
	}, nil
}

func run[T any](ctx context.Context, r *Router, ep endpoint.EndPoint, call *Call) (T, error) {
	var zero T
	resp, data, err := r.exchange(ctx, ep, call)
	if resp == nil {
		return zero, err
	}

	outcome := r.handler.Classify(resp.StatusCode)
	if !outcome.Success() {
		return zero, &Error{
			Kind:       KindStatus,
			Message:    outcome.Message,
			StatusCode: resp.StatusCode,
			Category:   outcome.Category,
		}
	}
	// The status was fine but the body never arrived in full.
	if err != nil {
		return zero, err
	}
	if len(data) == 0 {
		return zero, &Error{
			Kind:       KindNoData,
			Message:    r.handler.NoDataMessage(),
			StatusCode: resp.StatusCode,
			Category:   classify.NoData,
		}
	}

	var v T
	if err := r.decoder.Decode(data, &v); err != nil {
		if debug.IsEnabled(ctx) {
			slog.DebugContext(ctx, "decode failed", "call_id", netlog.CallID(ctx), "error", err)
		}
		return zero, &Error{
			Kind:       KindDecode,
			Message:    r.handler.UnableToDecodeMessage(),
			StatusCode: resp.StatusCode,
			Category:   classify.UnableToDecode,
			Err:        err,
		}
	}
	return v, nil
}

// exchange sends the call and runs both hooks. The response is nil only when
// none was received. A response returned with an error has a body that could
// not be read; the status is still valid.
func (r *Router) exchange(ctx context.Context, ep endpoint.EndPoint, call *Call) (*http.Response, []byte, error) {
	r.observe(ctx, func() { r.logger.LogRequest(ctx, ep) })

	if debug.IsEnabled(ctx) {
		slog.DebugContext(ctx, "sending request",
			"call_id", netlog.CallID(ctx),
			"method", call.Method,
			"url", call.URL.String(),
			"content_type", ep.ContentType().String(),
		)
	}

	var (
		resp *http.Response
		data []byte
		err  error
	)
	if ep.ContentType() == endpoint.MultipartFormData {
		resp, data, err = r.transport.Upload(ctx, call)
	} else {
		resp, data, err = r.transport.Send(ctx, call)
	}
	if resp == nil || err != nil {
		data = nil
	}

	r.observe(ctx, func() { r.logger.LogResponse(ctx, resp, data) })

	if resp == nil {
		if err == nil {
			err = errors.New("no response received")
		}
		return nil, nil, transportError(ctx, err)
	}
	if debug.IsEnabled(ctx) {
		slog.DebugContext(ctx, "response received",
			"call_id", netlog.CallID(ctx),
			"status", resp.StatusCode,
			"bytes", len(data),
		)
	}
	if err != nil {
		bodyErr := transportError(ctx, err)
		bodyErr.StatusCode = resp.StatusCode
		return resp, nil, bodyErr
	}
	return resp, data, nil
}

func transportError(ctx context.Context, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &Error{Kind: KindCanceled, Message: ctxErr.Error(), Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindCanceled, Message: err.Error(), Err: err}
	}
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

// observe runs an instrumentation hook. A panicking hook is logged and
// otherwise ignored.
func (r *Router) observe(ctx context.Context, hook func()) {
	defer func() {
		if p := recover(); p != nil {
			slog.WarnContext(ctx, "instrumentation hook panicked",
				"call_id", netlog.CallID(ctx),
				"panic", p,
			)
		}
	}()
	hook()
}
