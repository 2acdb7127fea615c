package router

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/netroute/netroute/internal/request"
)

const (
	// DefaultTimeout bounds a whole exchange on the built-in client.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize int64 = 4 << 20
)

// ErrBodyTooLarge reports a response body over the transport's size limit.
var ErrBodyTooLarge = errors.New("response body exceeds limit")

// Call is a fully built request ready for a transport.
type Call struct {
	Method string
	URL    *url.URL
	Header http.Header
	// Body is a *request.JSONBody for Send and a *request.MultipartBody for
	// Upload.
	Body request.Body
}

// Transport performs exactly one exchange per invocation. A nil response
// means no HTTP response was received and err describes why. A response
// returned with a non-nil error was received but its body could not be read.
type Transport interface {
	Send(ctx context.Context, call *Call) (*http.Response, []byte, error)
	Upload(ctx context.Context, call *Call) (*http.Response, []byte, error)
}

// Doer is the subset of *http.Client used by HTTPTransport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport sends calls with a Doer and drains the response body.
type HTTPTransport struct {
	Client Doer
	// MaxBodySize defaults to DefaultMaxBodySize when zero or negative.
	MaxBodySize int64
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport wraps client, or DefaultHTTPClient() when client is nil.
func NewHTTPTransport(client Doer) *HTTPTransport {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &HTTPTransport{Client: client, MaxBodySize: DefaultMaxBodySize}
}

// DefaultHTTPClient returns a client that refuses TLS below 1.2 and gives
// up after DefaultTimeout.
func DefaultHTTPClient() *http.Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}

// Send encodes a JSON body, when there is one, and performs the exchange.
func (t *HTTPTransport) Send(ctx context.Context, call *Call) (*http.Response, []byte, error) {
	var data []byte
	if body, ok := call.Body.(*request.JSONBody); ok {
		var err error
		if data, err = body.Encode(); err != nil {
			return nil, nil, err
		}
	}
	contentType := ""
	if data != nil {
		contentType = request.ApplicationJSON
	}
	return t.do(ctx, call, data, contentType, false)
}

// Upload encodes the multipart form and performs the exchange. The multipart
// Content-Type always replaces one from the call headers, since the body is
// unreadable without its boundary.
func (t *HTTPTransport) Upload(ctx context.Context, call *Call) (*http.Response, []byte, error) {
	body, _ := call.Body.(*request.MultipartBody)
	data, contentType, err := body.Encode()
	if err != nil {
		return nil, nil, err
	}
	return t.do(ctx, call, data, contentType, true)
}

func (t *HTTPTransport) do(ctx context.Context, call *Call, body []byte, contentType string, force bool) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL.String(), reader)
	if err != nil {
		return nil, nil, err
	}
	for name, values := range call.Header {
		req.Header[name] = append([]string(nil), values...)
	}
	if contentType != "" && (force || req.Header.Get("Content-Type") == "") {
		req.Header.Set("Content-Type", contentType)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	limit := t.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return resp, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return resp, nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, limit)
	}
	return resp, data, nil
}
