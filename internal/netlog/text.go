package netlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/request"
)

const (
	bannerOutgoing = " - - - - - - - - - - OUTGOING - - - - - - - - - - "
	bannerIncoming = " - - - - - - - - - - INCOMING - - - - - - - - - - "
	bannerEnd      = " - - - - - - - - - -  END - - - - - - - - - - "
)

// TextLogger writes human-readable request and response dumps. Each dump is
// written with a single Write so concurrent calls do not interleave.
type TextLogger struct {
	W io.Writer
	// RevealSecrets prints credential headers verbatim.
	RevealSecrets bool

	mu sync.Mutex
}

// NewTextLogger writes to w, or stderr when w is nil.
func NewTextLogger(w io.Writer) *TextLogger {
	if w == nil {
		w = os.Stderr
	}
	return &TextLogger{W: w}
}

// LogRequest dumps the URL, request line, host, headers and body parameters.
func (l *TextLogger) LogRequest(ctx context.Context, ep endpoint.EndPoint) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\n%s\n", bannerOutgoing)
	defer func() {
		fmt.Fprintf(&b, "\n%s\n", bannerEnd)
		l.write(b.Bytes())
	}()

	if id := CallID(ctx); id != "" {
		fmt.Fprintf(&b, "call %s\n", id)
	}
	u, err := request.BuildURL(ep)
	if err != nil {
		return
	}
	fmt.Fprintf(&b, "%s\n\n", u)
	fmt.Fprintf(&b, "%s %s?%s HTTP/1.1\n", ep.Method(), u.EscapedPath(), u.RawQuery)
	fmt.Fprintf(&b, "HOST: %s\n", u.Host)

	headers := request.BuildHeaders(ep)
	for _, name := range sortedKeys(headers) {
		fmt.Fprintf(&b, "%s: %s\n", name, headerValue(name, headers.Get(name), l.RevealSecrets))
	}

	if body := ep.BodyParameters(); body != nil {
		b.WriteString("\n{\n")
		keys := make([]string, 0, len(body))
		for k := range body {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s: %s\n", k, describeValue(body[k]))
		}
		b.WriteString("}\n")
	}
}

// LogResponse dumps the status line and, when it parses, the JSON body.
func (l *TextLogger) LogResponse(ctx context.Context, resp *http.Response, data []byte) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\n%s\n", bannerIncoming)
	defer func() {
		fmt.Fprintf(&b, "\n%s\n", bannerEnd)
		l.write(b.Bytes())
	}()

	if id := CallID(ctx); id != "" {
		fmt.Fprintf(&b, "call %s\n", id)
	}
	if resp == nil {
		b.WriteString("(no response)\n")
		return
	}

	var rawURL, path, query, host string
	if resp.Request != nil && resp.Request.URL != nil {
		u := resp.Request.URL
		rawURL, path, query, host = u.String(), u.EscapedPath(), u.RawQuery, u.Host
	}
	fmt.Fprintf(&b, "%s\n\n", rawURL)
	fmt.Fprintf(&b, "%d %s?%s HTTP/1.1\n", resp.StatusCode, path, query)
	fmt.Fprintf(&b, "HOST: %s\n", host)
	for _, name := range sortedKeys(resp.Header) {
		fmt.Fprintf(&b, "%s: %s\n", name, headerValue(name, resp.Header.Get(name), l.RevealSecrets))
	}

	if len(data) == 0 {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "    "); err == nil {
		b.WriteString("\n")
		b.Write(pretty.Bytes())
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(&b, "\n<%d bytes>\n", len(data))
}

func (l *TextLogger) write(p []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.W
	if w == nil {
		w = os.Stderr
	}
	_, _ = w.Write(p)
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// describeValue renders a body parameter for the dump without printing file
// contents.
func describeValue(v any) string {
	switch x := v.(type) {
	case endpoint.FileUpload:
		return fmt.Sprintf("<file %s, %d bytes>", x.FileName, len(x.Data))
	case *endpoint.FileUpload:
		if x == nil {
			return ""
		}
		return fmt.Sprintf("<file %s, %d bytes>", x.FileName, len(x.Data))
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(x))
	}
	return request.ValueString(v)
}
