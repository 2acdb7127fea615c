// Package dryrun previews the request an endpoint would send without
// sending it.
package dryrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/netlog"
	"github.com/netroute/netroute/internal/request"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview is the request an endpoint resolves to. Credentials in headers are
// masked.
type Preview struct {
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Body        json.RawMessage   `json:"body,omitempty"`
	Parts       []string          `json:"parts,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// For builds the preview for ep. Only an unbuildable URL is an error;
// body problems become warnings because sending would report them anyway.
func For(ep endpoint.EndPoint) (*Preview, error) {
	u, err := request.BuildURL(ep)
	if err != nil {
		return nil, err
	}
	p := &Preview{Method: ep.Method().String(), URL: u.String()}

	headers := request.BuildHeaders(ep)
	if len(headers) > 0 {
		p.Headers = make(map[string]string, len(headers))
		for name := range headers {
			p.Headers[name] = netlog.Redact(name, headers.Get(name))
		}
	}

	switch body := request.BuildBody(ep).(type) {
	case *request.JSONBody:
		if body.Empty() {
			break
		}
		data, err := body.Encode()
		if err != nil {
			p.Warnings = append(p.Warnings, err.Error())
			break
		}
		p.ContentType = "application/json"
		p.Body = data
	case *request.MultipartBody:
		p.ContentType = string(endpoint.MultipartFormData)
		for _, part := range body.Parts {
			p.Parts = append(p.Parts, describePart(part))
		}
		if _, _, err := body.Encode(); err != nil {
			p.Warnings = append(p.Warnings, err.Error())
		}
	}
	return p, nil
}

func describePart(part request.Part) string {
	switch {
	case part.Source != nil:
		return fmt.Sprintf("%s: <file %s>", part.Name, part.Source.Path)
	case part.IsFile():
		return fmt.Sprintf("%s: <file %s, %d bytes>", part.Name, part.FileName, len(part.Data))
	default:
		return fmt.Sprintf("%s: %s", part.Name, part.Data)
	}
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would send %s %s\n", p.Method, p.URL)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	if len(p.Headers) > 0 {
		names := make([]string, 0, len(p.Headers))
		for name := range p.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", name, p.Headers[name])
		}
		_, _ = fmt.Fprintln(w)
	}

	if p.ContentType != "" {
		_, _ = fmt.Fprintf(w, "  Content-Type: %s\n", p.ContentType)
	}
	if len(p.Body) > 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", p.Body)
	}
	for _, part := range p.Parts {
		_, _ = fmt.Fprintf(w, "  %s\n", part)
	}
	if p.ContentType != "" {
		_, _ = fmt.Fprintln(w)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "Nothing sent (dry-run mode)")
}
