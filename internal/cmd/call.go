package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/netroute/netroute/internal/config"
	"github.com/netroute/netroute/internal/dryrun"
	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/outfmt"
	"github.com/netroute/netroute/internal/router"
)

type callOptions struct {
	BaseURL     string
	Path        string
	Method      string
	ContentType string
	Multipart   bool
	Headers     []string
	Query       []string
	Data        []string
	Form        []string
	File        string
	Watch       bool
	Timeout     time.Duration
}

func newCallCmd() *cobra.Command {
	opts := &callOptions{Timeout: router.DefaultTimeout}
	cmd := &cobra.Command{
		Use:   "call [path]",
		Short: "Send one request and print the decoded response",
		Example: `  netroute call --base-url https://api.example.com /items -q q=shoes
  netroute call -X POST /items -d name=x -d 'tags=["a","b"]'
  netroute call -X POST /avatars -F avatar=@me.png -F note=hello
  netroute call -f endpoints/items.yaml --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.Path != "" && opts.Path != args[0] {
					return fmt.Errorf("--path and a positional path cannot be used together")
				}
				opts.Path = args[0]
			}
			if opts.Watch {
				return runWatch(cmd, opts)
			}
			return runCall(cmd, opts)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&opts.BaseURL, "base-url", "", "Base URL (overrides the endpoint file, env "+config.EnvBaseURL+" and the profile)")
	f.StringVar(&opts.Path, "path", "", "Path appended to the base URL")
	f.StringVarP(&opts.Method, "method", "X", "", "HTTP method (default GET)")
	f.StringVar(&opts.ContentType, "content-type", "", "Body encoding: json|multipart")
	f.BoolVar(&opts.Multipart, "multipart", false, "Send body parameters as multipart/form-data")
	f.StringArrayVarP(&opts.Headers, "header", "H", nil, "Additional header 'Name: value' (repeatable)")
	f.StringArrayVarP(&opts.Query, "query-param", "q", nil, "URL parameter key=value (repeatable)")
	f.StringArrayVarP(&opts.Data, "data", "d", nil, "Body parameter key=value; JSON literals are decoded (repeatable)")
	f.StringArrayVarP(&opts.Form, "form", "F", nil, "Multipart parameter key=value, key=@file (upload) or key=<file (reference)")
	f.StringVarP(&opts.File, "file", "f", "", "Endpoint description file (YAML or JSON)")
	f.BoolVar(&opts.Watch, "watch", false, "Send again whenever the endpoint file changes")
	f.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Request timeout (e.g. 10s, 1m)")
	return cmd
}

func runCall(cmd *cobra.Command, opts *callOptions) error {
	ep, err := buildDescriptor(opts)
	if err != nil {
		return err
	}
	return sendOnce(cmd.Context(), cmd, newRouter(cmd, opts.Timeout), ep)
}

// sendOnce sends ep and prints the decoded value, or only previews it in
// dry-run mode.
func sendOnce(ctx context.Context, cmd *cobra.Command, r *router.Router, ep endpoint.Descriptor) error {
	if dryrun.IsEnabled(ctx) {
		preview, err := dryrun.For(ep)
		if err != nil {
			return err
		}
		if outfmt.IsJSON(ctx) {
			return newFormatter(cmd).Output(preview)
		}
		preview.Write(cmd.OutOrStdout())
		return nil
	}
	value, err := router.Fetch[any](ctx, r, ep)
	if err != nil {
		return err
	}
	return newFormatter(cmd).Output(value)
}

var errBaseURLRequired = errors.New("base URL is required (pass --base-url, set " + config.EnvBaseURL + " or run 'netroute profile set')")

// buildDescriptor layers, lowest first: the endpoint file, the resolved
// profile and environment, then flags.
func buildDescriptor(opts *callOptions) (endpoint.Descriptor, error) {
	settings, err := config.Resolve(flags.Profile, "")
	if err != nil {
		return endpoint.Descriptor{}, err
	}

	var d endpoint.Descriptor
	dir := "."
	if opts.File != "" {
		if d, err = endpoint.LoadFile(opts.File); err != nil {
			return endpoint.Descriptor{}, err
		}
		dir = filepath.Dir(opts.File)
	}

	switch {
	case opts.BaseURL != "":
		u, err := config.ValidateBaseURL(opts.BaseURL)
		if err != nil {
			return endpoint.Descriptor{}, err
		}
		d.Base = u
	case d.Base == nil && settings.BaseURL != "":
		u, err := config.ValidateBaseURL(settings.BaseURL)
		if err != nil {
			return endpoint.Descriptor{}, err
		}
		d.Base = u
	}
	if d.Base == nil {
		return endpoint.Descriptor{}, errBaseURLRequired
	}
	d = d.WithBaseHeaders(settings.Headers)

	if opts.Path != "" {
		d.Route = opts.Path
	}
	if opts.Method != "" {
		m, err := endpoint.ParseMethod(opts.Method)
		if err != nil {
			return endpoint.Descriptor{}, err
		}
		d.Verb = m
	}
	if opts.ContentType != "" {
		ct, err := endpoint.ParseContentType(opts.ContentType)
		if err != nil {
			return endpoint.Descriptor{}, err
		}
		d.Encoding = ct
	}
	if opts.Multipart || len(opts.Form) > 0 {
		d.Encoding = endpoint.MultipartFormData
	}

	if len(opts.Headers) > 0 {
		d.Extra = copyStrings(d.Extra)
		for _, raw := range opts.Headers {
			name, value, err := config.ParseHeader(raw)
			if err != nil {
				return endpoint.Descriptor{}, err
			}
			d.Extra[name] = value
		}
	}
	if len(opts.Query) > 0 {
		d.Query = copyParams(d.Query)
		for _, raw := range opts.Query {
			key, value, err := splitPair("--query-param", raw)
			if err != nil {
				return endpoint.Descriptor{}, err
			}
			d.Query[key] = value
		}
	}
	if len(opts.Data) > 0 {
		d.Body = copyParams(d.Body)
		for _, raw := range opts.Data {
			key, value, err := splitPair("--data", raw)
			if err != nil {
				return endpoint.Descriptor{}, err
			}
			d.Body[key] = parseDataValue(value)
		}
	}
	if len(opts.Form) > 0 {
		d.Body = copyParams(d.Body)
		for _, raw := range opts.Form {
			key, value, err := splitPair("--form", raw)
			if err != nil {
				return endpoint.Descriptor{}, err
			}
			v, err := parseFormValue(value, dir)
			if err != nil {
				return endpoint.Descriptor{}, fmt.Errorf("--form %s: %w", key, err)
			}
			d.Body[key] = v
		}
	}
	return d, nil
}

func splitPair(flag, raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid argument %q for %s (expected key=value)", raw, flag)
	}
	return key, value, nil
}

// parseDataValue decodes JSON literals (numbers, booleans, null, arrays,
// objects, quoted strings) and keeps anything else as a plain string.
func parseDataValue(raw string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	return v
}

// parseFormValue reads "@path" into an upload now and turns "<path" into a
// reference that is read when the body is encoded.
func parseFormValue(raw, dir string) (any, error) {
	switch {
	case strings.HasPrefix(raw, "@"):
		path := strings.TrimPrefix(raw, "@")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return endpoint.FileUpload{
			Data:     data,
			FileName: filepath.Base(path),
			MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		}, nil
	case strings.HasPrefix(raw, "<"):
		return endpoint.FileURL(strings.TrimPrefix(raw, "<"), dir)
	default:
		return raw, nil
	}
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyParams(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// watchDebounce coalesces the burst of events editors emit on save.
var watchDebounce = 100 * time.Millisecond

// runWatch sends once, then again after every change to the endpoint file,
// until interrupted. Failed sends are reported and watching continues.
func runWatch(cmd *cobra.Command, opts *callOptions) error {
	if opts.File == "" {
		return fmt.Errorf("--watch requires --file")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file on save.
	abs, err := filepath.Abs(opts.File)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.File, err)
	}

	r := newRouter(cmd, opts.Timeout)
	send := func() {
		ep, err := buildDescriptor(opts)
		if err == nil {
			err = sendOnce(ctx, cmd, r, ep)
		}
		if err != nil && ctx.Err() == nil {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
		}
	}
	send()

	return watchLoop(ctx, watcher, abs, send)
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, send func()) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			slog.DebugContext(ctx, "endpoint file changed", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		case <-fire:
			send()
		}
	}
}
