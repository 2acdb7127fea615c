package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/netroute/netroute/internal/netlog"
	"github.com/netroute/netroute/internal/outfmt"
	"github.com/netroute/netroute/internal/router"
)

// errAlreadyHandled marks errors that RunE has already printed, so Execute
// does not print them again.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{e.err, errAlreadyHandled}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function so failures are printed once, with
// suggestions in text mode and as a JSON object in JSON modes.
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		if outfmt.IsJSON(cmd.Context()) {
			_ = outfmt.WriteJSON(cmd.ErrOrStderr(), errorPayload(err), outfmt.IsCompact(cmd.Context()))
		} else {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

// errorBody is the JSON shape of a failure.
type errorBody struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	StatusCode int    `json:"status,omitempty"`
	Category   string `json:"category,omitempty"`
}

func errorPayload(err error) map[string]errorBody {
	return map[string]errorBody{"error": describeError(err)}
}

func describeError(err error) errorBody {
	body := errorBody{Kind: "error", Message: err.Error()}
	if e, ok := router.AsError(err); ok {
		body.Kind = e.Kind.String()
		body.StatusCode = e.StatusCode
		if e.Kind == router.KindStatus || e.Kind == router.KindNoData || e.Kind == router.KindDecode {
			body.Category = e.Category.Code()
		}
	}
	return body
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	return outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// newRouter builds the router used by call and batch. Dumps go to stderr
// unless --quiet; debug records go through slog.
func newRouter(cmd *cobra.Command, timeout time.Duration) *router.Router {
	var loggers []netlog.Logger
	if !flags.Quiet {
		loggers = append(loggers, netlog.NewTextLogger(cmd.ErrOrStderr()))
	}
	loggers = append(loggers, netlog.SlogLogger{})

	client := router.DefaultHTTPClient()
	if timeout > 0 {
		client.Timeout = timeout
	}
	return router.New(
		router.WithTransport(routerTransport(client)),
		router.WithLogger(netlog.Multi(loggers...)),
	)
}

// routerTransport can be replaced in tests.
var routerTransport = func(client *http.Client) router.Transport {
	return router.NewHTTPTransport(client)
}
