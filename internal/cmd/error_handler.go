package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/netroute/netroute/internal/config"
	"github.com/netroute/netroute/internal/router"
)

// HandleError renders err for a terminal, adding suggestions when the kind
// of failure is known.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	if e, ok := router.AsError(err); ok {
		fmt.Fprintf(&msg, "Error: %s\n", e.Message)
		if e.StatusCode != 0 {
			fmt.Fprintf(&msg, "Status: %d (%s)\n", e.StatusCode, e.Category.Code())
		}
		if s := suggestionsForRouterError(e); s != "" {
			msg.WriteString("\n")
			msg.WriteString(s)
		}
		return msg.String()
	}

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		fmt.Fprintf(&msg, "Error: %s\n\n", err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: netroute profile list\n")
		msg.WriteString("  - Or pass --base-url / set " + config.EnvBaseURL + "\n")
	default:
		fmt.Fprintf(&msg, "Error: %s\n", err)
	}
	return msg.String()
}

func suggestionsForRouterError(e *router.Error) string {
	var lines []string
	switch e.Kind {
	case router.KindBuild:
		lines = []string{
			"Check the base URL is absolute (scheme and host)",
			"Check the path for control characters",
		}
	case router.KindTransport:
		msg := strings.ToLower(e.Message)
		switch {
		case strings.Contains(msg, "connection refused"):
			lines = append(lines, "Check the server is running and the port is right")
		case strings.Contains(msg, "no such host"):
			lines = append(lines, "Check the host name spelling and your DNS settings")
		case strings.Contains(msg, "certificate"):
			lines = append(lines, "Verify the server's TLS certificate")
		case strings.Contains(msg, "timeout"):
			lines = append(lines, "Raise --timeout or check the server's health")
		}
		lines = append(lines, "Use --debug for more details")
	case router.KindCanceled:
		lines = []string{"The call was canceled or ran out of time; raise --timeout if needed"}
	case router.KindStatus, router.KindNoData, router.KindDecode:
		if s := e.Category.Suggestion(); s != "" {
			lines = append(lines, s)
		}
		lines = append(lines, "Run without --quiet to see the raw response")
	}
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Suggestions:\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "  - %s\n", l)
	}
	return b.String()
}

// ExitWithError prints err with suggestions and exits
func ExitWithError(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(os.Stderr, HandleError(err))
	os.Exit(ExitCode(err))
}
