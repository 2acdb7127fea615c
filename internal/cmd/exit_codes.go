package cmd

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/spf13/pflag"

	"github.com/netroute/netroute/internal/classify"
	"github.com/netroute/netroute/internal/config"
	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/request"
	"github.com/netroute/netroute/internal/resolve"
	"github.com/netroute/netroute/internal/router"
)

const (
	exitOK      = 0
	exitGeneric = 1
	exitUsage   = 2
	exitAuth    = 3
	exitClient  = 4
	exitServer  = 5
	exitNetwork = 6
	exitDecode  = 7
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) && handled.exitCode != 0 {
		return handled.exitCode
	}

	if e, ok := router.AsError(err); ok {
		return exitCodeForRouterError(e)
	}
	if isUsageError(err) {
		return exitUsage
	}
	if isNetworkError(err) {
		return exitNetwork
	}
	return exitGeneric
}

func exitCodeForRouterError(e *router.Error) int {
	switch e.Kind {
	case router.KindBuild:
		return exitUsage
	case router.KindTransport, router.KindCanceled:
		return exitNetwork
	case router.KindNoData, router.KindDecode:
		return exitDecode
	}
	switch e.Category {
	case classify.BadRequest:
		return exitUsage
	case classify.AuthenticationError:
		return exitAuth
	case classify.ClientError:
		return exitClient
	case classify.ServerError:
		return exitServer
	default:
		return exitGeneric
	}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUsageError(err error) bool {
	var unknown *resolve.UnknownError
	if errors.As(err, &unknown) {
		return true
	}
	if errors.Is(err, request.ErrBuildURL) ||
		errors.Is(err, endpoint.ErrInvalidMethod) ||
		errors.Is(err, endpoint.ErrInvalidContentType) ||
		errors.Is(err, endpoint.ErrInvalidFile) ||
		errors.Is(err, config.ErrInvalidBaseURL) ||
		errors.Is(err, config.ErrNotConfigured) {
		return true
	}
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts at most",
		"invalid argument",
		"invalid output format",
		"cannot be used together",
		"is required",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
