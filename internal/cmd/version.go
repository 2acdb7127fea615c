package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netroute/netroute/internal/netlog"
	"github.com/netroute/netroute/internal/outfmt"
	"github.com/netroute/netroute/internal/router"
	"github.com/netroute/netroute/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			info := update.Parse(version)
			if outfmt.IsJSON(cmd.Context()) {
				if err := newFormatter(cmd).Output(info); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "netroute version %s\n", version)
				if info.Prerelease != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pre-release %s of %s\n", info.Prerelease[1:], info.Major)
				}
			}

			if !check {
				return nil
			}
			// Fails silently: the check never changes the exit code.
			r := router.New(
				router.WithTransport(routerTransport(router.DefaultHTTPClient())),
				router.WithLogger(netlog.SlogLogger{}),
			)
			result := update.CheckForUpdate(cmd.Context(), r, version)
			if result != nil && result.UpdateAvailable {
				errOut := cmd.ErrOrStderr()
				_, _ = fmt.Fprintf(errOut, "\nUpdate available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
				_, _ = fmt.Fprintf(errOut, "Download: %s\n", result.UpdateURL)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")
	return cmd
}
