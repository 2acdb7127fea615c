package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/netroute/netroute/internal/config"
	"github.com/netroute/netroute/internal/debug"
	"github.com/netroute/netroute/internal/dryrun"
	"github.com/netroute/netroute/internal/outfmt"
	"github.com/netroute/netroute/internal/resolve"
)

const envOutput = "NETROUTE_OUTPUT"

// rootFlags holds global CLI flags
type rootFlags struct {
	Profile   string
	Output    string
	Query     string
	JQ        string
	Template  string
	Compact   bool
	Debug     bool
	LogFormat string
	Quiet     bool
	EnvFile   string
	DryRun    bool
}

// flags is reset by every newRootCmd call so consecutive executions in one
// process (tests) start clean.
var flags rootFlags

func defaultFlags() rootFlags {
	return rootFlags{
		Output:    defaultOutput(),
		LogFormat: debug.FormatText,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv(envOutput)); value != "" {
		return value
	}
	return "text"
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return executeRoot(ctx, root)
}

func executeRoot(ctx context.Context, root *cobra.Command) error {
	root.SetContext(ctx)
	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	flags = defaultFlags()

	root := &cobra.Command{
		Use:   "netroute",
		Short: "Send declaratively described HTTP requests and classify their responses",
		Long: `netroute builds a request from an endpoint description (base URL, path,
method, headers, query and body parameters), sends it, classifies the
response status and decodes the JSON body. Every call ends in exactly one
outcome: a decoded value or one error message.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFile(flags.EnvFile); err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") {
				flags.Output = defaultOutput()
			}

			mode, err := outfmt.Parse(strings.TrimSpace(flags.Output))
			if err != nil {
				return err
			}
			query := flags.JQ
			if query == "" {
				query = flags.Query
			}
			if flags.Query != "" && flags.JQ != "" && flags.Query != flags.JQ {
				return fmt.Errorf("--query and --jq cannot be used together")
			}

			if err := debug.SetupLogger(cmd.ErrOrStderr(), flags.Debug, flags.LogFormat); err != nil {
				return err
			}

			ctx := cmd.Context()
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)
			if query != "" {
				ctx = outfmt.WithQuery(ctx, query)
			}
			if flags.Template != "" {
				tmpl, err := loadTemplate(flags.Template)
				if err != nil {
					return err
				}
				ctx = outfmt.WithTemplate(ctx, tmpl)
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.Profile, "profile", "", "Stored profile to use (env "+config.EnvProfile+")")
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env "+envOutput+")")
	pf.StringVar(&flags.Query, "query", "", "jq expression applied to the result")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.StringVar(&flags.Template, "template", "", "Go template (or @path) used to render the result")
	pf.BoolVar(&flags.Compact, "compact", false, "Compact JSON output")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Debug log format: text|json")
	pf.BoolVar(&flags.Quiet, "quiet", false, "Do not print request and response dumps")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the requests that would be sent without sending them")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Load variables from this file instead of .env (env "+config.EnvEnvFile+")")

	root.AddCommand(newCallCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// enhanceUnknownError adds "did you mean" hints to unknown command and flag
// errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestions := resolve.Suggest(unknown, names, 1); len(suggestions) > 0 {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestions[0])
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		target := targetCmd
		if target == nil {
			target = root
		}
		seen := make(map[string]bool)
		var names []string
		add := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				for _, name := range []string{"--" + f.Name, "-" + f.Shorthand} {
					if name != "-" && !seen[name] {
						seen[name] = true
						names = append(names, name)
					}
				}
			})
		}
		add(target.Flags())
		add(target.InheritedFlags())

		helpCmd := strings.TrimSpace(target.CommandPath()) + " --help"
		if suggestions := resolve.Suggest(unknown, names, 1); len(suggestions) > 0 {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestions[0], helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name such as "--foo" or "-f" from a pflag
// error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		idx++
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	if eq := strings.IndexByte(rest, '='); eq >= 0 {
		rest = rest[:eq]
	}
	rest = strings.TrimRight(rest, ".,;:!?\"'")
	if len(rest) < 2 || rest[0] != '-' {
		return ""
	}
	return rest
}

func loadTemplate(value string) (string, error) {
	if path, ok := strings.CutPrefix(value, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return string(data), nil
	}
	return value, nil
}
