package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/netroute/netroute/internal/config"
	"github.com/netroute/netroute/internal/netlog"
	"github.com/netroute/netroute/internal/outfmt"
	"github.com/netroute/netroute/internal/resolve"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"pr"},
		Short:   "Manage stored base URLs and headers",
	}

	cmd.AddCommand(newProfileSetCmd())
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

func newProfileSetCmd() *cobra.Command {
	var (
		baseURL string
		headers []string
	)
	cmd := &cobra.Command{
		Use:   "set [name]",
		Short: "Create or replace a profile and make it current",
		Example: `  netroute profile set --base-url https://api.example.com
  netroute profile set staging --base-url https://staging.example.com -H 'Authorization: Bearer abc'`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if baseURL == "" {
				return fmt.Errorf("--base-url is required")
			}
			p := config.Profile{BaseURL: baseURL}
			for _, raw := range headers {
				key, value, err := config.ParseHeader(raw)
				if err != nil {
					return err
				}
				if p.Headers == nil {
					p.Headers = make(map[string]string, len(headers))
				}
				p.Headers[key] = value
			}
			if err := config.SaveProfile(name, p); err != nil {
				return err
			}
			current, _ := config.CurrentProfile()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s (%s)\n", current, p.BaseURL)
			return nil
		}),
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Base URL (http or https)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Header 'Name: value' sent with every call (repeatable)")
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a profile (defaults to current); credentials are masked",
		Args:  cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name, err := profileName(args)
			if err != nil {
				return err
			}
			p, err := config.LoadProfile(name)
			if err != nil {
				return err
			}

			masked := make(map[string]string, len(p.Headers))
			for k, v := range p.Headers {
				masked[k] = netlog.Redact(k, v)
			}

			f := newFormatter(cmd)
			if !f.StartTable("FIELD", "VALUE") {
				return f.Output(map[string]any{
					"profile":  name,
					"base_url": p.BaseURL,
					"headers":  masked,
				})
			}
			f.Row("profile", name)
			f.Row("base_url", p.BaseURL)
			keys := make([]string, 0, len(masked))
			for k := range masked {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				f.Row("header", k+": "+masked[k])
			}
			return f.EndTable()
		}),
	}
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			f := newFormatter(cmd)
			if outfmt.IsJSON(cmd.Context()) {
				return f.Output(map[string]any{
					"current":  current,
					"profiles": profiles,
				})
			}
			if len(profiles) == 0 {
				f.Empty("No profiles configured. Run 'netroute profile set' to add one.")
				return nil
			}
			f.StartTable("CURRENT", "PROFILE", "BASE_URL")
			for _, name := range profiles {
				marker := ""
				if name == current {
					marker = "*"
				}
				baseURL := "-"
				if p, err := config.LoadProfile(name); err == nil && p.BaseURL != "" {
					baseURL = p.BaseURL
				}
				f.Row(marker, name, baseURL)
			}
			return f.EndTable()
		}),
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Short:   "Switch the current profile",
		Example: "  netroute profile use staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name, err := knownProfile(args[0])
			if err != nil {
				return err
			}
			p, err := config.LoadProfile(name)
			if err != nil {
				return err
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current profile: %s (%s)\n", name, p.BaseURL)
			return nil
		}),
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name, err := knownProfile(args[0])
			if err != nil {
				return err
			}
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", name)
			return nil
		}),
	}
}

func profileName(args []string) (string, error) {
	if len(args) == 1 {
		return knownProfile(args[0])
	}
	if flags.Profile != "" {
		return knownProfile(flags.Profile)
	}
	return config.CurrentProfile()
}

// knownProfile resolves name against the stored profiles, suggesting close
// matches for typos.
func knownProfile(name string) (string, error) {
	profiles, err := config.ListProfiles()
	if err != nil {
		return "", err
	}
	found, err := resolve.Lookup("profile", name, profiles)
	if errors.Is(err, resolve.ErrEmptyQuery) {
		return "", fmt.Errorf("invalid argument: profile name is empty")
	}
	return found, err
}
