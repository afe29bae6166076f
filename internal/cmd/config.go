package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/config"
	"github.com/salmonumbrella/folio-cli/internal/output"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

// Config commands read the file themselves; the root pre-run skips
// loading it so a broken file can still be inspected and repaired.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
		Long:    `Manage the folio configuration file at ~/.config/folio/config.yaml`,
	}
	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigPathCmd(),
	)
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every setting with its effective value",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Keys with a default or environment override report the
			// resolved value; the rest echo what the file holds.
			resolved := map[string]string{
				"api_url":   cfg.GetAPIURL(),
				"site_url":  cfg.GetSiteURL(),
				"locale":    table.ParseLocale(cfg.GetLocale()).String(),
				"cache.dir": cfg.CacheDir(),
				"cache.ttl": cfg.CacheTTL().String(),

				"github.repo":    cfg.GitHubRepo(),
				"github.api_url": cfg.GitHubAPIURL(),
				"github.token":   maskSecret(cfg.GitHubToken()),
			}
			t := output.Table{Headers: []string{"key", "value", "effective"}}
			for _, key := range config.Keys() {
				stored, _ := cfg.Get(key)
				if key == "github.token" {
					stored = maskSecret(stored)
				}
				effective, ok := resolved[key]
				if !ok {
					effective = stored
				}
				t.Rows = append(t.Rows, []string{key, stored, effective})
			}
			return printerForContext(ctx).Print(ctx, t)
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdoutFromContext(cmd.Context()), value)
			return err
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.config/folio/config.yaml

Supported keys: ` + strings.Join(config.Keys(), ", ") + `

Examples:
  folio config set api_url https://api.example.com
  folio config set locale es
  folio config set cache.ttl 1m`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if key == "output" {
				format, err := output.ParseFormat(value)
				if err != nil {
					return fmt.Errorf("invalid output format %q, must be one of: text, json, ndjson, jsonl, table, yaml", value)
				}
				value = string(format)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := config.DefaultConfigPath()
			uiSuccess(cmd.Context(), "Set %s = %s in %s", key, value, path)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			state := "(file exists)"
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				state = "(file does not exist)"
			}
			_, err = fmt.Fprintf(stdoutFromContext(cmd.Context()), "%s\n%s\n", path, state)
			return err
		},
	}
}

// maskSecret keeps the last four characters of a token.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
