package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the list cache",
		Long: `List pages are cached on disk for cache.ttl (default 5m) and dropped
whenever a record of the same collection is created, updated or deleted.`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show cache location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFromContext(ctx)
			c := cacheFromContext(ctx)
			return printerForContext(ctx).Print(ctx, map[string]any{
				"dir":     cfg.CacheDir(),
				"ttl":     cfg.CacheTTL().String(),
				"enabled": c.Enabled(),
				"entries": c.Len(),
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := cacheFromContext(ctx)
			n := c.Len()
			if err := c.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			uiSuccess(ctx, "Removed %d cached pages", n)
			return printerForContext(ctx).Print(ctx, map[string]any{"status": "cleared", "removed": n})
		},
	})
	return cmd
}
