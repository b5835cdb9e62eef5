package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/serdegraph/pkg/cache"
	"github.com/matzehuels/serdegraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the report and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached report and artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, _, err := cfg.OpenCache(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			before, _, err := cache.Len(store)
			if err != nil {
				c.Logger.Warn("count cache entries", "err", err)
			}
			ok, err := cache.Clear(cmd.Context(), store)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if !ok {
				printInfo("Cache backend %q holds nothing to clear", cfg.Cache.Backend)
				return nil
			}

			if before > 0 {
				printSuccess("Cleared %d cached entries", before)
			} else {
				printSuccess("Cleared cache")
			}
			printDetail("%s", cacheLocation(cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Println(cacheLocation(cfg))
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the
// file cache, a redis URL with key prefix otherwise.
func cacheLocation(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return "caching disabled"
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d %s%s*", cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cache.DefaultRedisPrefix, cfg.Cache.Prefix)
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return "unknown"
	}
	return dir
}
