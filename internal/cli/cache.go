package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/pkg/config"
)

var errInProcessCache = errors.New("CACHE_BACKEND=memory keeps pages inside the server process, " +
	"restart the server to clear them or run it with CACHE_BACKEND=redis")

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	RootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the page cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached page (redis backend only)",
	Long: `Drop every cached home timeline page.

Only the redis backend (CACHE_BACKEND=redis) can be cleared from here, since
its entries are shared by every server instance. The default memory backend
lives inside the server process: entries expire after CACHE_TTL, and a
restart is the only way to drop them early.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearPageCache(cmd.Context(), cfg); err != nil {
			return err
		}
		success("Page cache cleared")
		return nil
	},
}

func clearPageCache(ctx context.Context, cfg *config.Config) error {
	if cfg.CacheBackend != "redis" {
		return errInProcessCache
	}
	client, err := config.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	return cache.NewRedisCache(client, cache.Namespace).Clear(ctx)
}
