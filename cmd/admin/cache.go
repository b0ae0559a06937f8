package main

import (
	"strings"

	"yatube/internal/cache"

	"github.com/spf13/cobra"
)

func newCacheCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page in Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.rdb == nil {
				if err := e.loadConfig(); err != nil {
					return err
				}
				if !strings.EqualFold(e.cfg.CacheBackend, cache.BackendRedis) {
					warnColor.Fprintln(cmd.OutOrStdout(),
						"CACHE_BACKEND is not redis; pages live in the server process. Use POST /admin/cache/clear instead.")
					return nil
				}
			}
			rdb, err := e.redis()
			if err != nil {
				return err
			}
			if err := cache.ResetLogged(cmd.Context(), cache.NewRedisStorage(rdb, cache.PageKeyPrefix)); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Page cache cleared")
			return nil
		},
	}

	cmd.AddCommand(clearCmd)
	return cmd
}
