package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/case-gallery/internal/cache"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the query cache",
	}

	var key string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete one cache entry, or all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := cache.Open(cmd.Context(), a.cfg.RedisURL)
			if err != nil {
				return err
			}
			defer store.Close()

			if a.cfg.RedisURL == "" {
				a.logger.Warn("REDIS_URL is not set; only this process's cache was cleared")
			}
			if key != "" {
				if err := store.Delete(cmd.Context(), key); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "deleted %s\n", key)
				return nil
			}
			if err := store.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "cache cleared")
			return nil
		},
	}
	clearCmd.Flags().StringVar(&key, "key", "", "Delete only this key")
	cmd.AddCommand(clearCmd)
	return cmd
}
