package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memeforge/memeforge/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the preview cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show preview cache usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			stats, err := db.PreviewStats(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "entries: %d\nexpired: %d\nbytes:   %d\n",
				stats.Entries, stats.Expired, stats.Bytes)
			return err
		})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired previews",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			n, err := db.PurgeExpiredPreviews(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired previews\n", n)
			return err
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [key...]",
	Short: "Delete cached previews for the given templates, or all of them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			n, err := db.ClearPreviews(cmd.Context(), args...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %d previews\n", n)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd, cacheClearCmd)
}

func withStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	db, err := openStore(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup; errors logged internally
	return fn(db)
}
