package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/infrastructure/cli/helpers"
	"github.com/doeshing/gpa/internal/ports"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(env Env) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
	}

	cacheCmd.AddCommand(
		newCacheListCommand(env),
		newCacheClearCommand(env),
		newCacheStatsCommand(env),
	)

	return cacheCmd
}

// newCacheListCommand creates the 'cache list' subcommand
func newCacheListCommand(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(cmd, env)
			if err != nil {
				return err
			}
			return listCacheEntries(cmd.OutOrStdout(), store)
		},
	}
}

// newCacheClearCommand creates the 'cache clear' subcommand
func newCacheClearCommand(env Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(cmd, env)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(env.Prompter, "Clear the result cache?",
					fmt.Sprintf("All cached analyses in %s will be removed.", store.Location()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), MsgCancelled)
					return nil
				}
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgCacheCleared)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// newCacheStatsCommand creates the 'cache stats' subcommand
func newCacheStatsCommand(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache backend, location and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(cmd, env)
			if err != nil {
				return err
			}
			return showCacheStats(cmd.OutOrStdout(), store)
		},
	}
}

func cacheStore(cmd *cobra.Command, env Env) (ports.CacheRepository, error) {
	container, err := env.Container(cmd.Context())
	if err != nil {
		return nil, err
	}
	if container.CacheStore == nil {
		return nil, errors.New(ErrCacheStoreUnavailable)
	}
	return container.CacheStore, nil
}

// listCacheEntries lists all cache entries, newest first
func listCacheEntries(out io.Writer, store ports.CacheRepository) error {
	entries, err := store.Entries()
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoCachedResults)
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s | %s | %s | %s\n",
			entry.Key.Short(),
			entry.CachedAt.Format(domain.TimestampFormat),
			entry.Result.Filename,
			helpers.Truncate(entry.Result.Summary, 60))
	}
	return nil
}

// showCacheStats prints backend details
func showCacheStats(out io.Writer, store ports.CacheRepository) error {
	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}
	fmt.Fprintf(out, "Backend: %s\n", stats.Backend)
	fmt.Fprintf(out, "Location: %s\n", stats.Location)
	fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
	fmt.Fprintf(out, "Size: %s\n", helpers.FormatBytes(stats.SizeBytes))
	return nil
}

func confirm(p ports.ConfirmationPrompter, title, description string) (bool, error) {
	if p == nil || !p.Enabled() {
		return false, errors.New(ErrConfirmationRequired)
	}
	return p.Confirm(title, description)
}
