package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(env Env) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(env),
		newHistoryClearCommand(env),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(env Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, env)
			if err != nil {
				return err
			}
			return listHistoryEntries(cmd.OutOrStdout(), store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max runs to show (0 = all)")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all run records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, env)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
			return nil
		},
	}
}

func historyStore(cmd *cobra.Command, env Env) (ports.HistoryRepository, error) {
	container, err := env.Container(cmd.Context())
	if err != nil {
		return nil, err
	}
	if container.HistoryStore == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return container.HistoryStore, nil
}

// listHistoryEntries prints one line per run, newest first
func listHistoryEntries(out io.Writer, store ports.HistoryRepository, limit int) error {
	records, err := store.Records(limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s | %s | %s | docs=%d analyzed=%d cached=%d failed=%d | %s\n",
			rec.StartedAt.Local().Format(domain.TimestampFormat),
			shortID(rec.ID),
			rec.Model,
			rec.Documents,
			rec.Analyzed,
			rec.CacheHits,
			rec.Failed,
			(time.Duration(rec.DurationMS) * time.Millisecond).String())
		if len(rec.Outputs) > 0 {
			fmt.Fprintf(out, "    %s\n", strings.Join(rec.Outputs, ", "))
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
