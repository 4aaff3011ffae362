package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived scheduling runs",
	}
	cmd.AddCommand(newRunsListCommand(a))
	cmd.AddCommand(newRunsDeleteCommand(a))
	return cmd
}

func newRunsListCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, runs, err := a.openArchive(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := runs.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived runs")
				return nil
			}
			for _, summary := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  seed=%d  placed=%d  unplaced=%d\n",
					summary.ID,
					summary.CreatedAt.Local().Format(time.RFC3339),
					summary.Seed,
					summary.Placed,
					summary.Unplaced,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newRunsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, runs, err := a.openArchive(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := runs.DeleteRun(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
