package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/session-scheduler/internal/engine"
	"github.com/example/session-scheduler/internal/project"
	"github.com/example/session-scheduler/internal/scheduler"
	"github.com/example/session-scheduler/internal/snapshot"
)

func newScheduleCommand(a *app) *cobra.Command {
	var (
		seed      string
		out       string
		replay    string
		noArchive bool
	)

	cmd := &cobra.Command{
		Use:   "schedule [project-file]",
		Short: "Fill the grid for a project",
		Long: `Assign every session in the project a room, day and slot.

The seed is echoed so a run can be reproduced exactly. Completed runs are
archived; --replay re-executes an archived run from its stored snapshot.

Examples:
  # Schedule a project, writing the result back
  scheduler schedule event.yaml --out scheduled.yaml

  # Reproduce an earlier run
  scheduler schedule --seed 362436069 event.yaml

  # Re-execute an archived run
  scheduler schedule --replay 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var archive *engine.Service
			if replay != "" {
				store, runs, err := a.openArchive(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				archive = a.newEngine(runs)

				p, run, err := archive.Replay(ctx, replay)
				if err != nil {
					return err
				}
				return finishSchedule(cmd, a, p, run, out)
			}

			if len(args) != 1 {
				return fmt.Errorf("project file is required unless --replay is given")
			}
			p, err := a.loadProject(args[0])
			if err != nil {
				return err
			}

			svc := a.newEngine(nil)
			if !noArchive {
				store, runs, err := a.openArchive(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				svc = a.newEngine(runs)
			}

			run, err := svc.Schedule(ctx, p, scheduler.Options{Seed: seed})
			if err != nil {
				return err
			}
			svc.ApplySummaries(p, run.Report)
			return finishSchedule(cmd, a, p, run, out)
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "random seed (integer or free-form string)")
	cmd.Flags().StringVar(&out, "out", "", "write the scheduled project to this file")
	cmd.Flags().StringVar(&replay, "replay", "", "re-execute the archived run with this id")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "skip archiving the run")

	return cmd
}

func finishSchedule(cmd *cobra.Command, a *app, p *project.Project, run engine.RunReport, out string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "seed: %d\n", run.Seed)
	if run.RunID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "run: %s\n", run.RunID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "placed: %d  unplaced: %d\n", len(run.Result.Placed), len(run.Result.Unplaced))
	for _, number := range run.Result.Unplaced {
		fmt.Fprintf(cmd.OutOrStdout(), "  unplaced #%d\n", number)
	}
	renderFindings(cmd, run.Report.Findings)

	if out != "" {
		if err := snapshot.WriteFile(out, p); err != nil {
			return err
		}
		a.logger.Info().Str("path", out).Msg("scheduled project written")
	}
	return nil
}
