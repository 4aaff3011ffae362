package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/session-scheduler/internal/export"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		csvPath      string
		calendarPath string
	)

	cmd := &cobra.Command{
		Use:   "export <project-file>",
		Short: "Render a scheduled grid for spreadsheets and calendars",
		Long: `Render the project's grid. Adjacent meetings of a session are merged
into single spanning rows.

Examples:
  # Spreadsheet grid
  scheduler export --csv grid.csv scheduled.yaml

  # Calendar feed
  scheduler export --calendar feed.json scheduled.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath == "" && calendarPath == "" {
				return fmt.Errorf("at least one of --csv or --calendar is required")
			}
			p, err := a.loadProject(args[0])
			if err != nil {
				return err
			}
			if err := a.newEngine(nil).Prepare(p); err != nil {
				return err
			}
			if csvPath != "" {
				if err := export.WriteGridCSV(csvPath, p); err != nil {
					return err
				}
				a.logger.Info().Str("path", csvPath).Msg("grid csv written")
			}
			if calendarPath != "" {
				if err := export.WriteCalendarJSON(calendarPath, p); err != nil {
					return err
				}
				a.logger.Info().Str("path", calendarPath).Msg("calendar feed written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "write the grid CSV to this file")
	cmd.Flags().StringVar(&calendarPath, "calendar", "", "write the calendar JSON to this file")

	return cmd
}
