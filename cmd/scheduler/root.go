package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/example/session-scheduler/internal/config"
	"github.com/example/session-scheduler/internal/engine"
	"github.com/example/session-scheduler/internal/logging"
	"github.com/example/session-scheduler/internal/persistence/sqlite"
	"github.com/example/session-scheduler/internal/project"
	"github.com/example/session-scheduler/internal/snapshot"
)

// app carries the state shared by subcommands, resolved once in the root
// command's PersistentPreRunE.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	logLevel  string
	logFormat string
	dsn       string
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Conference session scheduler",
		Long: `scheduler assigns conference sessions to rooms and time slots.

Projects are JSON or YAML files listing rooms, slots and sessions. The
schedule command fills the grid, validate explains every conflict in an
existing grid, and export renders the grid for spreadsheets and calendars.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			if a.logFormat != "" {
				cfg.LogFormat = a.logFormat
			}
			if a.dsn != "" {
				cfg.SQLiteDSN = a.dsn
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (console, json)")
	root.PersistentFlags().StringVar(&a.dsn, "db", "", "run archive database (SQLite DSN)")

	root.AddCommand(newScheduleCommand(a))
	root.AddCommand(newValidateCommand(a))
	root.AddCommand(newExportCommand(a))
	root.AddCommand(newRunsCommand(a))
	root.AddCommand(newVersionCommand())

	return root
}

// openArchive connects the run archive. Callers own the returned store.
func (a *app) openArchive(ctx context.Context) (*sqlite.Store, *sqlite.RunRepository, error) {
	store, err := sqlite.Open(ctx, a.cfg.SQLiteDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open run archive: %w", err)
	}
	return store, sqlite.NewRunRepository(store), nil
}

// loadProject reads a project file and applies configured defaults.
func (a *app) loadProject(path string) (*project.Project, error) {
	p, err := snapshot.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if a.cfg.PlenaryCap > 0 && p.Event.PlenaryCap == 0 {
		p.Event.PlenaryCap = a.cfg.PlenaryCap
	}
	if a.cfg.DefaultCapacity > 0 {
		for i := range p.Rooms {
			if p.Rooms[i].Capacity == 0 {
				p.Rooms[i].Capacity = a.cfg.DefaultCapacity
			}
		}
	}
	return p, nil
}

func (a *app) newEngine(archive *sqlite.RunRepository) *engine.Service {
	if archive == nil {
		return engine.NewService(nil, a.logger, nil, nil)
	}
	return engine.NewService(archive, a.logger, nil, nil)
}
