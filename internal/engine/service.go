// Package engine orchestrates the full pipeline: parse meeting text,
// validate the grid, run the scheduler, and archive the result.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/session-scheduler/internal/conflict"
	"github.com/example/session-scheduler/internal/meeting"
	"github.com/example/session-scheduler/internal/persistence"
	"github.com/example/session-scheduler/internal/project"
	"github.com/example/session-scheduler/internal/scheduler"
	"github.com/example/session-scheduler/internal/snapshot"
)

// Service wires the pipeline stages together. The archive is optional;
// without one, runs execute but are not recorded.
type Service struct {
	archive     persistence.RunArchive
	logger      zerolog.Logger
	idGenerator func() string
	now         func() time.Time
	reports     *reportCache
}

// NewService wires dependencies for engine operations.
func NewService(archive persistence.RunArchive, logger zerolog.Logger, idGenerator func() string, now func() time.Time) *Service {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		archive:     archive,
		logger:      logger.With().Str("component", "engine").Logger(),
		idGenerator: idGenerator,
		now:         now,
		reports:     newReportCache(30*time.Second, 128, now),
	}
}

// RunReport is the outcome of one scheduling run.
type RunReport struct {
	RunID  string
	Seed   int64
	Result scheduler.Result
	Report conflict.GridReport
}

// Prepare materializes every session's meetings from its meeting text and
// legacy fields. Safe to call repeatedly; it re-derives from the text form.
func (s *Service) Prepare(p *project.Project) error {
	if err := project.CheckProject(p); err != nil {
		return err
	}
	for _, sess := range p.Sessions {
		sess.Meetings = meeting.ParseSessionMeetings(sess, p.Slots, p.Rooms)
	}
	return nil
}

// Validate runs the full validation battery over the grid. Reports are
// cached against the snapshot content until the grid changes.
func (s *Service) Validate(p *project.Project, schedulingOnly bool) (conflict.GridReport, error) {
	if err := s.Prepare(p); err != nil {
		return conflict.GridReport{}, err
	}
	key, err := reportCacheKey(p, schedulingOnly)
	if err == nil {
		if report, ok := s.reports.Get(key); ok {
			return report, nil
		}
	}

	validator := conflict.NewValidator(conflict.NewCache(p), s.logger)
	report, err := validator.ValidateGrid(schedulingOnly)
	if err != nil {
		return conflict.GridReport{}, err
	}
	if key != "" {
		s.reports.Store(key, report)
	}
	return report, nil
}

// ApplySummaries writes the report's per-session summaries back onto the
// sessions, so the next run's changed list reflects this baseline.
func (s *Service) ApplySummaries(p *project.Project, report conflict.GridReport) {
	for _, sess := range p.Sessions {
		if summary, ok := report.Summaries[sess.Number]; ok {
			sess.ValidationSummary = summary
		}
	}
}

// Schedule runs the scheduler over the project, validates the resulting
// grid, and archives the run. The project is mutated in place.
func (s *Service) Schedule(ctx context.Context, p *project.Project, opts scheduler.Options) (RunReport, error) {
	if err := s.Prepare(p); err != nil {
		return RunReport{}, err
	}

	before, err := snapshot.Marshal(p)
	if err != nil {
		return RunReport{}, fmt.Errorf("snapshot before run: %w", err)
	}

	cache := conflict.NewCache(p)
	result, err := scheduler.New(cache, s.logger).Run(opts)
	if err != nil {
		return RunReport{}, err
	}
	s.reports.Invalidate()

	report, err := conflict.NewValidator(cache, s.logger).ValidateGrid(false)
	if err != nil {
		return RunReport{}, err
	}

	run := RunReport{
		RunID:  s.idGenerator(),
		Seed:   result.Seed,
		Result: result,
		Report: report,
	}
	s.logger.Info().
		Str("run", run.RunID).
		Int64("seed", result.Seed).
		Int("placed", len(result.Placed)).
		Int("unplaced", len(result.Unplaced)).
		Msg("scheduling run finished")

	if s.archive != nil {
		if err := s.archiveRun(ctx, run, before); err != nil {
			return RunReport{}, err
		}
	}
	return run, nil
}

// Replay re-executes an archived run: same snapshot, same seed. The
// returned report reflects a fresh execution, which matches the original
// when the engine version is unchanged.
func (s *Service) Replay(ctx context.Context, runID string) (*project.Project, RunReport, error) {
	if s.archive == nil {
		return nil, RunReport{}, fmt.Errorf("no run archive configured")
	}
	archived, err := s.archive.GetRun(ctx, runID)
	if err != nil {
		return nil, RunReport{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	p, err := snapshot.Unmarshal(archived.Snapshot)
	if err != nil {
		return nil, RunReport{}, fmt.Errorf("decode run %s snapshot: %w", runID, err)
	}
	report, err := s.Schedule(ctx, p, scheduler.Options{Seed: scheduler.SeedString(archived.Seed)})
	if err != nil {
		return nil, RunReport{}, err
	}
	return p, report, nil
}

func (s *Service) archiveRun(ctx context.Context, run RunReport, before []byte) error {
	findings, err := json.Marshal(run.Report.Findings)
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}
	record := persistence.Run{
		ID:        run.RunID,
		Seed:      run.Seed,
		CreatedAt: s.now(),
		Snapshot:  before,
		Placed:    run.Result.Placed,
		Unplaced:  run.Result.Unplaced,
		Findings:  findings,
	}
	if err := s.archive.SaveRun(ctx, record); err != nil {
		return fmt.Errorf("archive run %s: %w", run.RunID, err)
	}
	return nil
}
