package persistence

import "context"

// RunArchive stores completed scheduling runs for audit and replay.
type RunArchive interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	DeleteRun(ctx context.Context, id string) error
}
