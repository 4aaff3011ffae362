// Package persistence defines the storage contracts and records used by the
// run archive. Implementations live in subpackages.
package persistence

import "time"

// Run is one archived scheduling run: the exact input snapshot, the seed
// that drove it, and what came out. Replaying a run re-feeds the stored
// snapshot and seed to the engine.
type Run struct {
	ID        string
	Seed      int64
	CreatedAt time.Time
	Snapshot  []byte
	Placed    []int
	Unplaced  []int
	Findings  []byte
}

// RunSummary is the listing view of an archived run.
type RunSummary struct {
	ID        string
	Seed      int64
	CreatedAt time.Time
	Placed    int
	Unplaced  int
}
