package scheduler

import "github.com/example/session-scheduler/internal/project"

// Relaxation identifies one constraint the scheduler drops when no placement
// satisfies the current set. The ladder order is part of the observable
// behaviour: changing it changes which grids are produced.
type Relaxation int

const (
	// RelaxSameRoom drops "same room for every meeting of the session".
	RelaxSameRoom Relaxation = iota
	// RelaxExactDuration downgrades strict duration equality to a minimum.
	RelaxExactDuration
	// RelaxTrackRoom drops the fixed room elected for the track.
	RelaxTrackRoom
	// RelaxDuration drops duration matching entirely.
	RelaxDuration
	// RelaxCapacity drops the room capacity requirement.
	RelaxCapacity
	// RelaxDeclaredConflicts drops declared-session-conflict avoidance.
	RelaxDeclaredConflicts
	// RelaxTrackConflicts drops track-conflict avoidance.
	RelaxTrackConflicts
	// RelaxRequestedTimes treats requested times as preferences and searches
	// all slots.
	RelaxRequestedTimes
	// RelaxMeetingCount decrements the number of meetings sought by one.
	// This step may repeat until a single meeting remains.
	RelaxMeetingCount
)

var relaxationNames = map[Relaxation]string{
	RelaxSameRoom:          "same room",
	RelaxExactDuration:     "exact duration",
	RelaxTrackRoom:         "track room",
	RelaxDuration:          "duration",
	RelaxCapacity:          "capacity",
	RelaxDeclaredConflicts: "declared conflicts",
	RelaxTrackConflicts:    "track conflicts",
	RelaxRequestedTimes:    "requested times",
	RelaxMeetingCount:      "meeting count",
}

func (r Relaxation) String() string {
	if name, ok := relaxationNames[r]; ok {
		return name
	}
	return "unknown"
}

// DefaultLadder lists relaxations in the order they are applied. The order
// follows the long-standing behaviour of the system; reordering it is a
// behaviour change that needs review.
var DefaultLadder = []Relaxation{
	RelaxSameRoom,
	RelaxExactDuration,
	RelaxTrackRoom,
	RelaxDuration,
	RelaxCapacity,
	RelaxDeclaredConflicts,
	RelaxTrackConflicts,
	RelaxRequestedTimes,
	RelaxMeetingCount,
}

// constraints is the active constraint record for one placement attempt.
// Chair and group conflicts are never represented here: they are always
// enforced and cannot be relaxed.
type constraints struct {
	sameRoom          bool
	exactDuration     bool
	minDuration       bool
	trackRoom         bool
	capacity          bool
	declaredConflicts bool
	trackConflicts    bool
	requestedTimes    bool
	meetings          int
}

// strictConstraints builds the maximally strict record for a session.
func strictConstraints(sess *project.Session) constraints {
	return constraints{
		sameRoom:          true,
		exactDuration:     true,
		minDuration:       true,
		trackRoom:         true,
		capacity:          true,
		declaredConflicts: true,
		trackConflicts:    true,
		requestedTimes:    len(sess.RequestedTimes) > 0,
		meetings:          sess.MeetingQuota(),
	}
}

// apply relaxes exactly one constraint. It reports false when the record is
// exhausted, which for the meeting count means a single meeting remains.
func (c *constraints) apply(r Relaxation) bool {
	switch r {
	case RelaxSameRoom:
		c.sameRoom = false
	case RelaxExactDuration:
		c.exactDuration = false
	case RelaxTrackRoom:
		c.trackRoom = false
	case RelaxDuration:
		c.minDuration = false
	case RelaxCapacity:
		c.capacity = false
	case RelaxDeclaredConflicts:
		c.declaredConflicts = false
	case RelaxTrackConflicts:
		c.trackConflicts = false
	case RelaxRequestedTimes:
		c.requestedTimes = false
	case RelaxMeetingCount:
		if c.meetings <= 1 {
			return false
		}
		c.meetings--
	}
	return true
}
