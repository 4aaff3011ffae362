package conflict

import "github.com/example/session-scheduler/internal/project"

// MeetsAt reports whether any atomic meeting of the session matches the
// probe's day and slot, and its room when the probe names one.
func MeetsAt(sess *project.Session, probe project.Meeting) bool {
	for _, m := range sess.Meetings {
		if !m.SameTime(probe) {
			continue
		}
		if probe.Room != "" && m.Room != probe.Room {
			continue
		}
		return true
	}
	return false
}

// MeetsInParallelWith reports whether any atomic meeting shares day and slot
// with the probe regardless of room. Room-independent checks (plenary,
// track, chair) use this form.
func MeetsInParallelWith(sess *project.Session, probe project.Meeting) bool {
	for _, m := range sess.Meetings {
		if m.SameTime(probe) {
			return true
		}
	}
	return false
}

// MeetsInRoom reports whether any atomic meeting of the session uses the room.
func MeetsInRoom(sess *project.Session, room string) bool {
	for _, m := range sess.Meetings {
		if !m.IsInvalid() && m.Room != "" && m.Room == room {
			return true
		}
	}
	return false
}

// SessionsInParallel returns the sessions (other than the probe owner) that
// meet at the probe's day and slot.
func SessionsInParallel(sessions []*project.Session, owner *project.Session, probe project.Meeting) []*project.Session {
	out := make([]*project.Session, 0, 4)
	for _, other := range sessions {
		if other == owner {
			continue
		}
		if MeetsInParallelWith(other, probe) {
			out = append(out, other)
		}
	}
	return out
}
