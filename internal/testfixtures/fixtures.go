// Package testfixtures generates deterministic projects, rooms, slots and
// sessions for tests across the module.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/session-scheduler/internal/project"
)

var (
	roomCounter    uint64
	sessionCounter uint64
)

var referenceDate = time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC) // a Monday

// ReferenceDate returns the canonical first scheduling day used by fixtures.
func ReferenceDate() time.Time {
	return referenceDate
}

// ----------------------------- Room fixtures -----------------------------

// RoomOption configures the generated room.
type RoomOption func(*project.Room)

// NewRoom returns a deterministic room definition with optional overrides.
func NewRoom(opts ...RoomOption) project.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	room := project.Room{
		Name:     fmt.Sprintf("Room %d", idx),
		Capacity: int(20 + 10*(idx%4)),
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(r *project.Room) {
		r.Name = name
	}
}

// WithRoomLabel sets the display label.
func WithRoomLabel(label string) RoomOption {
	return func(r *project.Room) {
		r.Label = label
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(r *project.Room) {
		r.Capacity = capacity
	}
}

// WithRoomVIP marks the room as reserved.
func WithRoomVIP() RoomOption {
	return func(r *project.Room) {
		r.VIP = true
	}
}

// ----------------------------- Slot fixtures -----------------------------

// Slots builds a slot grid: days consecutive calendar days starting at the
// reference date, each with the given (start, end) clock time pairs.
func Slots(days int, times ...[2]string) []project.Slot {
	if len(times) == 0 {
		times = [][2]string{{"9:00", "10:30"}, {"11:00", "12:30"}, {"14:00", "15:30"}}
	}
	var slots []project.Slot
	for d := 0; d < days; d++ {
		date := referenceDate.AddDate(0, 0, d)
		for _, pair := range times {
			start, err := project.ParseClockTime(pair[0])
			if err != nil {
				panic(err)
			}
			end, err := project.ParseClockTime(pair[1])
			if err != nil {
				panic(err)
			}
			slots = append(slots, project.Slot{Date: date, Start: start, End: end})
		}
	}
	return slots
}

// ----------------------------- Session fixtures --------------------------

// SessionOption configures the generated session.
type SessionOption func(*project.Session)

// NewSession returns a deterministic session with optional overrides.
func NewSession(opts ...SessionOption) *project.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	sess := &project.Session{
		Number: int(idx),
		Title:  fmt.Sprintf("Session %d", idx),
	}
	for _, opt := range opts {
		opt(sess)
	}
	return sess
}

// WithNumber overrides the generated session number.
func WithNumber(number int) SessionOption {
	return func(s *project.Session) {
		s.Number = number
	}
}

// WithTitle overrides the generated title.
func WithTitle(title string) SessionOption {
	return func(s *project.Session) {
		s.Title = title
	}
}

// WithTracks sets the track memberships.
func WithTracks(tracks ...string) SessionOption {
	return func(s *project.Session) {
		s.Tracks = tracks
	}
}

// WithAssignment pins the legacy single-meeting fields.
func WithAssignment(room, day, slot string) SessionOption {
	return func(s *project.Session) {
		s.Room = room
		s.Day = day
		s.Slot = slot
	}
}

// WithMeetingSpec sets the meeting text.
func WithMeetingSpec(room, spec string) SessionOption {
	return func(s *project.Session) {
		s.Room = room
		s.MeetingSpec = spec
	}
}

// WithCapacity sets the requested seat count.
func WithCapacity(capacity int) SessionOption {
	return func(s *project.Session) {
		s.Capacity = capacity
	}
}

// WithAttendance sets the expected head count.
func WithAttendance(attendance int) SessionOption {
	return func(s *project.Session) {
		s.Attendance = attendance
	}
}

// WithDuration sets the requested duration in minutes.
func WithDuration(minutes int) SessionOption {
	return func(s *project.Session) {
		s.Duration = minutes
	}
}

// WithRequestedTimes sets discrete (day, slot) preferences.
func WithRequestedTimes(prefs ...project.TimePreference) SessionOption {
	return func(s *project.Session) {
		s.RequestedTimes = prefs
	}
}

// WithConflicts declares conflicting session numbers.
func WithConflicts(numbers ...int) SessionOption {
	return func(s *project.Session) {
		s.Conflicts = numbers
	}
}

// WithChairs sets the chair names.
func WithChairs(chairs ...string) SessionOption {
	return func(s *project.Session) {
		s.Chairs = chairs
	}
}

// WithGroups sets the owning group names.
func WithGroups(groups ...string) SessionOption {
	return func(s *project.Session) {
		s.Groups = groups
	}
}

// WithPlenary marks the session as plenary.
func WithPlenary() SessionOption {
	return func(s *project.Session) {
		s.Plenary = true
	}
}

// WithChannel sets the broadcast channel.
func WithChannel(channel string) SessionOption {
	return func(s *project.Session) {
		s.Channel = channel
	}
}

// WithNote sets the free-form note used for warning suppression.
func WithNote(note string) SessionOption {
	return func(s *project.Session) {
		s.Note = note
	}
}

// WithBlockingError excludes the session from scheduling.
func WithBlockingError() SessionOption {
	return func(s *project.Session) {
		s.BlockingError = true
	}
}

// ----------------------------- Project fixtures --------------------------

// SampleProject builds a small two-day project with three rooms, three
// slots per day, and no sessions. Callers append sessions as needed.
func SampleProject() *project.Project {
	return &project.Project{
		Event: project.Event{
			Type:                  project.EventBreakouts,
			AllowMultipleMeetings: true,
		},
		Rooms: []project.Room{
			{Name: "Room 1", Capacity: 40},
			{Name: "Room 2", Capacity: 20},
			{Name: "Room 3", Capacity: 60},
		},
		Slots: Slots(2),
	}
}

// PlenaryProject is SampleProject with Room 3 promoted to plenary room.
func PlenaryProject() *project.Project {
	p := SampleProject()
	p.Event.PlenaryRoom = "Room 3"
	return p
}
