package project

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PlenaryTrack is the synthetic track injected when a plenary room exists so
// that plenary sessions are scheduled before ordinary tracks.
const PlenaryTrack = "_plenary"

// DefaultRoomCapacity is assumed for rooms that do not declare seating.
const DefaultRoomCapacity = 30

// DefaultPlenaryCap bounds how many sessions may share one plenary slot.
const DefaultPlenaryCap = 5

// ClockTime is a time of day expressed as minutes since midnight.
type ClockTime int

// ParseClockTime parses an "H:MM" or "HH:MM" value.
func ParseClockTime(value string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("project: malformed time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("project: malformed time %q", value)
	}
	if len(parts[1]) != 2 {
		return 0, fmt.Errorf("project: malformed time %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("project: malformed time %q", value)
	}
	return ClockTime(hour*60 + minute), nil
}

// String renders the time as "H:MM" (no leading zero on the hour).
func (t ClockTime) String() string {
	return fmt.Sprintf("%d:%02d", int(t)/60, int(t)%60)
}

// Room is an immutable room definition referenced by name.
type Room struct {
	Name     string
	Label    string
	Capacity int // 0 means unspecified
	VIP      bool
	Location string
}

// EffectiveCapacity returns the declared capacity or the default.
func (r Room) EffectiveCapacity() int {
	if r.Capacity <= 0 {
		return DefaultRoomCapacity
	}
	return r.Capacity
}

// DisplayLabel returns the label, falling back to the name.
func (r Room) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Name
}

// Slot is a bookable (date, start, end) interval, referenced by (date, start).
type Slot struct {
	Date  time.Time // date at midnight UTC
	Start ClockTime
	End   ClockTime
}

// Minutes returns the slot duration.
func (s Slot) Minutes() int {
	return int(s.End - s.Start)
}

// Weekday returns the weekday label for the slot's date.
func (s Slot) Weekday() string {
	return s.Date.Weekday().String()
}

// Before orders slots by (date, start).
func (s Slot) Before(other Slot) bool {
	if !s.Date.Equal(other.Date) {
		return s.Date.Before(other.Date)
	}
	return s.Start < other.Start
}

// Day is a scheduling day derived from the slot list. The label is the
// weekday name used in meeting text.
type Day struct {
	Date  time.Time
	Label string
}

// Meeting is one atomic occurrence of a session. An empty field means the
// axis is unconstrained or unassigned. Invalid holds the original text of an
// unparseable entry and makes the meeting inert.
type Meeting struct {
	Room        string
	Day         string // day label
	Slot        string // slot start, e.g. "9:00"
	ActualStart *ClockTime
	ActualEnd   *ClockTime
	Invalid     string
}

// IsInvalid reports whether the meeting carries unparseable source text.
func (m Meeting) IsInvalid() bool {
	return m.Invalid != ""
}

// Resolved reports whether the meeting names a concrete day and slot.
func (m Meeting) Resolved() bool {
	return !m.IsInvalid() && m.Day != "" && m.Slot != ""
}

// SameTime reports whether two meetings share day and slot.
func (m Meeting) SameTime(other Meeting) bool {
	if m.IsInvalid() || other.IsInvalid() {
		return false
	}
	return m.Day != "" && m.Day == other.Day && m.Slot != "" && m.Slot == other.Slot
}

// TimePreference is one requested discrete (day, slot) pair.
type TimePreference struct {
	Day  string
	Slot string
}

// Session is the unit of scheduling.
type Session struct {
	Number            int
	Title             string
	Tracks            []string
	Room              string // legacy single-meeting room
	Day               string // legacy single-meeting day label
	Slot              string // legacy single-meeting slot start
	MeetingSpec       string // multi-meeting specification text
	Meetings          []Meeting
	Capacity          int // requested seats
	Duration          int // requested minutes, 0 means unspecified
	RequestedTimes    []TimePreference
	RequestedMeetings int
	Conflicts         []int // declared conflicting session numbers
	Chairs            []string
	Groups            []string
	Plenary           bool
	Channel           string
	Note              string
	Attendance        int // actual or estimated headcount
	BlockingError     bool
	Updated           bool
	ValidationSummary string // summary stored by the previous validation run
}

// MeetingQuota returns how many atomic meetings the scheduler should create:
// the explicit count, else the count of discrete time preferences, else one.
func (s *Session) MeetingQuota() int {
	if s.RequestedMeetings > 0 {
		return s.RequestedMeetings
	}
	if len(s.RequestedTimes) > 0 {
		return len(s.RequestedTimes)
	}
	return 1
}

// ResolvedMeetings returns the session's meetings that name a day and slot.
func (s *Session) ResolvedMeetings() []Meeting {
	out := make([]Meeting, 0, len(s.Meetings))
	for _, m := range s.Meetings {
		if m.Resolved() {
			out = append(out, m)
		}
	}
	return out
}

// HasTrack reports whether the session carries the given track label.
func (s *Session) HasTrack(track string) bool {
	for _, t := range s.Tracks {
		if t == track {
			return true
		}
	}
	return false
}

// EventType selects whether sessions are chaired breakouts or group meetings.
type EventType string

const (
	// EventBreakouts means sessions are chaired breakout meetings.
	EventBreakouts EventType = "breakouts"
	// EventGroups means sessions are group meetings.
	EventGroups EventType = "groups"
)

// Event carries event-level metadata for a project snapshot.
type Event struct {
	PlenaryRoom           string
	PlenaryCap            int // 0 means default
	Type                  EventType
	AllowMultipleMeetings bool
}

// EffectivePlenaryCap returns the configured cap or the default.
func (e Event) EffectivePlenaryCap() int {
	if e.PlenaryCap <= 0 {
		return DefaultPlenaryCap
	}
	return e.PlenaryCap
}

// Project is an in-memory snapshot of everything a scheduling or validation
// run operates on. The engine mutates sessions in place; rooms and slots are
// immutable once loaded.
type Project struct {
	Event    Event
	Rooms    []Room
	Slots    []Slot
	Sessions []*Session
}

// SortSlots establishes the total slot order by (date, start).
func (p *Project) SortSlots() {
	sort.SliceStable(p.Slots, func(i, j int) bool {
		return p.Slots[i].Before(p.Slots[j])
	})
}

// ResolveDays derives the ordered day list from a slot list.
func ResolveDays(slots []Slot) []Day {
	days := make([]Day, 0, 7)
	seen := make(map[string]bool, 7)
	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })
	for _, slot := range ordered {
		key := slot.Date.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, Day{Date: slot.Date, Label: slot.Weekday()})
	}
	return days
}

// MatchDay resolves a day token against the derived day list. Accepted forms
// are the full weekday name, its three letter abbreviation, and an ISO date.
func MatchDay(days []Day, token string) (Day, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Day{}, false
	}
	lower := strings.ToLower(token)
	for _, day := range days {
		label := strings.ToLower(day.Label)
		if lower == label || (len(lower) == 3 && lower == label[:3]) {
			return day, true
		}
		if token == day.Date.Format("2006-01-02") {
			return day, true
		}
	}
	return Day{}, false
}

// MatchRoom resolves a room token by name or display label.
func MatchRoom(rooms []Room, token string) (Room, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Room{}, false
	}
	for _, room := range rooms {
		if strings.EqualFold(room.Name, token) || strings.EqualFold(room.Label, token) {
			return room, true
		}
	}
	return Room{}, false
}

// SlotsOn returns the slots for one day ordered by start time.
func SlotsOn(slots []Slot, day Day) []Slot {
	out := make([]Slot, 0, 8)
	for _, slot := range slots {
		if slot.Date.Equal(day.Date) {
			out = append(out, slot)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// SlotStarting finds the slot that starts at the given time on a day.
func SlotStarting(slots []Slot, day Day, start ClockTime) (Slot, bool) {
	for _, slot := range slots {
		if slot.Date.Equal(day.Date) && slot.Start == start {
			return slot, true
		}
	}
	return Slot{}, false
}
