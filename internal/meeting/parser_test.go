package meeting

import (
	"testing"
	"time"

	"github.com/example/session-scheduler/internal/project"
)

// gridSlots builds a Monday through Friday grid with three slots per day.
func gridSlots(t *testing.T) []project.Slot {
	t.Helper()
	monday, err := time.Parse("2006-01-02", "2024-06-03")
	if err != nil {
		t.Fatalf("bad date: %v", err)
	}
	times := [][2]string{{"9:00", "10:30"}, {"11:00", "13:00"}, {"14:00", "15:30"}}
	var slots []project.Slot
	for d := 0; d < 5; d++ {
		for _, pair := range times {
			start, err := project.ParseClockTime(pair[0])
			if err != nil {
				t.Fatalf("bad start: %v", err)
			}
			end, err := project.ParseClockTime(pair[1])
			if err != nil {
				t.Fatalf("bad end: %v", err)
			}
			slots = append(slots, project.Slot{Date: monday.AddDate(0, 0, d), Start: start, End: end})
		}
	}
	return slots
}

func gridRooms() []project.Room {
	return []project.Room{
		{Name: "Room 1", Capacity: 40},
		{Name: "Room 2", Capacity: 20},
		{Name: "Room 3", Label: "Main Hall", Capacity: 80},
	}
}

func TestParseSessionMeetingsMultipleEntries(t *testing.T) {
	t.Parallel()

	sess := &project.Session{
		Number:      1,
		Room:        "Room 2",
		MeetingSpec: "Tuesday, Room 1, 9:00; Room 1, Thursday, 11:00 - 13:00",
	}
	meetings := ParseSessionMeetings(sess, gridSlots(t), gridRooms())
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d: %+v", len(meetings), meetings)
	}

	first := meetings[0]
	if first.IsInvalid() {
		t.Fatalf("first entry flagged invalid: %q", first.Invalid)
	}
	if first.Room != "Room 1" || first.Day != "Tuesday" || first.Slot != "9:00" {
		t.Fatalf("unexpected first meeting: %+v", first)
	}

	second := meetings[1]
	if second.IsInvalid() {
		t.Fatalf("second entry flagged invalid: %q", second.Invalid)
	}
	if second.Room != "Room 1" || second.Day != "Thursday" || second.Slot != "11:00" {
		t.Fatalf("unexpected second meeting: %+v", second)
	}
	if second.ActualStart != nil || second.ActualEnd != nil {
		t.Fatalf("plain end time must not produce overrides: %+v", second)
	}
}

func TestParseSessionMeetingsSessionDefaults(t *testing.T) {
	t.Parallel()

	sess := &project.Session{
		Number:      2,
		Room:        "Room 2",
		Day:         "Monday",
		MeetingSpec: "9:00; 14:00",
	}
	meetings := ParseSessionMeetings(sess, gridSlots(t), gridRooms())
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(meetings))
	}
	for i, m := range meetings {
		if m.IsInvalid() {
			t.Fatalf("entry %d flagged invalid: %q", i, m.Invalid)
		}
		if m.Room != "Room 2" || m.Day != "Monday" {
			t.Fatalf("entry %d missing defaults: %+v", i, m)
		}
	}
	if meetings[0].Slot != "9:00" || meetings[1].Slot != "14:00" {
		t.Fatalf("unexpected slots: %+v", meetings)
	}
}

func TestParseSessionMeetingsLegacyFallback(t *testing.T) {
	t.Parallel()

	sess := &project.Session{Number: 3, Room: "Room 1", Day: "Wed", Slot: "11:00"}
	meetings := ParseSessionMeetings(sess, gridSlots(t), gridRooms())
	if len(meetings) != 1 {
		t.Fatalf("expected 1 meeting, got %d", len(meetings))
	}
	m := meetings[0]
	if m.IsInvalid() {
		t.Fatalf("legacy fields flagged invalid: %q", m.Invalid)
	}
	if m.Room != "Room 1" || m.Day != "Wednesday" || m.Slot != "11:00" {
		t.Fatalf("unexpected meeting: %+v", m)
	}
}

func TestParseSessionMeetingsEmptyFields(t *testing.T) {
	t.Parallel()

	sess := &project.Session{Number: 4}
	if meetings := ParseSessionMeetings(sess, gridSlots(t), gridRooms()); meetings != nil {
		t.Fatalf("expected no meetings, got %+v", meetings)
	}
}

func TestParseSessionMeetingsRoomLabel(t *testing.T) {
	t.Parallel()

	sess := &project.Session{Number: 5, MeetingSpec: "Main Hall, Friday, 9:00"}
	meetings := ParseSessionMeetings(sess, gridSlots(t), gridRooms())
	if len(meetings) != 1 || meetings[0].IsInvalid() {
		t.Fatalf("unexpected meetings: %+v", meetings)
	}
	if meetings[0].Room != "Room 3" {
		t.Fatalf("label must resolve to the room name, got %q", meetings[0].Room)
	}
}

func TestParseSessionMeetingsActualTimes(t *testing.T) {
	t.Parallel()

	sess := &project.Session{Number: 6, MeetingSpec: "Monday, Room 1, 9:00<9:15> - 10:30<10:00>"}
	meetings := ParseSessionMeetings(sess, gridSlots(t), gridRooms())
	if len(meetings) != 1 {
		t.Fatalf("expected 1 meeting, got %d", len(meetings))
	}
	m := meetings[0]
	if m.IsInvalid() {
		t.Fatalf("entry flagged invalid: %q", m.Invalid)
	}
	if m.ActualStart == nil || m.ActualStart.String() != "9:15" {
		t.Fatalf("unexpected actual start: %v", m.ActualStart)
	}
	if m.ActualEnd == nil || m.ActualEnd.String() != "10:00" {
		t.Fatalf("unexpected actual end: %v", m.ActualEnd)
	}
}

func TestParseSessionMeetingsInvalidEntries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		spec string
	}{
		{name: "unknown token", spec: "Monday, Room 1, 9:00; Atlantis, 9:00"},
		{name: "two time tokens", spec: "Monday, 9:00, 11:00"},
		{name: "time without day", spec: "Room 1, 9:00"},
		{name: "unknown slot", spec: "Monday, Room 1, 9:30"},
		{name: "end not slot end", spec: "Monday, Room 1, 9:00 - 10:00"},
		{name: "actual start at boundary", spec: "Monday, Room 1, 9:00<9:00>"},
		{name: "actual start past slot end", spec: "Monday, Room 1, 9:00<10:30>"},
		{name: "actual end into next slot", spec: "Monday, Room 1, 9:00 - 10:30<11:30>"},
	}
	slots := gridSlots(t)
	rooms := gridRooms()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sess := &project.Session{Number: 7, MeetingSpec: tc.spec}
			meetings := ParseSessionMeetings(sess, slots, rooms)
			invalid := 0
			for _, m := range meetings {
				if m.IsInvalid() {
					invalid++
				}
			}
			if invalid == 0 {
				t.Fatalf("expected at least one invalid entry for %q, got %+v", tc.spec, meetings)
			}
		})
	}
}

func TestParseSessionMeetingsInvalidPreservesEntryText(t *testing.T) {
	t.Parallel()

	sess := &project.Session{Number: 8, MeetingSpec: "Monday, Room 1, 9:00; total nonsense"}
	meetings := ParseSessionMeetings(sess, gridSlots(t), gridRooms())
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(meetings))
	}
	if meetings[0].IsInvalid() {
		t.Fatalf("valid entry flagged invalid")
	}
	if meetings[1].Invalid != "total nonsense" {
		t.Fatalf("expected original text preserved, got %q", meetings[1].Invalid)
	}
}

func TestParseSessionMeetingsEarlyStartBeforePreviousSlotEnd(t *testing.T) {
	t.Parallel()

	// The 11:00 slot may start early at 10:45 but not at 10:15, which is
	// inside the 9:00-10:30 slot.
	slots := gridSlots(t)
	rooms := gridRooms()

	ok := &project.Session{Number: 9, MeetingSpec: "Monday, Room 1, 11:00<10:45>"}
	meetings := ParseSessionMeetings(ok, slots, rooms)
	if len(meetings) != 1 || meetings[0].IsInvalid() {
		t.Fatalf("expected valid early start, got %+v", meetings)
	}

	bad := &project.Session{Number: 10, MeetingSpec: "Monday, Room 1, 11:00<10:15>"}
	meetings = ParseSessionMeetings(bad, slots, rooms)
	if len(meetings) != 1 || !meetings[0].IsInvalid() {
		t.Fatalf("expected invalid early start, got %+v", meetings)
	}
}
