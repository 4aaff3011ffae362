package meeting

import (
	"testing"

	"github.com/example/session-scheduler/internal/project"
)

func TestSerializeSessionMeetingsCommonRoom(t *testing.T) {
	t.Parallel()

	meetings := []project.Meeting{
		{Room: "Room 1", Day: "Tuesday", Slot: "9:00"},
		{Room: "Room 1", Day: "Thursday", Slot: "11:00"},
	}
	room, spec := SerializeSessionMeetings(meetings, gridSlots(t), gridRooms())
	if room != "Room 1" {
		t.Fatalf("expected shared room, got %q", room)
	}
	if spec != "Tuesday, 9:00; Thursday, 11:00" {
		t.Fatalf("unexpected spec: %q", spec)
	}
}

func TestSerializeSessionMeetingsMixedRooms(t *testing.T) {
	t.Parallel()

	meetings := []project.Meeting{
		{Room: "Room 1", Day: "Tuesday", Slot: "9:00"},
		{Room: "Room 2", Day: "Thursday", Slot: "11:00"},
	}
	room, spec := SerializeSessionMeetings(meetings, gridSlots(t), gridRooms())
	if room != "" {
		t.Fatalf("expected no shared room, got %q", room)
	}
	if spec != "Tuesday, Room 1, 9:00; Thursday, Room 2, 11:00" {
		t.Fatalf("unexpected spec: %q", spec)
	}
}

func TestSerializeSessionMeetingsActualTimes(t *testing.T) {
	t.Parallel()

	start := project.ClockTime(9*60 + 15)
	end := project.ClockTime(10 * 60)
	meetings := []project.Meeting{
		{Room: "Room 1", Day: "Monday", Slot: "9:00", ActualStart: &start, ActualEnd: &end},
	}
	_, spec := SerializeSessionMeetings(meetings, gridSlots(t), gridRooms())
	if spec != "Monday, 9:00<9:15> - 10:30<10:00>" {
		t.Fatalf("unexpected spec: %q", spec)
	}
}

func TestSerializeSessionMeetingsKeepsInvalidText(t *testing.T) {
	t.Parallel()

	meetings := []project.Meeting{
		{Room: "Room 1", Day: "Monday", Slot: "9:00"},
		{Invalid: "total nonsense"},
	}
	_, spec := SerializeSessionMeetings(meetings, gridSlots(t), gridRooms())
	if spec != "Monday, 9:00; total nonsense" {
		t.Fatalf("unexpected spec: %q", spec)
	}
}

func TestSerializeSessionMeetingsEmpty(t *testing.T) {
	t.Parallel()

	room, spec := SerializeSessionMeetings(nil, gridSlots(t), gridRooms())
	if room != "" || spec != "" {
		t.Fatalf("expected empty output, got %q %q", room, spec)
	}
}

// Parsing a serialized grid must reproduce the same meetings.
func TestSerializeParseRoundTrip(t *testing.T) {
	t.Parallel()

	slots := gridSlots(t)
	rooms := gridRooms()
	actualStart := project.ClockTime(9*60 + 15)

	cases := [][]project.Meeting{
		{
			{Room: "Room 1", Day: "Tuesday", Slot: "9:00"},
			{Room: "Room 1", Day: "Thursday", Slot: "11:00"},
		},
		{
			{Room: "Room 1", Day: "Monday", Slot: "9:00"},
			{Room: "Room 2", Day: "Monday", Slot: "14:00"},
		},
		{
			{Room: "Room 3", Day: "Friday", Slot: "9:00", ActualStart: &actualStart},
		},
	}
	for i, meetings := range cases {
		room, spec := SerializeSessionMeetings(meetings, slots, rooms)
		sess := &project.Session{Number: 100 + i, Room: room, MeetingSpec: spec}
		parsed := ParseSessionMeetings(sess, slots, rooms)
		if len(parsed) != len(meetings) {
			t.Fatalf("case %d: expected %d meetings, got %d (%q)", i, len(meetings), len(parsed), spec)
		}
		for j := range meetings {
			got, want := parsed[j], meetings[j]
			if got.Room != want.Room || got.Day != want.Day || got.Slot != want.Slot {
				t.Errorf("case %d meeting %d: got %+v, want %+v", i, j, got, want)
			}
			if (got.ActualStart == nil) != (want.ActualStart == nil) {
				t.Errorf("case %d meeting %d: actual start mismatch", i, j)
			} else if got.ActualStart != nil && *got.ActualStart != *want.ActualStart {
				t.Errorf("case %d meeting %d: actual start %v, want %v", i, j, *got.ActualStart, *want.ActualStart)
			}
		}
	}
}
