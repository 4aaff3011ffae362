package scheduler

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/example/session-scheduler/internal/conflict"
	"github.com/example/session-scheduler/internal/project"
	"github.com/example/session-scheduler/internal/testfixtures"
)

func runScheduler(t *testing.T, p *project.Project, seed string) Result {
	t.Helper()
	result, err := New(conflict.NewCache(p), zerolog.Nop()).Run(Options{Seed: seed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func soleMeeting(t *testing.T, sess *project.Session) project.Meeting {
	t.Helper()
	resolved := sess.ResolvedMeetings()
	if len(resolved) != 1 {
		t.Fatalf("session #%d has %d resolved meetings, want 1", sess.Number, len(resolved))
	}
	return resolved[0]
}

func TestRunPlacesAllWithoutOverlap(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	for i := 1; i <= 5; i++ {
		p.Sessions = append(p.Sessions, testfixtures.NewSession(testfixtures.WithNumber(i)))
	}

	result := runScheduler(t, p, "42")
	if len(result.Placed) != 5 || len(result.Unplaced) != 0 {
		t.Fatalf("placed %v, unplaced %v", result.Placed, result.Unplaced)
	}

	cells := make(map[string]int, 5)
	for _, sess := range p.Sessions {
		m := soleMeeting(t, sess)
		key := m.Room + "|" + m.Day + "|" + m.Slot
		if holder, taken := cells[key]; taken {
			t.Fatalf("sessions #%d and #%d share cell %s", holder, sess.Number, key)
		}
		cells[key] = sess.Number
		if !sess.Updated {
			t.Fatalf("session #%d not marked updated", sess.Number)
		}
		if sess.Day != "" || sess.Slot != "" {
			t.Fatalf("legacy fields not cleared for multi-meeting event: %+v", sess)
		}
		if sess.MeetingSpec == "" {
			t.Fatalf("session #%d has no serialized meeting text", sess.Number)
		}
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	t.Parallel()

	build := func() *project.Project {
		p := testfixtures.SampleProject()
		p.Sessions = []*project.Session{
			testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithTracks("security")),
			testfixtures.NewSession(testfixtures.WithNumber(2), testfixtures.WithTracks("security")),
			testfixtures.NewSession(testfixtures.WithNumber(3), testfixtures.WithAttendance(35)),
			testfixtures.NewSession(testfixtures.WithNumber(4)),
			testfixtures.NewSession(testfixtures.WithNumber(5), testfixtures.WithRequestedTimes(
				project.TimePreference{Day: "Tuesday", Slot: "11:00"})),
		}
		return p
	}

	first, second := build(), build()
	ra := runScheduler(t, first, "1234")
	rb := runScheduler(t, second, "1234")

	if ra.Seed != rb.Seed {
		t.Fatalf("seeds differ: %d vs %d", ra.Seed, rb.Seed)
	}
	if len(ra.Placed) != len(rb.Placed) || len(ra.Unplaced) != len(rb.Unplaced) {
		t.Fatalf("results differ: %+v vs %+v", ra, rb)
	}
	for i := range first.Sessions {
		a, b := first.Sessions[i], second.Sessions[i]
		if len(a.Meetings) != len(b.Meetings) {
			t.Fatalf("session #%d meeting counts differ", a.Number)
		}
		for j := range a.Meetings {
			if a.Meetings[j] != b.Meetings[j] {
				t.Fatalf("session #%d meeting %d differs: %+v vs %+v", a.Number, j, a.Meetings[j], b.Meetings[j])
			}
		}
	}
}

func TestRunEchoesSeed(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	result := runScheduler(t, p, "badger")
	want, _ := ParseSeed("badger")
	if result.Seed != want {
		t.Fatalf("seed = %d, want %d", result.Seed, want)
	}

	fresh := runScheduler(t, testfixtures.SampleProject(), "")
	if fresh.Seed == 0 {
		t.Fatalf("empty seed option must draw a nonzero seed")
	}
}

func TestRunPrefersSmallestSufficientRoom(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	sess := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithAttendance(50))
	p.Sessions = []*project.Session{sess}

	runScheduler(t, p, "42")
	if m := soleMeeting(t, sess); m.Room != "Room 3" {
		t.Fatalf("50-person session placed in %s", m.Room)
	}
}

func TestRunHonorsExplicitRoom(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	sess := testfixtures.NewSession(testfixtures.WithNumber(1))
	sess.Room = "Room 2"
	p.Sessions = []*project.Session{sess}

	runScheduler(t, p, "42")
	if m := soleMeeting(t, sess); m.Room != "Room 2" {
		t.Fatalf("explicit room ignored, placed in %s", m.Room)
	}
}

func TestRunHonorsRequestedTimes(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	sess := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithRequestedTimes(
		project.TimePreference{Day: "Tuesday", Slot: "11:00"}))
	p.Sessions = []*project.Session{sess}

	runScheduler(t, p, "42")
	m := soleMeeting(t, sess)
	if m.Day != "Tuesday" || m.Slot != "11:00" {
		t.Fatalf("requested time ignored: %+v", m)
	}
}

func TestRunMultipleRequestedTimesShareRoom(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	sess := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithRequestedTimes(
		project.TimePreference{Day: "Monday", Slot: "9:00"},
		project.TimePreference{Day: "Tuesday", Slot: "9:00"}))
	p.Sessions = []*project.Session{sess}

	result := runScheduler(t, p, "42")
	if len(result.Placed) != 1 {
		t.Fatalf("placed %v", result.Placed)
	}
	resolved := sess.ResolvedMeetings()
	if len(resolved) != 2 {
		t.Fatalf("expected 2 meetings, got %+v", resolved)
	}
	if resolved[0].Room != resolved[1].Room {
		t.Fatalf("meetings split across rooms without relaxation: %+v", resolved)
	}
}

func TestRunPlacesPlenaryInPlenaryRoom(t *testing.T) {
	t.Parallel()

	p := testfixtures.PlenaryProject()
	plenary := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithPlenary())
	regular := testfixtures.NewSession(testfixtures.WithNumber(2))
	p.Sessions = []*project.Session{plenary, regular}

	runScheduler(t, p, "42")
	if m := soleMeeting(t, plenary); m.Room != "Room 3" {
		t.Fatalf("plenary session placed in %s", m.Room)
	}
	if m := soleMeeting(t, regular); m.Room == "Room 3" {
		t.Fatalf("regular session placed in the plenary room")
	}
}

func TestRunPlenaryCapControlsSharing(t *testing.T) {
	t.Parallel()

	shared := testfixtures.PlenaryProject()
	a := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithPlenary())
	b := testfixtures.NewSession(testfixtures.WithNumber(2), testfixtures.WithPlenary())
	shared.Sessions = []*project.Session{a, b}

	runScheduler(t, shared, "42")
	ma, mb := soleMeeting(t, a), soleMeeting(t, b)
	if ma.Day != mb.Day || ma.Slot != mb.Slot {
		t.Fatalf("plenaries not packed together: %+v vs %+v", ma, mb)
	}

	capped := testfixtures.PlenaryProject()
	capped.Event.PlenaryCap = 1
	c := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithPlenary())
	d := testfixtures.NewSession(testfixtures.WithNumber(2), testfixtures.WithPlenary())
	capped.Sessions = []*project.Session{c, d}

	runScheduler(t, capped, "42")
	mc, md := soleMeeting(t, c), soleMeeting(t, d)
	if mc.Day == md.Day && mc.Slot == md.Slot {
		t.Fatalf("cap of one still shared a slot: %+v", mc)
	}
	if mc.Room != "Room 3" || md.Room != "Room 3" {
		t.Fatalf("plenaries outside the plenary room: %+v, %+v", mc, md)
	}
}

func TestRunLeavesUnsatisfiableSessionUnplaced(t *testing.T) {
	t.Parallel()

	p := &project.Project{
		Event: project.Event{Type: project.EventBreakouts, AllowMultipleMeetings: true},
		Rooms: []project.Room{{Name: "Solo", Capacity: 30}},
		Slots: testfixtures.Slots(1, [2]string{"9:00", "10:30"}),
	}
	p.Sessions = []*project.Session{
		testfixtures.NewSession(testfixtures.WithNumber(1)),
		testfixtures.NewSession(testfixtures.WithNumber(2)),
	}

	result := runScheduler(t, p, "42")
	if len(result.Placed) != 1 || len(result.Unplaced) != 1 {
		t.Fatalf("placed %v, unplaced %v", result.Placed, result.Unplaced)
	}
	if len(result.Relaxed[result.Unplaced[0]]) == 0 {
		t.Fatalf("unplaced session should record attempted relaxations")
	}
}

func TestRunNeverRelaxesChairConflicts(t *testing.T) {
	t.Parallel()

	p := &project.Project{
		Event: project.Event{Type: project.EventBreakouts, AllowMultipleMeetings: true},
		Rooms: []project.Room{
			{Name: "Room 1", Capacity: 30},
			{Name: "Room 2", Capacity: 30},
		},
		Slots: testfixtures.Slots(1, [2]string{"9:00", "10:30"}),
	}
	p.Sessions = []*project.Session{
		testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithChairs("Lee")),
		testfixtures.NewSession(testfixtures.WithNumber(2), testfixtures.WithChairs("Lee")),
	}

	result := runScheduler(t, p, "42")
	if len(result.Placed) != 1 || len(result.Unplaced) != 1 {
		t.Fatalf("placed %v, unplaced %v", result.Placed, result.Unplaced)
	}
}

func TestRunSkipsBlockedSessions(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	blocked := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithBlockingError())
	active := testfixtures.NewSession(testfixtures.WithNumber(2))
	p.Sessions = []*project.Session{blocked, active}

	result := runScheduler(t, p, "42")
	for _, number := range append(result.Placed, result.Unplaced...) {
		if number == 1 {
			t.Fatalf("blocked session appeared in the result: %+v", result)
		}
	}
	if len(blocked.Meetings) != 0 {
		t.Fatalf("blocked session was assigned meetings: %+v", blocked.Meetings)
	}
	if len(active.ResolvedMeetings()) != 1 {
		t.Fatalf("active session not placed")
	}
}

func TestRunTrackMembersShareRoomAcrossSlots(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	a := testfixtures.NewSession(testfixtures.WithNumber(1), testfixtures.WithTracks("security"))
	b := testfixtures.NewSession(testfixtures.WithNumber(2), testfixtures.WithTracks("security"))
	p.Sessions = []*project.Session{a, b}

	runScheduler(t, p, "42")
	ma, mb := soleMeeting(t, a), soleMeeting(t, b)
	if ma.Room != mb.Room {
		t.Fatalf("track members split across rooms: %+v vs %+v", ma, mb)
	}
	if ma.Day == mb.Day && ma.Slot == mb.Slot {
		t.Fatalf("track members meet in parallel: %+v", ma)
	}
}

func TestRunRejectsBrokenProject(t *testing.T) {
	t.Parallel()

	p := testfixtures.SampleProject()
	p.Rooms = append(p.Rooms, project.Room{Name: "Room 1"})
	if _, err := New(conflict.NewCache(p), zerolog.Nop()).Run(Options{Seed: "42"}); err == nil {
		t.Fatalf("expected project definition error")
	}
}
