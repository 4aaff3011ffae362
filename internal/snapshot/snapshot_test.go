package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/session-scheduler/internal/project"
	"github.com/example/session-scheduler/internal/testfixtures"
)

func richProject() *project.Project {
	p := testfixtures.PlenaryProject()
	p.Event.PlenaryCap = 3
	p.Sessions = []*project.Session{
		testfixtures.NewSession(
			testfixtures.WithNumber(1),
			testfixtures.WithTitle("Opening"),
			testfixtures.WithPlenary(),
			testfixtures.WithChannel("stream-1"),
		),
		testfixtures.NewSession(
			testfixtures.WithNumber(2),
			testfixtures.WithTitle("Transport"),
			testfixtures.WithTracks("infra", "net"),
			testfixtures.WithChairs("Avery", "Kim"),
			testfixtures.WithCapacity(30),
			testfixtures.WithAttendance(25),
			testfixtures.WithDuration(90),
			testfixtures.WithConflicts(3),
			testfixtures.WithRequestedTimes(
				project.TimePreference{Day: "Monday", Slot: "9:00"},
				project.TimePreference{Day: "Tuesday", Slot: "11:00"},
			),
			testfixtures.WithNote("capacity"),
		),
		testfixtures.NewSession(
			testfixtures.WithNumber(3),
			testfixtures.WithMeetingSpec("Room 1", "Monday, 9:00; Tuesday, 11:00"),
		),
	}
	return p
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	t.Parallel()

	original := richProject()
	data, err := Marshal(original)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	// Comparing document forms sidesteps pointer identity in the model.
	assert.Equal(t, FromProject(original), FromProject(decoded))
}

func TestReadWriteFileJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.json")
	original := richProject()
	require.NoError(t, WriteFile(path, original))

	decoded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FromProject(original), FromProject(decoded))
}

func TestReadWriteFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.yaml")
	original := richProject()
	require.NoError(t, WriteFile(path, original))

	decoded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FromProject(original), FromProject(decoded))
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte("{not json"))
	require.Error(t, err)
}

func TestToProjectRejectsBadSlot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		slot SlotDoc
	}{
		{"bad date", SlotDoc{Date: "June 3rd", Start: "9:00", End: "10:30"}},
		{"bad start", SlotDoc{Date: "2024-06-03", Start: "9am", End: "10:30"}},
		{"bad end", SlotDoc{Date: "2024-06-03", Start: "9:00", End: "late"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ToProject(Document{Slots: []SlotDoc{tt.slot}})
			require.Error(t, err)
		})
	}
}

func TestToProjectSortsSlots(t *testing.T) {
	t.Parallel()

	doc := Document{
		Slots: []SlotDoc{
			{Date: "2024-06-04", Start: "9:00", End: "10:30"},
			{Date: "2024-06-03", Start: "14:00", End: "15:30"},
			{Date: "2024-06-03", Start: "9:00", End: "10:30"},
		},
	}
	p, err := ToProject(doc)
	require.NoError(t, err)
	require.Len(t, p.Slots, 3)
	assert.True(t, p.Slots[0].Before(p.Slots[1]))
	assert.True(t, p.Slots[1].Before(p.Slots[2]))
}
