package meeting

import (
	"sort"

	"github.com/example/session-scheduler/internal/project"
)

// GroupedMeeting is a maximal run of contiguous atomic meetings in one room
// on one day, collapsed to a single interval. Actual-time overrides at the
// run boundaries replace the slot boundaries.
type GroupedMeeting struct {
	Room  string
	Day   string
	Start project.ClockTime
	End   project.ClockTime
}

// GroupSessionMeetings merges a session's resolved meetings into grouped
// intervals for calendar and report purposes. Meetings group by (room, day)
// and merge when their slot indices are consecutive.
func GroupSessionMeetings(sess *project.Session, slots []project.Slot) []GroupedMeeting {
	days := project.ResolveDays(slots)

	type placed struct {
		meeting project.Meeting
		slot    project.Slot
		index   int // position within the day's ordered slots
	}

	byKey := make(map[string][]placed)
	keys := make([]string, 0, 4)
	for _, m := range sess.ResolvedMeetings() {
		day, ok := project.MatchDay(days, m.Day)
		if !ok {
			continue
		}
		start, err := project.ParseClockTime(m.Slot)
		if err != nil {
			continue
		}
		daySlots := project.SlotsOn(slots, day)
		index := -1
		var slot project.Slot
		for i, s := range daySlots {
			if s.Start == start {
				index, slot = i, s
				break
			}
		}
		if index < 0 {
			continue
		}
		key := m.Room + "|" + day.Label
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], placed{meeting: m, slot: slot, index: index})
	}

	sort.Strings(keys)
	groups := make([]GroupedMeeting, 0, len(keys))
	for _, key := range keys {
		entries := byKey[key]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

		for i := 0; i < len(entries); {
			j := i
			for j+1 < len(entries) && entries[j+1].index == entries[j].index+1 {
				j++
			}
			first, last := entries[i], entries[j]
			group := GroupedMeeting{
				Room:  first.meeting.Room,
				Day:   first.meeting.Day,
				Start: first.slot.Start,
				End:   last.slot.End,
			}
			if first.meeting.ActualStart != nil {
				group.Start = *first.meeting.ActualStart
			}
			if last.meeting.ActualEnd != nil {
				group.End = *last.meeting.ActualEnd
			}
			groups = append(groups, group)
			i = j + 1
		}
	}
	return groups
}
