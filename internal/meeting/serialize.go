package meeting

import (
	"strings"

	"github.com/example/session-scheduler/internal/project"
)

// SerializeSessionMeetings renders meetings back into the text format. When
// every meeting shares one room that room is returned separately and omitted
// from the entries; otherwise each entry carries its own room token. Invalid
// meetings are emitted verbatim so operator text survives a write-back.
func SerializeSessionMeetings(meetings []project.Meeting, slots []project.Slot, rooms []project.Room) (room string, spec string) {
	if len(meetings) == 0 {
		return "", ""
	}

	common := commonRoom(meetings)
	entries := make([]string, 0, len(meetings))
	for _, m := range meetings {
		if m.IsInvalid() {
			entries = append(entries, m.Invalid)
			continue
		}
		entries = append(entries, serializeEntry(m, slots, common != ""))
	}
	return common, strings.Join(entries, "; ")
}

// commonRoom returns the shared room name when every non-invalid meeting
// uses the same one, otherwise "".
func commonRoom(meetings []project.Meeting) string {
	shared := ""
	for _, m := range meetings {
		if m.IsInvalid() {
			continue
		}
		if m.Room == "" {
			return ""
		}
		if shared == "" {
			shared = m.Room
			continue
		}
		if m.Room != shared {
			return ""
		}
	}
	return shared
}

func serializeEntry(m project.Meeting, slots []project.Slot, omitRoom bool) string {
	tokens := make([]string, 0, 3)
	if m.Day != "" {
		tokens = append(tokens, m.Day)
	}
	if !omitRoom && m.Room != "" {
		tokens = append(tokens, m.Room)
	}
	if m.Slot != "" {
		tokens = append(tokens, serializeTime(m, slots))
	}
	return strings.Join(tokens, ", ")
}

// serializeTime emits the slot start; the end and the angle-bracket actual
// annotations appear only when an override exists.
func serializeTime(m project.Meeting, slots []project.Slot) string {
	var b strings.Builder
	b.WriteString(m.Slot)
	if m.ActualStart != nil {
		b.WriteString("<")
		b.WriteString(m.ActualStart.String())
		b.WriteString(">")
	}
	if m.ActualEnd != nil {
		if end, ok := slotEnd(m, slots); ok {
			b.WriteString(" - ")
			b.WriteString(end.String())
		}
		b.WriteString("<")
		b.WriteString(m.ActualEnd.String())
		b.WriteString(">")
	}
	return b.String()
}

func slotEnd(m project.Meeting, slots []project.Slot) (project.ClockTime, bool) {
	days := project.ResolveDays(slots)
	day, ok := project.MatchDay(days, m.Day)
	if !ok {
		return 0, false
	}
	start, err := project.ParseClockTime(m.Slot)
	if err != nil {
		return 0, false
	}
	slot, ok := project.SlotStarting(slots, day, start)
	if !ok {
		return 0, false
	}
	return slot.End, true
}
