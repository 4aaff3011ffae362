// Package meeting implements the meeting-specification text format: parsing
// session scheduling fields into atomic meetings, serializing them back, and
// merging contiguous meetings into calendar-ready groups.
//
// The text format is `entry(; entry)*` where each entry is a comma separated
// token list. A token is a room name, a day reference (weekday name,
// abbreviation or ISO date) or a slot expression
// `H:MM[<H:MM>][ - H:MM[<H:MM>]]` whose angle-bracket parts carry actual
// start/end overrides. Malformed entries are flagged invalid, never rejected.
package meeting

import (
	"regexp"
	"strings"

	"github.com/example/session-scheduler/internal/project"
)

// Slot expressions always contain a colon, so they can never collide with a
// room or day literal. The time pattern is therefore classified first.
var timeTokenRE = regexp.MustCompile(`^(\d{1,2}:\d{2})(?:<(\d{1,2}:\d{2})>)?(?:\s*-\s*(\d{1,2}:\d{2})(?:<(\d{1,2}:\d{2})>)?)?$`)

var entrySplitRE = regexp.MustCompile(`[;|]`)

// ParseSessionMeetings expands a session's scheduling fields into atomic
// meetings. Each `;`/`|` delimited entry of the meeting specification yields
// exactly one meeting; entries that cannot be resolved are returned with
// Invalid set to their original text. Without a specification string the
// legacy room/day/slot fields yield a single meeting, or none when unset.
func ParseSessionMeetings(sess *project.Session, slots []project.Slot, rooms []project.Room) []project.Meeting {
	days := project.ResolveDays(slots)

	spec := strings.TrimSpace(sess.MeetingSpec)
	if spec == "" {
		if sess.Room == "" && sess.Slot == "" {
			return nil
		}
		return []project.Meeting{legacyMeeting(sess, slots, rooms, days)}
	}

	entries := entrySplitRE.Split(spec, -1)
	meetings := make([]project.Meeting, 0, len(entries))
	for _, entry := range entries {
		meetings = append(meetings, parseEntry(entry, sess, slots, rooms, days))
	}
	return meetings
}

// legacyMeeting builds the fallback meeting from the single room/day/slot
// fields, validating the slot reference against the slot list.
func legacyMeeting(sess *project.Session, slots []project.Slot, rooms []project.Room, days []project.Day) project.Meeting {
	m := project.Meeting{Room: sess.Room, Day: sess.Day, Slot: sess.Slot}
	if sess.Day != "" {
		day, ok := project.MatchDay(days, sess.Day)
		if !ok {
			return project.Meeting{Invalid: legacyText(sess)}
		}
		m.Day = day.Label
		if sess.Slot != "" {
			start, err := project.ParseClockTime(sess.Slot)
			if err != nil {
				return project.Meeting{Invalid: legacyText(sess)}
			}
			slot, ok := project.SlotStarting(slots, day, start)
			if !ok {
				return project.Meeting{Invalid: legacyText(sess)}
			}
			m.Slot = slot.Start.String()
		}
	}
	if sess.Room != "" {
		room, ok := project.MatchRoom(rooms, sess.Room)
		if !ok {
			return project.Meeting{Invalid: legacyText(sess)}
		}
		m.Room = room.Name
	}
	return m
}

func legacyText(sess *project.Session) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{sess.Room, sess.Day, sess.Slot} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// parseEntry consumes one comma separated entry. Tokens are classified slot
// expression first, then room, then day; anything else poisons the entry.
func parseEntry(entry string, sess *project.Session, slots []project.Slot, rooms []project.Room, days []project.Day) project.Meeting {
	m := project.Meeting{Room: sess.Room, Day: sess.Day, Slot: sess.Slot}
	var timeToken string

	for _, token := range strings.Split(entry, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		switch {
		case timeTokenRE.MatchString(token):
			if timeToken != "" {
				return project.Meeting{Invalid: strings.TrimSpace(entry)}
			}
			timeToken = token
		default:
			if room, ok := project.MatchRoom(rooms, token); ok {
				m.Room = room.Name
				continue
			}
			if day, ok := project.MatchDay(days, token); ok {
				m.Day = day.Label
				continue
			}
			return project.Meeting{Invalid: strings.TrimSpace(entry)}
		}
	}

	// Resolve the slot expression once the entry's day is known; the day may
	// come from a token in any position or from the session defaults.
	if timeToken != "" {
		day, ok := project.MatchDay(days, m.Day)
		if !ok {
			return project.Meeting{Invalid: strings.TrimSpace(entry)}
		}
		resolved, ok := resolveTimeToken(timeToken, day, slots)
		if !ok {
			return project.Meeting{Invalid: strings.TrimSpace(entry)}
		}
		m.Slot = resolved.Slot
		m.ActualStart = resolved.ActualStart
		m.ActualEnd = resolved.ActualEnd
	} else if m.Slot != "" && m.Day != "" {
		day, ok := project.MatchDay(days, m.Day)
		if !ok {
			return project.Meeting{Invalid: strings.TrimSpace(entry)}
		}
		start, err := project.ParseClockTime(m.Slot)
		if err != nil {
			return project.Meeting{Invalid: strings.TrimSpace(entry)}
		}
		slot, ok := project.SlotStarting(slots, day, start)
		if !ok {
			return project.Meeting{Invalid: strings.TrimSpace(entry)}
		}
		m.Slot = slot.Start.String()
	}

	return m
}

type resolvedTime struct {
	Slot        string
	ActualStart *project.ClockTime
	ActualEnd   *project.ClockTime
}

// resolveTimeToken maps a slot expression onto a concrete slot of the given
// day and validates any actual-time overrides. The plain end time, when
// present, must restate the slot's end.
func resolveTimeToken(token string, day project.Day, slots []project.Slot) (resolvedTime, bool) {
	groups := timeTokenRE.FindStringSubmatch(token)
	if groups == nil {
		return resolvedTime{}, false
	}

	start, err := project.ParseClockTime(groups[1])
	if err != nil {
		return resolvedTime{}, false
	}
	slot, ok := project.SlotStarting(slots, day, start)
	if !ok {
		return resolvedTime{}, false
	}

	out := resolvedTime{Slot: slot.Start.String()}
	daySlots := project.SlotsOn(slots, day)

	if groups[2] != "" {
		actual, err := project.ParseClockTime(groups[2])
		if err != nil || !actualStartValid(actual, slot, daySlots) {
			return resolvedTime{}, false
		}
		out.ActualStart = &actual
	}

	if groups[3] != "" {
		end, err := project.ParseClockTime(groups[3])
		if err != nil || end != slot.End {
			return resolvedTime{}, false
		}
		if groups[4] != "" {
			actual, err := project.ParseClockTime(groups[4])
			if err != nil || !actualEndValid(actual, slot, daySlots) {
				return resolvedTime{}, false
			}
			out.ActualEnd = &actual
		}
	} else if groups[4] != "" {
		return resolvedTime{}, false
	}

	return out, true
}

// actualStartValid checks the override rule: the value must differ from the
// slot boundary, must not cross the slot's end, and must not encroach on the
// previous slot of the same day.
func actualStartValid(actual project.ClockTime, slot project.Slot, daySlots []project.Slot) bool {
	if actual == slot.Start || actual >= slot.End {
		return false
	}
	for _, other := range daySlots {
		if other.End <= slot.Start && actual < other.End {
			return false
		}
	}
	return true
}

// actualEndValid mirrors actualStartValid for the end boundary and the next
// slot of the same day.
func actualEndValid(actual project.ClockTime, slot project.Slot, daySlots []project.Slot) bool {
	if actual == slot.End || actual <= slot.Start {
		return false
	}
	for _, other := range daySlots {
		if other.Start >= slot.End && actual > other.Start {
			return false
		}
	}
	return true
}
