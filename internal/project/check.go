package project

import (
	"fmt"
	"strings"
)

// ProblemList aggregates project-level definition problems. It is returned
// before any per-session work starts so operators see every issue at once.
type ProblemList struct {
	Problems []string
}

// Error implements the error interface.
func (e *ProblemList) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "project: invalid definitions"
	}
	return "project: invalid definitions: " + strings.Join(e.Problems, "; ")
}

func (e *ProblemList) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// CheckProject verifies that room and slot definitions are usable before a
// scheduling or validation run. All problems are collected into a single
// aggregate error.
func CheckProject(p *Project) error {
	problems := &ProblemList{}

	roomNames := make(map[string]bool, len(p.Rooms))
	for _, room := range p.Rooms {
		name := strings.TrimSpace(room.Name)
		if name == "" {
			problems.add("room with empty name")
			continue
		}
		lower := strings.ToLower(name)
		if roomNames[lower] {
			problems.add("duplicate room %q", room.Name)
		}
		roomNames[lower] = true
	}

	slotKeys := make(map[string]bool, len(p.Slots))
	for _, slot := range p.Slots {
		if slot.Date.IsZero() {
			problems.add("slot without a date")
			continue
		}
		if slot.End <= slot.Start {
			problems.add("slot %s %s ends at or before its start", slot.Date.Format("2006-01-02"), slot.Start)
		}
		key := slot.Date.Format("2006-01-02") + "|" + slot.Start.String()
		if slotKeys[key] {
			problems.add("duplicate slot %s %s", slot.Date.Format("2006-01-02"), slot.Start)
		}
		slotKeys[key] = true
	}

	// Meeting text references days by weekday label, so labels must be
	// unambiguous across the event.
	weekdays := make(map[string]string, 7)
	for _, day := range ResolveDays(p.Slots) {
		date := day.Date.Format("2006-01-02")
		if prev, ok := weekdays[day.Label]; ok {
			problems.add("days %s and %s share the weekday label %s", prev, date, day.Label)
			continue
		}
		weekdays[day.Label] = date
	}

	if p.Event.PlenaryRoom != "" {
		if _, ok := MatchRoom(p.Rooms, p.Event.PlenaryRoom); !ok {
			problems.add("plenary room %q is not defined", p.Event.PlenaryRoom)
		}
	}

	sessionNumbers := make(map[int]bool, len(p.Sessions))
	for _, sess := range p.Sessions {
		if sess.Number <= 0 {
			problems.add("session %q has no valid number", sess.Title)
			continue
		}
		if sessionNumbers[sess.Number] {
			problems.add("duplicate session number %d", sess.Number)
		}
		sessionNumbers[sess.Number] = true
	}

	if len(problems.Problems) > 0 {
		return problems
	}
	return nil
}
