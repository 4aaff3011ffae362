package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/session-scheduler/internal/project"
)

// Validator runs the per-session validation battery over a project snapshot.
type Validator struct {
	cache  *Cache
	logger zerolog.Logger
}

// NewValidator wires a validator over a caller-owned lookup cache.
func NewValidator(cache *Cache, logger zerolog.Logger) *Validator {
	return &Validator{
		cache:  cache,
		logger: logger.With().Str("component", "validator").Logger(),
	}
}

// GridReport is the outcome of validating a whole project.
type GridReport struct {
	Findings []Finding
	// Changed lists the sessions whose stored validation summary differs
	// from the freshly computed one, so callers can avoid redundant writes.
	Changed []int
	// Summaries maps session numbers to their fresh summary strings.
	Summaries map[int]string
}

// ValidateGrid validates every session. Project-level definition problems
// abort the run with an aggregate error before any per-session work.
// With schedulingOnly set, findings about the meeting text format are
// dropped. Warnings and checks named in a session's note are suppressed.
func (v *Validator) ValidateGrid(schedulingOnly bool) (GridReport, error) {
	p := v.cache.Project()
	if err := project.CheckProject(p); err != nil {
		return GridReport{}, err
	}

	report := GridReport{Summaries: make(map[int]string, len(p.Sessions))}
	for _, sess := range p.Sessions {
		findings := v.ValidateSession(sess)
		findings = suppressNoted(sess, findings)
		if schedulingOnly {
			kept := findings[:0]
			for _, f := range findings {
				if f.SchedulingRelevant() {
					kept = append(kept, f)
				}
			}
			findings = kept
		}
		summary := Summarize(findings)
		report.Summaries[sess.Number] = summary
		if summary != sess.ValidationSummary {
			report.Changed = append(report.Changed, sess.Number)
		}
		report.Findings = append(report.Findings, findings...)
	}
	sort.Ints(report.Changed)
	return report, nil
}

// suppressNoted drops warnings and checks whose type is named in the
// session's operator note. Errors are never suppressed.
func suppressNoted(sess *project.Session, findings []Finding) []Finding {
	if strings.TrimSpace(sess.Note) == "" {
		return findings
	}
	noted := make(map[string]bool, 4)
	for _, token := range strings.FieldsFunc(sess.Note, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	}) {
		noted[strings.ToLower(strings.TrimSpace(token))] = true
	}
	kept := findings[:0]
	for _, f := range findings {
		if f.Severity != SeverityError && noted[f.Type] {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// ValidateSession runs the ordered battery of independent checks for one
// session. Each check yields zero or more findings; none mutate state.
func (v *Validator) ValidateSession(sess *project.Session) []Finding {
	var findings []Finding
	add := func(severity Severity, ftype, message string, details map[string]any) {
		findings = append(findings, Finding{
			Session:  sess.Number,
			Severity: severity,
			Type:     ftype,
			Messages: []string{message},
			Details:  details,
		})
	}

	v.checkStructure(sess, add)
	if sess.Plenary {
		v.checkPlenaryPlacement(sess, add)
	} else {
		v.checkRoomUsage(sess, add)
	}
	v.checkDeclaredConflictSanity(sess, add)
	v.checkRequestedTimes(sess, add)
	v.checkRequestedSlotCount(sess, add)
	v.checkCapacity(sess, add)
	v.checkRoomSwitch(sess, add)
	v.checkChairGroupConflicts(sess, add)
	v.checkDeclaredConflictRealized(sess, add)
	v.checkTrackConflicts(sess, add)
	v.checkPlenaryParallel(sess, add)
	v.checkChannelCollision(sess, add)
	v.checkUnscheduled(sess, add)

	return findings
}

type addFunc func(severity Severity, ftype, message string, details map[string]any)

func (v *Validator) checkStructure(sess *project.Session, add addFunc) {
	for _, m := range sess.Meetings {
		if !m.IsInvalid() {
			continue
		}
		ftype := TypeMeetingFormat
		if strings.TrimSpace(sess.MeetingSpec) == "" {
			ftype = TypeFormat
		}
		add(SeverityError, ftype, fmt.Sprintf("unparseable meeting entry %q", m.Invalid), nil)
	}

	seen := make(map[string]bool, len(sess.Meetings))
	for _, m := range sess.Meetings {
		if !m.Resolved() {
			continue
		}
		key := m.Day + "|" + m.Slot
		if seen[key] {
			add(SeverityError, TypeMeetingDuplicate,
				fmt.Sprintf("two meetings share %s %s", m.Day, m.Slot), nil)
			continue
		}
		seen[key] = true
	}
}

func (v *Validator) checkPlenaryPlacement(sess *project.Session, add addFunc) {
	plenaryRoom, hasPlenaryRoom := v.cache.PlenaryRoom()
	resolved := sess.ResolvedMeetings()

	if len(sess.Meetings) != 1 {
		add(SeverityError, TypeScheduling,
			fmt.Sprintf("plenary session must have exactly one meeting, has %d", len(sess.Meetings)), nil)
	}
	if !hasPlenaryRoom {
		return
	}
	for _, m := range resolved {
		if m.Room != plenaryRoom.Name {
			add(SeverityError, TypeScheduling, "Plenary session must be scheduled in plenary room",
				map[string]any{"room": m.Room, "plenary_room": plenaryRoom.Name})
		}
	}

	plenaryCap := v.cache.Project().Event.EffectivePlenaryCap()
	for _, m := range resolved {
		if m.Room != plenaryRoom.Name {
			continue
		}
		count := 0
		for _, other := range v.cache.Project().Sessions {
			if MeetsAt(other, project.Meeting{Room: plenaryRoom.Name, Day: m.Day, Slot: m.Slot}) {
				count++
			}
		}
		if count > plenaryCap {
			add(SeverityError, TypeScheduling,
				fmt.Sprintf("%d sessions share the plenary slot %s %s, cap is %d", count, m.Day, m.Slot, plenaryCap),
				map[string]any{"sessions": count, "cap": plenaryCap, "day": m.Day, "slot": m.Slot})
		}
	}
}

func (v *Validator) checkRoomUsage(sess *project.Session, add addFunc) {
	if plenaryRoom, ok := v.cache.PlenaryRoom(); ok && MeetsInRoom(sess, plenaryRoom.Name) {
		add(SeverityError, TypeScheduling, "session must not use the plenary room",
			map[string]any{"room": plenaryRoom.Name})
	}

	for _, m := range sess.ResolvedMeetings() {
		if m.Room == "" {
			continue
		}
		for _, other := range v.cache.Project().Sessions {
			if other == sess {
				continue
			}
			if MeetsAt(other, project.Meeting{Room: m.Room, Day: m.Day, Slot: m.Slot}) {
				add(SeverityError, TypeScheduling,
					fmt.Sprintf("collides with session #%d in %s at %s %s", other.Number, m.Room, m.Day, m.Slot),
					map[string]any{"other": other.Number, "room": m.Room, "day": m.Day, "slot": m.Slot})
			}
		}
	}
}

func (v *Validator) checkDeclaredConflictSanity(sess *project.Session, add addFunc) {
	if sess.Plenary && len(sess.Conflicts) > 0 {
		add(SeverityError, TypeConflict, "plenary sessions may not declare conflicts", nil)
	}
	for _, number := range sess.Conflicts {
		if number == sess.Number {
			add(SeverityError, TypeConflict, "session declares a conflict with itself", nil)
			continue
		}
		if _, ok := v.cache.Session(number); !ok {
			add(SeverityError, TypeConflict,
				fmt.Sprintf("declared conflict references unknown session #%d", number),
				map[string]any{"unknown": number})
		}
	}
}

func (v *Validator) checkRequestedTimes(sess *project.Session, add addFunc) {
	for _, pref := range sess.RequestedTimes {
		if !MeetsInParallelWith(sess, project.Meeting{Day: pref.Day, Slot: pref.Slot}) {
			add(SeverityWarning, TypeTime,
				fmt.Sprintf("requested time %s %s is not scheduled", pref.Day, pref.Slot),
				map[string]any{"day": pref.Day, "slot": pref.Slot})
		}
	}
	realized := len(sess.ResolvedMeetings())
	if realized > 0 && realized != sess.MeetingQuota() {
		add(SeverityWarning, TypeMeetings,
			fmt.Sprintf("%d meetings scheduled, %d requested", realized, sess.MeetingQuota()),
			map[string]any{"scheduled": realized, "requested": sess.MeetingQuota()})
	}
}

func (v *Validator) checkRequestedSlotCount(sess *project.Session, add addFunc) {
	if sess.RequestedMeetings > 0 && len(sess.RequestedTimes) > 0 && len(sess.RequestedTimes) < sess.RequestedMeetings {
		add(SeverityError, TypeSlots,
			fmt.Sprintf("only %d acceptable slots selected for %d requested meetings",
				len(sess.RequestedTimes), sess.RequestedMeetings), nil)
	}
}

func (v *Validator) checkCapacity(sess *project.Session, add addFunc) {
	need := sess.Capacity
	if sess.Attendance > need {
		need = sess.Attendance
	}
	if need <= 0 {
		return
	}
	warned := make(map[string]bool, 2)
	for _, m := range sess.ResolvedMeetings() {
		if m.Room == "" || warned[m.Room] {
			continue
		}
		room, ok := v.cache.Room(m.Room)
		if !ok {
			continue
		}
		if room.EffectiveCapacity() < need {
			warned[m.Room] = true
			add(SeverityWarning, TypeCapacity,
				fmt.Sprintf("room %s seats %d, session needs %d", m.Room, room.EffectiveCapacity(), need),
				map[string]any{"room": m.Room, "capacity": room.EffectiveCapacity(), "needed": need})
		}
	}
}

// checkRoomSwitch warns when meetings on immediately adjacent slots of the
// same day sit in different rooms, since attendees would have to move.
func (v *Validator) checkRoomSwitch(sess *project.Session, add addFunc) {
	resolved := sess.ResolvedMeetings()
	for i, a := range resolved {
		ia := v.cache.SlotIndex(a.Day, a.Slot)
		if ia < 0 {
			continue
		}
		for _, b := range resolved[i+1:] {
			if b.Day != a.Day {
				continue
			}
			ib := v.cache.SlotIndex(b.Day, b.Slot)
			if ib < 0 {
				continue
			}
			if (ib == ia+1 || ia == ib+1) && a.Room != b.Room && a.Room != "" && b.Room != "" {
				add(SeverityWarning, TypeRoom,
					fmt.Sprintf("adjacent meetings on %s switch from %s to %s", a.Day, a.Room, b.Room),
					map[string]any{"day": a.Day, "rooms": []string{a.Room, b.Room}})
			}
		}
	}
}

// checkChairGroupConflicts flags parallel sessions sharing a chair (breakout
// events) or a group (group-meeting events). Two plenary sessions are exempt.
func (v *Validator) checkChairGroupConflicts(sess *project.Session, add addFunc) {
	identities, ftype := sess.Chairs, TypeChair
	if v.cache.Project().Event.Type == project.EventGroups {
		identities, ftype = sess.Groups, TypeGroup
	}
	if len(identities) == 0 {
		return
	}

	for _, other := range v.cache.Project().Sessions {
		if other == sess {
			continue
		}
		if sess.Plenary && other.Plenary {
			continue
		}
		shared := sharedIdentity(identities, other, v.cache.Project().Event.Type)
		if shared == "" {
			continue
		}
		if len(other.Meetings) == 0 && strings.TrimSpace(other.MeetingSpec) != "" {
			// Tolerate peers whose meeting text never parsed; they cannot
			// contribute a parallel meeting, but leave a trail.
			v.logger.Debug().Int("session", sess.Number).Int("peer", other.Number).
				Msg("peer session has unparsed meeting text, skipping chair comparison")
			continue
		}
		for _, m := range sess.ResolvedMeetings() {
			if MeetsInParallelWith(other, project.Meeting{Day: m.Day, Slot: m.Slot}) {
				add(SeverityError, ftype,
					fmt.Sprintf("runs in parallel with session #%d sharing %s %q", other.Number, ftype, shared),
					map[string]any{"other": other.Number, "identity": shared, "day": m.Day, "slot": m.Slot})
				break
			}
		}
	}
}

func sharedIdentity(identities []string, other *project.Session, eventType project.EventType) string {
	theirs := other.Chairs
	if eventType == project.EventGroups {
		theirs = other.Groups
	}
	for _, mine := range identities {
		for _, t := range theirs {
			if strings.EqualFold(mine, t) {
				return mine
			}
		}
	}
	return ""
}

// checkDeclaredConflictRealized warns when a session runs in parallel with a
// session it declared as conflicting. For group meetings the declarations of
// every transitively related group apply.
func (v *Validator) checkDeclaredConflictRealized(sess *project.Session, add addFunc) {
	for _, number := range v.effectiveConflicts(sess) {
		other, ok := v.cache.Session(number)
		if !ok || other == sess {
			continue
		}
		for _, m := range sess.ResolvedMeetings() {
			if MeetsInParallelWith(other, project.Meeting{Day: m.Day, Slot: m.Slot}) {
				add(SeverityWarning, TypeConflict,
					fmt.Sprintf("scheduled in parallel with declared conflict #%d", other.Number),
					map[string]any{"other": other.Number, "day": m.Day, "slot": m.Slot})
				break
			}
		}
	}
}

// effectiveConflicts returns the session's declared conflicts, extended with
// the declarations of sessions reachable through shared group labels when
// the event is a group meeting.
func (v *Validator) effectiveConflicts(sess *project.Session) []int {
	if v.cache.Project().Event.Type != project.EventGroups || len(sess.Groups) == 0 {
		return sess.Conflicts
	}

	related := map[int]*project.Session{sess.Number: sess}
	groups := make(map[string]bool, len(sess.Groups))
	for _, g := range sess.Groups {
		groups[strings.ToLower(g)] = true
	}
	for changed := true; changed; {
		changed = false
		for _, other := range v.cache.Project().Sessions {
			if _, seen := related[other.Number]; seen {
				continue
			}
			for _, g := range other.Groups {
				if groups[strings.ToLower(g)] {
					related[other.Number] = other
					for _, og := range other.Groups {
						if !groups[strings.ToLower(og)] {
							groups[strings.ToLower(og)] = true
							changed = true
						}
					}
					changed = true
					break
				}
			}
		}
	}

	seen := make(map[int]bool, 8)
	var numbers []int
	for _, member := range related {
		for _, number := range member.Conflicts {
			if !seen[number] {
				seen[number] = true
				numbers = append(numbers, number)
			}
		}
	}
	sort.Ints(numbers)
	return numbers
}

// checkTrackConflicts warns when two sessions sharing a track meet in
// parallel. Plenary sessions are exempt.
func (v *Validator) checkTrackConflicts(sess *project.Session, add addFunc) {
	if sess.Plenary || len(sess.Tracks) == 0 {
		return
	}
	for _, other := range v.cache.Project().Sessions {
		if other == sess || other.Plenary {
			continue
		}
		track := ""
		for _, t := range sess.Tracks {
			if t != "" && other.HasTrack(t) {
				track = t
				break
			}
		}
		if track == "" {
			continue
		}
		for _, m := range sess.ResolvedMeetings() {
			if MeetsInParallelWith(other, project.Meeting{Day: m.Day, Slot: m.Slot}) {
				add(SeverityWarning, TypeTrack,
					fmt.Sprintf("meets in parallel with session #%d on track %q", other.Number, track),
					map[string]any{"other": other.Number, "track": track, "day": m.Day, "slot": m.Slot})
				break
			}
		}
	}
}

func (v *Validator) checkPlenaryParallel(sess *project.Session, add addFunc) {
	if sess.Plenary {
		return
	}
	for _, other := range v.cache.Project().Sessions {
		if !other.Plenary {
			continue
		}
		for _, m := range sess.ResolvedMeetings() {
			if MeetsInParallelWith(other, project.Meeting{Day: m.Day, Slot: m.Slot}) {
				add(SeverityWarning, TypePlenary,
					fmt.Sprintf("scheduled in parallel with plenary session #%d", other.Number),
					map[string]any{"plenary": other.Number, "day": m.Day, "slot": m.Slot})
				return
			}
		}
	}
}

func (v *Validator) checkChannelCollision(sess *project.Session, add addFunc) {
	if sess.Channel == "" {
		return
	}
	for _, other := range v.cache.Project().Sessions {
		if other == sess || other.Channel != sess.Channel {
			continue
		}
		if sess.Plenary && other.Plenary {
			continue
		}
		for _, m := range sess.ResolvedMeetings() {
			if MeetsInParallelWith(other, project.Meeting{Day: m.Day, Slot: m.Slot}) {
				add(SeverityError, TypeChannel,
					fmt.Sprintf("shares channel %q with session #%d in the same slot", sess.Channel, other.Number),
					map[string]any{"other": other.Number, "channel": sess.Channel})
				break
			}
		}
	}
}

func (v *Validator) checkUnscheduled(sess *project.Session, add addFunc) {
	if sess.BlockingError {
		return
	}
	if len(sess.ResolvedMeetings()) == 0 {
		add(SeverityCheck, TypeUnscheduled, "session has no scheduled meeting", nil)
	}
}
