// Package scheduler assigns sessions to (day, slot, room) resources with a
// track-based greedy search and progressive constraint relaxation. Runs are
// deterministic for a given seed and input snapshot.
package scheduler

import (
	"errors"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/example/session-scheduler/internal/conflict"
	"github.com/example/session-scheduler/internal/meeting"
	"github.com/example/session-scheduler/internal/project"
)

// ErrMeetingCountInvariant signals that a session retained a different
// number of meetings than the relaxation state machine asked for. This is a
// bug in the scheduler, not bad input, and it aborts the run.
var ErrMeetingCountInvariant = errors.New("scheduler: retained meeting count differs from requested count")

// Options parameterize one scheduling run.
type Options struct {
	// Seed is a decimal integer or free-form string. When empty a fresh
	// random seed is drawn; the effective seed is echoed in the result.
	Seed string
}

// Result reports what one run did.
type Result struct {
	Seed     int64
	Placed   []int
	Unplaced []int
	// Relaxed records, per session, the relaxations that were applied
	// before a placement was found or the ladder ran out.
	Relaxed map[int][]Relaxation
}

// Scheduler fills the grid for one project snapshot.
type Scheduler struct {
	cache  *conflict.Cache
	logger zerolog.Logger
}

// New wires a scheduler over a caller-owned lookup cache.
func New(cache *conflict.Cache, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cache:  cache,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run schedules every unprocessed session track by track, mutating sessions
// in place. Individual unsatisfiable sessions are left unplaced; only
// project-level problems and internal invariant violations return errors.
func (s *Scheduler) Run(opts Options) (Result, error) {
	p := s.cache.Project()
	if err := project.CheckProject(p); err != nil {
		return Result{}, err
	}

	seed, ok := ParseSeed(opts.Seed)
	if !ok {
		seed = NewSeed()
	}
	rng := newMWCRand(seed)

	result := Result{Seed: seed, Relaxed: make(map[int][]Relaxation)}
	logger := s.logger.With().Int64("seed", seed).Logger()

	order := make([]*project.Session, 0, len(p.Sessions))
	for _, sess := range p.Sessions {
		if sess.BlockingError {
			logger.Debug().Int("session", sess.Number).Msg("session excluded by blocking error")
			continue
		}
		order = append(order, sess)
	}
	rng.shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	occ := newOccupancy(p)
	processed := make(map[int]bool, len(order))

	for _, track := range trackOrder(p, order) {
		members := membersOf(track, order)
		trackRoom := s.chooseTrackRoom(track, members, occ)
		if trackRoom != "" {
			logger.Debug().Str("track", track).Str("room", trackRoom).Msg("track room elected")
		}
		for {
			sess := selectNext(members, processed)
			if sess == nil {
				break
			}
			// Mark up front so an unplaceable session cannot stall the loop.
			processed[sess.Number] = true

			applied, placed, err := s.placeSession(sess, track, trackRoom, occ, logger)
			if err != nil {
				return Result{}, err
			}
			if len(applied) > 0 {
				result.Relaxed[sess.Number] = applied
			}
			if placed {
				result.Placed = append(result.Placed, sess.Number)
			} else {
				result.Unplaced = append(result.Unplaced, sess.Number)
				logger.Info().Int("session", sess.Number).Msg("session left unscheduled")
			}
		}
	}

	sort.Ints(result.Placed)
	sort.Ints(result.Unplaced)
	return result, nil
}

// trackOrder yields the synthetic plenary track first when a plenary room
// exists, then real tracks in discovery order over the shuffled sessions,
// then the empty "no track" pool last.
func trackOrder(p *project.Project, order []*project.Session) []string {
	tracks := make([]string, 0, 8)
	if p.Event.PlenaryRoom != "" {
		tracks = append(tracks, project.PlenaryTrack)
	}
	seen := make(map[string]bool, 8)
	for _, sess := range order {
		for _, track := range sess.Tracks {
			if track == "" || track == project.PlenaryTrack || seen[track] {
				continue
			}
			seen[track] = true
			tracks = append(tracks, track)
		}
	}
	return append(tracks, "")
}

func membersOf(track string, order []*project.Session) []*project.Session {
	members := make([]*project.Session, 0, len(order))
	for _, sess := range order {
		switch track {
		case project.PlenaryTrack:
			if sess.Plenary {
				members = append(members, sess)
			}
		case "":
			if !sess.Plenary && len(sess.Tracks) == 0 {
				members = append(members, sess)
			}
		default:
			if !sess.Plenary && sess.HasTrack(track) {
				members = append(members, sess)
			}
		}
	}
	return members
}

// chooseTrackRoom elects the room a whole track should run in: large enough
// for every member and with enough free cells to hold all of the track's
// meetings without reuse. Rooms the members explicitly asked for win;
// availability breaks ties. Criteria are relaxed stepwise when nothing
// qualifies, down to "no shared room".
func (s *Scheduler) chooseTrackRoom(track string, members []*project.Session, occ *occupancy) string {
	p := s.cache.Project()
	switch track {
	case project.PlenaryTrack:
		return p.Event.PlenaryRoom
	case "":
		return ""
	}

	maxNeed, totalMeetings := 0, 0
	requested := make([]string, 0, 2)
	requestedSeen := make(map[string]bool, 2)
	for _, sess := range members {
		if need := seatNeed(sess); need > maxNeed {
			maxNeed = need
		}
		totalMeetings += sess.MeetingQuota()
		for _, name := range explicitRooms(sess) {
			if !requestedSeen[name] {
				requestedSeen[name] = true
				requested = append(requested, name)
			}
		}
	}

	candidates := make([]project.Room, 0, len(p.Rooms))
	for _, room := range p.Rooms {
		if room.VIP || room.Name == p.Event.PlenaryRoom {
			continue
		}
		candidates = append(candidates, room)
	}

	pick := func(requireCapacity bool) string {
		fits := make([]project.Room, 0, len(candidates))
		for _, room := range candidates {
			if requireCapacity && room.EffectiveCapacity() < maxNeed {
				continue
			}
			if len(p.Slots)-occ.roomUse[room.Name] < totalMeetings {
				continue
			}
			fits = append(fits, room)
		}
		if len(fits) == 0 {
			return ""
		}
		for _, name := range requested {
			for _, room := range fits {
				if room.Name == name {
					return name
				}
			}
		}
		sort.SliceStable(fits, func(i, j int) bool {
			if occ.roomUse[fits[i].Name] != occ.roomUse[fits[j].Name] {
				return occ.roomUse[fits[i].Name] < occ.roomUse[fits[j].Name]
			}
			return fits[i].Name < fits[j].Name
		})
		return fits[0].Name
	}

	if room := pick(true); room != "" {
		return room
	}
	return pick(false)
}

// selectNext picks the next unprocessed member: sessions with a pinned
// day or slot first, then the one needing the most meetings.
func selectNext(members []*project.Session, processed map[int]bool) *project.Session {
	var best *project.Session
	for _, sess := range members {
		if processed[sess.Number] {
			continue
		}
		if isPinned(sess) {
			return sess
		}
		if best == nil || sess.MeetingQuota() > best.MeetingQuota() {
			best = sess
		}
	}
	return best
}

func isPinned(sess *project.Session) bool {
	if sess.Day != "" || sess.Slot != "" {
		return true
	}
	for _, m := range sess.Meetings {
		if m.Resolved() {
			return true
		}
	}
	return false
}

func seatNeed(sess *project.Session) int {
	need := sess.Capacity
	if sess.Attendance > need {
		need = sess.Attendance
	}
	return need
}

func explicitRooms(sess *project.Session) []string {
	rooms := make([]string, 0, 2)
	if sess.Room != "" {
		rooms = append(rooms, sess.Room)
	}
	for _, m := range sess.Meetings {
		if !m.IsInvalid() && m.Room != "" {
			rooms = append(rooms, m.Room)
		}
	}
	return rooms
}

// placeSession walks the relaxation ladder until a full assignment exists or
// the ladder is exhausted. The returned relaxations are the ones that were
// active when the search ended.
func (s *Scheduler) placeSession(sess *project.Session, track, trackRoom string, occ *occupancy, logger zerolog.Logger) ([]Relaxation, bool, error) {
	cons := strictConstraints(sess)
	var applied []Relaxation

	step := 0
	for {
		chosen, ok := s.search(sess, track, trackRoom, cons, occ)
		if ok {
			if err := s.commit(sess, chosen, cons, occ); err != nil {
				return applied, false, err
			}
			return applied, true, nil
		}
		if step >= len(DefaultLadder) {
			return applied, false, nil
		}
		relaxation := DefaultLadder[step]
		if !cons.apply(relaxation) {
			return applied, false, nil
		}
		applied = append(applied, relaxation)
		logger.Debug().Int("session", sess.Number).Stringer("relaxation", relaxation).Msg("constraint relaxed")
		if relaxation != RelaxMeetingCount {
			// The meeting count step repeats; every other step advances.
			step++
		}
	}
}

// search looks for enough free, non-conflicting (room, day, slot) cells to
// complete the session's meeting quota under the active constraints. Greedy,
// no backtracking: the first acceptable cell per meeting is taken.
func (s *Scheduler) search(sess *project.Session, track, trackRoom string, cons constraints, occ *occupancy) ([]project.Meeting, bool) {
	existing := sess.ResolvedMeetings()
	if len(existing) >= cons.meetings {
		return nil, len(existing) == cons.meetings
	}
	needed := cons.meetings - len(existing)

	chosen := make([]project.Meeting, 0, needed)
	current := func() []project.Meeting {
		return append(append([]project.Meeting{}, existing...), chosen...)
	}

	for i := 0; i < needed; i++ {
		placedOne := false
		for _, room := range s.candidateRooms(sess, trackRoom, current(), cons) {
			for _, cell := range s.candidateSlots(sess, track, current(), cons, occ) {
				m := project.Meeting{Room: room.Name, Day: cell.day.Label, Slot: cell.slot.Start.String()}
				if s.acceptable(sess, room, cell, m, current(), cons, occ) {
					chosen = append(chosen, m)
					placedOne = true
					break
				}
			}
			if placedOne {
				break
			}
		}
		if !placedOne {
			return nil, false
		}
	}
	return chosen, true
}

// candidateRooms enumerates rooms in preference order: the explicitly
// assigned room, the track room, the room of the first placed meeting when
// rooms must match, then every eligible room ordered by capacity relative to
// the request (smallest sufficient first, then largest insufficient).
func (s *Scheduler) candidateRooms(sess *project.Session, trackRoom string, placed []project.Meeting, cons constraints) []project.Room {
	p := s.cache.Project()

	if sess.Plenary {
		if room, ok := s.cache.PlenaryRoom(); ok {
			return []project.Room{room}
		}
		return nil
	}

	ordered := make([]project.Room, 0, len(p.Rooms))
	seen := make(map[string]bool, len(p.Rooms))
	push := func(name string) {
		if name == "" || seen[name] {
			return
		}
		room, ok := s.cache.Room(name)
		if !ok || room.VIP || room.Name == p.Event.PlenaryRoom {
			return
		}
		seen[room.Name] = true
		ordered = append(ordered, room)
	}

	if sess.Room != "" {
		push(sess.Room)
	}
	if cons.sameRoom {
		for _, m := range placed {
			if m.Room != "" {
				push(m.Room)
				return ordered // rooms must match the first placed meeting
			}
		}
	}
	if cons.trackRoom {
		push(trackRoom)
	}

	need := seatNeed(sess)
	sufficient := make([]project.Room, 0, len(p.Rooms))
	insufficient := make([]project.Room, 0, len(p.Rooms))
	for _, room := range p.Rooms {
		if room.VIP || room.Name == p.Event.PlenaryRoom || seen[room.Name] {
			continue
		}
		if room.EffectiveCapacity() >= need {
			sufficient = append(sufficient, room)
		} else {
			insufficient = append(insufficient, room)
		}
	}
	sort.SliceStable(sufficient, func(i, j int) bool {
		if sufficient[i].EffectiveCapacity() != sufficient[j].EffectiveCapacity() {
			return sufficient[i].EffectiveCapacity() < sufficient[j].EffectiveCapacity()
		}
		return sufficient[i].Name < sufficient[j].Name
	})
	sort.SliceStable(insufficient, func(i, j int) bool {
		if insufficient[i].EffectiveCapacity() != insufficient[j].EffectiveCapacity() {
			return insufficient[i].EffectiveCapacity() > insufficient[j].EffectiveCapacity()
		}
		return insufficient[i].Name < insufficient[j].Name
	})
	ordered = append(ordered, sufficient...)
	if !cons.capacity {
		ordered = append(ordered, insufficient...)
	}
	return ordered
}

type cell struct {
	day  project.Day
	slot project.Slot
}

// candidateSlots enumerates (day, slot) pairs. Requested times are hard
// requirements until relaxed; pinned legacy day/slot fields filter the
// search. Plenary sessions prefer slots already holding plenary content;
// the untracked pool prefers the least used slots.
func (s *Scheduler) candidateSlots(sess *project.Session, track string, placed []project.Meeting, cons constraints, occ *occupancy) []cell {
	if cons.requestedTimes && len(sess.RequestedTimes) > 0 {
		cells := make([]cell, 0, len(sess.RequestedTimes))
		for _, pref := range sess.RequestedTimes {
			day, ok := s.cache.Day(pref.Day)
			if !ok {
				continue
			}
			if slot, ok := s.cache.Slot(day.Label, pref.Slot); ok {
				cells = append(cells, cell{day: day, slot: slot})
			}
		}
		return cells
	}

	var slotPin *project.ClockTime
	if sess.Slot != "" {
		if start, err := project.ParseClockTime(sess.Slot); err == nil {
			slotPin = &start
		}
	}

	cells := make([]cell, 0, len(s.cache.Project().Slots))
	for _, day := range s.cache.Days() {
		if sess.Day != "" {
			if pinned, ok := s.cache.Day(sess.Day); !ok || pinned.Label != day.Label {
				continue
			}
		}
		for _, slot := range s.cache.SlotsOn(day.Label) {
			if slotPin != nil && slot.Start != *slotPin {
				continue
			}
			cells = append(cells, cell{day: day, slot: slot})
		}
	}

	switch {
	case sess.Plenary:
		sort.SliceStable(cells, func(i, j int) bool {
			pi := occ.plenaryUse[cellKey(cells[i])]
			pj := occ.plenaryUse[cellKey(cells[j])]
			if pi != pj {
				return pi > pj // pack plenaries together
			}
			return cells[i].slot.Before(cells[j].slot)
		})
	case track == "":
		sort.SliceStable(cells, func(i, j int) bool {
			ui := occ.slotUse[cellKey(cells[i])]
			uj := occ.slotUse[cellKey(cells[j])]
			if ui != uj {
				return ui < uj // spread the untracked pool out
			}
			return cells[i].slot.Before(cells[j].slot)
		})
	}
	return cells
}

func cellKey(c cell) string {
	return c.day.Label + "|" + c.slot.Start.String()
}

// acceptable decides whether one candidate cell can host one meeting of the
// session under the active constraint record. Chair and group conflicts are
// always enforced; declared and track conflicts only until relaxed.
func (s *Scheduler) acceptable(sess *project.Session, room project.Room, c cell, candidate project.Meeting, placed []project.Meeting, cons constraints, occ *occupancy) bool {
	// The session must not already meet in this slot.
	for _, m := range placed {
		if m.Day == candidate.Day && m.Slot == candidate.Slot {
			return false
		}
	}
	if taken, ok := occ.cells[room.Name+"|"+candidate.Day+"|"+candidate.Slot]; ok && taken != sess.Number {
		if !sess.Plenary {
			return false
		}
	}

	if sess.Duration > 0 {
		if cons.exactDuration && c.slot.Minutes() != sess.Duration {
			return false
		}
		if !cons.exactDuration && cons.minDuration && c.slot.Minutes() < sess.Duration {
			return false
		}
	}
	if cons.capacity {
		if need := seatNeed(sess); need > 0 && room.EffectiveCapacity() < need {
			return false
		}
	}
	if cons.sameRoom {
		for _, m := range placed {
			if m.Room != "" && m.Room != room.Name {
				return false
			}
		}
	}

	if sess.Plenary {
		plenaryCap := s.cache.Project().Event.EffectivePlenaryCap()
		if occ.plenaryUse[cellKey(c)] >= plenaryCap {
			return false
		}
	}

	probe := project.Meeting{Day: candidate.Day, Slot: candidate.Slot}
	for _, other := range s.cache.Project().Sessions {
		if other == sess {
			continue
		}
		parallel := conflict.MeetsInParallelWith(other, probe)
		if !parallel {
			continue
		}
		if s.sharesChairOrGroup(sess, other) && !(sess.Plenary && other.Plenary) {
			return false
		}
		if cons.declaredConflicts && s.declaredConflict(sess, other) {
			return false
		}
		if cons.trackConflicts && !sess.Plenary && !other.Plenary && sharesTrack(sess, other) {
			return false
		}
	}
	return true
}

func (s *Scheduler) sharesChairOrGroup(sess, other *project.Session) bool {
	if s.cache.Project().Event.Type == project.EventGroups {
		for _, g := range sess.Groups {
			for _, og := range other.Groups {
				if g == og {
					return true
				}
			}
		}
		return false
	}
	for _, chair := range sess.Chairs {
		for _, oc := range other.Chairs {
			if chair == oc {
				return true
			}
		}
	}
	return false
}

func (s *Scheduler) declaredConflict(sess, other *project.Session) bool {
	for _, number := range sess.Conflicts {
		if number == other.Number {
			return true
		}
	}
	for _, number := range other.Conflicts {
		if number == sess.Number {
			return true
		}
	}
	return false
}

func sharesTrack(a, b *project.Session) bool {
	for _, t := range a.Tracks {
		if t != "" && b.HasTrack(t) {
			return true
		}
	}
	return false
}

// commit writes the found assignment back onto the session, serializes it
// into the legacy or multi-meeting fields depending on event type, and
// records the occupancy so later sessions see updated availability.
func (s *Scheduler) commit(sess *project.Session, chosen []project.Meeting, cons constraints, occ *occupancy) error {
	if len(chosen) == 0 {
		return nil // already fully placed, nothing to write
	}
	p := s.cache.Project()

	kept := make([]project.Meeting, 0, cons.meetings)
	kept = append(kept, sess.ResolvedMeetings()...)
	kept = append(kept, chosen...)
	if len(kept) != cons.meetings {
		return ErrMeetingCountInvariant
	}
	sess.Meetings = kept

	if p.Event.AllowMultipleMeetings {
		room, spec := meeting.SerializeSessionMeetings(kept, p.Slots, p.Rooms)
		sess.Room, sess.MeetingSpec = room, spec
		sess.Day, sess.Slot = "", ""
	} else {
		first := kept[0]
		sess.Room, sess.Day, sess.Slot = first.Room, first.Day, first.Slot
		sess.MeetingSpec = ""
	}
	sess.Updated = true

	occ.add(sess, chosen)
	return nil
}

// occupancy tracks which cells are booked so candidate probing is cheap.
type occupancy struct {
	cells      map[string]int // room|day|slot -> session number
	slotUse    map[string]int // day|slot -> meetings in the slot
	roomUse    map[string]int // room -> booked cells
	plenaryUse map[string]int // day|slot -> plenary sessions in the slot
}

func newOccupancy(p *project.Project) *occupancy {
	occ := &occupancy{
		cells:      make(map[string]int),
		slotUse:    make(map[string]int),
		roomUse:    make(map[string]int),
		plenaryUse: make(map[string]int),
	}
	for _, sess := range p.Sessions {
		occ.add(sess, sess.ResolvedMeetings())
	}
	return occ
}

func (o *occupancy) add(sess *project.Session, meetings []project.Meeting) {
	for _, m := range meetings {
		if !m.Resolved() {
			continue
		}
		key := m.Day + "|" + m.Slot
		o.slotUse[key]++
		if sess.Plenary {
			o.plenaryUse[key]++
		}
		if m.Room != "" {
			o.cells[m.Room+"|"+key] = sess.Number
			o.roomUse[m.Room]++
		}
	}
}

// SeedString formats a seed the way run results and logs present it.
func SeedString(seed int64) string {
	return strconv.FormatInt(seed, 10)
}
