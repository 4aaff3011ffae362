// Package conflict is the predicate layer deciding whether meetings may
// coexist, and the validation battery that explains every violation of an
// assignment. All checks are pure over a project snapshot.
package conflict

import (
	"github.com/example/session-scheduler/internal/project"
)

// Cache memoizes room, day, slot and session lookups against one project
// snapshot. The cache is owned by the caller; Reset must be called whenever
// the snapshot's rooms, slots or session set change.
type Cache struct {
	project    *project.Project
	days       []project.Day
	dayByLabel map[string]project.Day
	slotsByDay map[string][]project.Slot
	rooms      map[string]project.Room
	sessions   map[int]*project.Session
}

// NewCache builds an empty cache over the given snapshot.
func NewCache(p *project.Project) *Cache {
	return &Cache{project: p}
}

// Project returns the snapshot the cache was built over.
func (c *Cache) Project() *project.Project {
	return c.project
}

// Reset drops every memoized lookup. Exposed for test isolation and for
// callers that mutate the snapshot's definition lists.
func (c *Cache) Reset() {
	c.days = nil
	c.dayByLabel = nil
	c.slotsByDay = nil
	c.rooms = nil
	c.sessions = nil
}

// Days returns the ordered day list derived from the slot list.
func (c *Cache) Days() []project.Day {
	if c.days == nil {
		c.days = project.ResolveDays(c.project.Slots)
	}
	return c.days
}

// Day resolves a day label.
func (c *Cache) Day(label string) (project.Day, bool) {
	if c.dayByLabel == nil {
		c.dayByLabel = make(map[string]project.Day, len(c.Days()))
		for _, day := range c.Days() {
			c.dayByLabel[day.Label] = day
		}
	}
	day, ok := c.dayByLabel[label]
	if !ok {
		return project.MatchDay(c.Days(), label)
	}
	return day, true
}

// SlotsOn returns the ordered slots of the named day.
func (c *Cache) SlotsOn(label string) []project.Slot {
	if c.slotsByDay == nil {
		c.slotsByDay = make(map[string][]project.Slot, len(c.Days()))
		for _, day := range c.Days() {
			c.slotsByDay[day.Label] = project.SlotsOn(c.project.Slots, day)
		}
	}
	return c.slotsByDay[label]
}

// Slot resolves a (day label, slot start) reference.
func (c *Cache) Slot(label, start string) (project.Slot, bool) {
	startTime, err := project.ParseClockTime(start)
	if err != nil {
		return project.Slot{}, false
	}
	for _, slot := range c.SlotsOn(label) {
		if slot.Start == startTime {
			return slot, true
		}
	}
	return project.Slot{}, false
}

// SlotIndex returns the position of a slot within its day, or -1.
func (c *Cache) SlotIndex(label, start string) int {
	startTime, err := project.ParseClockTime(start)
	if err != nil {
		return -1
	}
	for i, slot := range c.SlotsOn(label) {
		if slot.Start == startTime {
			return i
		}
	}
	return -1
}

// Room resolves a room by name or label.
func (c *Cache) Room(name string) (project.Room, bool) {
	if c.rooms == nil {
		c.rooms = make(map[string]project.Room, len(c.project.Rooms))
		for _, room := range c.project.Rooms {
			c.rooms[room.Name] = room
		}
	}
	if room, ok := c.rooms[name]; ok {
		return room, true
	}
	return project.MatchRoom(c.project.Rooms, name)
}

// Session resolves a session by number.
func (c *Cache) Session(number int) (*project.Session, bool) {
	if c.sessions == nil {
		c.sessions = make(map[int]*project.Session, len(c.project.Sessions))
		for _, sess := range c.project.Sessions {
			c.sessions[sess.Number] = sess
		}
	}
	sess, ok := c.sessions[number]
	return sess, ok
}

// PlenaryRoom returns the event's plenary room definition when configured.
func (c *Cache) PlenaryRoom() (project.Room, bool) {
	if c.project.Event.PlenaryRoom == "" {
		return project.Room{}, false
	}
	return c.Room(c.project.Event.PlenaryRoom)
}
