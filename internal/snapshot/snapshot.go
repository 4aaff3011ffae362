// Package snapshot reads and writes project files. The same document model
// is served as JSON or YAML, chosen by file extension, and round-trips
// without loss: decoding a written snapshot yields an equivalent project.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/session-scheduler/internal/project"
)

const dateLayout = "2006-01-02"

// Document is the on-disk shape of a project.
type Document struct {
	Event    EventDoc     `json:"event" yaml:"event"`
	Rooms    []RoomDoc    `json:"rooms" yaml:"rooms"`
	Slots    []SlotDoc    `json:"slots" yaml:"slots"`
	Sessions []SessionDoc `json:"sessions" yaml:"sessions"`
}

type EventDoc struct {
	PlenaryRoom           string `json:"plenary_room,omitempty" yaml:"plenary_room,omitempty"`
	PlenaryCap            int    `json:"plenary_cap,omitempty" yaml:"plenary_cap,omitempty"`
	Type                  string `json:"type,omitempty" yaml:"type,omitempty"`
	AllowMultipleMeetings bool   `json:"allow_multiple_meetings,omitempty" yaml:"allow_multiple_meetings,omitempty"`
}

type RoomDoc struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Capacity int    `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	VIP      bool   `json:"vip,omitempty" yaml:"vip,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

type SlotDoc struct {
	Date  string `json:"date" yaml:"date"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type SessionDoc struct {
	Number         int       `json:"number" yaml:"number"`
	Title          string    `json:"title,omitempty" yaml:"title,omitempty"`
	Tracks         []string  `json:"tracks,omitempty" yaml:"tracks,omitempty"`
	Room           string    `json:"room,omitempty" yaml:"room,omitempty"`
	Day            string    `json:"day,omitempty" yaml:"day,omitempty"`
	Slot           string    `json:"slot,omitempty" yaml:"slot,omitempty"`
	Meetings       string    `json:"meetings,omitempty" yaml:"meetings,omitempty"`
	Capacity       int       `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Attendance     int       `json:"attendance,omitempty" yaml:"attendance,omitempty"`
	Duration       int       `json:"duration,omitempty" yaml:"duration,omitempty"`
	RequestedTimes []TimeDoc `json:"requested_times,omitempty" yaml:"requested_times,omitempty"`
	Conflicts      []int     `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Chairs         []string  `json:"chairs,omitempty" yaml:"chairs,omitempty"`
	Groups         []string  `json:"groups,omitempty" yaml:"groups,omitempty"`
	Plenary        bool      `json:"plenary,omitempty" yaml:"plenary,omitempty"`
	Channel        string    `json:"channel,omitempty" yaml:"channel,omitempty"`
	Note           string    `json:"note,omitempty" yaml:"note,omitempty"`
	BlockingError  bool      `json:"blocking_error,omitempty" yaml:"blocking_error,omitempty"`
	Summary        string    `json:"summary,omitempty" yaml:"summary,omitempty"`
}

type TimeDoc struct {
	Day  string `json:"day" yaml:"day"`
	Slot string `json:"slot" yaml:"slot"`
}

// FromProject converts an in-memory project into its document form.
func FromProject(p *project.Project) Document {
	doc := Document{
		Event: EventDoc{
			PlenaryRoom:           p.Event.PlenaryRoom,
			PlenaryCap:            p.Event.PlenaryCap,
			Type:                  string(p.Event.Type),
			AllowMultipleMeetings: p.Event.AllowMultipleMeetings,
		},
	}
	for _, room := range p.Rooms {
		doc.Rooms = append(doc.Rooms, RoomDoc{
			Name:     room.Name,
			Label:    room.Label,
			Capacity: room.Capacity,
			VIP:      room.VIP,
			Location: room.Location,
		})
	}
	for _, slot := range p.Slots {
		doc.Slots = append(doc.Slots, SlotDoc{
			Date:  slot.Date.Format(dateLayout),
			Start: slot.Start.String(),
			End:   slot.End.String(),
		})
	}
	for _, sess := range p.Sessions {
		sd := SessionDoc{
			Number:        sess.Number,
			Title:         sess.Title,
			Tracks:        sess.Tracks,
			Room:          sess.Room,
			Day:           sess.Day,
			Slot:          sess.Slot,
			Meetings:      sess.MeetingSpec,
			Capacity:      sess.Capacity,
			Attendance:    sess.Attendance,
			Duration:      sess.Duration,
			Conflicts:     sess.Conflicts,
			Chairs:        sess.Chairs,
			Groups:        sess.Groups,
			Plenary:       sess.Plenary,
			Channel:       sess.Channel,
			Note:          sess.Note,
			BlockingError: sess.BlockingError,
			Summary:       sess.ValidationSummary,
		}
		for _, pref := range sess.RequestedTimes {
			sd.RequestedTimes = append(sd.RequestedTimes, TimeDoc{Day: pref.Day, Slot: pref.Slot})
		}
		doc.Sessions = append(doc.Sessions, sd)
	}
	return doc
}

// ToProject converts a document into the in-memory model. Meeting text is
// carried as-is; callers parse it once the definition lists are in place.
func ToProject(doc Document) (*project.Project, error) {
	p := &project.Project{
		Event: project.Event{
			PlenaryRoom:           doc.Event.PlenaryRoom,
			PlenaryCap:            doc.Event.PlenaryCap,
			Type:                  project.EventType(doc.Event.Type),
			AllowMultipleMeetings: doc.Event.AllowMultipleMeetings,
		},
	}
	for _, rd := range doc.Rooms {
		p.Rooms = append(p.Rooms, project.Room{
			Name:     rd.Name,
			Label:    rd.Label,
			Capacity: rd.Capacity,
			VIP:      rd.VIP,
			Location: rd.Location,
		})
	}
	for i, sd := range doc.Slots {
		date, err := time.Parse(dateLayout, sd.Date)
		if err != nil {
			return nil, fmt.Errorf("slot %d: bad date %q: %w", i, sd.Date, err)
		}
		start, err := project.ParseClockTime(sd.Start)
		if err != nil {
			return nil, fmt.Errorf("slot %d: bad start %q: %w", i, sd.Start, err)
		}
		end, err := project.ParseClockTime(sd.End)
		if err != nil {
			return nil, fmt.Errorf("slot %d: bad end %q: %w", i, sd.End, err)
		}
		p.Slots = append(p.Slots, project.Slot{Date: date, Start: start, End: end})
	}
	for _, sd := range doc.Sessions {
		sess := &project.Session{
			Number:            sd.Number,
			Title:             sd.Title,
			Tracks:            sd.Tracks,
			Room:              sd.Room,
			Day:               sd.Day,
			Slot:              sd.Slot,
			MeetingSpec:       sd.Meetings,
			Capacity:          sd.Capacity,
			Attendance:        sd.Attendance,
			Duration:          sd.Duration,
			Conflicts:         sd.Conflicts,
			Chairs:            sd.Chairs,
			Groups:            sd.Groups,
			Plenary:           sd.Plenary,
			Channel:           sd.Channel,
			Note:              sd.Note,
			BlockingError:     sd.BlockingError,
			ValidationSummary: sd.Summary,
		}
		for _, pref := range sd.RequestedTimes {
			sess.RequestedTimes = append(sess.RequestedTimes, project.TimePreference{Day: pref.Day, Slot: pref.Slot})
		}
		p.Sessions = append(p.Sessions, sess)
	}
	p.SortSlots()
	return p, nil
}

// Marshal renders the project as indented JSON. Used by the run archive so
// replayed runs start from the exact snapshot the original run saw.
func Marshal(p *project.Project) ([]byte, error) {
	return json.MarshalIndent(FromProject(p), "", "  ")
}

// Unmarshal parses a JSON snapshot produced by Marshal.
func Unmarshal(data []byte) (*project.Project, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return ToProject(doc)
}

// ReadFile loads a project from a JSON or YAML file, chosen by extension.
func ReadFile(path string) (*project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc Document
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
	}
	return ToProject(doc)
}

// WriteFile stores a project as JSON or YAML, chosen by extension.
func WriteFile(path string, p *project.Project) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(FromProject(p))
	} else {
		data, err = json.MarshalIndent(FromProject(p), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
