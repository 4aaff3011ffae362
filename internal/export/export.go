// Package export renders a scheduled grid into interchange formats: a flat
// CSV for spreadsheets and a calendar-entry JSON feed. Adjacent meetings of
// a session are merged into single spanning rows.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/example/session-scheduler/internal/meeting"
	"github.com/example/session-scheduler/internal/project"
)

// GridRow is one CSV line of the exported grid.
type GridRow struct {
	Session int    `csv:"session"`
	Title   string `csv:"title"`
	Track   string `csv:"track"`
	Room    string `csv:"room"`
	Day     string `csv:"day"`
	Start   string `csv:"start"`
	End     string `csv:"end"`
	Chairs  string `csv:"chairs"`
}

// GridRows flattens the project into CSV rows, one per grouped meeting,
// ordered by day, start time, room, then session number.
func GridRows(p *project.Project) []*GridRow {
	dayIndex := make(map[string]int)
	for i, day := range project.ResolveDays(p.Slots) {
		dayIndex[day.Label] = i
	}

	var rows []*GridRow
	for _, sess := range p.Sessions {
		track := ""
		if len(sess.Tracks) > 0 {
			track = sess.Tracks[0]
		}
		for _, grouped := range meeting.GroupSessionMeetings(sess, p.Slots) {
			rows = append(rows, &GridRow{
				Session: sess.Number,
				Title:   sess.Title,
				Track:   track,
				Room:    grouped.Room,
				Day:     grouped.Day,
				Start:   grouped.Start.String(),
				End:     grouped.End.String(),
				Chairs:  joinNames(sess.Chairs),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dayIndex[rows[i].Day] != dayIndex[rows[j].Day] {
			return dayIndex[rows[i].Day] < dayIndex[rows[j].Day]
		}
		if rows[i].Start != rows[j].Start {
			return rows[i].Start < rows[j].Start
		}
		if rows[i].Room != rows[j].Room {
			return rows[i].Room < rows[j].Room
		}
		return rows[i].Session < rows[j].Session
	})
	return rows
}

// WriteGridCSV writes the grid to a CSV file at path.
func WriteGridCSV(path string, p *project.Project) error {
	rows := GridRows(p)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("write grid csv: %w", err)
	}
	return nil
}

// CalendarEntry is one meeting block in the calendar feed. Start and End
// are absolute timestamps derived from the slot's date and clock times.
type CalendarEntry struct {
	Session int       `json:"session"`
	Title   string    `json:"title"`
	Room    string    `json:"room"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Channel string    `json:"channel,omitempty"`
}

// CalendarEntries builds the calendar feed from the scheduled grid.
func CalendarEntries(p *project.Project) []CalendarEntry {
	dates := make(map[string]time.Time)
	for _, day := range project.ResolveDays(p.Slots) {
		dates[day.Label] = day.Date
	}

	var entries []CalendarEntry
	for _, sess := range p.Sessions {
		for _, grouped := range meeting.GroupSessionMeetings(sess, p.Slots) {
			date, ok := dates[grouped.Day]
			if !ok {
				continue
			}
			entries = append(entries, CalendarEntry{
				Session: sess.Number,
				Title:   sess.Title,
				Room:    grouped.Room,
				Start:   atClock(date, grouped.Start),
				End:     atClock(date, grouped.End),
				Channel: sess.Channel,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Start.Equal(entries[j].Start) {
			return entries[i].Start.Before(entries[j].Start)
		}
		if entries[i].Room != entries[j].Room {
			return entries[i].Room < entries[j].Room
		}
		return entries[i].Session < entries[j].Session
	})
	return entries
}

// WriteCalendarJSON writes the calendar feed to a JSON file at path.
func WriteCalendarJSON(path string, p *project.Project) error {
	data, err := json.MarshalIndent(CalendarEntries(p), "", "  ")
	if err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func atClock(date time.Time, t project.ClockTime) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).
		Add(time.Duration(t) * time.Minute)
}

func joinNames(names []string) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += "; "
		}
		out += name
	}
	return out
}
