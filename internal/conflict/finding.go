package conflict

import (
	"fmt"
	"sort"
	"strings"
)

// Severity ranks validation findings.
type Severity string

const (
	// SeverityError blocks further processing of the session in some contexts.
	SeverityError Severity = "error"
	// SeverityWarning is advisory.
	SeverityWarning Severity = "warning"
	// SeverityCheck marks something an operator should look at.
	SeverityCheck Severity = "check"
)

// Finding type labels.
const (
	TypeFormat           = "format"
	TypeMeetingFormat    = "meeting format"
	TypeMeetingDuplicate = "meeting duplicate"
	TypeScheduling       = "scheduling"
	TypeConflict         = "conflict"
	TypeTime             = "time"
	TypeMeetings         = "meetings"
	TypeSlots            = "slots"
	TypeCapacity         = "capacity"
	TypeRoom             = "room"
	TypeChair            = "chair"
	TypeGroup            = "group"
	TypeTrack            = "track"
	TypePlenary          = "plenary"
	TypeChannel          = "channel"
	TypeUnscheduled      = "unscheduled"
)

// formatTypes are structural findings about the meeting text itself, as
// opposed to findings about the placement.
var formatTypes = map[string]bool{
	TypeFormat:           true,
	TypeMeetingFormat:    true,
	TypeMeetingDuplicate: true,
}

// Finding is one validation record explaining what is wrong with a session's
// placement and why.
type Finding struct {
	Session  int            `json:"session"`
	Severity Severity       `json:"severity"`
	Type     string         `json:"type"`
	Messages []string       `json:"messages"`
	Details  map[string]any `json:"details,omitempty"`
}

// String renders a finding as a single report line.
func (f Finding) String() string {
	return fmt.Sprintf("%s %s #%d: %s", f.Severity, f.Type, f.Session, strings.Join(f.Messages, "; "))
}

// SchedulingRelevant reports whether the finding concerns the placement
// rather than the meeting text format.
func (f Finding) SchedulingRelevant() bool {
	return !formatTypes[f.Type]
}

// Summarize collapses one session's findings into a stable summary string
// used to detect whether stored validation results changed.
func Summarize(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}
	counts := make(map[string]int, len(findings))
	for _, f := range findings {
		counts[string(f.Severity)+":"+f.Type]++
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if n := counts[key]; n > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", key, n))
		} else {
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, ", ")
}
