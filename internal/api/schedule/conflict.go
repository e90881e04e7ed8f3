package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

// ParseClock converts an HH:MM wall-clock time into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !types.ClockPattern.MatchString(s) {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hh, mm, _ := strings.Cut(s, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as zero-padded HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Interval is a half-open [Start, End) span in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// NewInterval parses both ends and rejects spans where end <= start.
func NewInterval(start, end string) (Interval, error) {
	verr := &types.ValidationError{}
	s, err := ParseClock(start)
	if err != nil {
		verr.Add("startTime", "Please add a valid time format (HH:MM)")
	}
	e, err := ParseClock(end)
	if err != nil {
		verr.Add("endTime", "Please add a valid time format (HH:MM)")
	}
	if err := verr.OrNil(); err != nil {
		return Interval{}, err
	}
	if e <= s {
		return Interval{}, types.NewValidationError("endTime", "End time must be after start time")
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open intervals share any minute. Touching
// endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Conflicts reports whether candidate overlaps any of existing. Callers leave
// the candidate's own entry out of existing.
func Conflicts(candidate Interval, existing []Interval) bool {
	for _, other := range existing {
		if candidate.Overlaps(other) {
			return true
		}
	}
	return false
}

func intervalOf(e types.ScheduleEntry) (Interval, error) {
	return NewInterval(e.StartTime, e.EndTime)
}
