// Package filters builds the owner and date-window predicates used to list
// goals and schedule entries.
package filters

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

// DateRange is a window over a DATE column. From is always inclusive; To is
// inclusive when Inclusive is set and exclusive otherwise.
type DateRange struct {
	From      time.Time
	To        time.Time
	Inclusive bool
}

// Contains reports whether the calendar day d falls inside the window.
func (r DateRange) Contains(d time.Time) bool {
	if d.Before(r.From) {
		return false
	}
	if r.Inclusive {
		return !d.After(r.To)
	}
	return d.Before(r.To)
}

// Predicate is the query filter for a listing: always constrained to an owner,
// optionally to a date window.
type Predicate struct {
	Owner uuid.UUID
	Range *DateRange
}

// SQL renders the predicate as a WHERE fragment against dateColumn, numbering
// placeholders from firstArg.
func (p Predicate) SQL(dateColumn string, firstArg int) (string, []any) {
	clause := fmt.Sprintf("user_id = $%d", firstArg)
	args := []any{p.Owner}
	if p.Range == nil {
		return clause, args
	}
	upper := "<"
	if p.Range.Inclusive {
		upper = "<="
	}
	clause += fmt.Sprintf(" AND %s >= $%d AND %s %s $%d", dateColumn, firstArg+1, dateColumn, upper, firstArg+2)
	args = append(args, p.Range.From, p.Range.To)
	return clause, args
}

// FirstDayOfMonth returns midnight UTC on the first of month (1-12) in year.
func FirstDayOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth is day 0 of the following month, which time.Date normalises
// to the real last calendar day, leap years included.
func LastDayOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

// BuildGoalFilter builds the goal listing predicate. With month and year the
// window is that whole month, with only year the whole year; a month without a
// year is ignored.
func BuildGoalFilter(owner uuid.UUID, month, year *int) (Predicate, error) {
	p := Predicate{Owner: owner}
	if year == nil {
		return p, nil
	}
	verr := &types.ValidationError{}
	if *year < 1 || *year > 9999 {
		verr.Add("year", "Year must be between 1 and 9999")
	}
	if month != nil && (*month < 1 || *month > 12) {
		verr.Add("month", "Month must be between 1 and 12")
	}
	if err := verr.OrNil(); err != nil {
		return Predicate{}, err
	}

	if month != nil {
		p.Range = &DateRange{
			From:      FirstDayOfMonth(*year, *month),
			To:        LastDayOfMonth(*year, *month),
			Inclusive: true,
		}
		return p, nil
	}
	p.Range = &DateRange{
		From:      time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(*year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Inclusive: true,
	}
	return p, nil
}

// BuildScheduleDateFilter builds the schedule listing predicate. A date selects
// the half-open one-day window starting at that day's midnight.
func BuildScheduleDateFilter(owner uuid.UUID, date *time.Time) Predicate {
	p := Predicate{Owner: owner}
	if date == nil {
		return p
	}
	start := types.StartOfDay(*date)
	p.Range = &DateRange{From: start, To: start.AddDate(0, 0, 1)}
	return p
}

// ParseGoalQuery reads the optional month and year query parameters.
func ParseGoalQuery(q url.Values) (month, year *int, err error) {
	verr := &types.ValidationError{}
	month = parseIntParam(q, "month", verr)
	year = parseIntParam(q, "year", verr)
	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}
	return month, year, nil
}

// ParseScheduleQuery reads the optional date query parameter.
func ParseScheduleQuery(q url.Values) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get("date"))
	if raw == "" {
		return nil, nil
	}
	d, err := types.ParseDate(raw)
	if err != nil {
		return nil, types.NewValidationError("date", "Please add a valid date")
	}
	return &d, nil
}

func parseIntParam(q url.Values, name string, verr *types.ValidationError) *int {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(name, fmt.Sprintf("%s must be a number", name))
		return nil
	}
	return &v
}
