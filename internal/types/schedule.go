package types

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ClockPattern matches a 24-hour HH:MM wall-clock time; the hour may be one digit.
var ClockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

type ScheduleEntry struct {
	ID        uuid.UUID `json:"_id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Notes     string    `json:"notes,omitempty"`
	Owner     uuid.UUID `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateScheduleEntryRequest struct {
	Title     string  `json:"title" validate:"required,max=100"`
	Date      string  `json:"date" validate:"required,calendardate"`
	StartTime string  `json:"startTime" validate:"required,hhmm"`
	EndTime   string  `json:"endTime" validate:"required,hhmm"`
	Notes     *string `json:"notes,omitempty" validate:"omitnil,max=500"`
	User      *string `json:"user,omitempty"`
}

type UpdateScheduleEntryRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitnil,required,max=100"`
	Date      *string `json:"date,omitempty" validate:"omitnil,required,calendardate"`
	StartTime *string `json:"startTime,omitempty" validate:"omitnil,required,hhmm"`
	EndTime   *string `json:"endTime,omitempty" validate:"omitnil,required,hhmm"`
	Notes     *string `json:"notes,omitempty" validate:"omitnil,max=500"`
	User      *string `json:"user,omitempty"`
}

// TrimSpace trims the free-text fields in place.
func (r *UpdateScheduleEntryRequest) TrimSpace() {
	trimPtr(r.Title)
	trimPtr(r.Notes)
}

// TouchesTime reports whether the update moves the entry in time.
func (r UpdateScheduleEntryRequest) TouchesTime() bool {
	return r.Date != nil || r.StartTime != nil || r.EndTime != nil
}

// ScheduleEntryPatch holds the columns an update writes. Nil fields keep the
// stored value. The time fields are set together or not at all.
type ScheduleEntryPatch struct {
	Title       *string
	Notes       *string
	Date        *time.Time
	StartTime   *string
	EndTime     *string
	StartMinute *int
	EndMinute   *int
}
