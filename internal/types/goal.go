package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type GoalStatus string

const (
	GoalStatusNotStarted GoalStatus = "not-started"
	GoalStatusInProgress GoalStatus = "in-progress"
	GoalStatusCompleted  GoalStatus = "completed"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusNotStarted, GoalStatusInProgress, GoalStatusCompleted:
		return true
	}
	return false
}

type Goal struct {
	ID          uuid.UUID  `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  time.Time  `json:"targetDate"`
	Status      GoalStatus `json:"status"`
	Owner       uuid.UUID  `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CreateGoalRequest is the body of POST /goals. User is accepted and ignored;
// the owner always comes from the authenticated principal.
type CreateGoalRequest struct {
	Title       string      `json:"title" validate:"required,max=100"`
	Description string      `json:"description" validate:"required,max=500"`
	TargetDate  string      `json:"targetDate" validate:"required,calendardate"`
	Status      *GoalStatus `json:"status,omitempty" validate:"omitnil,goalstatus"`
	User        *string     `json:"user,omitempty"`
}

// UpdateGoalRequest is the body of PUT /goals/{id}; nil fields are left untouched.
type UpdateGoalRequest struct {
	Title       *string     `json:"title,omitempty" validate:"omitnil,required,max=100"`
	Description *string     `json:"description,omitempty" validate:"omitnil,required,max=500"`
	TargetDate  *string     `json:"targetDate,omitempty" validate:"omitnil,required,calendardate"`
	Status      *GoalStatus `json:"status,omitempty" validate:"omitnil,goalstatus"`
	User        *string     `json:"user,omitempty"`
}

// TrimSpace trims the free-text fields in place.
func (r *UpdateGoalRequest) TrimSpace() {
	trimPtr(r.Title)
	trimPtr(r.Description)
}

// GoalPatch holds the columns an update writes; nil fields keep the stored value.
type GoalPatch struct {
	Title       *string
	Description *string
	TargetDate  *time.Time
	Status      *GoalStatus
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
