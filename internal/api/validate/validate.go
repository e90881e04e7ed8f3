// Package validate wraps go-playground/validator with the field rules and
// messages used by the goal, schedule and auth request bodies.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// messages is keyed by "<json field>.<tag>".
var messages = map[string]string{
	"title.required":          "Please add a title",
	"title.max":               "Title cannot be more than 100 characters",
	"description.required":    "Please add a description",
	"description.max":         "Description cannot be more than 500 characters",
	"targetDate.required":     "Please add a target date",
	"targetDate.calendardate": "Please add a valid target date",
	"date.required":           "Please add a date",
	"date.calendardate":       "Please add a valid date",
	"startTime.required":      "Please add a start time",
	"startTime.hhmm":          "Please add a valid time format (HH:MM)",
	"endTime.required":        "Please add an end time",
	"endTime.hhmm":            "Please add a valid time format (HH:MM)",
	"notes.max":               "Notes cannot be more than 500 characters",
	"status.goalstatus":       "Status must be not-started, in-progress, or completed",
	"name.required":           "Name is required",
	"name.max":                "Name cannot be more than 100 characters",
	"email.required":          "Please include a valid email",
	"email.email":             "Please include a valid email",
	"password.required":       "Password is required",
	"password.min":            "Please enter a password with 6 or more characters",
}

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return types.ClockPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
			_, err := types.ParseDate(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("goalstatus", func(fl validator.FieldLevel) bool {
			return types.GoalStatus(fl.Field().String()).Valid()
		})
		instance = v
	})
	return instance
}

// Struct validates s and converts failures into a *types.ValidationError with
// one message per offending field.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	verr := &types.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), Message(fe.Field(), fe.Tag()))
	}
	return verr
}

// Message returns the user-facing message for a field/rule pair.
func Message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}
