package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation             = "23505"
	codeCheckViolation              = "23514"
	codeExclusionViolation          = "23P01"
	codeInvalidTextRepresentation   = "22P02"
	scheduleTimeOrderConstraintName = "schedule_entries_time_order"
)

// MapError translates store failures into the domain sentinels. Errors it does
// not recognise are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", types.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return types.NewValidationError(duplicateField(pgErr), "Duplicate field value entered")
	case codeExclusionViolation:
		return fmt.Errorf("%w: %s", types.ErrConflict, pgErr.ConstraintName)
	case codeCheckViolation:
		if pgErr.ConstraintName == scheduleTimeOrderConstraintName {
			return types.NewValidationError("endTime", "End time must be after start time")
		}
		return types.NewValidationError(pgErr.ColumnName, "Invalid field value")
	case codeInvalidTextRepresentation:
		return fmt.Errorf("%w: %s", types.ErrNotFound, pgErr.Message)
	}
	return err
}

func duplicateField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if pgErr.ConstraintName == "users_email_key" {
		return "email"
	}
	return pgErr.ConstraintName
}
