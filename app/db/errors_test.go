package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

func TestMapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("no rows", func(t *testing.T) {
		assert.ErrorIs(t, MapError(pgx.ErrNoRows), types.ErrNotFound)
	})

	t.Run("unique violation", func(t *testing.T) {
		err := MapError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Duplicate field value entered", verr.Fields[0].Message)
		assert.Equal(t, "email", verr.Fields[0].Field)
	})

	t.Run("exclusion violation", func(t *testing.T) {
		err := MapError(&pgconn.PgError{Code: "23P01", ConstraintName: "schedule_entries_no_overlap"})
		assert.ErrorIs(t, err, types.ErrConflict)
	})

	t.Run("time order check", func(t *testing.T) {
		err := MapError(&pgconn.PgError{Code: "23514", ConstraintName: "schedule_entries_time_order"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "endTime", verr.Fields[0].Field)
	})

	t.Run("bad id text", func(t *testing.T) {
		err := MapError(&pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("unknown passes through", func(t *testing.T) {
		orig := errors.New("connection reset")
		assert.Same(t, orig, MapError(orig))

		pgErr := &pgconn.PgError{Code: "53300"}
		assert.Equal(t, error(pgErr), MapError(pgErr))
	})
}
