package filters

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

func intPtr(v int) *int { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildGoalFilter(t *testing.T) {
	owner := uuid.New()

	t.Run("month and year in a leap year", func(t *testing.T) {
		p, err := BuildGoalFilter(owner, intPtr(2), intPtr(2024))
		require.NoError(t, err)
		require.NotNil(t, p.Range)
		assert.Equal(t, owner, p.Owner)
		assert.Equal(t, day(2024, time.February, 1), p.Range.From)
		assert.Equal(t, day(2024, time.February, 29), p.Range.To)
		assert.True(t, p.Range.Inclusive)
	})

	t.Run("month and year in a common year", func(t *testing.T) {
		p, err := BuildGoalFilter(owner, intPtr(2), intPtr(2023))
		require.NoError(t, err)
		assert.Equal(t, day(2023, time.February, 1), p.Range.From)
		assert.Equal(t, day(2023, time.February, 28), p.Range.To)
	})

	t.Run("month lengths", func(t *testing.T) {
		cases := map[int]int{1: 31, 4: 30, 6: 30, 7: 31, 9: 30, 11: 30, 12: 31}
		for month, last := range cases {
			p, err := BuildGoalFilter(owner, intPtr(month), intPtr(2025))
			require.NoError(t, err)
			assert.Equal(t, last, p.Range.To.Day(), "month %d", month)
			assert.Equal(t, time.Month(month), p.Range.To.Month(), "month %d", month)
		}
	})

	t.Run("year only", func(t *testing.T) {
		p, err := BuildGoalFilter(owner, nil, intPtr(2024))
		require.NoError(t, err)
		assert.Equal(t, day(2024, time.January, 1), p.Range.From)
		assert.Equal(t, day(2024, time.December, 31), p.Range.To)
		assert.True(t, p.Range.Inclusive)
	})

	t.Run("neither", func(t *testing.T) {
		p, err := BuildGoalFilter(owner, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, p.Range)
		assert.Equal(t, owner, p.Owner)
	})

	t.Run("month without year is ignored", func(t *testing.T) {
		p, err := BuildGoalFilter(owner, intPtr(5), nil)
		require.NoError(t, err)
		assert.Nil(t, p.Range)
	})

	t.Run("month out of range", func(t *testing.T) {
		_, err := BuildGoalFilter(owner, intPtr(13), intPtr(2024))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
	})
}

func TestDateRangeContains(t *testing.T) {
	p, err := BuildGoalFilter(uuid.New(), intPtr(2), intPtr(2024))
	require.NoError(t, err)

	assert.True(t, p.Range.Contains(day(2024, time.February, 1)))
	assert.True(t, p.Range.Contains(day(2024, time.February, 29)))
	assert.False(t, p.Range.Contains(day(2024, time.January, 31)))
	assert.False(t, p.Range.Contains(day(2024, time.March, 1)))
}

func TestBuildScheduleDateFilter(t *testing.T) {
	owner := uuid.New()

	t.Run("one day half-open window", func(t *testing.T) {
		d := time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)
		p := BuildScheduleDateFilter(owner, &d)
		require.NotNil(t, p.Range)
		assert.Equal(t, day(2024, time.June, 1), p.Range.From)
		assert.Equal(t, day(2024, time.June, 2), p.Range.To)
		assert.False(t, p.Range.Inclusive)
		assert.True(t, p.Range.Contains(day(2024, time.June, 1)))
		assert.False(t, p.Range.Contains(day(2024, time.June, 2)))
	})

	t.Run("month boundary", func(t *testing.T) {
		d := day(2024, time.February, 29)
		p := BuildScheduleDateFilter(owner, &d)
		assert.Equal(t, day(2024, time.March, 1), p.Range.To)
	})

	t.Run("no date", func(t *testing.T) {
		p := BuildScheduleDateFilter(owner, nil)
		assert.Nil(t, p.Range)
	})
}

func TestPredicateSQL(t *testing.T) {
	owner := uuid.New()

	t.Run("owner only", func(t *testing.T) {
		clause, args := Predicate{Owner: owner}.SQL("target_date", 1)
		assert.Equal(t, "user_id = $1", clause)
		assert.Equal(t, []any{owner}, args)
	})

	t.Run("inclusive window", func(t *testing.T) {
		p, _ := BuildGoalFilter(owner, intPtr(2), intPtr(2024))
		clause, args := p.SQL("target_date", 1)
		assert.Equal(t, "user_id = $1 AND target_date >= $2 AND target_date <= $3", clause)
		assert.Equal(t, []any{owner, day(2024, time.February, 1), day(2024, time.February, 29)}, args)
	})

	t.Run("half-open window", func(t *testing.T) {
		d := day(2024, time.June, 1)
		clause, _ := BuildScheduleDateFilter(owner, &d).SQL("entry_date", 3)
		assert.Equal(t, "user_id = $3 AND entry_date >= $4 AND entry_date < $5", clause)
	})
}

func TestParseQueries(t *testing.T) {
	t.Run("goal query", func(t *testing.T) {
		month, year, err := ParseGoalQuery(url.Values{"month": {"2"}, "year": {"2024"}})
		require.NoError(t, err)
		assert.Equal(t, 2, *month)
		assert.Equal(t, 2024, *year)
	})

	t.Run("goal query not a number", func(t *testing.T) {
		_, _, err := ParseGoalQuery(url.Values{"year": {"twenty"}})
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("schedule query", func(t *testing.T) {
		d, err := ParseScheduleQuery(url.Values{"date": {"2024-06-01"}})
		require.NoError(t, err)
		assert.Equal(t, day(2024, time.June, 1), *d)

		d, err = ParseScheduleQuery(url.Values{})
		require.NoError(t, err)
		assert.Nil(t, d)

		_, err = ParseScheduleQuery(url.Values{"date": {"June 1st"}})
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}
