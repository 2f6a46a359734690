package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skej/src-cal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandCountRule(t *testing.T) {
	// Standup on Mon+Wed starting Monday 2025-05-05, three occurrences
	rule, err := model.NewCountRule([]time.Weekday{time.Monday, time.Wednesday}, 3)
	require.NoError(t, err)

	dates, err := expandRecurrence(date(2025, 5, 5), rule, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2025, 5, 5),
		date(2025, 5, 7),
		date(2025, 5, 12),
	}, dates)
}

func TestExpandCountRuleStartMidWeek(t *testing.T) {
	// 2025-05-06 is a Tuesday; the first Monday occurrence is the 12th
	rule, err := model.NewCountRule([]time.Weekday{time.Monday, time.Friday}, 4)
	require.NoError(t, err)

	dates, err := expandRecurrence(date(2025, 5, 6), rule, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2025, 5, 9),
		date(2025, 5, 12),
		date(2025, 5, 16),
		date(2025, 5, 19),
	}, dates)
}

func TestExpandUntilRule(t *testing.T) {
	rule, err := model.NewUntilRule([]time.Weekday{time.Monday, time.Wednesday}, date(2025, 5, 12))
	require.NoError(t, err)

	dates, err := expandRecurrence(date(2025, 5, 5), rule, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2025, 5, 5),
		date(2025, 5, 7),
		date(2025, 5, 12),
	}, dates)
}

func TestExpandUntilIncludesEndDate(t *testing.T) {
	rule, err := model.NewUntilRule([]time.Weekday{time.Friday}, date(2025, 5, 9))
	require.NoError(t, err)

	dates, err := expandRecurrence(date(2025, 5, 5), rule, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2025, 5, 9)}, dates)
}

func TestExpandUntilBeforeStart(t *testing.T) {
	rule, err := model.NewUntilRule([]time.Weekday{time.Monday}, date(2025, 4, 1))
	require.NoError(t, err)

	_, err = expandRecurrence(date(2025, 5, 5), rule, time.UTC)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

// The count walk is an optimization of the until scan, not a different rule:
// n count-based dates must equal the first n until-based dates.
func TestExpandCountMatchesUntilPrefix(t *testing.T) {
	weekdaySets := [][]time.Weekday{
		{time.Monday},
		{time.Monday, time.Wednesday, time.Friday},
		{time.Sunday, time.Saturday},
		{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	}
	for _, days := range weekdaySets {
		for _, start := range []time.Time{date(2025, 5, 5), date(2025, 5, 8), date(2025, 12, 29)} {
			for _, n := range []int{1, 5, 13} {
				countRule, err := model.NewCountRule(days, n)
				require.NoError(t, err)
				counted, err := expandRecurrence(start, countRule, time.UTC)
				require.NoError(t, err)
				require.Len(t, counted, n)

				untilRule, err := model.NewUntilRule(days, counted[len(counted)-1])
				require.NoError(t, err)
				scanned, err := expandRecurrence(start, untilRule, time.UTC)
				require.NoError(t, err)

				assert.Equal(t, counted, scanned[:n])
			}
		}
	}
}
