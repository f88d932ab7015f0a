package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchFilter_ResetAndIsEmpty(t *testing.T) {
	filter := SearchFilter{
		BodyLocation: "Lower Body",
		MuscleGroups: []string{"Quadriceps"},
		NameQuery:    "squat",
		Limit:        10,
	}
	assert.False(t, filter.IsEmpty())

	filter.Reset()
	assert.True(t, filter.IsEmpty())
	assert.Zero(t, filter.Limit)

	// Limit alone does not narrow the selection.
	assert.True(t, SearchFilter{Limit: 25}.IsEmpty())
}

func TestRoutineStats(t *testing.T) {
	assert.Equal(t, 0.0, RoutineStats{}.CompletionRatio())
	assert.False(t, RoutineStats{}.AllCompleted())

	stats := RoutineStats{Total: 3, Completed: 1}
	assert.Equal(t, 0.33, stats.CompletionRatio())
	assert.False(t, stats.AllCompleted())

	stats.Completed = 3
	assert.Equal(t, 1.0, stats.CompletionRatio())
	assert.True(t, stats.AllCompleted())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.07, Round2(1.0+0.07))
	assert.Equal(t, 0.67, Round2(2.0/3.0))
	assert.Equal(t, 0.94, Round2(1.0-0.06))
}

func TestDayKey(t *testing.T) {
	at := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-10", DayKey(at))
}

func TestIsValidPainTrend(t *testing.T) {
	assert.True(t, IsValidPainTrend(TrendWorse))
	assert.True(t, IsValidPainTrend(TrendSame))
	assert.True(t, IsValidPainTrend(TrendBetter))
	assert.False(t, IsValidPainTrend("unknown"))
}
