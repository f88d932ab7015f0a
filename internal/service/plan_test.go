package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePlanConstraints(t *testing.T) {
	tests := []struct {
		name      string
		duration  int
		available int
		target    int
		perEx     int
		estimated int
	}{
		{
			name:     "30 minutes with plenty available prefers upper bound",
			duration: 30, available: 8,
			target: 6, perEx: 4, estimated: 29,
		},
		{
			name:     "30 minutes with five available",
			duration: 30, available: 5,
			target: 5, perEx: 5, estimated: 30,
		},
		{
			name:     "15 minutes is a fixed three-exercise bucket",
			duration: 15, available: 10,
			target: 3, perEx: 3, estimated: 14,
		},
		{
			name:     "60 minutes with plenty available",
			duration: 60, available: 12,
			target: 10, perEx: 5, estimated: 55,
		},
		{
			name:     "45 minutes with plenty available",
			duration: 45, available: 9,
			target: 8, perEx: 5, estimated: 45,
		},
		{
			name:     "target holds the lower bound above availability",
			duration: 30, available: 2,
			target: 5, perEx: 5, estimated: 30,
		},
		{
			name:     "per-exercise floor can push the estimate past the budget",
			duration: 20, available: 4,
			target: 4, perEx: 3, estimated: 17,
		},
		{
			name:     "unsupported duration falls back to the 30-minute bucket",
			duration: 25, available: 8,
			target: 6, perEx: 3, estimated: 23,
		},
		{
			name:     "zero available is treated as one",
			duration: 15, available: 0,
			target: 3, perEx: 3, estimated: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputePlanConstraints(tt.duration, tt.available)

			assert.True(t, result.WarmupIncluded)
			assert.Equal(t, 5, result.WarmupMinutes)
			assert.Equal(t, tt.target, result.TargetExerciseCount)
			assert.Equal(t, tt.perEx, result.PerExerciseMinutes)
			assert.Equal(t, tt.estimated, result.EstimatedDurationMinutes)
		})
	}
}
