// internal/service/plan.go
package service

// planHeuristic bounds the exercise count for one duration bucket.
type planHeuristic struct {
	minExercises int
	maxExercises int
}

// planHeuristics maps the supported preferred durations (minutes) to
// exercise-count bounds. Unrecognized durations fall back to the 30-minute
// bucket.
var planHeuristics = map[int]planHeuristic{
	15: {minExercises: 3, maxExercises: 3},
	20: {minExercises: 4, maxExercises: 4},
	30: {minExercises: 5, maxExercises: 6},
	45: {minExercises: 7, maxExercises: 8},
	60: {minExercises: 9, maxExercises: 10},
}

const warmupMinutes = 5

// PlanConstraints is the plan shape derived from a duration preference and
// the number of exercises the user picked.
type PlanConstraints struct {
	WarmupIncluded           bool `json:"warmupIncluded"`
	WarmupMinutes            int  `json:"warmupMinutes"`
	PerExerciseMinutes       int  `json:"perExerciseMinutes"`
	TargetExerciseCount      int  `json:"targetExerciseCount"`
	EstimatedDurationMinutes int  `json:"estimatedDurationMinutes"`
}

// clampInt bounds value to [min, max]; min wins when the bounds cross, which
// is what lets a plan target exceed availability.
func clampInt(value, min, max int) int {
	if value > max {
		value = max
	}
	if value < min {
		value = min
	}
	return value
}

// ComputePlanConstraints derives the target exercise count and timing for a
// workout plan. Pure; always returns a result.
//
// The target prefers the heuristic's upper bound but never exceeds what is
// available. It also never drops below the heuristic's lower bound, so the
// target can exceed availability when the user picked very few exercises.
// Callers must tolerate target > available.
//
// Per-exercise time floor-divides the budget after warm-up with a 3-minute
// floor, so the estimate can exceed the nominal duration. Intentional.
func ComputePlanConstraints(durationMinutes, availableExerciseCount int) PlanConstraints {
	heuristic, ok := planHeuristics[durationMinutes]
	if !ok {
		heuristic = planHeuristics[30]
	}

	available := availableExerciseCount
	if available < 1 {
		available = 1
	}
	targetExerciseCount := clampInt(heuristic.maxExercises, heuristic.minExercises, available)

	perExerciseMinutes := (durationMinutes - warmupMinutes) / targetExerciseCount
	if perExerciseMinutes < 3 {
		perExerciseMinutes = 3
	}

	return PlanConstraints{
		WarmupIncluded:           true,
		WarmupMinutes:            warmupMinutes,
		PerExerciseMinutes:       perExerciseMinutes,
		TargetExerciseCount:      targetExerciseCount,
		EstimatedDurationMinutes: warmupMinutes + perExerciseMinutes*targetExerciseCount,
	}
}
