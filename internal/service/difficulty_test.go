package service

import (
	"testing"
	"time"

	"lukejohnson/rehab-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func completedSession(ratio float64, completedAt time.Time) domain.WorkoutSession {
	r := ratio
	return domain.WorkoutSession{
		ID:              primitive.NewObjectID(),
		Status:          domain.SessionCompleted,
		CompletionRatio: &r,
		CompletedAt:     &completedAt,
	}
}

func TestComputeDifficultyAdjustment_AutoAdjustDisabled(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   false,
		PainFeedbackEnabled: true,
		CurrentDifficulty:   1.2,
		CompletionRatio:     1.0,
		LatestPainFeedback:  &PainSnapshot{PainScore: 9, Trend: domain.TrendWorse},
	})

	assert.Equal(t, 1.2, result.DifficultyAfter)
	assert.Equal(t, ReasonAutoAdjustDisabled, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_HighPain(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   true,
		PainFeedbackEnabled: true,
		CurrentDifficulty:   1.0,
		CompletionRatio:     1.0,
		LatestPainFeedback:  &PainSnapshot{PainScore: 8, Trend: domain.TrendSame},
	})

	assert.Equal(t, 0.9, result.DifficultyAfter)
	assert.Equal(t, ReasonHighPain, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_HighPainConservative(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:              true,
		ConservativeProgressionEnabled: true,
		PainFeedbackEnabled:            true,
		CurrentDifficulty:              1.0,
		CompletionRatio:                1.0,
		LatestPainFeedback:             &PainSnapshot{PainScore: 7, Trend: domain.TrendSame},
	})

	assert.Equal(t, 0.94, result.DifficultyAfter)
	assert.Equal(t, ReasonHighPain, result.AdjustmentReason)
	assert.True(t, result.ConservativeProgressionApplied)
}

func TestComputeDifficultyAdjustment_PainTrendWorse(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   true,
		PainFeedbackEnabled: true,
		CurrentDifficulty:   1.0,
		CompletionRatio:     1.0,
		LatestPainFeedback:  &PainSnapshot{PainScore: 3, Trend: domain.TrendWorse},
	})

	assert.Equal(t, 0.92, result.DifficultyAfter)
	assert.Equal(t, ReasonPainTrendWorse, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_LowCompletion(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   true,
		PainFeedbackEnabled: true,
		CurrentDifficulty:   1.0,
		CompletionRatio:     0.5,
	})

	assert.Equal(t, 0.94, result.DifficultyAfter)
	assert.Equal(t, ReasonLowCompletion, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_StrongCompletionProgresses(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   true,
		PainFeedbackEnabled: true,
		CurrentDifficulty:   1.0,
		CompletionRatio:     1.0,
		LatestPainFeedback:  &PainSnapshot{PainScore: 1, Trend: domain.TrendBetter},
	})

	assert.Equal(t, 1.07, result.DifficultyAfter)
	assert.Equal(t, ReasonStrongCompletion, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_NoFeedbackStillProgresses(t *testing.T) {
	// With feedback collection disabled a full completion progresses.
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   true,
		PainFeedbackEnabled: false,
		CurrentDifficulty:   1.1,
		CompletionRatio:     0.96,
	})

	assert.Equal(t, 1.17, result.DifficultyAfter)
	assert.Equal(t, ReasonStrongCompletion, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_ModeratePainBlocksProgression(t *testing.T) {
	// Pain score 3 is not low enough to progress, not high enough to reduce.
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   true,
		PainFeedbackEnabled: true,
		CurrentDifficulty:   1.0,
		CompletionRatio:     1.0,
		LatestPainFeedback:  &PainSnapshot{PainScore: 3, Trend: domain.TrendSame},
	})

	assert.Equal(t, 1.0, result.DifficultyAfter)
	assert.Equal(t, ReasonNoAdjustment, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_CompletionBelowThresholdNoChange(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:   true,
		PainFeedbackEnabled: true,
		CurrentDifficulty:   1.0,
		CompletionRatio:     0.9,
	})

	assert.Equal(t, 1.0, result.DifficultyAfter)
	assert.Equal(t, ReasonNoAdjustment, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_ConservativeIncreaseAfterStreak(t *testing.T) {
	now := time.Now()
	recent := []domain.WorkoutSession{
		completedSession(1.0, now.Add(-24*time.Hour)),
		completedSession(0.95, now.Add(-48*time.Hour)),
	}

	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:              true,
		ConservativeProgressionEnabled: true,
		PainFeedbackEnabled:            true,
		CurrentDifficulty:              0.97,
		CompletionRatio:                1.0,
		LatestPainFeedback:             &PainSnapshot{PainScore: 1, Trend: domain.TrendBetter},
		RecentSessions:                 recent,
	})

	assert.Equal(t, 1.0, result.DifficultyAfter)
	assert.Equal(t, ReasonConservativeIncrease, result.AdjustmentReason)
	assert.True(t, result.ConservativeProgressionApplied)
}

func TestComputeDifficultyAdjustment_ConservativeNeedsStreak(t *testing.T) {
	now := time.Now()
	// Only one qualifying session; the second fell short of the ratio bar.
	recent := []domain.WorkoutSession{
		completedSession(1.0, now.Add(-24*time.Hour)),
		completedSession(0.7, now.Add(-48*time.Hour)),
	}

	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:              true,
		ConservativeProgressionEnabled: true,
		PainFeedbackEnabled:            true,
		CurrentDifficulty:              1.0,
		CompletionRatio:                1.0,
		LatestPainFeedback:             &PainSnapshot{PainScore: 0, Trend: domain.TrendSame},
		RecentSessions:                 recent,
	})

	assert.Equal(t, 1.0, result.DifficultyAfter)
	assert.Equal(t, ReasonConservativeNeedsStreak, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_ConservativeIgnoresPainWhenFeedbackDisabled(t *testing.T) {
	now := time.Now()
	recent := []domain.WorkoutSession{
		completedSession(1.0, now.Add(-24*time.Hour)),
		completedSession(1.0, now.Add(-48*time.Hour)),
	}

	// With feedback collection disabled the pain report carries no weight;
	// the streak alone decides.
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:              true,
		ConservativeProgressionEnabled: true,
		PainFeedbackEnabled:            false,
		CurrentDifficulty:              1.0,
		CompletionRatio:                1.0,
		LatestPainFeedback:             &PainSnapshot{PainScore: 5, Trend: domain.TrendSame},
		RecentSessions:                 recent,
	})

	assert.Equal(t, 1.03, result.DifficultyAfter)
	assert.Equal(t, ReasonConservativeIncrease, result.AdjustmentReason)
}

func TestComputeDifficultyAdjustment_ZeroDifficultyDefaultsToBaseline(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled: true,
		CurrentDifficulty: 0,
		CompletionRatio:   0.5,
	})

	assert.Equal(t, 0.94, result.DifficultyAfter)
}

func TestComputeDifficultyAdjustment_RoundsToTwoDecimals(t *testing.T) {
	result := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled: true,
		CurrentDifficulty: 1.07,
		CompletionRatio:   1.0,
	})

	assert.Equal(t, 1.14, result.DifficultyAfter)
}
