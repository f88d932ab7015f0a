// internal/service/difficulty.go
package service

import (
	"lukejohnson/rehab-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Adjustment reasons surfaced to the user after a session completes.
const (
	ReasonAutoAdjustDisabled      = "Auto-adjust disabled. Difficulty kept fixed."
	ReasonNoAdjustment            = "No adjustment applied."
	ReasonHighPain                = "High pain score detected; reducing intensity/volume."
	ReasonPainTrendWorse          = "Pain trend worsened; reducing next session difficulty."
	ReasonLowCompletion           = "Low completion ratio; reducing next session difficulty."
	ReasonStrongCompletion        = "Strong completion and low pain; increasing difficulty by ~7%."
	ReasonConservativeIncrease    = "Conservative progression: increasing difficulty by ~3% after 2 successful sessions."
	ReasonConservativePainBlocked = "Pain score is 4 or higher; conservative mode blocked progression."
	ReasonConservativeNeedsStreak = "Conservative progression requires 2 successful sessions before increasing."
)

// conservativeWindow is how many recent sessions conservative progression
// inspects before allowing an increase.
const conservativeWindow = 2

// PainSnapshot is the slice of a pain report the adjustment rules look at.
type PainSnapshot struct {
	PainScore int
	Trend     domain.PainTrend
}

// AdjustmentInput is a pre-fetched, immutable snapshot of everything the
// difficulty rules need. The engine never fetches anything itself; that is
// what keeps it independently testable.
type AdjustmentInput struct {
	AutoAdjustEnabled              bool
	ConservativeProgressionEnabled bool
	PainFeedbackEnabled            bool

	CurrentDifficulty float64
	CompletionRatio   float64

	// LatestPainFeedback is the feedback for the session being finished,
	// nil when none was collected.
	LatestPainFeedback *PainSnapshot

	// RecentSessions are completed sessions ordered most-recent-first.
	RecentSessions []domain.WorkoutSession
	// RecentFeedbackBySessionID maps session ids to their pain reports.
	RecentFeedbackBySessionID map[primitive.ObjectID]*domain.PainFeedback
}

// AdjustmentResult is the outcome applied to the completing session.
type AdjustmentResult struct {
	DifficultyAfter                float64
	AdjustmentReason               string
	ConservativeProgressionApplied bool
}

// isSuccessfulSession reports whether a past session counts toward the
// conservative progression streak: near-full completion and no meaningful
// pain report against it.
func isSuccessfulSession(session domain.WorkoutSession, feedback *domain.PainFeedback) bool {
	ratio := 0.0
	if session.CompletionRatio != nil {
		ratio = *session.CompletionRatio
	}
	if ratio < 0.9 {
		return false
	}
	return feedback == nil || feedback.PainScore <= 3
}

// ComputeDifficultyAdjustment maps a finished session's outcome onto the next
// session's difficulty. Pure; rules are evaluated top-to-bottom and the first
// match wins:
//
//  1. auto-adjust off          -> no change
//  2. pain score >= 7          -> decrease (-0.10, conservative -0.06)
//  3. pain trend worse         -> decrease (-0.08, conservative -0.04)
//  4. completion < 0.8         -> decrease (-0.06, conservative -0.03)
//  5. otherwise, progress only on completion >= 0.95 with low/absent pain;
//     conservative mode additionally demands 2 of the last 2 sessions
//     successful and blocks on a current pain score >= 4.
func ComputeDifficultyAdjustment(in AdjustmentInput) AdjustmentResult {
	before := in.CurrentDifficulty
	if before == 0 {
		before = 1.0
	}

	if !in.AutoAdjustEnabled {
		return AdjustmentResult{
			DifficultyAfter:  before,
			AdjustmentReason: ReasonAutoAdjustDisabled,
		}
	}

	hasPain := in.LatestPainFeedback != nil
	painScore := 0
	painTrend := domain.PainTrend("")
	if hasPain {
		painScore = in.LatestPainFeedback.PainScore
		painTrend = in.LatestPainFeedback.Trend
	}

	delta := 0.0
	reason := ReasonNoAdjustment

	switch {
	case in.PainFeedbackEnabled && hasPain && painScore >= 7:
		delta = -0.1
		if in.ConservativeProgressionEnabled {
			delta = -0.06
		}
		reason = ReasonHighPain

	case painTrend == domain.TrendWorse:
		delta = -0.08
		if in.ConservativeProgressionEnabled {
			delta = -0.04
		}
		reason = ReasonPainTrendWorse

	case in.CompletionRatio < 0.8:
		delta = -0.06
		if in.ConservativeProgressionEnabled {
			delta = -0.03
		}
		reason = ReasonLowCompletion

	default:
		canProgress := in.CompletionRatio >= 0.95 &&
			(!in.PainFeedbackEnabled || !hasPain || painScore <= 2)

		if canProgress {
			if in.ConservativeProgressionEnabled {
				recent := in.RecentSessions
				if len(recent) > conservativeWindow {
					recent = recent[:conservativeWindow]
				}
				successful := 0
				for _, session := range recent {
					if isSuccessfulSession(session, in.RecentFeedbackBySessionID[session.ID]) {
						successful++
					}
				}

				switch {
				case in.PainFeedbackEnabled && hasPain && painScore >= 4:
					reason = ReasonConservativePainBlocked
				case successful >= conservativeWindow:
					delta = 0.03
					reason = ReasonConservativeIncrease
				default:
					reason = ReasonConservativeNeedsStreak
				}
			} else {
				delta = 0.07
				reason = ReasonStrongCompletion
			}
		}
	}

	return AdjustmentResult{
		DifficultyAfter:                domain.Round2(before + delta),
		AdjustmentReason:               reason,
		ConservativeProgressionApplied: in.ConservativeProgressionEnabled,
	}
}
