package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalIntensity type for how hard a user wants to push their goals.
type GoalIntensity string

const (
	IntensitySlight      GoalIntensity = "slight"
	IntensityModerate    GoalIntensity = "moderate"
	IntensitySignificant GoalIntensity = "significant"
	IntensityMaximum     GoalIntensity = "maximum"
)

// IsValidGoalIntensity reports whether value is one of the accepted intensities.
func IsValidGoalIntensity(value GoalIntensity) bool {
	switch value {
	case IntensitySlight, IntensityModerate, IntensitySignificant, IntensityMaximum:
		return true
	}
	return false
}

// Goal is the per-user singleton describing which muscles the user is
// targeting and how aggressively. MuscleGoals holds optional per-muscle notes.
type Goal struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"-"`
	UserID      primitive.ObjectID   `bson:"userId" json:"userId"`
	MuscleIDs   []primitive.ObjectID `bson:"muscleIds,omitempty" json:"muscleIds,omitempty"`
	Intensity   GoalIntensity        `bson:"intensity" json:"intensity"`
	Notes       string               `bson:"notes,omitempty" json:"notes,omitempty"`
	MuscleGoals map[string]string    `bson:"muscleGoals,omitempty" json:"muscleGoals,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
