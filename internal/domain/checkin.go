package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressCheckIn is a free-form mood/pain/mobility snapshot, independent of
// the session lifecycle. Its recency drives PROGRESS_CHECKIN eligibility.
type ProgressCheckIn struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Mood           string             `bson:"mood,omitempty" json:"mood,omitempty"`
	PainAvg        *int               `bson:"painAvg,omitempty" json:"painAvg,omitempty"`               // 0..10
	MobilityRating *int               `bson:"mobilityRating,omitempty" json:"mobilityRating,omitempty"` // 1..5
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`                   // <= 600 chars
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
