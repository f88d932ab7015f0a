package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favourite marks an exercise a user has bookmarked. Unique per
// (user, exercise) pair.
type Favourite struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
