// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the catalog.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	BodyLocation     string   `bson:"bodyLocation,omitempty" json:"bodyLocation,omitempty"`         // e.g., "Upper Body", "Lower Body", "Core"
	MuscleGroups     []string `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`         // e.g., ["Quadriceps", "Glutes"]
	ExecutionTechnic string   `bson:"executionTechnic,omitempty" json:"executionTechnic,omitempty"` // Detailed instructions
	Applicability    string   `bson:"applicability,omitempty" json:"applicability,omitempty"`       // e.g., "Home", "Gym", "Home/Gym"
	Difficulty       string   `bson:"difficulty,omitempty" json:"difficulty,omitempty"`             // e.g., "Novice", "Medium", "Advanced"

	// MediaObjectKey points at a demonstration clip in object storage.
	// The actual file resides in S3; download links are presigned on demand.
	MediaObjectKey string `bson:"mediaObjectKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SearchFilter is the request-scoped catalog filter. It is rebuilt from the
// request on every search; no filter state is carried between requests.
type SearchFilter struct {
	BodyLocation string   `json:"bodyLocation,omitempty"`
	MuscleGroups []string `json:"muscleGroups,omitempty"`
	NameQuery    string   `json:"nameQuery,omitempty"`
	Limit        int64    `json:"limit,omitempty"`
}

// Reset clears all filter criteria.
func (f *SearchFilter) Reset() {
	*f = SearchFilter{}
}

// IsEmpty reports whether the filter selects the whole catalog.
func (f SearchFilter) IsEmpty() bool {
	return f.BodyLocation == "" && len(f.MuscleGroups) == 0 && f.NameQuery == ""
}
