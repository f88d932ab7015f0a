package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account in the system.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"` // Should be unique
	Email        string             `bson:"email" json:"email"`       // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"`    // Never expose this via JSON

	// TOTPSecret is set during 2FA enrolment and only honored once TOTPEnabled
	// is flipped by a successful verification.
	TOTPSecret  string `bson:"totpSecret,omitempty" json:"-"`
	TOTPEnabled bool   `bson:"totpEnabled" json:"totpEnabled"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
