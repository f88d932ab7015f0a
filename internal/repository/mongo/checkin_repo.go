package mongo

import (
	"context"
	"errors"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const checkInCollectionName = "progress_checkins"

// mongoProgressCheckInRepository implements repository.ProgressCheckInRepository.
type mongoProgressCheckInRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressCheckInRepository creates a new progress check-in repository.
func NewMongoProgressCheckInRepository(db *mongo.Database) repository.ProgressCheckInRepository {
	return &mongoProgressCheckInRepository{
		collection: db.Collection(checkInCollectionName),
	}
}

// Create inserts a new check-in.
func (r *mongoProgressCheckInRepository) Create(ctx context.Context, checkIn *domain.ProgressCheckIn) (primitive.ObjectID, error) {
	if checkIn.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("check-in requires a user id")
	}

	checkIn.ID = primitive.NewObjectID()
	checkIn.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, checkIn)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted check-in ID")
	}
	return insertedID, nil
}

// GetLastByUserID retrieves the user's most recent check-in.
func (r *mongoProgressCheckInRepository) GetLastByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.ProgressCheckIn, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var checkIn domain.ProgressCheckIn
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, findOptions).Decode(&checkIn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &checkIn, nil
}

// EnsureProgressCheckInIndexes creates check-in query indexes. Call during startup.
func EnsureProgressCheckInIndexes(ctx context.Context, collection *mongo.Collection) {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index(),
	}
	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
