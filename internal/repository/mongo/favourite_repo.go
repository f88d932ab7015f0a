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

const favouriteCollectionName = "favourites"

// mongoFavouriteRepository implements repository.FavouriteRepository.
type mongoFavouriteRepository struct {
	collection *mongo.Collection
}

// NewMongoFavouriteRepository creates a new favourites repository.
func NewMongoFavouriteRepository(db *mongo.Database) repository.FavouriteRepository {
	return &mongoFavouriteRepository{
		collection: db.Collection(favouriteCollectionName),
	}
}

// Add bookmarks an exercise. Adding the same exercise twice is a no-op.
func (r *mongoFavouriteRepository) Add(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("user ID and exercise ID are required")
	}

	fav := domain.Favourite{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		ExerciseID: exerciseID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, fav); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}
	return nil
}

// Remove deletes the bookmark.
func (r *mongoFavouriteRepository) Remove(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "exerciseId": exerciseID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUserID retrieves the user's favourites, newest first.
func (r *mongoFavouriteRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Favourite, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var favourites []domain.Favourite
	if err = cursor.All(ctx, &favourites); err != nil {
		return nil, err
	}
	return favourites, nil
}

// EnsureFavouriteIndexes creates the unique (user, exercise) index. Call during startup.
func EnsureFavouriteIndexes(ctx context.Context, collection *mongo.Collection) {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
