package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatsRepo keeps the store-wide active lobby counter. The counter is
// advisory: it is incremented before a lobby document exists and
// decremented after archival, so brief drift is expected.
type StatsRepo interface {
	IncrementActive(ctx context.Context, delta int) error
	ActiveCount(ctx context.Context) (int, error)
}

type statsRepo struct {
	collection *mongo.Collection
}

type activeCounter struct {
	StatID string `bson:"statId"`
	Count  int    `bson:"count"`
}

// NewStatsRepo creates a stats repository over the serverStats collection
func NewStatsRepo(db *mongo.Database) StatsRepo {
	return &statsRepo{
		collection: db.Collection("serverStats"),
	}
}

func (r *statsRepo) IncrementActive(ctx context.Context, delta int) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"statId": "activeLobbies"},
		bson.M{"$inc": bson.M{"count": delta}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *statsRepo) ActiveCount(ctx context.Context) (int, error) {
	var counter activeCounter
	err := r.collection.FindOne(ctx, bson.M{"statId": "activeLobbies"}).Decode(&counter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}
	return counter.Count, nil
}
