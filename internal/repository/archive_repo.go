package repository

import (
	"context"

	"lection/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ArchiveRepo stores finalized lobby records. Archived documents are
// immutable once written.
type ArchiveRepo interface {
	Insert(ctx context.Context, lobby *model.Lobby) error
	GetByCode(ctx context.Context, joincode int) (*model.Lobby, error)
}

type archiveRepo struct {
	collection *mongo.Collection
}

// NewArchiveRepo creates an archive repository over the completedlobbies collection
func NewArchiveRepo(db *mongo.Database) ArchiveRepo {
	return &archiveRepo{
		collection: db.Collection("completedlobbies"),
	}
}

func (r *archiveRepo) Insert(ctx context.Context, lobby *model.Lobby) error {
	_, err := r.collection.InsertOne(ctx, lobby)
	return err
}

func (r *archiveRepo) GetByCode(ctx context.Context, joincode int) (*model.Lobby, error) {
	var lobby model.Lobby
	err := r.collection.FindOne(ctx, bson.M{"joincode": joincode}).Decode(&lobby)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &lobby, nil
}
