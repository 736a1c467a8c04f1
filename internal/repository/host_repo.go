package repository

import (
	"context"

	"lection/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HostRepo maintains per-host aggregate documents.
type HostRepo interface {
	TouchGroup(ctx context.Context, hostid, group string) error
	ApplyStats(ctx context.Context, hostid string, delta model.HostStatDelta) error
	GetByID(ctx context.Context, hostid string) (*model.Host, error)
}

type hostRepo struct {
	collection *mongo.Collection
}

// NewHostRepo creates a host repository over the hosts collection
func NewHostRepo(db *mongo.Database) HostRepo {
	return &hostRepo{
		collection: db.Collection("hosts"),
	}
}

// TouchGroup records that the host has hosted for this group.
func (r *hostRepo) TouchGroup(ctx context.Context, hostid, group string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": hostid},
		bson.M{
			"$addToSet": bson.M{"groups": group},
			"$set":      bson.M{"lastgroup": group},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// ApplyStats increments the four host counters in one atomic update.
func (r *hostRepo) ApplyStats(ctx context.Context, hostid string, delta model.HostStatDelta) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": hostid},
		bson.M{"$inc": bson.M{
			"lobbyMinutesUsed":          delta.SecondsUsed,
			"stats.lectionariesStarted": delta.Started,
			"stats.studentsTaught":      delta.Students,
			"stats.promptsSubmitted":    delta.Prompts,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *hostRepo) GetByID(ctx context.Context, hostid string) (*model.Host, error) {
	var host model.Host
	err := r.collection.FindOne(ctx, bson.M{"_id": hostid}).Decode(&host)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &host, nil
}
