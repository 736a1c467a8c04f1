package repository

import (
	"context"
	"time"

	"lection/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LobbyRepo is the persistence boundary for live lobby documents. Every
// method is a single-document operation; the mutating methods map to one
// atomic update each.
type LobbyRepo interface {
	Insert(ctx context.Context, lobby *model.Lobby) error
	GetByCode(ctx context.Context, joincode int) (*model.Lobby, error)
	CountByCode(ctx context.Context, joincode int) (int64, error)
	JoinGate(ctx context.Context, joincode int) (*model.JoinGate, error)
	PromptGate(ctx context.Context, joincode int) (*model.PromptGate, error)
	HostSnapshot(ctx context.Context, joincode int) (*model.HostSnapshot, error)
	ParticipantSnapshot(ctx context.Context, joincode int) (*model.ParticipantSnapshot, error)
	AppendParticipant(ctx context.Context, joincode int, p model.Participant) error
	AppendResponse(ctx context.Context, joincode int, userid string, payload any) error
	AppendPrompt(ctx context.Context, joincode int, prompt any, startTime int64) error
	MarkClosed(ctx context.Context, joincode int) (bool, error)
	Delete(ctx context.Context, joincode int) error
	EnsureIndexes(ctx context.Context) error
}

type lobbyRepo struct {
	collection *mongo.Collection
}

// NewLobbyRepo creates a lobby repository over the activelobbies collection
func NewLobbyRepo(db *mongo.Database) LobbyRepo {
	return &lobbyRepo{
		collection: db.Collection("activelobbies"),
	}
}

func (r *lobbyRepo) Insert(ctx context.Context, lobby *model.Lobby) error {
	_, err := r.collection.InsertOne(ctx, lobby)
	return err
}

func (r *lobbyRepo) GetByCode(ctx context.Context, joincode int) (*model.Lobby, error) {
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

func (r *lobbyRepo) CountByCode(ctx context.Context, joincode int) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"joincode": joincode})
}

func (r *lobbyRepo) JoinGate(ctx context.Context, joincode int) (*model.JoinGate, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"status":               1,
		"lobbyMembershipLevel": 1,
		"participants":         1,
		"_id":                  0,
	})
	var gate model.JoinGate
	err := r.collection.FindOne(ctx, bson.M{"joincode": joincode}, opts).Decode(&gate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &gate, nil
}

func (r *lobbyRepo) PromptGate(ctx context.Context, joincode int) (*model.PromptGate, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"status":    1,
		"startTime": 1,
		"_id":       0,
	})
	var gate model.PromptGate
	err := r.collection.FindOne(ctx, bson.M{"joincode": joincode}, opts).Decode(&gate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &gate, nil
}

func (r *lobbyRepo) HostSnapshot(ctx context.Context, joincode int) (*model.HostSnapshot, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"participants": 1,
		"prompts":      1,
		"_id":          0,
	})
	var snap model.HostSnapshot
	err := r.collection.FindOne(ctx, bson.M{"joincode": joincode}, opts).Decode(&snap)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

func (r *lobbyRepo) ParticipantSnapshot(ctx context.Context, joincode int) (*model.ParticipantSnapshot, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"status":  1,
		"prompts": 1,
		"_id":     0,
	})
	var snap model.ParticipantSnapshot
	err := r.collection.FindOne(ctx, bson.M{"joincode": joincode}, opts).Decode(&snap)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

func (r *lobbyRepo) AppendParticipant(ctx context.Context, joincode int, p model.Participant) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"joincode": joincode},
		bson.M{"$push": bson.M{"participants": p}},
	)
	return err
}

// AppendResponse pushes a response onto the matching participant. When no
// participant matches the userid the update matches nothing and succeeds.
func (r *lobbyRepo) AppendResponse(ctx context.Context, joincode int, userid string, payload any) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"joincode": joincode, "participants.userid": userid},
		bson.M{"$push": bson.M{"participants.$.responses": payload}},
	)
	return err
}

// AppendPrompt pushes the prompt and marks the lobby started. $max keeps
// the status transition monotone: a prompt landing during the close grace
// window cannot drag a closed lobby back to started. startTime is only
// written when nonzero; callers pass it for the first prompt only.
func (r *lobbyRepo) AppendPrompt(ctx context.Context, joincode int, prompt any, startTime int64) error {
	update := bson.M{
		"$push": bson.M{"prompts": prompt},
		"$max":  bson.M{"status": model.LobbyStarted},
	}
	if startTime != 0 {
		update["$set"] = bson.M{"startTime": startTime}
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"joincode": joincode}, update)
	return err
}

// MarkClosed transitions status to closed, guarded so exactly one caller
// wins the transition. Returns true when this call performed it.
func (r *lobbyRepo) MarkClosed(ctx context.Context, joincode int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"joincode": joincode, "status": bson.M{"$lt": model.LobbyClosed}},
		bson.M{"$set": bson.M{"status": model.LobbyClosed}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *lobbyRepo) Delete(ctx context.Context, joincode int) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"joincode": joincode})
	return err
}

// EnsureIndexes creates the unique index on joincode so a check-then-insert
// race between two creators cannot land two live lobbies on one code.
func (r *lobbyRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "joincode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
