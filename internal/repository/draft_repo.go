package repository

import (
	"casepilot/internal/model"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateToken reports a resume token collision on insert
var ErrDuplicateToken = errors.New("duplicate resume token")

// DraftRepo handles MongoDB operations for intake drafts
type DraftRepo interface {
	Create(ctx context.Context, draft *model.Draft) (string, error)
	GetByID(ctx context.Context, id string) (*model.Draft, error)
	GetByToken(ctx context.Context, token string) (*model.Draft, error)
	// SaveProgress replaces step and data on an editable draft and returns the
	// updated record, or nil if no editable draft matches the id.
	SaveProgress(ctx context.Context, id string, step int, data map[string]string) (*model.Draft, error)
	// MarkSubmitted performs the one-way draft -> submitted transition and
	// returns nil if the draft was already submitted or does not exist.
	MarkSubmitted(ctx context.Context, id string, data map[string]string) (*model.Draft, error)
	ListByStatus(ctx context.Context, status model.DraftStatus) ([]*model.Draft, error)
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type draftRepo struct {
	collection *mongo.Collection
}

// NewDraftRepo creates a new draft repository
func NewDraftRepo(db *mongo.Database) DraftRepo {
	return &draftRepo{
		collection: db.Collection("drafts"),
	}
}

func (r *draftRepo) EnsureIndexes(ctx context.Context) error {
	// Resume tokens are capability links: they must be unique across all drafts
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "resumeToken", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *draftRepo) Create(ctx context.Context, draft *model.Draft) (string, error) {
	now := time.Now()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, draft)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateToken
	}
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	draft.ID = oid.Hex()
	return draft.ID, nil
}

func (r *draftRepo) GetByID(ctx context.Context, id string) (*model.Draft, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var draft model.Draft
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&draft)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	draft.ID = id
	return &draft, nil
}

func (r *draftRepo) GetByToken(ctx context.Context, token string) (*model.Draft, error) {
	var draft model.Draft
	err := r.collection.FindOne(ctx, bson.M{"resumeToken": token}).Decode(&draft)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepo) SaveProgress(ctx context.Context, id string, step int, data map[string]string) (*model.Draft, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	// Filter on status so a save can never touch a submitted draft
	filter := bson.M{"_id": oid, "status": model.DraftStatusDraft}
	update := bson.M{"$set": bson.M{
		"step":      step,
		"data":      data,
		"updatedAt": time.Now(),
	}}

	var draft model.Draft
	err = r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&draft)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	draft.ID = id
	return &draft, nil
}

func (r *draftRepo) MarkSubmitted(ctx context.Context, id string, data map[string]string) (*model.Draft, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	now := time.Now()
	filter := bson.M{"_id": oid, "status": model.DraftStatusDraft}
	update := bson.M{"$set": bson.M{
		"status":      model.DraftStatusSubmitted,
		"data":        data,
		"updatedAt":   now,
		"submittedAt": now,
	}}

	var draft model.Draft
	err = r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&draft)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	draft.ID = id
	return &draft, nil
}

func (r *draftRepo) ListByStatus(ctx context.Context, status model.DraftStatus) ([]*model.Draft, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drafts []*model.Draft
	if err := cursor.All(ctx, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *draftRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
