package repository

import (
	"casepilot/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CaseRepo handles MongoDB operations for generated business cases
type CaseRepo interface {
	Create(ctx context.Context, bc *model.BusinessCase) (string, error)
	GetByID(ctx context.Context, id string) (*model.BusinessCase, error)
	GetByDraftID(ctx context.Context, draftID string) (*model.BusinessCase, error)
	List(ctx context.Context) ([]*model.BusinessCase, error)
	SetDelivery(ctx context.Context, id string, status model.DeliveryStatus, messageID string) error
}

type caseRepo struct {
	collection *mongo.Collection
}

// NewCaseRepo creates a new business case repository
func NewCaseRepo(db *mongo.Database) CaseRepo {
	return &caseRepo{
		collection: db.Collection("cases"),
	}
}

func (r *caseRepo) Create(ctx context.Context, bc *model.BusinessCase) (string, error) {
	bc.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, bc)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	bc.ID = oid.Hex()
	return bc.ID, nil
}

func (r *caseRepo) GetByID(ctx context.Context, id string) (*model.BusinessCase, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var bc model.BusinessCase
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&bc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	bc.ID = id
	return &bc, nil
}

func (r *caseRepo) GetByDraftID(ctx context.Context, draftID string) (*model.BusinessCase, error) {
	var bc model.BusinessCase
	err := r.collection.FindOne(ctx, bson.M{"draftId": draftID}).Decode(&bc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

func (r *caseRepo) List(ctx context.Context) ([]*model.BusinessCase, error) {
	// The dashboard list never needs the PDF bytes
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetProjection(bson.M{"pdf": 0}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cases []*model.BusinessCase
	if err := cursor.All(ctx, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *caseRepo) SetDelivery(ctx context.Context, id string, status model.DeliveryStatus, messageID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"delivery":  status,
		"messageId": messageID,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}
