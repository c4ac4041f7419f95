package repository

import (
	"casepilot/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FormRepo handles MongoDB operations for intake form templates
type FormRepo interface {
	Upsert(ctx context.Context, form *model.IntakeForm) error
	GetBySlug(ctx context.Context, slug string) (*model.IntakeForm, error)
}

type formRepo struct {
	collection *mongo.Collection
}

// NewFormRepo creates a new intake form repository
func NewFormRepo(db *mongo.Database) FormRepo {
	return &formRepo{
		collection: db.Collection("intake_forms"),
	}
}

func (r *formRepo) Upsert(ctx context.Context, form *model.IntakeForm) error {
	now := time.Now()
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	form.UpdatedAt = now

	update := bson.M{"$set": bson.M{
		"title":     form.Title,
		"steps":     form.Steps,
		"updatedAt": form.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"slug":      form.Slug,
		"createdAt": form.CreatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"slug": form.Slug}, update,
		options.Update().SetUpsert(true))
	return err
}

func (r *formRepo) GetBySlug(ctx context.Context, slug string) (*model.IntakeForm, error) {
	var form model.IntakeForm
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&form)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}
