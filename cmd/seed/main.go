package main

import (
	"casepilot/internal/config"
	"casepilot/internal/model"
	"casepilot/internal/repository"
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds the default intake form template. Safe to run repeatedly: the form is
// upserted by slug.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	formRepo := repository.NewFormRepo(db)
	draftRepo := repository.NewDraftRepo(db)

	if err := draftRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create draft indexes: %v", err)
	}

	form := &model.IntakeForm{
		Slug:  "default",
		Title: "Business Case Intake",
		Steps: []model.IntakeStep{
			{
				Number: 1,
				Title:  "About you",
				Fields: []model.IntakeField{
					{
						Key:      "business_stage",
						Label:    "Business stage",
						Question: "Where is your business today: idea, launched, or growing?",
						MinChars: 10,
					},
					{
						Key:      "industry",
						Label:    "Industry",
						Question: "What industry are you in?",
						MinChars: 5,
					},
					{
						Key:      "one_liner",
						Label:    "One-line pitch",
						Question: "Describe your business in one sentence.",
						MinChars: 30,
					},
				},
			},
			{
				Number: 2,
				Title:  "Your goal",
				Fields: []model.IntakeField{
					{
						Key:         "goal",
						Label:       "Primary goal",
						Question:    "What do you want to achieve in the next 12 months? Include numbers and a timeline.",
						MinChars:    80,
						WithContext: true,
					},
				},
			},
			{
				Number: 3,
				Title:  "The challenge",
				Fields: []model.IntakeField{
					{
						Key:         "main_challenge",
						Label:       "Main challenge",
						Question:    "What is the biggest obstacle between you and that goal? Who does it affect and why does it happen?",
						MinChars:    100,
						WithContext: true,
					},
					{
						Key:         "tried_so_far",
						Label:       "Attempts so far",
						Question:    "What have you already tried, and what happened?",
						MinChars:    80,
						WithContext: true,
					},
				},
			},
			{
				Number: 4,
				Title:  "Your edge",
				Fields: []model.IntakeField{
					{
						Key:         "differentiator",
						Label:       "Differentiator",
						Question:    "What makes your offer different from your competitors, and who exactly is the customer that cares?",
						MinChars:    100,
						WithContext: true,
					},
				},
			},
		},
	}

	if err := formRepo.Upsert(ctx, form); err != nil {
		log.Fatalf("Failed to seed intake form: %v", err)
	}

	fmt.Printf("Seeded intake form %q with %d steps\n", form.Slug, form.StepCount())
}
