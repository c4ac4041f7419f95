package model

import "time"

// DeliveryStatus tracks whether the business-case email went out
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// BusinessCaseContent is the structured document the generation collaborator
// produces from a finalized intake
type BusinessCaseContent struct {
	ExecutiveSummary []string `json:"executiveSummary" bson:"executiveSummary"`
	ProblemStatement string   `json:"problemStatement" bson:"problemStatement"`
	ProposedApproach []string `json:"proposedApproach" bson:"proposedApproach"`
	MarketView       string   `json:"marketView" bson:"marketView"`
	Projections      []string `json:"projections" bson:"projections"`
	Risks            []string `json:"risks" bson:"risks"`
	NextSteps        []string `json:"nextSteps" bson:"nextSteps"`
}

// BusinessCase is the persisted result of finalizing a draft
type BusinessCase struct {
	ID      string `json:"id" bson:"_id,omitempty"`
	DraftID string `json:"draftId" bson:"draftId"`
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`

	Content BusinessCaseContent `json:"content" bson:"content"`
	Model   string              `json:"model" bson:"model"` // generation model used, "mock" when AI is off

	PDF []byte `json:"-" bson:"pdf,omitempty"` // rendered artifact, absent if the render service was down

	Delivery  DeliveryStatus `json:"delivery" bson:"delivery"`
	MessageID string         `json:"messageId,omitempty" bson:"messageId,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
