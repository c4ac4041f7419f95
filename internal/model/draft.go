package model

import "time"

// DraftStatus is the lifecycle state of an intake draft
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"     // editable, resumable
	DraftStatusSubmitted DraftStatus = "submitted" // terminal, one-way
)

// Draft is an in-progress intake form submission. Every save fully replaces
// Data and Step; the client sends the complete accumulated state, not a delta.
type Draft struct {
	ID          string            `json:"id" bson:"_id,omitempty"`
	Name        string            `json:"name" bson:"name"`
	Email       string            `json:"email" bson:"email"`
	ResumeToken string            `json:"resumeToken" bson:"resumeToken"` // capability link, immutable once issued
	Step        int               `json:"step" bson:"step"`
	Data        map[string]string `json:"data" bson:"data"`
	Status      DraftStatus       `json:"status" bson:"status"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updatedAt"`
	SubmittedAt *time.Time        `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
}

// Editable reports whether the draft can still be saved or finalized
func (d *Draft) Editable() bool {
	return d.Status == DraftStatusDraft
}

// BusinessContext carries optional framing fields forwarded to the AI
// evaluator. The keys mirror the intake form's context answers.
type BusinessContext struct {
	Stage    string `json:"stage,omitempty"`
	Industry string `json:"industry,omitempty"`
	Idea     string `json:"idea,omitempty"`
}

// ContextFromData lifts the well-known context answers out of a draft's data map
func ContextFromData(data map[string]string) BusinessContext {
	return BusinessContext{
		Stage:    data["business_stage"],
		Industry: data["industry"],
		Idea:     data["one_liner"],
	}
}

// CreateDraftRequest is the request body for POST /v1/draft/create
type CreateDraftRequest struct {
	Name  string            `json:"name"`
	Email string            `json:"email"`
	Data  map[string]string `json:"data"`
}

// CreateDraftResponse follows the public contract: snake_case keys
type CreateDraftResponse struct {
	ID          string `json:"id"`
	ResumeToken string `json:"resume_token"`
}

// SaveDraftRequest is the request body for PUT /v1/draft/save
type SaveDraftRequest struct {
	DraftID string            `json:"draftId"`
	Step    int               `json:"step"`
	Data    map[string]string `json:"data"`
}

// SendResumeLinkRequest is the request body for POST /v1/draft/send-resume-link
type SendResumeLinkRequest struct {
	DraftID string `json:"draftId"`
	Email   string `json:"email"`
}

// FinalizeDraftRequest is the request body for POST /v1/draft/finalize
type FinalizeDraftRequest struct {
	DraftID string            `json:"draftId"`
	Data    map[string]string `json:"data"`
}
