package model

import "time"

// IntakeField is one answer slot in an intake step
type IntakeField struct {
	Key      string `json:"key" bson:"key"`   // e.g., "goal", "one_liner"
	Label    string `json:"label" bson:"label"`
	Question string `json:"question" bson:"question"` // shown to the user, forwarded to the AI evaluator
	MinChars int    `json:"minChars" bson:"minChars"` // quality threshold for the evaluator
	// WithContext marks fields whose AI evaluation should include the
	// prospect's stage/industry/one-liner answers.
	WithContext bool `json:"withContext,omitempty" bson:"withContext,omitempty"`
}

// IntakeStep is one page of the multi-step form
type IntakeStep struct {
	Number int           `json:"number" bson:"number"` // 1-based
	Title  string        `json:"title" bson:"title"`
	Fields []IntakeField `json:"fields" bson:"fields"`
}

// IntakeForm is the persistent form template. The number of steps fixes the
// valid range for a draft's step pointer.
type IntakeForm struct {
	ID        string       `json:"id" bson:"_id,omitempty"`
	Slug      string       `json:"slug" bson:"slug"` // e.g., "default"
	Title     string       `json:"title" bson:"title"`
	Steps     []IntakeStep `json:"steps" bson:"steps"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// StepCount returns the number of steps in the form
func (f *IntakeForm) StepCount() int {
	return len(f.Steps)
}

// Field looks up a field definition by key across all steps
func (f *IntakeForm) Field(key string) *IntakeField {
	for i := range f.Steps {
		for j := range f.Steps[i].Fields {
			if f.Steps[i].Fields[j].Key == key {
				return &f.Steps[i].Fields[j]
			}
		}
	}
	return nil
}
