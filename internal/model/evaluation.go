package model

// AnswerQuality is the three-level classification of one text answer
type AnswerQuality string

const (
	QualityNeedsMore AnswerQuality = "needs_more" // ratio < 0.5
	QualityGood      AnswerQuality = "good"       // 0.5 <= ratio < 1.0
	QualityExcellent AnswerQuality = "excellent"  // ratio >= 1.0
)

// EvaluateMode selects the evaluation path
type EvaluateMode string

const (
	ModeBaseline EvaluateMode = "baseline" // local heuristics only
	ModeAI       EvaluateMode = "ai"       // baseline plus the AI upgrade
)

// Evaluation is the result of scoring one answer. It is ephemeral: never
// persisted, recomputed on every request. The baseline fields are always
// populated; Enhanced is non-nil only when the AI path succeeded, so callers
// can tell a degraded response from a full one.
type Evaluation struct {
	Quality     AnswerQuality `json:"quality"`
	Ratio       float64       `json:"ratio"`
	Remaining   int           `json:"remaining"`
	Suggestions []string      `json:"suggestions"`

	Enhanced *EnhancedEvaluation `json:"enhanced,omitempty"`
}

// EnhancedEvaluation carries the extra signal the AI collaborator produces
type EnhancedEvaluation struct {
	Score               float64 `json:"score"`
	Feedback            string  `json:"feedback"`
	NeedsQuantification bool    `json:"needsQuantification"`
	NeedsRootCause      bool    `json:"needsRootCause"`
}

// EvaluateRequest is the request body for POST /v1/evaluate and the frame
// payload on the live evaluation socket
type EvaluateRequest struct {
	Field    string          `json:"field"`
	Text     string          `json:"text"`
	MinChars int             `json:"minChars"` // optional; resolved from the intake form when zero
	Mode     EvaluateMode    `json:"mode"`
	Context  BusinessContext `json:"context"`
}
