package service

import (
	"casepilot/internal/cache"
	"casepilot/internal/config"
	"casepilot/internal/model"
	"casepilot/internal/repository"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// aiMinLength is the shortest trimmed answer worth sending to the AI
const aiMinLength = 20

// EvaluatorService scores one text answer: a synchronous baseline heuristic,
// optionally upgraded by a Gemini call. The AI path never surfaces an error
// to the end user; it logs and degrades to the baseline.
type EvaluatorService struct {
	gemini    *geminiClient
	formRepo  repository.FormRepo
	evalCache cache.EvalCache
	formSlug  string
}

// NewEvaluatorService creates a new evaluator service
func NewEvaluatorService(cfg *config.AIConfig, formRepo repository.FormRepo, evalCache cache.EvalCache, formSlug string) *EvaluatorService {
	return &EvaluatorService{
		gemini:    newGeminiClient(cfg),
		formRepo:  formRepo,
		evalCache: evalCache,
		formSlug:  formSlug,
	}
}

// Evaluate scores req.Text against its minimum-length threshold. When the
// threshold is zero it is resolved from the intake form template, along with
// the originating question for the AI prompt.
func (s *EvaluatorService) Evaluate(ctx context.Context, req *model.EvaluateRequest) *model.Evaluation {
	minChars := req.MinChars
	question := ""

	if s.formRepo != nil {
		if form, err := s.formRepo.GetBySlug(ctx, s.formSlug); err == nil && form != nil {
			if field := form.Field(req.Field); field != nil {
				if minChars == 0 {
					minChars = field.MinChars
				}
				question = field.Question
			}
		}
	}
	if minChars <= 0 {
		minChars = 100
	}

	result := Baseline(req.Text, minChars)

	trimmed := strings.TrimSpace(req.Text)
	if req.Mode != model.ModeAI || len(trimmed) < aiMinLength || !s.gemini.enabled() {
		return result
	}

	return s.enhance(ctx, req, question, minChars, result)
}

// Baseline is the pure, local evaluation. No external calls.
func Baseline(text string, minChars int) *model.Evaluation {
	trimmed := strings.TrimSpace(text)
	length := len(trimmed)

	ratio := float64(length) / float64(minChars)
	quality := model.QualityExcellent
	switch {
	case ratio < 0.5:
		quality = model.QualityNeedsMore
	case ratio < 1.0:
		quality = model.QualityGood
	}

	remaining := minChars - length
	if remaining < 0 {
		remaining = 0
	}

	return &model.Evaluation{
		Quality:     quality,
		Ratio:       ratio,
		Remaining:   remaining,
		Suggestions: baselineSuggestions(trimmed, minChars),
	}
}

func baselineSuggestions(trimmed string, minChars int) []string {
	lower := strings.ToLower(trimmed)
	suggestions := []string{}

	// Longer-form fields are expected to cover customer, problem and edge
	if minChars >= 100 {
		if !containsAny(lower, "customer", "client", "user", "who") {
			suggestions = append(suggestions, "Describe who your target customer is.")
		}
		if !containsAny(lower, "problem", "challenge", "pain", "struggle") {
			suggestions = append(suggestions, "Name the specific problem you are solving.")
		}
		if !containsAny(lower, "unique", "different", "unlike", "competitor") {
			suggestions = append(suggestions, "Explain what sets you apart from alternatives.")
		}
	}
	if minChars >= 80 {
		if !strings.ContainsAny(trimmed, "0123456789%") {
			suggestions = append(suggestions, "Add concrete numbers, like revenue, customers or growth targets.")
		}
		if !containsAny(lower, "month", "week", "year", "quarter", "timeline", "deadline") {
			suggestions = append(suggestions, "Mention a timeline for your goal.")
		}
	}
	if len(trimmed) < minChars*6/10 {
		suggestions = append(suggestions, fmt.Sprintf("Add more detail. Aim for at least %d characters.", minChars))
	}

	return suggestions
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// enhance runs the AI upgrade, falling back field-by-field to baseline
func (s *EvaluatorService) enhance(ctx context.Context, req *model.EvaluateRequest, question string, minChars int, baseline *model.Evaluation) *model.Evaluation {
	key := evalCacheKey(req.Field, minChars, req.Text)
	if s.evalCache != nil {
		if cached, err := s.evalCache.Get(ctx, key); err == nil && cached != nil {
			return cached
		}
	}

	prompt := s.buildEvalPrompt(req, question, minChars)
	response, err := s.gemini.generateJSON(ctx, s.gemini.config.Models.Eval, prompt)
	if err != nil {
		log.Printf("AI evaluation failed for field %s, using baseline: %v", req.Field, err)
		return baseline
	}

	var parsed struct {
		Quality             string   `json:"quality"`
		Score               float64  `json:"score"`
		Feedback            string   `json:"feedback"`
		Suggestions         []string `json:"suggestions"`
		NeedsQuantification bool     `json:"needsQuantification"`
		NeedsRootCause      bool     `json:"needsRootCause"`
	}
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		log.Printf("AI evaluation returned bad JSON for field %s, using baseline: %v", req.Field, err)
		return baseline
	}

	result := *baseline
	switch model.AnswerQuality(parsed.Quality) {
	case model.QualityNeedsMore, model.QualityGood, model.QualityExcellent:
		result.Quality = model.AnswerQuality(parsed.Quality)
	}
	if len(parsed.Suggestions) > 0 {
		result.Suggestions = parsed.Suggestions
	}
	result.Enhanced = &model.EnhancedEvaluation{
		Score:               parsed.Score,
		Feedback:            parsed.Feedback,
		NeedsQuantification: parsed.NeedsQuantification,
		NeedsRootCause:      parsed.NeedsRootCause,
	}

	if s.evalCache != nil {
		if err := s.evalCache.Set(ctx, key, &result); err != nil {
			log.Printf("failed to cache evaluation for field %s: %v", req.Field, err)
		}
	}
	return &result
}

func evalCacheKey(field string, minChars int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", field, minChars, strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:16])
}

func (s *EvaluatorService) buildEvalPrompt(req *model.EvaluateRequest, question string, minChars int) string {
	contextLines := ""
	if req.Context.Stage != "" {
		contextLines += "\nBusiness stage: " + req.Context.Stage
	}
	if req.Context.Industry != "" {
		contextLines += "\nIndustry: " + req.Context.Industry
	}
	if req.Context.Idea != "" {
		contextLines += "\nBusiness idea: " + req.Context.Idea
	}

	return fmt.Sprintf(`You are reviewing one answer from a business intake form. Return ONLY valid JSON matching this schema:
{
  "quality": "needs_more" or "good" or "excellent",
  "score": 0.0 to 1.0,
  "feedback": "one or two encouraging sentences",
  "suggestions": ["short actionable suggestion", "..."],
  "needsQuantification": true if the answer lacks any concrete numbers,
  "needsRootCause": true if the answer describes symptoms without the underlying cause
}

Field: %s
Question asked: %s
Expected depth: at least %d characters of substance%s

Prospect's answer: %s

Judge substance over length. Suggestions must be specific to what is missing from this answer.`,
		req.Field, question, minChars, contextLines, req.Text)
}
