package service

import (
	"casepilot/internal/config"
	"casepilot/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselineEmptyAnswer(t *testing.T) {
	for _, minChars := range []int{1, 50, 100, 250} {
		result := Baseline("", minChars)
		assert.Equal(t, model.QualityNeedsMore, result.Quality, "minChars=%d", minChars)
		assert.Equal(t, minChars, result.Remaining, "minChars=%d", minChars)
		assert.Zero(t, result.Ratio)
		assert.Nil(t, result.Enhanced)
	}
}

func TestBaselineClassification(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		minChars int
		want     model.AnswerQuality
	}{
		{"well under half", 20, 100, model.QualityNeedsMore},
		{"just under half", 49, 100, model.QualityNeedsMore},
		{"exactly half", 50, 100, model.QualityGood},
		{"just under target", 99, 100, model.QualityGood},
		{"exactly at target", 100, 100, model.QualityExcellent},
		{"over target", 150, 100, model.QualityExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("a", tt.length)
			result := Baseline(text, tt.minChars)
			assert.Equal(t, tt.want, result.Quality)
		})
	}
}

func TestBaselineExactBoundaryInclusive(t *testing.T) {
	text := strings.Repeat("x", 80)
	result := Baseline(text, 80)
	assert.Equal(t, 1.0, result.Ratio)
	assert.Equal(t, model.QualityExcellent, result.Quality)
	assert.Zero(t, result.Remaining)
}

func TestBaselineTrimsWhitespace(t *testing.T) {
	result := Baseline("   hello   ", 10)
	assert.Equal(t, 0.5, result.Ratio)
	assert.Equal(t, 5, result.Remaining)
}

func TestBaselineSuggestionsShortGrowthAnswer(t *testing.T) {
	text := "I want to grow my business"
	result := Baseline(text, 100)

	assert.Equal(t, model.QualityNeedsMore, result.Quality)
	assert.Equal(t, 100-len(text), result.Remaining)

	joined := strings.Join(result.Suggestions, " ")
	assert.Contains(t, joined, "target customer")
	assert.Contains(t, joined, "problem")
	assert.Contains(t, joined, "at least 100 characters")
}

func TestBaselineSuggestionsSuppressedByKeywords(t *testing.T) {
	text := "Our customers are small bakeries whose main problem is waste. " +
		"Unlike competitors we predict demand, targeting 30% less waste within 6 months of onboarding."
	result := Baseline(text, 100)

	for _, s := range result.Suggestions {
		assert.NotContains(t, s, "target customer")
		assert.NotContains(t, s, "problem you are solving")
		assert.NotContains(t, s, "numbers")
		assert.NotContains(t, s, "timeline")
	}
}

func TestBaselineSuggestionThresholds(t *testing.T) {
	// Below 80 no numeric or timeline prompts, below 100 no keyword prompts
	result := Baseline("short answer", 50)
	for _, s := range result.Suggestions {
		assert.NotContains(t, s, "numbers")
		assert.NotContains(t, s, "customer")
	}

	// 80 triggers the numeric and timeline checks but not the keyword trio
	result = Baseline("short answer", 80)
	joined := strings.Join(result.Suggestions, " ")
	assert.Contains(t, joined, "numbers")
	assert.Contains(t, joined, "timeline")
	assert.NotContains(t, joined, "customer")
}

type fakeFormRepo struct {
	form *model.IntakeForm
	err  error
}

func (f *fakeFormRepo) Upsert(ctx context.Context, form *model.IntakeForm) error { return f.err }
func (f *fakeFormRepo) GetBySlug(ctx context.Context, slug string) (*model.IntakeForm, error) {
	return f.form, f.err
}

func testForm() *model.IntakeForm {
	return &model.IntakeForm{
		Slug:  "default",
		Title: "Test Intake",
		Steps: []model.IntakeStep{
			{Number: 1, Title: "About", Fields: []model.IntakeField{
				{Key: "one_liner", Question: "Describe your business in one sentence.", MinChars: 30},
			}},
			{Number: 2, Title: "Goal", Fields: []model.IntakeField{
				{Key: "goal", Question: "What do you want to achieve?", MinChars: 80, WithContext: true},
			}},
			{Number: 3, Title: "Challenge", Fields: []model.IntakeField{
				{Key: "main_challenge", Question: "What is the biggest obstacle?", MinChars: 100, WithContext: true},
			}},
		},
	}
}

func TestEvaluateResolvesThresholdFromForm(t *testing.T) {
	svc := NewEvaluatorService(&config.AIConfig{}, &fakeFormRepo{form: testForm()}, nil, "default")

	result := svc.Evaluate(context.Background(), &model.EvaluateRequest{
		Field: "one_liner",
		Text:  strings.Repeat("b", 30),
	})
	assert.Equal(t, model.QualityExcellent, result.Quality)
	assert.Equal(t, 1.0, result.Ratio)
}

func TestEvaluateBaselineOnlyWhenModeBaseline(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewEvaluatorService(geminiTestConfig(server.URL), &fakeFormRepo{form: testForm()}, nil, "default")
	result := svc.Evaluate(context.Background(), &model.EvaluateRequest{
		Field: "goal",
		Text:  "Grow revenue 20% in 12 months by expanding to two new cities",
		Mode:  model.ModeBaseline,
	})

	assert.False(t, called, "baseline mode must not call the AI")
	assert.Nil(t, result.Enhanced)
}

func TestEvaluateSkipsAIForShortAnswers(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewEvaluatorService(geminiTestConfig(server.URL), &fakeFormRepo{form: testForm()}, nil, "default")
	result := svc.Evaluate(context.Background(), &model.EvaluateRequest{
		Field: "goal",
		Text:  "too short",
		Mode:  model.ModeAI,
	})

	assert.False(t, called, "answers under 20 chars stay on the baseline")
	assert.Nil(t, result.Enhanced)
}

func TestEvaluateAIEnhancement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		evalJSON := `{"quality":"good","score":0.62,"feedback":"Solid start.","suggestions":["Quantify the revenue target."],"needsQuantification":true,"needsRootCause":false}`
		writeGeminiResponse(w, evalJSON)
	}))
	defer server.Close()

	svc := NewEvaluatorService(geminiTestConfig(server.URL), &fakeFormRepo{form: testForm()}, nil, "default")
	result := svc.Evaluate(context.Background(), &model.EvaluateRequest{
		Field: "goal",
		Text:  "I want to grow revenue a lot next year",
		Mode:  model.ModeAI,
	})

	require.NotNil(t, result.Enhanced)
	assert.Equal(t, model.QualityGood, result.Quality)
	assert.Equal(t, []string{"Quantify the revenue target."}, result.Suggestions)
	assert.Equal(t, 0.62, result.Enhanced.Score)
	assert.Equal(t, "Solid start.", result.Enhanced.Feedback)
	assert.True(t, result.Enhanced.NeedsQuantification)
	assert.False(t, result.Enhanced.NeedsRootCause)
}

func TestEvaluateAIFieldFallback(t *testing.T) {
	// Collaborator omits quality and suggestions: baseline values survive
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGeminiResponse(w, `{"score":0.4,"feedback":"More detail please."}`)
	}))
	defer server.Close()

	svc := NewEvaluatorService(geminiTestConfig(server.URL), &fakeFormRepo{form: testForm()}, nil, "default")
	text := "I want to grow revenue a lot next year"
	result := svc.Evaluate(context.Background(), &model.EvaluateRequest{
		Field: "goal",
		Text:  text,
		Mode:  model.ModeAI,
	})

	baseline := Baseline(text, 80)
	require.NotNil(t, result.Enhanced)
	assert.Equal(t, baseline.Quality, result.Quality)
	assert.Equal(t, baseline.Suggestions, result.Suggestions)
	assert.Equal(t, "More detail please.", result.Enhanced.Feedback)
}

func TestEvaluateAIFailureFallsBackSilently(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewEvaluatorService(geminiTestConfig(server.URL), &fakeFormRepo{form: testForm()}, nil, "default")
	text := "I want to grow revenue a lot next year"
	result := svc.Evaluate(context.Background(), &model.EvaluateRequest{
		Field: "goal",
		Text:  text,
		Mode:  model.ModeAI,
	})

	baseline := Baseline(text, 80)
	assert.Equal(t, baseline, result)
}

func TestEvaluateAIBadJSONFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGeminiResponse(w, "not json at all")
	}))
	defer server.Close()

	svc := NewEvaluatorService(geminiTestConfig(server.URL), &fakeFormRepo{form: testForm()}, nil, "default")
	result := svc.Evaluate(context.Background(), &model.EvaluateRequest{
		Field: "goal",
		Text:  "I want to grow revenue a lot next year",
		Mode:  model.ModeAI,
	})

	assert.Nil(t, result.Enhanced)
}

func geminiTestConfig(baseURL string) *config.AIConfig {
	return &config.AIConfig{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Models:    config.GeminiModels{Eval: "eval-model", Case: "case-model"},
		TimeoutMS: 2000,
	}
}

func writeGeminiResponse(w http.ResponseWriter, text string) {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Println(err)
	}
}
