package service

import (
	"casepilot/internal/config"
	"casepilot/internal/model"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMockWithoutKey(t *testing.T) {
	svc := NewGeneratorService(&config.AIConfig{TimeoutMS: 1000})
	draft := &model.Draft{Name: "Jane Doe", Email: "jane@example.com"}

	content, usedModel, err := svc.Generate(context.Background(), draft, map[string]string{
		"main_challenge": "Churn is eating growth",
	})
	require.NoError(t, err)
	assert.Equal(t, "mock", usedModel)
	assert.Equal(t, "Churn is eating growth", content.ProblemStatement)
	assert.NotEmpty(t, content.ExecutiveSummary)
}

func TestGenerateParsesModelOutput(t *testing.T) {
	caseJSON := `{
		"executiveSummary": ["Bakeries lose 12% of stock to waste"],
		"problemStatement": "Daily demand is guessed, not predicted.",
		"proposedApproach": ["Pilot demand forecasting with three stores"],
		"marketView": "Fragmented market, no dominant tooling.",
		"projections": ["Waste down 30% within 6 months"],
		"risks": ["Forecast accuracy depends on input quality"],
		"nextSteps": ["Book a consultation call"]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGeminiResponse(w, caseJSON)
	}))
	defer server.Close()

	svc := NewGeneratorService(geminiTestConfig(server.URL))
	draft := &model.Draft{Name: "Jane Doe", Email: "jane@example.com"}

	content, usedModel, err := svc.Generate(context.Background(), draft, map[string]string{
		"main_challenge": "Too much waste",
	})
	require.NoError(t, err)
	assert.Equal(t, "case-model", usedModel)
	assert.Equal(t, "Daily demand is guessed, not predicted.", content.ProblemStatement)
	assert.Equal(t, []string{"Waste down 30% within 6 months"}, content.Projections)
}

func TestGenerateSurfacesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewGeneratorService(geminiTestConfig(server.URL))
	draft := &model.Draft{Name: "Jane Doe", Email: "jane@example.com"}

	_, _, err := svc.Generate(context.Background(), draft, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation")
}

func TestGenerateRejectsBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGeminiResponse(w, "this is prose, not JSON")
	}))
	defer server.Close()

	svc := NewGeneratorService(geminiTestConfig(server.URL))
	draft := &model.Draft{Name: "Jane Doe", Email: "jane@example.com"}

	_, _, err := svc.Generate(context.Background(), draft, nil)
	require.Error(t, err)
}
