package service

import (
	"casepilot/internal/config"
	"casepilot/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// GeneratorService produces the business-case document from a finalized
// intake. Unlike the evaluator, a generation failure is surfaced to the
// caller: finalize must not mark a draft submitted on the back of nothing.
type GeneratorService struct {
	gemini *geminiClient
}

// NewGeneratorService creates a new generator service
func NewGeneratorService(cfg *config.AIConfig) *GeneratorService {
	return &GeneratorService{
		gemini: newGeminiClient(cfg),
	}
}

// Generate builds the business-case content for a draft's final data. The
// returned string names the model used ("mock" when no API key is set).
func (s *GeneratorService) Generate(ctx context.Context, draft *model.Draft, data map[string]string) (*model.BusinessCaseContent, string, error) {
	if !s.gemini.enabled() {
		return s.mockContent(draft, data), "mock", nil
	}

	prompt := s.buildCasePrompt(draft, data)
	response, err := s.gemini.generateJSON(ctx, s.gemini.config.Models.Case, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("generation: %w", err)
	}

	var content model.BusinessCaseContent
	if err := json.Unmarshal([]byte(response), &content); err != nil {
		return nil, "", fmt.Errorf("generation returned bad JSON: %w", err)
	}

	return &content, s.gemini.config.Models.Case, nil
}

func (s *GeneratorService) buildCasePrompt(draft *model.Draft, data map[string]string) string {
	var sb strings.Builder
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if data[k] == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", k, data[k]))
	}

	return fmt.Sprintf(`You are a management consultant drafting a business case for a prospect. Return ONLY valid JSON:
{
  "executiveSummary": ["finding 1", "finding 2", "finding 3"],
  "problemStatement": "a crisp statement of the core problem",
  "proposedApproach": ["step 1", "step 2", "step 3"],
  "marketView": "short assessment of the market and competitive position",
  "projections": ["projection with numbers 1", "projection with numbers 2"],
  "risks": ["risk 1", "risk 2"],
  "nextSteps": ["concrete next step 1", "concrete next step 2"]
}

Prospect: %s
Intake answers:
%s
Ground every section in the answers above. Where the answers give numbers, use them; where they do not, state assumptions explicitly.`,
		draft.Name, sb.String())
}

func (s *GeneratorService) mockContent(draft *model.Draft, data map[string]string) *model.BusinessCaseContent {
	return &model.BusinessCaseContent{
		ExecutiveSummary: []string{
			fmt.Sprintf("Business case drafted for %s from %d intake answers", draft.Name, len(data)),
			"Mock content: set GEMINI_API_KEY for a real draft",
		},
		ProblemStatement: data["main_challenge"],
		ProposedApproach: []string{"Clarify the target segment", "Quantify the current loss", "Pilot one measurable intervention"},
		MarketView:       "Not assessed in mock mode.",
		Projections:      []string{"No projections in mock mode"},
		Risks:            []string{"Mock output, not reviewed"},
		NextSteps:        []string{"Book a consultation call"},
	}
}
