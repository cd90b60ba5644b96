package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/certprep/config"
	"github.com/lshigami/certprep/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"gorm.io/datatypes"
)

// QuestionGeneratorService is the content source contract: it produces a
// fresh question for a domain at a target difficulty, or fails with
// ErrGenerationUnavailable.
type QuestionGeneratorService interface {
	GenerateQuestion(certName string, domain *model.Domain, targetDifficulty float64) (*model.Question, error)
}

type geminiQuestionService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiQuestionService(cfg *config.Config) (QuestionGeneratorService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Question generation will be unavailable.")
		return &geminiQuestionService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	generativeModel := client.GenerativeModel("gemini-1.5-flash")
	return &geminiQuestionService{client: generativeModel, cfg: cfg}, nil
}

const questionPromptTemplate = `You are generating a %s certification exam question.

Constraints:
- Domain: %s
- Difficulty Rating: %.0f (1000=medium baseline, higher=harder)
- 4 answer options, 1 correct answer
- Scenario-based where appropriate
- No ambiguous wording
- Professional tone, realistic exam-style question

Return JSON ONLY in this exact format (no markdown, no code fences):

{"scenario": "A brief scenario/context (1-3 sentences). Leave empty string if question is direct.", "question": "The actual question prompt", "options": ["Option A", "Option B", "Option C", "Option D"], "correct_index": 0, "explanation": "Why the correct answer is right", "concept_tag": "Primary concept being tested"}`

// generatedQuestion mirrors the JSON contract with the model.
type generatedQuestion struct {
	Scenario     string   `json:"scenario"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	ConceptTag   string   `json:"concept_tag"`
}

func (g generatedQuestion) validate() error {
	if strings.TrimSpace(g.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(g.Options) != 4 {
		return fmt.Errorf("expected 4 options, got %d", len(g.Options))
	}
	for i, opt := range g.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("option %d is empty", i)
		}
	}
	if g.CorrectIndex < 0 || g.CorrectIndex > 3 {
		return fmt.Errorf("correct_index must be 0-3, got %d", g.CorrectIndex)
	}
	if strings.TrimSpace(g.Explanation) == "" {
		return fmt.Errorf("missing explanation")
	}
	return nil
}

// stripCodeFences removes markdown fencing some model versions insist on
// despite the prompt.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func (s *geminiQuestionService) GenerateQuestion(certName string, domain *model.Domain, targetDifficulty float64) (*model.Question, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: gemini client not initialized", ErrGenerationUnavailable)
	}

	ctx := context.Background()
	prompt := fmt.Sprintf(questionPromptTemplate, certName, domain.Name, targetDifficulty)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Str("domain", domain.Name).Msg("Gemini API error during question generation")
		return nil, fmt.Errorf("%w: %s", ErrGenerationUnavailable, err.Error())
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response")
		return nil, fmt.Errorf("%w: empty response", ErrGenerationUnavailable)
	}

	fullResponseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullResponseText += string(txt)
		}
	}
	if fullResponseText == "" {
		return nil, fmt.Errorf("%w: no text content", ErrGenerationUnavailable)
	}

	var generated generatedQuestion
	if err := json.Unmarshal([]byte(stripCodeFences(fullResponseText)), &generated); err != nil {
		log.Warn().Err(err).Str("rawResponse", fullResponseText).Msg("Failed to parse generated question JSON")
		return nil, fmt.Errorf("%w: malformed JSON: %s", ErrGenerationUnavailable, err.Error())
	}
	if err := generated.validate(); err != nil {
		log.Warn().Err(err).Msg("Generated question failed validation")
		return nil, fmt.Errorf("%w: %s", ErrGenerationUnavailable, err.Error())
	}

	options := make([]string, len(generated.Options))
	for i, opt := range generated.Options {
		options[i] = strings.TrimSpace(opt)
	}

	question := &model.Question{
		CertificationID:  domain.CertificationID,
		DomainID:         domain.ID,
		ScenarioText:     strings.TrimSpace(generated.Scenario),
		QuestionText:     strings.TrimSpace(generated.Question),
		Options:          datatypes.NewJSONSlice(options),
		CorrectIndex:     generated.CorrectIndex,
		Explanation:      strings.TrimSpace(generated.Explanation),
		ConceptTag:       strings.TrimSpace(generated.ConceptTag),
		DifficultyRating: targetDifficulty,
	}
	return question, nil
}
