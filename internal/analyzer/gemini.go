package analyzer

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// Model is an opaque text-completion service.
type Model interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, model, prompt string) (string, error)

func (f ModelFunc) Generate(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

const (
	DefaultTemperature     float32 = 0.2
	DefaultMaxOutputTokens int32   = 2048
)

// GeminiConfig holds the request settings shared by every call.
type GeminiConfig struct {
	APIKey          string
	Temperature     float32
	MaxOutputTokens int32
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiModel implements Model on the Gemini API.
type GeminiModel struct {
	models contentGenerator
	cfg    GeminiConfig
}

// NewGeminiModel creates a Gemini API client authenticated by cfg.APIKey.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.CodeModelUnavailable, "gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable, "create gemini client")
	}
	return newGeminiModel(client.Models, cfg), nil
}

func newGeminiModel(models contentGenerator, cfg GeminiConfig) *GeminiModel {
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return &GeminiModel{models: models, cfg: cfg}
}

var permissiveSafety = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// Generate sends prompt as the only user message and returns the text of the
// first candidate. A safety stop or an empty answer is a MODEL_PROTOCOL
// error; transport failures are MODEL_UNAVAILABLE.
func (g *GeminiModel) Generate(ctx context.Context, model, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.cfg.Temperature),
		MaxOutputTokens:  g.cfg.MaxOutputTokens,
		ResponseMIMEType: "application/json",
		SafetySettings:   permissiveSafety,
	}

	resp, err := g.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", apperrors.Wrap(err, apperrors.CodeModelUnavailable, "gemini call interrupted")
		}
		return "", apperrors.Wrap(err, apperrors.CodeModelUnavailable, "gemini generate content")
	}
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", apperrors.Newf(apperrors.CodeModelProtocol, "gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return "", apperrors.New(apperrors.CodeModelProtocol, "no response candidates from gemini")
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", apperrors.New(apperrors.CodeModelProtocol, "gemini stopped for safety")
	}

	var out strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				out.WriteString(part.Text)
			}
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", apperrors.New(apperrors.CodeModelProtocol, "empty response from gemini")
	}
	return out.String(), nil
}
