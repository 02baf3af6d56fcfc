package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient implements Client on the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	logger *zap.Logger
}

// NewGeminiClient creates a Gemini-backed client
func NewGeminiClient(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, logger: logger}, nil
}

// Generate sends a single GenerateContent call.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		config.Temperature = &t
	}

	// OpenRouter slugs such as "google/gemini-2.0-flash-001" name the same model.
	model := strings.TrimPrefix(req.Model, "google/")

	res, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.UserPrompt), config)
	if err != nil {
		// The SDK folds HTTP status failures and network errors together.
		return "", transportFromContext(ctx, err)
	}

	// Blocked prompts come back without candidates.
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", &UnexpectedError{Err: errors.New("no candidates returned")}
	}

	var text string
	for _, part := range res.Candidates[0].Content.Parts {
		text += part.Text
	}

	g.logger.Debug("gemini completion received",
		zap.String("model", model),
		zap.Int("response_len", len(text)),
	)
	return text, nil
}
