package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 10 * 1024 * 1024

// OpenRouterConfig configures the OpenAI-compatible chat completions client.
type OpenRouterConfig struct {
	APIKey   string
	BaseURL  string
	SiteURL  string
	SiteName string
	Timeout  time.Duration
}

// DefaultOpenRouterConfig returns sensible defaults.
func DefaultOpenRouterConfig(apiKey string) OpenRouterConfig {
	return OpenRouterConfig{
		APIKey:   apiKey,
		BaseURL:  "https://openrouter.ai/api/v1",
		SiteURL:  "https://github.com/genpersona/api",
		SiteName: "gen-persona",
		Timeout:  2 * time.Minute,
	}
}

// OpenRouterClient implements Client against OpenRouter's chat completions API.
type OpenRouterClient struct {
	cfg        OpenRouterConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenRouterClient creates a new OpenRouter client
func NewOpenRouterClient(cfg OpenRouterConfig, logger *zap.Logger) *OpenRouterClient {
	return &OpenRouterClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a single chat completion request.
func (c *OpenRouterClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &UnexpectedError{Err: errors.New("API key not configured")}
	}

	messages := make([]chatMessage, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemInstruction})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	payload, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", &UnexpectedError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &UnexpectedError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	httpReq.Header.Set("X-Title", c.cfg.SiteName)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", transportFromContext(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", transportFromContext(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("generative service returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("model", req.Model),
			zap.String("body", string(body)),
		)
		return "", &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &UnexpectedError{Err: err}
	}
	if decoded.Error != nil {
		return "", &UnexpectedError{Err: errors.New(decoded.Error.Message)}
	}
	if len(decoded.Choices) == 0 {
		return "", &UnexpectedError{Err: errors.New("no completion returned")}
	}

	c.logger.Debug("completion received",
		zap.String("model", req.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_len", len(decoded.Choices[0].Message.Content)),
	)
	return decoded.Choices[0].Message.Content, nil
}
