package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Config holds the Groq client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
	Timeout     time.Duration
}

// groqClient talks to Groq's OpenAI-compatible chat-completions API.
type groqClient struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	apiKey      string
	textModel   string
	visionModel string
}

// NewGroqClient constructs a Client backed by Groq.
func NewGroqClient(cfg Config, logger *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extract: Groq API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &groqClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *groqClient) ParseText(ctx context.Context, text string, currentDraft any) (Result, error) {
	content := "USER INPUT DATA:\n" + text
	if prefix := draftContext(currentDraft); prefix != "" {
		content = prefix + content
	}
	return c.complete(ctx, c.textModel, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: content},
	})
}

func (c *groqClient) ParseImage(ctx context.Context, image []byte, currentDraft any) (Result, error) {
	prompt := draftContext(currentDraft) + "ANALYZE THIS RECEIPT IMAGE:"
	encoded := base64.StdEncoding.EncodeToString(image)
	content := []map[string]any{
		{"type": "text", "text": prompt},
		{"type": "image_url", "image_url": map[string]string{
			"url": "data:image/jpeg;base64," + encoded,
		}},
	}
	return c.complete(ctx, c.visionModel, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: content},
	})
}

func (c *groqClient) complete(ctx context.Context, model string, messages []chatMessage) (Result, error) {
	body, err := json.Marshal(map[string]any{
		"model":           model,
		"messages":        messages,
		"temperature":     0,
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return Result{}, fmt.Errorf("extract: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("extract: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("extract: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("extract: api error (status %d): %s", resp.StatusCode, string(payload))
	}

	var completion chatResponse
	if err := json.Unmarshal(payload, &completion); err != nil {
		return Result{}, fmt.Errorf("extract: parse response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Result{}, fmt.Errorf("extract: no completion choices returned")
	}

	content := completion.Choices[0].Message.Content
	c.logger.Debug("completion received", "model", model, "bytes", len(content))
	return ParseResult(content)
}

// draftContext serialises the in-flight draft for the prompt, empty on
// nil or marshal failure.
func draftContext(currentDraft any) string {
	if currentDraft == nil {
		return ""
	}
	raw, err := json.Marshal(currentDraft)
	if err != nil {
		return ""
	}
	return "CURRENT_DRAFT (use this context for follow-up responses):\n" + string(raw) + "\n\n"
}
