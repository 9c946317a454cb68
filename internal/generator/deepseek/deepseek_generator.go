package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"planfill/internal/config"
	"planfill/internal/generator"
	"planfill/internal/port"
)

const (
	apiURL = "https://api.deepseek.com/chat/completions"

	// temperature matches the setting the fill prompt was tuned with.
	temperature = 0.7
)

// Generator implements port.TextGenerator using the DeepSeek Chat Completions API.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGenerator creates a DeepSeek-based text generator from a provider config.
func NewGenerator(cfg *config.GeneratorProviderConfig) *Generator {
	return newGenerator(cfg, apiURL)
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	return newGenerator(cfg, endpoint)
}

func newGenerator(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "deepseek-chat"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	prompt := generator.BuildFillPrompt()
	payload, err := generator.BuildFillPayload(input)
	if err != nil {
		return nil, fmt.Errorf("building payload: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":       g.model,
		"temperature": temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": prompt},
			{"role": "user", "content": payload},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling deepseek API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("deepseek API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("deepseek", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, g.model, prompt)
}

// apiResponse models the DeepSeek Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	content, err := generator.DecodeContentMap(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &port.GenerateOutput{
		Content:    content,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}

func init() {
	generator.RegisterProvider("deepseek", func(cfg *config.GeneratorProviderConfig) (port.TextGenerator, error) {
		return NewGenerator(cfg), nil
	})
}
