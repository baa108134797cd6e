package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	anthropicDiffCap = 4000
)

// AnthropicProvider summarises sessions via the Anthropic Messages API.
type AnthropicProvider struct {
	http      *http.Client
	apiURL    string
	apiKey    string
	model     string
	maxTokens int
}

// NewAnthropicProvider builds an AnthropicProvider.
func NewAnthropicProvider(apiKey, model string, maxTokens int) *AnthropicProvider {
	return &AnthropicProvider{http: &http.Client{}, apiURL: anthropicAPIURL, apiKey: apiKey, model: model, maxTokens: maxTokens}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   *anthropicUsage         `json:"usage"`
}

type anthropicContentBlock struct {
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (p *AnthropicProvider) Summarize(ctx context.Context, sc *SessionContext) (SummarizationResult, error) {
	prompt := buildPrompt(sc, anthropicDiffCap)

	body, err := json.Marshal(anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("marshal anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("new anthropic request: %w", err)
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("send request to anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return SummarizationResult{}, fmt.Errorf("anthropic api error (%d): %s", resp.StatusCode, errBody)
	}

	var apiResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return SummarizationResult{}, fmt.Errorf("parse anthropic response: %w", err)
	}

	if len(apiResp.Content) == 0 {
		return SummarizationResult{}, fmt.Errorf("no text content in anthropic response")
	}
	summary, suggestedType, keyFiles := parseSummaryResponse(apiResp.Content[0].Text)

	result := SummarizationResult{Summary: summary, SuggestedType: suggestedType, KeyFiles: keyFiles}
	if apiResp.Usage != nil {
		result.TokensUsed = apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens
	}
	return result, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) IsAvailable() bool { return p.apiKey != "" }
