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
	openaiAPIURL  = "https://api.openai.com/v1/chat/completions"
	openaiDiffCap = 4000
)

// OpenAIProvider summarises sessions via the OpenAI chat completions API.
type OpenAIProvider struct {
	http      *http.Client
	apiURL    string
	apiKey    string
	model     string
	maxTokens int
}

// NewOpenAIProvider builds an OpenAIProvider.
func NewOpenAIProvider(apiKey, model string, maxTokens int) *OpenAIProvider {
	return &OpenAIProvider{http: &http.Client{}, apiURL: openaiAPIURL, apiKey: apiKey, model: model, maxTokens: maxTokens}
}

type openaiRequest struct {
	Model          string               `json:"model"`
	MaxTokens      int                  `json:"max_tokens"`
	Messages       []openaiMessage      `json:"messages"`
	ResponseFormat openaiResponseFormat `json:"response_format"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponseFormat struct {
	Type string `json:"type"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   *openaiUsage   `json:"usage"`
}

type openaiChoice struct {
	Message openaiResponseMessage `json:"message"`
}

type openaiResponseMessage struct {
	Content string `json:"content"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

func (p *OpenAIProvider) Summarize(ctx context.Context, sc *SessionContext) (SummarizationResult, error) {
	prompt := buildPrompt(sc, openaiDiffCap)

	body, err := json.Marshal(openaiRequest{
		Model:          p.model,
		MaxTokens:      p.maxTokens,
		Messages:       []openaiMessage{{Role: "user", Content: prompt}},
		ResponseFormat: openaiResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("marshal openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("new openai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("send request to openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return SummarizationResult{}, fmt.Errorf("openai api error (%d): %s", resp.StatusCode, errBody)
	}

	var apiResp openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return SummarizationResult{}, fmt.Errorf("parse openai response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return SummarizationResult{}, fmt.Errorf("no content in openai response")
	}
	summary, suggestedType, keyFiles := parseSummaryResponse(apiResp.Choices[0].Message.Content)

	result := SummarizationResult{Summary: summary, SuggestedType: suggestedType, KeyFiles: keyFiles}
	if apiResp.Usage != nil {
		result.TokensUsed = apiResp.Usage.PromptTokens + apiResp.Usage.CompletionTokens
	}
	return result, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) IsAvailable() bool { return p.apiKey != "" }
