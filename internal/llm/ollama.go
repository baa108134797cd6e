package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const ollamaDiffCap = 2000

// OllamaProvider summarises sessions via a local Ollama server.
type OllamaProvider struct {
	http     *http.Client
	endpoint string
	model    string
}

// NewOllamaProvider builds an OllamaProvider pointed at endpoint.
func NewOllamaProvider(endpoint, model string) *OllamaProvider {
	return &OllamaProvider{http: &http.Client{}, endpoint: endpoint, model: model}
}

func (p *OllamaProvider) apiURL() string {
	return strings.TrimRight(p.endpoint, "/") + "/api/generate"
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	EvalCount       *int   `json:"eval_count,omitempty"`
	PromptEvalCount *int   `json:"prompt_eval_count,omitempty"`
}

func (p *OllamaProvider) Summarize(ctx context.Context, sc *SessionContext) (SummarizationResult, error) {
	prompt := buildPrompt(sc, ollamaDiffCap)

	body, err := json.Marshal(ollamaRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL(), bytes.NewReader(body))
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("new ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return SummarizationResult{}, fmt.Errorf("send request to ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return SummarizationResult{}, fmt.Errorf("ollama api error (%d): %s", resp.StatusCode, errBody)
	}

	var apiResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return SummarizationResult{}, fmt.Errorf("parse ollama response: %w", err)
	}

	summary, suggestedType, keyFiles := parseSummaryResponse(apiResp.Response)
	result := SummarizationResult{Summary: summary, SuggestedType: suggestedType, KeyFiles: keyFiles}

	switch {
	case apiResp.PromptEvalCount != nil && apiResp.EvalCount != nil:
		result.TokensUsed = *apiResp.PromptEvalCount + *apiResp.EvalCount
	case apiResp.PromptEvalCount != nil:
		result.TokensUsed = *apiResp.PromptEvalCount
	case apiResp.EvalCount != nil:
		result.TokensUsed = *apiResp.EvalCount
	}
	return result, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) IsAvailable() bool { return p.endpoint != "" }
