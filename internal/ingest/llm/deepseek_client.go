// Package llm talks to the DeepSeek chat-completions API to produce
// proposed scores for one rubric dimension at a time. Proposals are
// advisory; they never write to the score tables directly.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pitchai/pitchai-backend/internal/review/rubric"
)

// DeepSeekClient calls an OpenAI-compatible chat completions endpoint.
type DeepSeekClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

// NewDeepSeek creates a client. Model defaults to deepseek-chat.
func NewDeepSeek(baseURL, apiKey, model string) *DeepSeekClient {
	if model == "" {
		model = "deepseek-chat"
	}
	return &DeepSeekClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// SubScore is a proposed sub-dimension score.
type SubScore struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Comments string  `json:"comments"`
}

// InfoHint flags information the document is missing for a dimension.
type InfoHint struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// DimensionEvaluation is the proposed score for one rubric dimension.
type DimensionEvaluation struct {
	Score         float64    `json:"score"`
	MaxScore      float64    `json:"max_score"`
	Comments      string     `json:"comments"`
	SubDimensions []SubScore `json:"sub_dimensions"`
	MissingInfo   []InfoHint `json:"missing_info"`
}

// Proposal aggregates per-dimension evaluations for one document.
type Proposal struct {
	Dimensions  map[string]DimensionEvaluation `json:"dimensions"`
	TotalScore  float64                        `json:"total_score"`
	MissingInfo []InfoHint                     `json:"missing_information"`
}

// EvaluateDimension scores the document text against one dimension's rubric.
func (c *DeepSeekClient) EvaluateDimension(ctx context.Context, dim rubric.Dimension, text string) (*DimensionEvaluation, error) {
	req := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a professional project reviewer evaluating business plans. Respond with JSON only."},
			{Role: "user", Content: dimensionPrompt(dim, text)},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	}
	b, _ := json.Marshal(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("deepseek request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("deepseek call: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("deepseek decode: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := resp.Status
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("deepseek error (status %d): %s", resp.StatusCode, msg)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("deepseek: empty response")
	}

	var eval DimensionEvaluation
	if err := json.Unmarshal([]byte(stripFences(out.Choices[0].Message.Content)), &eval); err != nil {
		return nil, fmt.Errorf("deepseek: parse evaluation: %w", err)
	}
	if eval.MaxScore == 0 {
		eval.MaxScore = dim.MaxScore
	}
	return &eval, nil
}

func dimensionPrompt(dim rubric.Dimension, text string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluate the %q dimension of the following business plan, worth %.0f points total.\n\n", dim.Name, dim.MaxScore)
	sb.WriteString("Scoring criteria:\n")
	for _, sub := range dim.SubDimensions {
		fmt.Fprintf(&sb, "- %s (%.0f points)\n", sub.Name, sub.MaxScore)
	}
	sb.WriteString("\nBusiness plan content:\n")
	sb.WriteString(text)
	fmt.Fprintf(&sb, `

Return a JSON object:
{
  "score": <total for this dimension>,
  "max_score": %.0f,
  "comments": "<overall assessment>",
  "sub_dimensions": [{"name": "...", "score": 0, "max_score": 0, "comments": "..."}],
  "missing_info": [{"type": "<missing information type>", "description": "<what is missing>"}]
}
`, dim.MaxScore)
	return sb.String()
}

// stripFences removes a markdown code fence if the model wrapped its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
