package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rankbeam/citewatch/pkg/types"
)

// Anthropic API constants.
const (
	anthropicBaseURL   = "https://api.anthropic.com"
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 2048
	anthropicMaxUses   = 5
)

// AnthropicAdapter queries the Anthropic Messages API with the server-side
// web_search tool.
type AnthropicAdapter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropicAdapter creates an Anthropic adapter.
func NewAnthropicAdapter(apiKey, model, baseURL string) *AnthropicAdapter {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicAdapter{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  defaultHTTPClient,
	}
}

// Name returns the platform identifier.
func (a *AnthropicAdapter) Name() types.Platform { return types.PlatformAnthropic }

type anthropicResponse struct {
	Content []struct {
		Type  string `json:"type"`
		Text  string `json:"text"`
		Input struct {
			Query string `json:"query"`
		} `json:"input"`
		Citations []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"citations"`
	} `json:"content"`
}

// Query runs one search-grounded query. Citations come from the text blocks'
// web_search_result_location entries, in answer order; server_tool_use blocks
// carry the follow-up search queries.
func (a *AnthropicAdapter) Query(ctx context.Context, text string) (*types.Answer, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}

	payload := map[string]interface{}{
		"model":      a.model,
		"max_tokens": anthropicMaxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": text},
		},
		"tools": []map[string]interface{}{
			{
				"type":     "web_search_20250305",
				"name":     "web_search",
				"max_uses": anthropicMaxUses,
			},
		},
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	body, err := postJSON(ctx, a.client, a.baseURL+"/v1/messages", headers, payload)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("anthropic: parsing response: %w", err)
	}

	answer := &types.Answer{}
	var sb strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "server_tool_use":
			if block.Input.Query != "" {
				answer.ExtraQueries = append(answer.ExtraQueries, block.Input.Query)
			}
		case "text":
			sb.WriteString(block.Text)
			for _, c := range block.Citations {
				if c.Type == "web_search_result_location" {
					answer.Citations = appendCitation(answer.Citations, c.URL)
				}
			}
		}
	}

	answer.Text = sb.String()
	if answer.Text == "" {
		return nil, fmt.Errorf("anthropic: response contains no text content")
	}
	return answer, nil
}
