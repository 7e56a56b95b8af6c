package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rankbeam/citewatch/pkg/types"
)

const openAIBaseURL = "https://api.openai.com"

// OpenAIAdapter queries the OpenAI Responses API with the web_search tool.
type OpenAIAdapter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIAdapter creates an OpenAI adapter.
func NewOpenAIAdapter(apiKey, model, baseURL string) *OpenAIAdapter {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return &OpenAIAdapter{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  defaultHTTPClient,
	}
}

// Name returns the platform identifier.
func (a *OpenAIAdapter) Name() types.Platform { return types.PlatformOpenAI }

type openAIResponse struct {
	Output []struct {
		Type   string `json:"type"`
		Action struct {
			Type  string `json:"type"`
			Query string `json:"query"`
		} `json:"action"`
		Content []struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Annotations []struct {
				Type string `json:"type"`
				URL  string `json:"url"`
			} `json:"annotations"`
		} `json:"content"`
	} `json:"output"`
}

// Query runs one search-grounded query and extracts url_citation annotations
// in answer order.
func (a *OpenAIAdapter) Query(ctx context.Context, text string) (*types.Answer, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}

	payload := map[string]interface{}{
		"model": a.model,
		"input": text,
		"tools": []map[string]interface{}{
			{"type": "web_search"},
		},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + a.apiKey,
	}

	body, err := postJSON(ctx, a.client, a.baseURL+"/v1/responses", headers, payload)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai: parsing response: %w", err)
	}

	answer := &types.Answer{}
	var sb strings.Builder
	for _, item := range resp.Output {
		switch item.Type {
		case "web_search_call":
			if item.Action.Query != "" {
				answer.ExtraQueries = append(answer.ExtraQueries, item.Action.Query)
			}
		case "message":
			for _, c := range item.Content {
				if c.Type != "output_text" {
					continue
				}
				sb.WriteString(c.Text)
				for _, ann := range c.Annotations {
					if ann.Type == "url_citation" {
						answer.Citations = appendCitation(answer.Citations, ann.URL)
					}
				}
			}
		}
	}

	answer.Text = sb.String()
	if answer.Text == "" {
		return nil, fmt.Errorf("openai: response contains no output text")
	}
	return answer, nil
}
