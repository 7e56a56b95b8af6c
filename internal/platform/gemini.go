package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rankbeam/citewatch/pkg/types"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiAdapter queries the Gemini generateContent API with Google Search
// grounding.
type GeminiAdapter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiAdapter creates a Gemini adapter.
func NewGeminiAdapter(apiKey, model, baseURL string) *GeminiAdapter {
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &GeminiAdapter{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  defaultHTTPClient,
	}
}

// Name returns the platform identifier.
func (a *GeminiAdapter) Name() types.Platform { return types.PlatformGemini }

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			WebSearchQueries []string `json:"webSearchQueries"`
			GroundingChunks  []struct {
				Web struct {
					URI string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// Query runs one search-grounded query. Citations come from the grounding
// chunks' web URIs; non-web chunks (retrieved documents) are skipped.
func (a *GeminiAdapter) Query(ctx context.Context, text string) (*types.Answer, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": text}}},
		},
		"tools": []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		},
	}

	headers := map[string]string{
		"x-goog-api-key": a.apiKey,
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", a.baseURL, a.model)
	body, err := postJSON(ctx, a.client, reqURL, headers, payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("gemini: parsing response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: response contains no candidates")
	}

	cand := resp.Candidates[0]
	answer := &types.Answer{
		ExtraQueries: cand.GroundingMetadata.WebSearchQueries,
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		sb.WriteString(part.Text)
	}
	answer.Text = sb.String()
	if answer.Text == "" {
		return nil, fmt.Errorf("gemini: candidate contains no text parts")
	}

	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		answer.Citations = appendCitation(answer.Citations, chunk.Web.URI)
	}

	return answer, nil
}
