package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rankbeam/citewatch/pkg/types"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityAdapter queries the Perplexity chat completions API. Perplexity
// is search-grounded by default, so no tool configuration is needed.
type PerplexityAdapter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewPerplexityAdapter creates a Perplexity adapter.
func NewPerplexityAdapter(apiKey, model, baseURL string) *PerplexityAdapter {
	if baseURL == "" {
		baseURL = perplexityBaseURL
	}
	return &PerplexityAdapter{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  defaultHTTPClient,
	}
}

// Name returns the platform identifier.
func (a *PerplexityAdapter) Name() types.Platform { return types.PlatformPerplexity }

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	SearchResults []struct {
		URL string `json:"url"`
	} `json:"search_results"`
	Citations        []string `json:"citations"`
	RelatedQuestions []string `json:"related_questions"`
}

// Query runs one query. Citations prefer the search_results list (newer API
// shape) and fall back to the top-level citations array.
func (a *PerplexityAdapter) Query(ctx context.Context, text string) (*types.Answer, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("perplexity: api key is required")
	}

	payload := map[string]interface{}{
		"model": a.model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": text},
		},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + a.apiKey,
	}

	body, err := postJSON(ctx, a.client, a.baseURL+"/chat/completions", headers, payload)
	if err != nil {
		return nil, fmt.Errorf("perplexity: %w", err)
	}

	var resp perplexityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("perplexity: parsing response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("perplexity: response contains no choices")
	}

	answer := &types.Answer{
		Text:         resp.Choices[0].Message.Content,
		ExtraQueries: resp.RelatedQuestions,
	}

	if len(resp.SearchResults) > 0 {
		for _, r := range resp.SearchResults {
			answer.Citations = appendCitation(answer.Citations, r.URL)
		}
	} else {
		for _, c := range resp.Citations {
			answer.Citations = appendCitation(answer.Citations, c)
		}
	}

	return answer, nil
}
