// Package platform implements the query adapters for the supported AI
// answer platforms.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rankbeam/citewatch/pkg/types"
)

// Adapter is the uniform query capability: given free text, return the
// answer text, the cited source URLs in answer order, and any follow-up
// queries the platform issued internally. Adapters perform no retries and
// have no side effects beyond the outbound call.
type Adapter interface {
	Name() types.Platform
	Query(ctx context.Context, text string) (*types.Answer, error)
}

// HTTP defaults shared by all adapters.
const defaultQueryTimeout = 90 * time.Second

var defaultHTTPClient = &http.Client{Timeout: defaultQueryTimeout}

// postJSON sends a JSON POST and returns the response body.
// Responses with status >= 400 are returned as errors including the body.
func postJSON(ctx context.Context, client *http.Client, reqURL string, headers map[string]string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// isWebURL reports whether s is an absolute http(s) URL. Non-URL source
// kinds (file attachments, internal documents) are dropped from citations.
func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// appendCitation appends s to citations when it is a web URL.
func appendCitation(citations []string, s string) []string {
	if !isWebURL(s) {
		return citations
	}
	return append(citations, s)
}

// ClassifyFailure categorizes an adapter query error.
func ClassifyFailure(err error) types.FailureCategory {
	if err == nil {
		return ""
	}

	if os.IsTimeout(err) || strings.Contains(err.Error(), "deadline exceeded") || strings.Contains(err.Error(), "context deadline") {
		return types.FailureTimeout
	}

	// HTTP 4xx errors are permanent (bad credential, bad request).
	if strings.Contains(err.Error(), "status 4") {
		return types.FailurePermanent
	}

	// HTTP 5xx and network errors are transient.
	return types.FailureTransient
}
