package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-guidance-be/pkg/retrieval"
)

// HTTPProvider calls the retrieval backend over its REST API.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

// Ensure HTTPProvider implements Provider
var _ retrieval.Provider = &HTTPProvider{}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type searchRequest struct {
	Query      string   `json:"query"`
	ThemeHints []string `json:"theme_hints,omitempty"`
}

type searchResponse struct {
	Kind     string              `json:"kind"`
	Results  []retrieval.Item    `json:"results,omitempty"`
	Clusters []retrieval.Cluster `json:"clusters,omitempty"`
}

// --- Interface Implementation ---

func (p *HTTPProvider) Search(ctx context.Context, query string, themeHints []string) (*retrieval.Result, error) {
	payloadBytes, err := json.Marshal(searchRequest{
		Query:      query,
		ThemeHints: themeHints,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/api/search"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// Map the loose wire shape onto the tagged result union. A backend
	// that sends clusters wins over an empty ranked list.
	result := &retrieval.Result{}
	if searchResp.Kind == string(retrieval.KindClustered) || len(searchResp.Clusters) > 0 {
		result.Kind = retrieval.KindClustered
		result.Clusters = searchResp.Clusters
	} else {
		result.Kind = retrieval.KindRanked
		result.Ranked = searchResp.Results
	}

	return result, nil
}
