package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// WebSearchOptions configures the web search tool.
type WebSearchOptions struct {
	MaxResults int
	Endpoint   string
	HTTPClient *http.Client
}

// WebSearchTool queries the Tavily search API and renders the hits as a
// plain-text snippet list the model can read back.
type WebSearchTool struct {
	apiKey     string
	maxResults int
	endpoint   string
	httpClient *http.Client
}

// NewWebSearchTool creates a web search tool with the given API key.
func NewWebSearchTool(apiKey string, optFns ...func(o *WebSearchOptions)) *WebSearchTool {
	opts := WebSearchOptions{
		MaxResults: 5,
		Endpoint:   tavilyEndpoint,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &WebSearchTool{
		apiKey:     apiKey,
		maxResults: opts.MaxResults,
		endpoint:   opts.Endpoint,
		httpClient: opts.HTTPClient,
	}
}

// Name implements Tool.
func (t *WebSearchTool) Name() string { return "web_search" }

// Description implements Tool.
func (t *WebSearchTool) Description() string {
	return "Search the web for current information. Returns a list of relevant page snippets with their source URLs."
}

// Parameters implements Tool.
func (t *WebSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	}
}

type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Call implements Tool by issuing one search request.
func (t *WebSearchTool) Call(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return nil, NewError(t.Name(), "query must be a non-empty string", CodeValidation)
	}

	reqBody := map[string]any{
		"api_key":     t.apiKey,
		"query":       query,
		"max_results": t.maxResults,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results []searchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(result.Results) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for i, r := range result.Results {
		fmt.Fprintf(&sb, "%d. %s (%s)\n%s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return strings.TrimSpace(sb.String()), nil
}
