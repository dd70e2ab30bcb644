// Package exa retrieves time-sensitive market context through the Exa
// neural search API.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stockest/stockest-core/core/enrichment"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultEndpoint = "https://api.exa.ai/search"

	// querySuffix biases neural search towards fresh market coverage.
	querySuffix = " stock price latest market data financial news"

	resultLimit    = 5
	snippetLimit   = 200
	freshnessLimit = 24 * time.Hour
)

type Client struct {
	apiKey   string
	endpoint string

	httpClient *http.Client
	now        func() time.Time
}

type ClientOption func(*Client)

// WithEndpoint overrides the search URL. Used by tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint: defaultEndpoint,
		now:      time.Now,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		apiKey, ok := os.LookupEnv("EXA_API_KEY")
		if !ok {
			return nil, fmt.Errorf("exa api key not found")
		}
		client.apiKey = apiKey
	}

	return client, nil
}

type searchRequest struct {
	Query              string         `json:"query"`
	Type               string         `json:"type"`
	UseAutoprompt      bool           `json:"useAutoprompt"`
	NumResults         int            `json:"numResults"`
	Contents           searchContents `json:"contents"`
	Category           string         `json:"category"`
	StartPublishedDate string         `json:"startPublishedDate"`
}

type searchContents struct {
	Text       bool `json:"text"`
	Highlights bool `json:"highlights"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Text          string `json:"text"`
	PublishedDate string `json:"publishedDate"`
}

// Fetch retrieves up to five fresh results for the query and reduces them to
// a plain-text context block. Retrieval order is preserved; no deduplication
// or re-ranking is applied beyond what the search source provides.
func (c *Client) Fetch(ctx context.Context, query string, languageTag string) (enrichment.Result, error) {
	ctx, span := tracer.Start(ctx, "fetch market context")
	defer span.End()
	span.SetAttributes(attribute.String("request.language", languageTag))

	body, err := json.Marshal(searchRequest{
		Query:              query + querySuffix,
		Type:               "neural",
		UseAutoprompt:      true,
		NumResults:         resultLimit,
		Contents:           searchContents{Text: true, Highlights: true},
		Category:           "financial",
		StartPublishedDate: c.now().Add(-freshnessLimit).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return enrichment.Unavailable(), fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error unmarshalling JSON: %w", err)
	}

	span.SetAttributes(attribute.Int("response.results", len(parsed.Results)))
	contextText := buildContext(parsed.Results)
	if contextText == "" {
		return enrichment.Unavailable(), nil
	}

	return enrichment.Result{Available: true, Context: contextText}, nil
}

// buildContext reduces each result to a Title/Content/Date block and joins
// the blocks with blank lines.
func buildContext(results []searchResult) string {
	blocks := make([]string, 0, len(results))
	for _, result := range results {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s\nDate: %s",
			result.Title, snippet(result.Text), result.PublishedDate))
	}
	return strings.Join(blocks, "\n\n")
}

// snippet caps the text at the snippet limit, backing up to the nearest
// rune boundary so multibyte content is never cut mid-rune.
func snippet(text string) string {
	if len(text) <= snippetLimit {
		return text + "..."
	}

	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
