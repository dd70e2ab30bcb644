// Package service implements the HTTPS JSON context-service contract:
// request {query, language}, response {success, context}.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stockest/stockest-core/core/enrichment"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

type Client struct {
	endpoint string

	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
}

type contextRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

type contextResponse struct {
	Success bool   `json:"success"`
	Context string `json:"context"`
}

// Fetch asks the context service for supplementary data. A response with
// success false, and any transport or decoding failure, yields an
// unavailable result; the caller decides whether the error matters.
func (c *Client) Fetch(ctx context.Context, query string, languageTag string) (enrichment.Result, error) {
	ctx, span := tracer.Start(ctx, "fetch context")
	defer span.End()
	span.SetAttributes(attribute.String("request.language", languageTag))

	body, err := json.Marshal(contextRequest{Query: query, Language: languageTag})
	if err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return enrichment.Unavailable(), fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	var parsed contextResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return enrichment.Unavailable(), fmt.Errorf("error unmarshalling JSON: %w", err)
	}

	if !parsed.Success || parsed.Context == "" {
		return enrichment.Unavailable(), nil
	}

	return enrichment.Result{Available: true, Context: parsed.Context}, nil
}
