// Package gemini implements answer generation against the Gemini
// generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/stockest/stockest-core/core/generation"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultModel    = "gemini-2.0-flash"
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
)

type Client struct {
	apiKey   string
	model    string
	endpoint string

	httpClient *http.Client
}

type ClientOption func(*Client)

// WithModel overrides the default generation model.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithEndpoint overrides the API base URL. Used by tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		model:    defaultModel,
		endpoint: defaultEndpoint,
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
		apiKey, ok := os.LookupEnv("GEMINI_API_KEY")
		if !ok {
			return nil, fmt.Errorf("gemini api key not found")
		}
		client.apiKey = apiKey
	}

	return client, nil
}

type requestBody struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type responseBody struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate runs one generateContent call and returns the answer text read
// from candidates[0].content.parts[0].text. A response missing that path is
// reported as [generation.ErrNoContent].
func (c *Client) Generate(ctx context.Context, genReq generation.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "generate response")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))
	span.SetAttributes(attribute.String("request.language", genReq.Profile.Tag))

	body, err := json.Marshal(requestBody{
		Contents: []content{{Parts: []part{{Text: generation.BuildPrompt(genReq)}}}},
	})
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.endpoint+"/"+c.model+":generateContent", bytes.NewBuffer(body))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return "", err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var parsed responseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		err = fmt.Errorf("error unmarshalling JSON: %w", err)
		span.RecordError(err)
		return "", err
	}

	if len(parsed.Candidates) == 0 ||
		len(parsed.Candidates[0].Content.Parts) == 0 ||
		parsed.Candidates[0].Content.Parts[0].Text == "" {
		span.RecordError(generation.ErrNoContent)
		return "", generation.ErrNoContent
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
