package exa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFetchSummarizesResultsInRetrievalOrder(t *testing.T) {
	var gotRequest searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("x-api-key"); key != "test-key" {
			t.Errorf("expected api key header, got %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		_, _ = w.Write([]byte(`{"results":[
			{"title":"Reliance gains","text":"` + strings.Repeat("a", 250) + `","publishedDate":"2025-01-02"},
			{"title":"NIFTY update","text":"short","publishedDate":"2025-01-03"}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("expected client construction to succeed, got %v", err)
	}
	client.now = func() time.Time { return time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC) }

	result, err := client.Fetch(context.Background(), "Reliance price", "en-IN")
	if err != nil {
		t.Fatalf("expected fetch to succeed, got %v", err)
	}

	if !result.Available {
		t.Fatalf("expected context to be available")
	}

	blocks := strings.Split(result.Context, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected two context blocks, got %d:\n%s", len(blocks), result.Context)
	}
	if !strings.HasPrefix(blocks[0], "Title: Reliance gains\nContent: "+strings.Repeat("a", 200)+"...") {
		t.Fatalf("expected first block truncated to the snippet limit, got:\n%s", blocks[0])
	}
	if blocks[1] != "Title: NIFTY update\nContent: short...\nDate: 2025-01-03" {
		t.Fatalf("expected second block in retrieval order, got:\n%s", blocks[1])
	}

	if gotRequest.Query != "Reliance price stock price latest market data financial news" {
		t.Fatalf("expected query with market suffix, got %q", gotRequest.Query)
	}
	if gotRequest.NumResults != 5 {
		t.Fatalf("expected five results requested, got %d", gotRequest.NumResults)
	}
	if gotRequest.Category != "financial" {
		t.Fatalf("expected financial category, got %q", gotRequest.Category)
	}
	if gotRequest.StartPublishedDate != "2025-01-02T12:00:00Z" {
		t.Fatalf("expected a 24h freshness window, got %q", gotRequest.StartPublishedDate)
	}
}

func TestSnippetKeepsMultibyteRunesIntact(t *testing.T) {
	text := strings.Repeat("रिलायंस के शेयर में तेजी ", 20)
	if len(text) <= snippetLimit {
		t.Fatalf("expected the input to exceed the snippet limit")
	}

	got := snippet(text)
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid UTF-8, got %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected the snippet suffix, got %q", got)
	}
	if body := strings.TrimSuffix(got, "..."); len(body) > snippetLimit {
		t.Fatalf("expected at most %d snippet bytes, got %d", snippetLimit, len(body))
	} else if !strings.HasPrefix(text, body) {
		t.Fatalf("expected a prefix of the input, got %q", body)
	}
}

func TestSnippetPassesShortTextThrough(t *testing.T) {
	if got := snippet("short"); got != "short..." {
		t.Fatalf("expected short text untouched, got %q", got)
	}
}

func TestFetchReportsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("expected client construction to succeed, got %v", err)
	}

	result, err := client.Fetch(context.Background(), "anything", "en-IN")
	if err == nil {
		t.Fatalf("expected an error for non-OK status")
	}
	if result.Available {
		t.Fatalf("expected degraded result on failure")
	}
}

func TestFetchTreatsEmptyResultsAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("expected client construction to succeed, got %v", err)
	}

	result, err := client.Fetch(context.Background(), "anything", "en-IN")
	if err != nil {
		t.Fatalf("expected no error for empty results, got %v", err)
	}
	if result.Available {
		t.Fatalf("expected unavailable result for empty results")
	}
}
