package pipeline

import (
	"context"
	"time"

	"github.com/stockest/stockest-core/core/enrichment"
)

const defaultEnrichmentTimeout = 4 * time.Second

// contextEnrichment is the enrichment facade. Every failure path degrades
// to an unavailable result; enrichment never aborts a processing cycle.
type contextEnrichment struct {
	// client stores the configured context service.
	client EnrichmentClient

	timeout time.Duration
}

func (e *contextEnrichment) set(client EnrichmentClient) {
	if e != nil {
		e.client = client
	}
}

func (e *contextEnrichment) Fetch(ctx context.Context, query string, languageTag string) enrichment.Result {
	if e == nil || e.client == nil {
		return enrichment.Unavailable()
	}

	timeout := e.timeout
	if timeout <= 0 {
		timeout = defaultEnrichmentTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := e.client.Fetch(ctx, query, languageTag)
	if err != nil {
		logger.Debug("Context enrichment degraded", "error", err)
		return enrichment.Unavailable()
	}

	return result
}
