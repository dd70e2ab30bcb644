package pipeline

import (
	"context"
	"strings"

	"github.com/stockest/stockest-core/core/generation"
)

// FallbackAnswer is the fixed, language-neutral assistant message used
// when generation fails or produces no usable content. The turn still
// completes; the user is never left waiting on processing.
const FallbackAnswer = "I couldn't process that request."

// responseGeneration is the generation facade. It maps every failure to
// the fallback answer; no retry is attempted against the paid service.
type responseGeneration struct {
	// client stores the configured generation service.
	client GenerationClient
}

func (g *responseGeneration) set(client GenerationClient) {
	if g != nil {
		g.client = client
	}
}

// Generate returns the answer for the request and whether it is the
// degraded fallback.
func (g *responseGeneration) Generate(ctx context.Context, request generation.Request) (answer string, degraded bool) {
	if g == nil || g.client == nil {
		return FallbackAnswer, true
	}

	text, err := g.client.Generate(ctx, request)
	if err != nil {
		logger.Warn("Answer generation failed, using fallback", "error", err)
		return FallbackAnswer, true
	}
	if strings.TrimSpace(text) == "" {
		return FallbackAnswer, true
	}

	return text, false
}
