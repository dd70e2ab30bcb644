package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stockest/stockest-core/core/generation"
	"github.com/stockest/stockest-core/core/languages"
)

func TestGenerateWithoutClientFallsBack(t *testing.T) {
	facade := responseGeneration{}

	answer, degraded := facade.Generate(context.Background(), generation.Request{Utterance: "q"})
	if answer != FallbackAnswer || !degraded {
		t.Fatalf("expected the fallback answer, got %q degraded=%t", answer, degraded)
	}
}

func TestGenerateErrorFallsBack(t *testing.T) {
	facade := responseGeneration{}
	facade.set(&generationClientStub{
		generateFunc: func(_ context.Context, _ generation.Request) (string, error) {
			return "", errors.New("service unavailable")
		},
	})

	answer, degraded := facade.Generate(context.Background(), generation.Request{Utterance: "q"})
	if answer != FallbackAnswer || !degraded {
		t.Fatalf("expected the fallback answer, got %q degraded=%t", answer, degraded)
	}
}

func TestGenerateBlankContentFallsBack(t *testing.T) {
	facade := responseGeneration{}
	facade.set(&generationClientStub{
		generateFunc: func(_ context.Context, _ generation.Request) (string, error) {
			return "   \n", nil
		},
	})

	answer, degraded := facade.Generate(context.Background(), generation.Request{Utterance: "q"})
	if answer != FallbackAnswer || !degraded {
		t.Fatalf("expected the fallback answer for blank content, got %q", answer)
	}
}

func TestGeneratePassesThroughAnswer(t *testing.T) {
	facade := responseGeneration{}
	facade.set(&generationClientStub{
		generateFunc: func(_ context.Context, request generation.Request) (string, error) {
			if request.Profile.Tag != "hi-IN" {
				t.Errorf("expected the request profile forwarded, got %q", request.Profile.Tag)
			}
			return "generated", nil
		},
	})

	profile, _ := languages.Lookup("hi-IN")
	answer, degraded := facade.Generate(context.Background(), generation.Request{Utterance: "q", Profile: profile})
	if answer != "generated" || degraded {
		t.Fatalf("expected the generated answer, got %q degraded=%t", answer, degraded)
	}
}
