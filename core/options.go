package pipeline

import (
	"context"
	"time"

	"github.com/stockest/stockest-core/core/conversations"
	"github.com/stockest/stockest-core/core/enrichment"
	"github.com/stockest/stockest-core/core/generation"
	"github.com/stockest/stockest-core/core/languages"
	"github.com/stockest/stockest-core/core/recognition"
	"github.com/stockest/stockest-core/core/synthesis"
)

type OrchestratorOption func(*Orchestrator)

// RecognitionEngine is the speech capture capability consumed by the
// pipeline. Engines run one continuous session at a time.
type RecognitionEngine interface {
	Supported() bool
	Transcribe(ctx context.Context, opts ...recognition.Option) error
	Stop() error
}

func WithRecognitionEngine(engine RecognitionEngine) OrchestratorOption {
	return func(o *Orchestrator) { o.recognition.set(engine) }
}

// SynthesisEngine is the speech playback capability consumed by the
// pipeline. Cancel must never fire the done callback of the utterance it
// cancels.
type SynthesisEngine interface {
	Supported() bool
	Voices(ctx context.Context) ([]synthesis.Voice, error)
	Speak(ctx context.Context, text string, opts ...synthesis.Option) error
	Cancel()
}

func WithSynthesisEngine(engine SynthesisEngine) OrchestratorOption {
	return func(o *Orchestrator) { o.synthesis.set(engine) }
}

// EnrichmentClient fetches best-effort supplementary context for a query.
type EnrichmentClient interface {
	Fetch(ctx context.Context, query string, languageTag string) (enrichment.Result, error)
}

func WithEnrichmentClient(client EnrichmentClient) OrchestratorOption {
	return func(o *Orchestrator) { o.enrichment.set(client) }
}

// GenerationClient produces a language-constrained answer for a request.
type GenerationClient interface {
	Generate(ctx context.Context, request generation.Request) (string, error)
}

func WithGenerationClient(client GenerationClient) OrchestratorOption {
	return func(o *Orchestrator) { o.generation.set(client) }
}

// WithLanguage sets the initial active language profile.
func WithLanguage(profile languages.Profile) OrchestratorOption {
	return func(o *Orchestrator) {
		if !profile.IsZero() {
			o.profile = profile
		}
	}
}

// WithAudioEnabled sets the initial spoken-playback toggle.
func WithAudioEnabled(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) { o.audioEnabled = enabled }
}

// WithPendingUtterancePolicy overrides the default latest-wins pending
// slot behavior.
func WithPendingUtterancePolicy(policy PendingUtterancePolicy) OrchestratorOption {
	return func(o *Orchestrator) { o.pendingPolicy = policy }
}

// WithEnrichmentTimeout bounds the context fetch of each processing cycle.
func WithEnrichmentTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.enrichment.timeout = timeout
		}
	}
}

type OrchestrateOptions struct {
	onStateChanged         func(state State, reason string)
	onTurn                 func(turn conversations.Turn)
	onInterimTranscription func(transcript string)
	onTranscription        func(transcript string)
	onResponse             func(answer string, degraded bool)
	onNotice               func(title, detail string)
	onPlaybackEnded        func(transcript string)
}

type OrchestrateOption func(*OrchestrateOptions)

// WithStateChangedCallback registers a callback for pipeline state
// transitions. Reason is only populated for error states.
func WithStateChangedCallback(callback func(state State, reason string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onStateChanged = callback
	}
}

// WithTurnCallback registers a callback invoked once per completed
// conversation turn, user and assistant alike.
func WithTurnCallback(callback func(turn conversations.Turn)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onTurn = callback
	}
}

// WithInterimTranscriptionCallback registers a callback for interim
// transcripts. Interim results are surfaced for live captions only and
// carry no pipeline effect.
func WithInterimTranscriptionCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onInterimTranscription = callback
	}
}

// WithTranscriptionCallback registers a callback for final transcripts.
func WithTranscriptionCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onTranscription = callback
	}
}

// WithResponseCallback registers a callback for each produced answer.
// Degraded reports that the answer is the fixed fallback message.
func WithResponseCallback(callback func(answer string, degraded bool)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onResponse = callback
	}
}

// WithNoticeCallback registers a callback for user-visible recoverable
// notices.
func WithNoticeCallback(callback func(title, detail string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onNotice = callback
	}
}

// WithPlaybackEndedCallback registers a callback invoked when playback of
// an answer finishes or is cancelled.
func WithPlaybackEndedCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onPlaybackEnded = callback
	}
}
