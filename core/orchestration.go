// Package pipeline implements the voice-query orchestration core: it turns
// a finalized speech transcript into a spoken, language-constrained answer
// while coordinating recognition, context enrichment, generation and
// synthesis around a single session state machine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/stockest/stockest-core/core/conversations"
	events "github.com/stockest/stockest-core/core/events"
	"github.com/stockest/stockest-core/core/generation"
	"github.com/stockest/stockest-core/core/languages"
	"github.com/stockest/stockest-core/internal/utils"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrEnvironmentUnsupported reports that a required speech capability is
// absent on this host. Recognition and synthesis are independently
// optional; the error is fatal to the capability only.
var ErrEnvironmentUnsupported = errors.New("speech capability not supported in this environment")

type Orchestrator struct {
	mu sync.Mutex

	state        State
	profile      languages.Profile
	audioEnabled bool

	pendingPolicy    PendingUtterancePolicy
	pendingUtterance *string

	// nextCycleID fences completions of superseded processing cycles.
	nextCycleID       int64
	inFlightCycleID   int64
	inFlightUtterance string

	// speakingCycleID fences playback handlers of cancelled or
	// superseded playbacks; speakCancel aborts a playback start still
	// dialing its engine.
	speakingCycleID    int64
	speakCancel        context.CancelFunc
	speakingTranscript string

	// recognition is the recognition facade used to handle optional
	// engine wiring.
	recognition recognitionSession
	// synthesis is the synthesis facade that owns voice selection and
	// latest-wins playback.
	synthesis  speechSynthesis
	enrichment contextEnrichment
	generation responseGeneration
	turns      turnLog

	emitEvent   eventEmitter
	baseContext context.Context
	closeOnce   sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		state:        StateIdle,
		profile:      languages.Default(),
		audioEnabled: true,
		emitEvent:    noopEventEmitter,
		baseContext:  context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Orchestrate wires the host callbacks and the base context used by every
// engine and service call.
//
// Contract: call Orchestrate at most once per orchestrator instance,
// before any control-surface call. Host callbacks run on pipeline
// goroutines and must not call back into the control surface.
func (o *Orchestrator) Orchestrate(ctx context.Context, opts ...OrchestrateOption) {
	options := OrchestrateOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.baseContext = ctx
	o.emitEvent = newCallbackEventEmitter(options)
}

func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		defer o.mu.Unlock()

		o.recognition.Stop()
		o.synthesis.Cancel()
		o.clearSpeaking()
		o.pendingUtterance = nil
		o.inFlightCycleID = 0
		o.setState(StateIdle, "")
	})
}

// CurrentState returns the pipeline state at the time of the call.
func (o *Orchestrator) CurrentState() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Language returns the active language profile.
func (o *Orchestrator) Language() languages.Profile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profile
}

// SetLanguage changes the active language profile. Permitted in any
// state; it reconfigures the next listening, processing and speaking
// cycle only, never an in-flight one.
func (o *Orchestrator) SetLanguage(tag string) error {
	profile, ok := languages.Lookup(tag)
	if !ok {
		return fmt.Errorf("unknown language: %s", tag)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.profile = profile
	return nil
}

// AudioEnabled reports whether answers are spoken aloud.
func (o *Orchestrator) AudioEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.audioEnabled
}

// SetAudioEnabled toggles spoken playback. Disabling audio while speaking
// cancels the playback immediately and returns the pipeline to idle.
func (o *Orchestrator) SetAudioEnabled(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.audioEnabled = enabled
	if !enabled && o.state == StateSpeaking {
		o.stopSpeaking()
	}
}

// Conversation returns a point-in-time snapshot of the conversation log.
func (o *Orchestrator) Conversation() []conversations.Turn {
	return o.turns.Snapshot()
}

// StartListening opens a recognition session in the active language.
// Starting while speaking cancels the playback first; listening and
// speaking are never simultaneously active.
func (o *Orchestrator) StartListening() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.recognition.isActive() {
		return nil
	}
	if !o.recognition.Supported() {
		return ErrEnvironmentUnsupported
	}

	if o.state == StateSpeaking {
		o.stopSpeaking()
	}

	if err := o.recognition.Start(o.baseContext, o.profile.Tag, recognitionCallbacks{
		onInterimTranscription: o.handleInterimTranscription,
		onTranscription:        o.handleTranscription,
		onError:                o.handleRecognitionError,
	}); err != nil {
		return err
	}

	if o.state != StateProcessing {
		o.setState(StateListening, "")
	}
	return nil
}

// StopListening ends the recognition session. Idempotent; an in-flight
// processing cycle is not aborted.
func (o *Orchestrator) StopListening() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.recognition.Stop()
	if o.state == StateListening {
		o.setState(StateIdle, "")
	}
}

func (o *Orchestrator) handleInterimTranscription(transcript string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emitEvent(events.NewUserTranscriptInterim(transcript))
}

func (o *Orchestrator) handleTranscription(transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.emitEvent(events.NewUserTranscriptFinal(transcript))

	switch o.state {
	case StateListening:
		o.startCycle(transcript)
	case StateProcessing:
		// Repeated finality events for the same utterance are dropped so
		// a listen cycle never records duplicate user turns.
		if transcript == o.inFlightUtterance {
			return
		}
		if o.pendingPolicy == PendingReject {
			return
		}
		o.pendingUtterance = utils.Ptr(transcript)
	}
}

func (o *Orchestrator) handleRecognitionError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	recordedErr := fmt.Errorf("recognition session failed: %w", err)
	span := trace.SpanFromContext(o.baseContext)
	span.RecordError(recordedErr)
	span.SetStatus(codes.Error, recordedErr.Error())

	o.recognition.Stop()
	o.emitEvent(events.NewRecognitionFailed(err.Error()))
	o.emitEvent(events.NewNotice("Speech recognition error", err.Error()))

	// No silent auto-retry: the user must explicitly restart listening.
	if o.state == StateListening {
		o.setState(StateError, err.Error())
		o.setState(StateIdle, "")
	}
}

// startCycle records the user turn and launches one enrichment plus
// generation cycle. Caller must hold the lock.
func (o *Orchestrator) startCycle(utterance string) {
	turn := o.turns.Record(conversations.RoleUser, utterance)
	o.emitEvent(events.NewTurnRecorded(turn))

	o.nextCycleID++
	id := o.nextCycleID
	o.inFlightCycleID = id
	o.inFlightUtterance = utterance
	profile := o.profile

	o.setState(StateProcessing, "")

	go o.runCycle(o.baseContext, id, utterance, profile)
}

func (o *Orchestrator) runCycle(ctx context.Context, id int64, utterance string, profile languages.Profile) {
	ctx, span := tracer.Start(ctx, "voice query cycle")
	defer span.End()

	// Enrichment is sequential before generation because the prompt
	// depends on its result, but its failure only costs its own timeout.
	result := o.enrichment.Fetch(ctx, utterance, profile.Tag)

	answer, degraded := o.generation.Generate(ctx, generation.Request{
		Utterance: utterance,
		Context:   result.Context,
		Profile:   profile,
	})

	o.completeCycle(id, answer, degraded, profile)
}

func (o *Orchestrator) completeCycle(id int64, answer string, degraded bool, profile languages.Profile) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if id != o.inFlightCycleID {
		return
	}
	o.inFlightCycleID = 0
	o.inFlightUtterance = ""

	turn := o.turns.Record(conversations.RoleAssistant, answer)
	o.emitEvent(events.NewTurnRecorded(turn))
	o.emitEvent(events.NewProcessingCompleted(id, answer, degraded))

	if o.audioEnabled && o.synthesis.Supported() {
		o.recognition.Stop()
		o.speakingTranscript = answer
		o.speakingCycleID = id
		ctx, cancel := context.WithCancel(o.baseContext)
		o.speakCancel = cancel
		o.setState(StateSpeaking, "")

		// The engine dial happens off the lock so the control surface
		// stays responsive while playback starts.
		go o.startPlayback(ctx, id, answer, profile)
		return
	}

	if o.recognition.isActive() {
		o.setState(StateListening, "")
	} else {
		o.setState(StateIdle, "")
	}
	o.drainPending()
}

// startPlayback speaks the answer with the cycle's captured profile, not
// the current one, so a mid-processing language change cannot alter an
// in-flight answer. It runs off the orchestrator lock; a cancelled
// playback aborts through its context and the cycle fence.
func (o *Orchestrator) startPlayback(ctx context.Context, id int64, answer string, profile languages.Profile) {
	err := o.synthesis.Speak(ctx, answer, profile.Tag,
		func() { o.handlePlaybackEnded(id, answer) },
		func(err error) { o.handlePlaybackError(id, answer, err) },
	)
	if err == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateSpeaking || id != o.speakingCycleID {
		return
	}

	// Synthesis faults degrade to a text-only turn.
	logger.Warn("Failed to start playback, completing turn silently", "error", err)
	o.clearSpeaking()
	o.setState(StateIdle, "")
	o.drainPending()
}

func (o *Orchestrator) handlePlaybackEnded(id int64, transcript string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateSpeaking || id != o.speakingCycleID {
		return
	}

	o.clearSpeaking()
	o.emitEvent(events.NewPlaybackEnded(transcript))
	o.setState(StateIdle, "")
	o.drainPending()
}

func (o *Orchestrator) handlePlaybackError(id int64, transcript string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	logger.Warn("Playback failed, completing turn silently", "error", err)
	if o.state != StateSpeaking || id != o.speakingCycleID {
		return
	}

	o.clearSpeaking()
	o.emitEvent(events.NewPlaybackEnded(transcript))
	o.setState(StateIdle, "")
	o.drainPending()
}

// stopSpeaking cancels the active playback and returns to idle. Caller
// must hold the lock. The cancelled playback's done callback is fenced
// out, so the reset is synchronous.
func (o *Orchestrator) stopSpeaking() {
	o.synthesis.Cancel()
	o.emitEvent(events.NewPlaybackEnded(o.speakingTranscript))
	o.clearSpeaking()
	o.setState(StateIdle, "")
	o.drainPending()
}

// clearSpeaking resets the playback bookkeeping and aborts a still-dialing
// playback start. Caller must hold the lock.
func (o *Orchestrator) clearSpeaking() {
	if o.speakCancel != nil {
		o.speakCancel()
		o.speakCancel = nil
	}
	o.speakingCycleID = 0
	o.speakingTranscript = ""
}

// drainPending promotes the pending utterance into a new cycle once the
// pipeline is back in a listening-eligible state. Caller must hold the
// lock.
func (o *Orchestrator) drainPending() {
	if o.pendingUtterance == nil {
		return
	}
	if o.state != StateIdle && o.state != StateListening {
		return
	}

	utterance := *o.pendingUtterance
	o.pendingUtterance = nil
	o.startCycle(utterance)
}

// setState transitions the state machine and emits the change. Caller
// must hold the lock.
func (o *Orchestrator) setState(state State, reason string) {
	if o.state == state {
		return
	}

	o.state = state
	o.emitEvent(events.NewStateChanged(string(state), reason))
}
