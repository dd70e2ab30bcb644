package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stockest/stockest-core/core/conversations"
	"github.com/stockest/stockest-core/core/enrichment"
	"github.com/stockest/stockest-core/core/generation"
	"github.com/stockest/stockest-core/core/languages"
	"github.com/stockest/stockest-core/core/recognition"
	"github.com/stockest/stockest-core/core/synthesis"
)

type recognitionEngineStub struct {
	mu          sync.Mutex
	unsupported bool
	sessions    []recognition.Options
	stops       int
}

func (s *recognitionEngineStub) Supported() bool { return !s.unsupported }

func (s *recognitionEngineStub) Transcribe(_ context.Context, opts ...recognition.Option) error {
	options := recognition.Options{}
	for _, opt := range opts {
		opt(&options)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, options)
	return nil
}

func (s *recognitionEngineStub) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *recognitionEngineStub) session(index int) recognition.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[index]
}

func (s *recognitionEngineStub) latestSession() (recognition.Options, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return recognition.Options{}, false
	}
	return s.sessions[len(s.sessions)-1], true
}

func (s *recognitionEngineStub) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

type spokenUtterance struct {
	text    string
	options synthesis.Options
}

type synthesisEngineStub struct {
	mu          sync.Mutex
	unsupported bool
	voices      []synthesis.Voice
	voicesCalls int
	spoken      []spokenUtterance
	cancels     int

	spoke    chan struct{}
	block    chan struct{}
	speakErr error
}

func (s *synthesisEngineStub) Supported() bool { return !s.unsupported }

func (s *synthesisEngineStub) Voices(_ context.Context) ([]synthesis.Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voicesCalls++
	return s.voices, nil
}

func (s *synthesisEngineStub) Speak(_ context.Context, text string, opts ...synthesis.Option) error {
	options := synthesis.NewOptions(opts...)

	s.mu.Lock()
	s.spoken = append(s.spoken, spokenUtterance{text: text, options: options})
	block := s.block
	err := s.speakErr
	s.mu.Unlock()

	if s.spoke != nil {
		s.spoke <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func (s *synthesisEngineStub) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

func (s *synthesisEngineStub) lastSpoken() spokenUtterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spoken[len(s.spoken)-1]
}

func (s *synthesisEngineStub) spokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spoken)
}

func (s *synthesisEngineStub) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

type enrichmentClientStub struct {
	fetchFunc func(ctx context.Context, query string, languageTag string) (enrichment.Result, error)
}

func (s *enrichmentClientStub) Fetch(ctx context.Context, query string, languageTag string) (enrichment.Result, error) {
	if s.fetchFunc == nil {
		return enrichment.Unavailable(), nil
	}
	return s.fetchFunc(ctx, query, languageTag)
}

type generationClientStub struct {
	mu           sync.Mutex
	generateFunc func(ctx context.Context, request generation.Request) (string, error)
	requests     []generation.Request
}

func (s *generationClientStub) Generate(ctx context.Context, request generation.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, request)
	s.mu.Unlock()

	if s.generateFunc == nil {
		return "generated answer", nil
	}
	return s.generateFunc(ctx, request)
}

func (s *generationClientStub) request(index int) generation.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[index]
}

func (s *generationClientStub) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type pipelineFixture struct {
	orchestrator *Orchestrator
	recognition  *recognitionEngineStub
	synthesis    *synthesisEngineStub
	enrichment   *enrichmentClientStub
	generation   *generationClientStub

	states   chan State
	notices  chan string
	playback chan string
}

func newPipelineFixture(t *testing.T, opts ...OrchestratorOption) *pipelineFixture {
	t.Helper()

	fixture := &pipelineFixture{
		recognition: &recognitionEngineStub{},
		synthesis: &synthesisEngineStub{
			voices: []synthesis.Voice{
				{ID: "voice-hi", Name: "Hindi", Locale: "hi-IN"},
				{ID: "voice-en", Name: "English", Locale: "en-US"},
			},
			spoke: make(chan struct{}, 8),
		},
		enrichment: &enrichmentClientStub{},
		generation: &generationClientStub{},
		states:     make(chan State, 64),
		notices:    make(chan string, 8),
		playback:   make(chan string, 8),
	}

	orchestratorOpts := append([]OrchestratorOption{
		WithRecognitionEngine(fixture.recognition),
		WithSynthesisEngine(fixture.synthesis),
		WithEnrichmentClient(fixture.enrichment),
		WithGenerationClient(fixture.generation),
	}, opts...)

	fixture.orchestrator = NewOrchestrator(orchestratorOpts...)
	fixture.orchestrator.Orchestrate(context.Background(),
		WithStateChangedCallback(func(state State, _ string) { fixture.states <- state }),
		WithNoticeCallback(func(title, _ string) { fixture.notices <- title }),
		WithPlaybackEndedCallback(func(transcript string) { fixture.playback <- transcript }),
	)

	return fixture
}

func (f *pipelineFixture) waitForState(t *testing.T, want State) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-f.states:
			if state == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %q", want)
		}
	}
}

func (f *pipelineFixture) waitForSpeak(t *testing.T) {
	t.Helper()

	select {
	case <-f.synthesis.spoke:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for playback to start")
	}
}

func (f *pipelineFixture) finalTranscript(transcript string) {
	if session, ok := f.recognition.latestSession(); ok {
		session.TranscriptionCallback(transcript)
	}
}

func TestVoiceQueryCycleRecordsTurnsAndSpeaksInSessionLocale(t *testing.T) {
	profile, _ := languages.Lookup("hi-IN")
	fixture := newPipelineFixture(t, WithLanguage(profile))
	fixture.generation.generateFunc = func(_ context.Context, _ generation.Request) (string, error) {
		return "answer text", nil
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.waitForState(t, StateListening)

	if got := fixture.recognition.session(0).Locale; got != "hi-IN" {
		t.Fatalf("expected recognition session locale hi-IN, got %q", got)
	}

	fixture.finalTranscript("What's the price of X?")
	fixture.waitForState(t, StateSpeaking)
	fixture.waitForSpeak(t)

	turns := fixture.orchestrator.Conversation()
	if len(turns) != 2 {
		t.Fatalf("expected two turns, got %d", len(turns))
	}
	if turns[0].Role != conversations.RoleUser || turns[0].Content != "What's the price of X?" {
		t.Fatalf("unexpected user turn %+v", turns[0])
	}
	if turns[1].Role != conversations.RoleAssistant || turns[1].Content != "answer text" {
		t.Fatalf("unexpected assistant turn %+v", turns[1])
	}

	spoken := fixture.synthesis.lastSpoken()
	if spoken.text != "answer text" {
		t.Fatalf("expected the answer to be spoken, got %q", spoken.text)
	}
	if spoken.options.Locale != "hi-IN" {
		t.Fatalf("expected synthesis locale hi-IN, got %q", spoken.options.Locale)
	}
	if spoken.options.Voice == nil || spoken.options.Voice.ID != "voice-hi" {
		t.Fatalf("expected the exact-locale voice, got %+v", spoken.options.Voice)
	}

	// Playback completion returns the pipeline to idle.
	spoken.options.DoneCallback()
	fixture.waitForState(t, StateIdle)

	select {
	case transcript := <-fixture.playback:
		if transcript != "answer text" {
			t.Fatalf("expected playback-ended transcript, got %q", transcript)
		}
	default:
		t.Fatalf("expected a playback-ended callback")
	}
}

func TestRecognitionErrorReturnsToIdleWithoutProcessing(t *testing.T) {
	fixture := newPipelineFixture(t)

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.waitForState(t, StateListening)

	fixture.recognition.session(0).ErrorCallback(errors.New("microphone unavailable"))
	fixture.waitForState(t, StateError)
	fixture.waitForState(t, StateIdle)

	select {
	case <-fixture.notices:
	default:
		t.Fatalf("expected a user-visible notice")
	}

	if got := fixture.generation.requestCount(); got != 0 {
		t.Fatalf("expected no processing after a recognition error, got %d requests", got)
	}
	if got := len(fixture.orchestrator.Conversation()); got != 0 {
		t.Fatalf("expected no turns after a recognition error, got %d", got)
	}
}

func TestAudioDisabledDuringSpeakingCancelsPlayback(t *testing.T) {
	fixture := newPipelineFixture(t)

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("market summary")
	fixture.waitForState(t, StateSpeaking)
	fixture.waitForSpeak(t)

	fixture.orchestrator.SetAudioEnabled(false)
	fixture.waitForState(t, StateIdle)

	if got := fixture.synthesis.cancelCount(); got != 1 {
		t.Fatalf("expected one synthesis cancellation, got %d", got)
	}

	// The cancelled playback's done callback is stale and must not
	// resurrect the speaking state.
	fixture.synthesis.lastSpoken().options.DoneCallback()
	if got := fixture.orchestrator.CurrentState(); got != StateIdle {
		t.Fatalf("expected idle after stale done callback, got %q", got)
	}
}

func TestControlSurfaceStaysResponsiveWhilePlaybackStarts(t *testing.T) {
	fixture := newPipelineFixture(t)
	block := make(chan struct{})
	fixture.synthesis.block = block

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("market summary")
	fixture.waitForState(t, StateSpeaking)
	fixture.waitForSpeak(t)

	// Playback start is still in flight; the control surface must not
	// block behind it.
	done := make(chan struct{})
	go func() {
		fixture.orchestrator.SetAudioEnabled(false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("control surface blocked while playback was starting")
	}
	fixture.waitForState(t, StateIdle)

	// The cancelled playback start must not resurrect the speaking state
	// once it finally returns.
	close(block)
	time.Sleep(50 * time.Millisecond)
	if got := fixture.orchestrator.CurrentState(); got != StateIdle {
		t.Fatalf("expected idle after the cancelled playback start returned, got %q", got)
	}
}

func TestPlaybackStartFailureCompletesTurnSilently(t *testing.T) {
	fixture := newPipelineFixture(t)
	fixture.synthesis.speakErr = errors.New("engine unavailable")

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("quiet failure")
	fixture.waitForState(t, StateSpeaking)
	fixture.waitForState(t, StateIdle)

	turns := fixture.orchestrator.Conversation()
	if len(turns) != 2 {
		t.Fatalf("expected a completed turn despite the playback fault, got %d turns", len(turns))
	}
	if turns[1].Content != "generated answer" {
		t.Fatalf("expected the generated answer recorded, got %q", turns[1].Content)
	}
}

func TestEnrichmentFailureStillYieldsGenerationRequest(t *testing.T) {
	fixture := newPipelineFixture(t, WithAudioEnabled(false))
	fixture.enrichment.fetchFunc = func(_ context.Context, _, _ string) (enrichment.Result, error) {
		return enrichment.Unavailable(), errors.New("service down")
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("nifty today")
	fixture.waitForState(t, StateProcessing)
	fixture.waitForState(t, StateListening)

	if got := fixture.generation.requestCount(); got != 1 {
		t.Fatalf("expected one generation request, got %d", got)
	}
	request := fixture.generation.request(0)
	if request.Utterance != "nifty today" {
		t.Fatalf("expected the utterance to survive enrichment failure, got %q", request.Utterance)
	}
	if request.Context != "" {
		t.Fatalf("expected no context after enrichment failure, got %q", request.Context)
	}
}

func TestLanguageChangeMidProcessingOnlyAffectsNextCycle(t *testing.T) {
	fixture := newPipelineFixture(t)
	release := make(chan struct{})
	fixture.generation.generateFunc = func(_ context.Context, _ generation.Request) (string, error) {
		<-release
		return "answer", nil
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("price of reliance")
	fixture.waitForState(t, StateProcessing)

	if err := fixture.orchestrator.SetLanguage("hi-IN"); err != nil {
		t.Fatalf("expected language change to succeed, got %v", err)
	}
	close(release)
	fixture.waitForState(t, StateSpeaking)
	fixture.waitForSpeak(t)

	if got := fixture.generation.request(0).Profile.Tag; got != "en-IN" {
		t.Fatalf("expected the in-flight request to keep en-IN, got %q", got)
	}
	if got := fixture.synthesis.lastSpoken().options.Locale; got != "en-IN" {
		t.Fatalf("expected the in-flight playback to keep en-IN, got %q", got)
	}

	// The next recognition session picks up the new profile.
	fixture.synthesis.lastSpoken().options.DoneCallback()
	fixture.waitForState(t, StateIdle)
	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to restart, got %v", err)
	}
	if got := fixture.recognition.session(1).Locale; got != "hi-IN" {
		t.Fatalf("expected the next session locale hi-IN, got %q", got)
	}
}

func TestGenerationFailureYieldsFallbackTurn(t *testing.T) {
	fixture := newPipelineFixture(t, WithAudioEnabled(false))
	fixture.generation.generateFunc = func(_ context.Context, _ generation.Request) (string, error) {
		return "", generation.ErrNoContent
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("anything")
	fixture.waitForState(t, StateProcessing)
	fixture.waitForState(t, StateListening)

	turns := fixture.orchestrator.Conversation()
	if len(turns) != 2 {
		t.Fatalf("expected two turns, got %d", len(turns))
	}
	if turns[1].Content != FallbackAnswer {
		t.Fatalf("expected the fallback answer, got %q", turns[1].Content)
	}
}

func TestDuplicateFinalityRecordsOneUserTurn(t *testing.T) {
	fixture := newPipelineFixture(t, WithAudioEnabled(false))
	release := make(chan struct{})
	fixture.generation.generateFunc = func(_ context.Context, _ generation.Request) (string, error) {
		<-release
		return "answer", nil
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("repeat me")
	fixture.waitForState(t, StateProcessing)
	fixture.finalTranscript("repeat me")
	close(release)
	fixture.waitForState(t, StateListening)

	turns := fixture.orchestrator.Conversation()
	if len(turns) != 2 {
		t.Fatalf("expected exactly one user and one assistant turn, got %d turns", len(turns))
	}
}

func TestPendingUtteranceLatestWins(t *testing.T) {
	fixture := newPipelineFixture(t, WithAudioEnabled(false))
	release := make(chan struct{}, 2)
	fixture.generation.generateFunc = func(_ context.Context, request generation.Request) (string, error) {
		<-release
		return "answer to " + request.Utterance, nil
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("first")
	fixture.waitForState(t, StateProcessing)
	fixture.finalTranscript("second")
	fixture.finalTranscript("third")

	release <- struct{}{}
	fixture.waitForState(t, StateProcessing)
	release <- struct{}{}
	fixture.waitForState(t, StateListening)

	turns := fixture.orchestrator.Conversation()
	if len(turns) != 4 {
		t.Fatalf("expected two completed cycles, got %d turns", len(turns))
	}
	if turns[2].Content != "third" {
		t.Fatalf("expected the latest pending utterance to win, got %q", turns[2].Content)
	}
	for _, turn := range turns {
		if turn.Content == "second" || turn.Content == "answer to second" {
			t.Fatalf("expected the superseded pending utterance to be dropped")
		}
	}
}

func TestPendingUtteranceRejectPolicy(t *testing.T) {
	fixture := newPipelineFixture(t,
		WithAudioEnabled(false),
		WithPendingUtterancePolicy(PendingReject),
	)
	release := make(chan struct{})
	fixture.generation.generateFunc = func(_ context.Context, request generation.Request) (string, error) {
		<-release
		return "answer to " + request.Utterance, nil
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("first")
	fixture.waitForState(t, StateProcessing)
	fixture.finalTranscript("second")
	close(release)
	fixture.waitForState(t, StateListening)

	turns := fixture.orchestrator.Conversation()
	if len(turns) != 2 {
		t.Fatalf("expected the second utterance rejected, got %d turns", len(turns))
	}
}

func TestListeningAndSpeakingAreMutuallyExclusive(t *testing.T) {
	fixture := newPipelineFixture(t)

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	stopsBefore := fixture.recognition.stopCount()

	fixture.finalTranscript("exclusive check")
	fixture.waitForState(t, StateSpeaking)
	fixture.waitForSpeak(t)

	if fixture.recognition.stopCount() <= stopsBefore {
		t.Fatalf("expected recognition stopped before playback started")
	}

	// Restarting the microphone mid-playback cancels the playback first.
	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to restart, got %v", err)
	}
	fixture.waitForState(t, StateListening)
	if got := fixture.synthesis.cancelCount(); got != 1 {
		t.Fatalf("expected playback cancelled before listening, got %d cancellations", got)
	}
}

func TestStartListeningFailsWithoutRecognitionCapability(t *testing.T) {
	fixture := newPipelineFixture(t)
	fixture.recognition.unsupported = true

	err := fixture.orchestrator.StartListening()
	if !errors.Is(err, ErrEnvironmentUnsupported) {
		t.Fatalf("expected ErrEnvironmentUnsupported, got %v", err)
	}
	if got := fixture.orchestrator.CurrentState(); got != StateIdle {
		t.Fatalf("expected idle, got %q", got)
	}
}

func TestSynthesisUnsupportedDegradesToTextOnlyTurn(t *testing.T) {
	fixture := newPipelineFixture(t)
	fixture.synthesis.unsupported = true

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.finalTranscript("quiet answer")
	fixture.waitForState(t, StateProcessing)
	fixture.waitForState(t, StateListening)

	if got := fixture.synthesis.spokenCount(); got != 0 {
		t.Fatalf("expected no playback without synthesis support, got %d", got)
	}
	if got := len(fixture.orchestrator.Conversation()); got != 2 {
		t.Fatalf("expected a completed text-only turn, got %d turns", got)
	}
}

func TestStopListeningIsIdempotent(t *testing.T) {
	fixture := newPipelineFixture(t)

	fixture.orchestrator.StopListening()
	if got := fixture.orchestrator.CurrentState(); got != StateIdle {
		t.Fatalf("expected idle, got %q", got)
	}

	if err := fixture.orchestrator.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	fixture.orchestrator.StopListening()
	fixture.orchestrator.StopListening()
	if got := fixture.orchestrator.CurrentState(); got != StateIdle {
		t.Fatalf("expected idle after stopping, got %q", got)
	}
}

func TestSetLanguageRejectsUnknownTag(t *testing.T) {
	fixture := newPipelineFixture(t)

	if err := fixture.orchestrator.SetLanguage("xx-XX"); err == nil {
		t.Fatalf("expected an error for an unknown language tag")
	}
	if got := fixture.orchestrator.Language().Tag; got != languages.Default().Tag {
		t.Fatalf("expected the default profile to remain active, got %q", got)
	}
}

func TestRandomInterleavingsNeverOverlapListeningAndSpeaking(t *testing.T) {
	recognitionEngine := &recognitionEngineStub{}
	synthesisEngine := &synthesisEngineStub{
		voices: []synthesis.Voice{{ID: "voice-en", Name: "English", Locale: "en-US"}},
	}

	violation := make(chan string, 1)
	active := struct {
		sync.Mutex
		listening bool
		speaking  bool
	}{}

	orchestrator := NewOrchestrator(
		WithRecognitionEngine(recognitionEngine),
		WithSynthesisEngine(synthesisEngine),
		WithGenerationClient(&generationClientStub{}),
	)
	orchestrator.Orchestrate(context.Background(),
		WithStateChangedCallback(func(state State, _ string) {
			active.Lock()
			defer active.Unlock()
			switch state {
			case StateListening:
				active.listening = true
			case StateSpeaking:
				active.speaking = true
			default:
				active.listening = false
				active.speaking = false
			}
			if active.listening && active.speaking {
				select {
				case violation <- "listening and speaking overlap":
				default:
				}
			}
		}),
	)

	for i := 0; i < 25; i++ {
		switch i % 5 {
		case 0:
			_ = orchestrator.StartListening()
		case 1:
			if session, ok := recognitionEngine.latestSession(); ok {
				session.TranscriptionCallback(fmt.Sprintf("utterance %d", i))
			}
		case 2:
			orchestrator.SetAudioEnabled(i%2 == 0)
		case 3:
			orchestrator.StopListening()
		case 4:
			_ = orchestrator.SetLanguage("ta-IN")
		}
	}

	time.Sleep(100 * time.Millisecond)
	select {
	case reason := <-violation:
		t.Fatalf("invariant violated: %s", reason)
	default:
	}
}
