package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/stockest/stockest-core/core/synthesis"
)

// speechSynthesis is the synthesis facade used to handle optional engine
// wiring, voice selection and latest-wins playback.
type speechSynthesis struct {
	// client stores the configured synthesis engine.
	client SynthesisEngine

	// voicesOnce gates the first utterance until the voice list is
	// populated; selection proceeds synchronously thereafter.
	voicesOnce sync.Once
	voices     []synthesis.Voice

	// playbackID fences callbacks of superseded playbacks.
	playbackID atomic.Int64
}

func (s *speechSynthesis) set(client SynthesisEngine) {
	if s != nil {
		s.client = client
	}
}

func (s *speechSynthesis) isConfigured() bool {
	return s != nil && s.client != nil
}

func (s *speechSynthesis) Supported() bool {
	return s.isConfigured() && s.client.Supported()
}

// Speak starts playback of text in the given locale. Any active playback
// is cancelled first; its callbacks do not fire.
func (s *speechSynthesis) Speak(ctx context.Context, text string, locale string, onDone func(), onError func(err error)) error {
	if !s.isConfigured() {
		return ErrEnvironmentUnsupported
	}

	s.loadVoices(ctx)

	id := s.playbackID.Add(1)
	opts := []synthesis.Option{
		synthesis.WithLocale(locale),
		synthesis.WithDoneCallback(func() {
			if s.playbackID.Load() == id && onDone != nil {
				onDone()
			}
		}),
		synthesis.WithErrorCallback(func(err error) {
			if s.playbackID.Load() == id && onError != nil {
				onError(err)
			}
		}),
	}
	if voice := selectVoice(s.voices, locale); voice != nil {
		opts = append(opts, synthesis.WithVoice(*voice))
	}

	if err := s.client.Speak(ctx, text, opts...); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// Cancel stops any active playback immediately. Idempotent; the cancelled
// playback's done callback does not fire.
func (s *speechSynthesis) Cancel() {
	if !s.isConfigured() {
		return
	}

	s.playbackID.Add(1)
	s.client.Cancel()
}

func (s *speechSynthesis) loadVoices(ctx context.Context) {
	s.voicesOnce.Do(func() {
		voices, err := s.client.Voices(ctx)
		if err != nil {
			logger.Warn("Failed to list synthesis voices, using engine default", "error", err)
			return
		}
		s.voices = voices
	})
}

// selectVoice prefers an exact locale match, then a primary language
// subtag match, and otherwise defers to the engine default by returning
// nil.
func selectVoice(voices []synthesis.Voice, locale string) *synthesis.Voice {
	for i, voice := range voices {
		if voice.Locale == locale {
			return &voices[i]
		}
	}

	want := (synthesis.Voice{Locale: locale}).PrimarySubtag()
	for i, voice := range voices {
		if voice.PrimarySubtag() == want {
			return &voices[i]
		}
	}

	return nil
}
