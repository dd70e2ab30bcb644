package pipeline

import (
	"context"
	"fmt"

	"github.com/stockest/stockest-core/core/recognition"
)

// recognitionSession is the recognition facade used to handle optional
// engine wiring. Every method is safe to call with no engine configured.
type recognitionSession struct {
	// client stores the configured recognition engine.
	client RecognitionEngine

	active bool
}

func (s *recognitionSession) set(client RecognitionEngine) {
	if s != nil {
		s.client = client
	}
}

func (s *recognitionSession) isConfigured() bool {
	return s != nil && s.client != nil
}

func (s *recognitionSession) Supported() bool {
	return s.isConfigured() && s.client.Supported()
}

type recognitionCallbacks struct {
	onInterimTranscription func(transcript string)
	onTranscription        func(transcript string)
	onError                func(err error)
}

func (s *recognitionSession) Start(ctx context.Context, locale string, callbacks recognitionCallbacks) error {
	if !s.isConfigured() {
		return ErrEnvironmentUnsupported
	}

	if err := s.client.Transcribe(ctx,
		recognition.WithLocale(locale),
		recognition.WithInterimTranscriptionCallback(callbacks.onInterimTranscription),
		recognition.WithTranscriptionCallback(callbacks.onTranscription),
		recognition.WithErrorCallback(callbacks.onError),
	); err != nil {
		return fmt.Errorf("failed to start transcribing: %w", err)
	}

	s.active = true
	return nil
}

// Stop is idempotent and safe to call when not listening.
func (s *recognitionSession) Stop() {
	if !s.isConfigured() || !s.active {
		return
	}

	s.active = false
	if err := s.client.Stop(); err != nil {
		logger.Warn("Failed to stop recognition session", "error", err)
	}
}

func (s *recognitionSession) isActive() bool {
	return s != nil && s.active
}
