// Package recognition defines the option contract shared by speech
// recognition engines.
package recognition

import "github.com/stockest/stockest-core/core/audio"

type Options struct {
	// Locale is the BCP-47 tag the engine should transcribe in. A session
	// keeps the locale it was started with; later changes only affect the
	// next session.
	Locale string

	InterimTranscriptionCallback func(transcript string)
	TranscriptionCallback        func(transcript string)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	// ErrorCallback reports an engine fault mid-session. Engines auto-stop
	// after reporting; they never retry on their own.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type Option func(*Options)

func WithLocale(locale string) Option {
	return func(o *Options) {
		o.Locale = locale
	}
}

// WithInterimTranscriptionCallback registers a callback for interim
// transcripts. Interim results exist for responsiveness only and carry no
// pipeline effect.
func WithInterimTranscriptionCallback(callback func(transcript string)) Option {
	return func(o *Options) {
		o.InterimTranscriptionCallback = callback
	}
}

// WithTranscriptionCallback registers a callback for final transcripts.
func WithTranscriptionCallback(callback func(transcript string)) Option {
	return func(o *Options) {
		o.TranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) Option {
	return func(o *Options) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) Option {
	return func(o *Options) {
		o.SpeechEndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) Option {
	return func(o *Options) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Options) {
		o.EncodingInfo = encodingInfo
	}
}
