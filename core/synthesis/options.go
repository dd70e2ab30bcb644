// Package synthesis defines the voice model and option contract shared by
// speech synthesis engines.
package synthesis

import (
	"strings"

	"github.com/stockest/stockest-core/core/audio"
)

// Voice is one synthesis voice an engine can speak with.
type Voice struct {
	ID     string
	Name   string
	Locale string
}

// PrimarySubtag returns the language part of the voice locale.
func (v Voice) PrimarySubtag() string {
	subtag, _, _ := strings.Cut(v.Locale, "-")
	return subtag
}

const (
	// DefaultRate and DefaultVolume match the assistant's spoken delivery
	// tuning. Engines without rate/volume control ignore them.
	DefaultRate   = 0.8
	DefaultVolume = 0.8
)

type Options struct {
	// Locale the utterance should be spoken in.
	Locale string
	// Voice overrides engine voice selection when set.
	Voice *Voice

	Rate   float64
	Volume float64

	// DoneCallback fires once when playback for the utterance completes.
	// Cancelled playbacks do not fire it.
	DoneCallback func()
	// ErrorCallback reports that the utterance could not be spoken.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type Option func(*Options)

func NewOptions(opts ...Option) Options {
	options := Options{Rate: DefaultRate, Volume: DefaultVolume}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithLocale(locale string) Option {
	return func(o *Options) {
		o.Locale = locale
	}
}

func WithVoice(voice Voice) Option {
	return func(o *Options) {
		o.Voice = &voice
	}
}

func WithRate(rate float64) Option {
	return func(o *Options) {
		if rate > 0 {
			o.Rate = rate
		}
	}
}

func WithVolume(volume float64) Option {
	return func(o *Options) {
		if volume > 0 {
			o.Volume = volume
		}
	}
}

// WithDoneCallback registers the playback completion signal.
func WithDoneCallback(callback func()) Option {
	return func(o *Options) {
		o.DoneCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) Option {
	return func(o *Options) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Options) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}
