// Package deepgram implements speech synthesis over the Deepgram speak
// websocket API.
package deepgram

import (
	"context"
	"os"
	"sync"

	"github.com/stockest/stockest-core/core/audio"
	"github.com/stockest/stockest-core/core/synthesis"
)

// AudioOutput plays back synthesized audio. Hosts that consume audio
// themselves leave it unset and the engine discards the stream.
type AudioOutput interface {
	SendAudio(audio []byte) error
	ClearBuffer()
	EncodingInfo() audio.EncodingInfo
}

type SpeechClient struct {
	output AudioOutput

	mu     sync.Mutex
	active *speakRequest
}

type ClientOption func(*SpeechClient)

// WithAudioOutput attaches a playback device that receives the synthesized
// audio stream.
func WithAudioOutput(output AudioOutput) ClientOption {
	return func(c *SpeechClient) { c.output = output }
}

func NewSpeechClient(opts ...ClientOption) *SpeechClient {
	client := &SpeechClient{}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Supported reports whether the synthesis capability is usable on this
// host. Without credentials there is no engine to speak through.
func (c *SpeechClient) Supported() bool {
	_, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	return ok
}

// Voices lists the voices this engine can speak with.
func (c *SpeechClient) Voices(_ context.Context) ([]synthesis.Voice, error) {
	voices := make([]synthesis.Voice, len(voiceCatalog))
	copy(voices, voiceCatalog)
	return voices, nil
}

// Cancel discards the in-flight utterance, if any. The cancelled
// utterance's done callback does not fire.
func (c *SpeechClient) Cancel() {
	c.mu.Lock()
	active := c.active
	c.active = nil
	c.mu.Unlock()

	if active != nil {
		active.cancel()
	}

	if c.output != nil {
		c.output.ClearBuffer()
	}
}

func (c *SpeechClient) swapActive(req *speakRequest) *speakRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.active
	c.active = req
	return previous
}

func (c *SpeechClient) clearActive(req *speakRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == req {
		c.active = nil
	}
}
