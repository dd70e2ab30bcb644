// Package deepgram implements live speech recognition over the Deepgram
// listen websocket API.
package deepgram

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stockest/stockest-core/core/audio"
)

// AudioSource feeds captured microphone audio into the transcription
// stream. Hosts that push audio themselves through SendAudio leave it unset.
type AudioSource interface {
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	EncodingInfo() audio.EncodingInfo
	Close()
}

type TranscriptionClient struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	// source is the optional capture device streamed into the session.
	source AudioSource

	stopCapture context.CancelFunc
	// stopping suppresses the error callback for deliberate shutdowns.
	stopping atomic.Bool

	lastMsgTs             time.Time
	accumulatedTranscript string
	unendedSegment        bool
}

type ClientOption func(*TranscriptionClient)

// WithAudioSource attaches a capture device whose stream is forwarded into
// the session for its whole lifetime.
func WithAudioSource(source AudioSource) ClientOption {
	return func(c *TranscriptionClient) { c.source = source }
}

func NewTranscriptionClient(opts ...ClientOption) *TranscriptionClient {
	client := &TranscriptionClient{}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Supported reports whether the recognition capability is usable on this
// host. Without credentials there is no engine to start.
func (c *TranscriptionClient) Supported() bool {
	_, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	return ok
}
