package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/stockest/stockest-core/core/audio"
	"github.com/stockest/stockest-core/core/synthesis"
	"go.opentelemetry.io/otel/attribute"
)

// Speak synthesizes a single utterance. Any in-flight utterance is
// cancelled first; its done callback does not fire.
func (c *SpeechClient) Speak(ctx context.Context, text string, opts ...synthesis.Option) error {
	ctx, span := tracer.Start(ctx, "start speech synthesis")
	defer span.End()

	options := synthesis.NewOptions(opts...)
	if options.EncodingInfo.IsZero() {
		if c.output != nil {
			options.EncodingInfo = c.output.EncodingInfo()
		} else {
			options.EncodingInfo = audio.GetDefaultEncodingInfo()
		}
	}

	voice, err := resolveVoice(options)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("synthesis.voice", voice.ID))

	conn, err := connectWebsocket(ctx, voice, options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	req := &speakRequest{
		ws:      conn,
		options: options,
		output:  c.output,
		client:  c,
	}

	if previous := c.swapActive(req); previous != nil {
		previous.cancel()
		if c.output != nil {
			c.output.ClearBuffer()
		}
	}

	go req.readAndProcessMessages(ctx)

	if err := req.sendWebsocketMessage(speakMsg(text)); err != nil {
		req.cancel()
		c.clearActive(req)
		return fmt.Errorf("failed to send text to deepgram through websocket: %w", err)
	}
	if err := req.sendWebsocketMessage(flushMsg); err != nil {
		req.cancel()
		c.clearActive(req)
		return fmt.Errorf("failed to flush deepgram buffer through websocket: %w", err)
	}

	return nil
}

// resolveVoice prefers an explicit voice and otherwise matches the locale
// against the catalog, falling back on the primary language subtag and
// finally the default voice.
func resolveVoice(options synthesis.Options) (synthesis.Voice, error) {
	if options.Voice != nil {
		if voice, ok := catalogVoice(options.Voice.ID); ok {
			return voice, nil
		}
		return synthesis.Voice{}, fmt.Errorf("unknown voice: %s", options.Voice.ID)
	}

	if options.Locale != "" {
		for _, voice := range voiceCatalog {
			if voice.Locale == options.Locale {
				return voice, nil
			}
		}
		want := (synthesis.Voice{Locale: options.Locale}).PrimarySubtag()
		for _, voice := range voiceCatalog {
			if voice.PrimarySubtag() == want {
				return voice, nil
			}
		}
	}

	voice, _ := catalogVoice(defaultVoiceID)
	return voice, nil
}

func connectWebsocket(ctx context.Context, voice synthesis.Voice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", voice.ID)
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx,
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

type speakRequest struct {
	ws *websocket.Conn
	mu sync.Mutex

	options synthesis.Options
	output  AudioOutput
	client  *SpeechClient

	cancelled bool
	closed    bool
}

func (r *speakRequest) readAndProcessMessages(_ context.Context) {
	for {
		msgType, msg, err := r.ws.ReadMessage()
		if err != nil {
			if err.Error() != "websocket: close 1000 (normal)" && !r.isCancelled() {
				logger.Error("Websocket read error", "error", err)
				if r.options.ErrorCallback != nil {
					r.options.ErrorCallback(fmt.Errorf("synthesis stream failed: %w", err))
				}
			}
			_ = r.close()
			r.client.clearActive(r)
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if r.isCancelled() || len(msg) == 0 {
				continue
			}
			if r.output != nil {
				if err := r.output.SendAudio(applyVolume(msg, r.options)); err != nil {
					logger.Warn("Failed to forward synthesized audio", "error", err)
				}
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Warn("Failed to unmarshal deepgram message", "error", err)
				continue
			}

			// Flushed marks the end of the utterance's audio.
			if parsedMsg.Type == "Flushed" {
				done := !r.isCancelled()
				_ = r.close()
				r.client.clearActive(r)
				if done && r.options.DoneCallback != nil {
					r.options.DoneCallback()
				}
				return
			}
		}
	}
}

// applyVolume scales linear16 samples by the configured volume. Other
// formats pass through untouched.
func applyVolume(chunk []byte, options synthesis.Options) []byte {
	if options.Volume >= 1 || options.EncodingInfo.Format != audio.EncodingLinear16 {
		return chunk
	}

	scaled := make([]byte, len(chunk))
	for i := 0; i+1 < len(chunk); i += 2 {
		sample := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
		sample = int16(float64(sample) * options.Volume)
		scaled[i] = byte(uint16(sample))
		scaled[i+1] = byte(uint16(sample) >> 8)
	}
	return scaled
}

func (r *speakRequest) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

func (r *speakRequest) cancel() {
	r.mu.Lock()
	if r.cancelled || r.closed {
		r.mu.Unlock()
		return
	}
	r.cancelled = true
	r.mu.Unlock()

	if err := r.sendWebsocketMessage(clearMsg); err != nil {
		logger.Warn("Failed to clear deepgram buffer through websocket", "error", err)
	}
	_ = r.close()
}

func (r *speakRequest) close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	ws := r.ws
	r.mu.Unlock()

	if err := ws.WriteJSON(closeMsg); err != nil {
		if aggressiveCloseErr := ws.Close(); aggressiveCloseErr != nil {
			return fmt.Errorf("failed to close websocket: %w", aggressiveCloseErr)
		}
	}
	return nil
}

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	speakMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (r *speakRequest) sendWebsocketMessage(msg any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}

	if err := r.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
