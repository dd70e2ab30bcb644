package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/stockest/stockest-core/core/audio"
	"github.com/stockest/stockest-core/core/recognition"
)

// model is the multilingual live model; the pipeline targets Indic locales
// the English-only models cannot transcribe.
const model = "nova-2"

const defaultLocale = "en-IN"

func (c *TranscriptionClient) Transcribe(ctx context.Context, opts ...recognition.Option) error {
	options := &recognition.Options{
		Locale:       defaultLocale,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	if c.source != nil {
		options.EncodingInfo = c.source.EncodingInfo()
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.EncodingInfo.Format.ByteSize() < 0 {
		return fmt.Errorf("invalid encoding: %s", options.EncodingInfo.Format.Name())
	}

	conn, err := connectWebsocket(connectionOptions{
		sampleRate: options.EncodingInfo.SampleRate,
		encoding:   options.EncodingInfo.Format.Name(),
		language:   options.Locale,

		detectSpeechStart: options.SpeechStartedCallback != nil,
		enhanceSpeechEndingDetection: options.TranscriptionCallback != nil ||
			options.SpeechEndedCallback != nil,
		interimResults: options.InterimTranscriptionCallback != nil,
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	c.stopping.Store(false)
	c.connMu.Lock()
	c.conn = conn
	c.lastMsgTs = time.Now()
	c.connMu.Unlock()

	go c.readAndProcessMessages(ctx, conn, *options)

	if c.source != nil {
		captureCtx, cancel := context.WithCancel(ctx)
		c.stopCapture = cancel
		go func() {
			if err := c.source.Stream(captureCtx, func(chunk []byte) {
				if err := c.SendAudio(chunk); err != nil {
					log.Println("Failed to forward captured audio", "error", err)
				}
			}); err != nil {
				log.Println("Audio capture stream failed", "error", err)
			}
		}()
	}

	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
	language   string

	detectSpeechStart            bool
	enhanceSpeechEndingDetection bool
	interimResults               bool
}

func connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", model)
	queryParams.Set("language", options.language)
	queryParams.Set("smart_format", "true")
	if options.enhanceSpeechEndingDetection {
		queryParams.Set("utterance_end_ms", "1000")
		queryParams.Set("interim_results", "true")
	} else if options.interimResults {
		queryParams.Set("interim_results", "true")
	}
	queryParams.Set("endpointing", "300")
	if options.detectSpeechStart || options.enhanceSpeechEndingDetection {
		queryParams.Set("vad_events", "true")
	}

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, err
}

func (c *TranscriptionClient) SendAudio(chunk []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("transcription session not started")
	}

	c.lastMsgTs = time.Now()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// Stop ends the session. It is idempotent and safe to call when not
// listening; a stopped session reports no error through the error callback.
func (c *TranscriptionClient) Stop() error {
	c.stopping.Store(true)

	if c.stopCapture != nil {
		c.stopCapture()
		c.stopCapture = nil
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return nil
	}

	if err := c.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		c.conn.Close()
		c.conn = nil
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}

	return nil
}

func (c *TranscriptionClient) sendKeepAlive() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}

	if err := c.conn.WriteJSON(
		struct {
			Type string `json:"type"`
		}{
			Type: "KeepAlive",
		}); err != nil {
		log.Println("Failed to write to deepgram client", "error", err)
	}
}

func (c *TranscriptionClient) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, options recognition.Options) {
	keepAliveCtx, keepAliveCancel := context.WithCancel(ctx)
	defer keepAliveCancel()

	go c.generateKeepAlive(keepAliveCtx)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if err.Error() != "websocket: close 1000 (normal)" && !c.stopping.Load() {
				log.Println("Failed to read deepgram websocket message", "error", err)
				if options.ErrorCallback != nil {
					options.ErrorCallback(fmt.Errorf("recognition stream failed: %w", err))
				}
			}

			c.connMu.Lock()
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()
			return
		}
		if msgType != websocket.BinaryMessage {
			c.processMessage(msg, options)
		}
	}
}

func (c *TranscriptionClient) processMessage(msg []byte, options recognition.Options) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	err := json.Unmarshal(msg, &parsedMsg)
	if err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}
		if msgResp.IsFinal {
			if len(msgResp.Channel.Alternatives) > 0 {
				transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
				if len(transcript) > 0 {
					c.accumulatedTranscript += " " + transcript
				}
			}
			if msgResp.SpeechFinal {
				c.onSpeechEnded(options)
			}
		}
		if !msgResp.IsFinal && options.InterimTranscriptionCallback != nil {
			if len(msgResp.Channel.Alternatives) > 0 {
				transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
				if len(transcript) > 0 {
					options.InterimTranscriptionCallback(strings.TrimSpace(c.accumulatedTranscript + " " + transcript))
				}
			}
		}

	case api.TypeUtteranceEndResponse:
		var msgResp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		if c.unendedSegment {
			c.onSpeechEnded(options)
		}
	case api.TypeSpeechStartedResponse:
		var msgResp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		c.unendedSegment = true
		if options.SpeechStartedCallback != nil {
			options.SpeechStartedCallback()
		}
	case api.TypeResponse(api.TypeErrorResponse):
		if options.ErrorCallback != nil {
			options.ErrorCallback(fmt.Errorf("recognition engine error: %s", string(msg)))
		}
	}
}

func (c *TranscriptionClient) onSpeechEnded(options recognition.Options) {
	c.unendedSegment = false
	if options.TranscriptionCallback != nil {
		fullTranscript := strings.TrimSpace(c.accumulatedTranscript)
		c.accumulatedTranscript = ""
		if len(fullTranscript) > 0 {
			options.TranscriptionCallback(fullTranscript)
		}
	}
	if options.SpeechEndedCallback != nil {
		options.SpeechEndedCallback()
	}
}

// generateKeepAlive keeps the websocket open across capture gaps. Deepgram
// drops the connection after ~10s without traffic.
func (c *TranscriptionClient) generateKeepAlive(ctx context.Context) {
	const interval = 5 * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			idle := time.Since(c.lastMsgTs) >= interval
			c.connMu.Unlock()
			if idle {
				c.sendKeepAlive()
			}
		}
	}
}
