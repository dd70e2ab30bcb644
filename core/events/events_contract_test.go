package events

import (
	"testing"

	"github.com/stockest/stockest-core/core/conversations"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "user transcript interim", event: NewUserTranscriptInterim("text"), expected: KindUserTranscriptInterim},
		{name: "user transcript final", event: NewUserTranscriptFinal("text"), expected: KindUserTranscriptFinal},
		{name: "recognition failed", event: NewRecognitionFailed("no-speech"), expected: KindRecognitionFailed},
		{name: "turn recorded", event: NewTurnRecorded(conversations.NewTurn(conversations.RoleUser, "hi")), expected: KindTurnRecorded},
		{name: "state changed", event: NewStateChanged("listening", ""), expected: KindStateChanged},
		{name: "notice", event: NewNotice("title", "detail"), expected: KindNotice},
		{name: "processing completed", event: NewProcessingCompleted(1, "answer", false), expected: KindProcessingCompleted},
		{name: "playback ended", event: NewPlaybackEnded("answer"), expected: KindPlaybackEnded},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestKindsAreUnique(t *testing.T) {
	kinds := []Kind{
		KindUserTranscriptInterim,
		KindUserTranscriptFinal,
		KindRecognitionFailed,
		KindTurnRecorded,
		KindStateChanged,
		KindNotice,
		KindProcessingCompleted,
		KindPlaybackEnded,
	}

	seen := map[Kind]bool{}
	for _, kind := range kinds {
		if seen[kind] {
			t.Fatalf("duplicate event kind %q", kind)
		}
		seen[kind] = true
	}
}
