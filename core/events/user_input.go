package events

const (
	// KindUserTranscriptInterim identifies mutable interim transcript updates.
	KindUserTranscriptInterim Kind = "user_input.transcript_interim"
	// KindUserTranscriptFinal identifies the final transcript for the utterance.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
	// KindRecognitionFailed identifies a recognition-engine error mid-session.
	KindRecognitionFailed Kind = "user_input.recognition_failed"
)

// UserTranscriptInterim carries a mutable interim transcript snapshot. It is
// surfaced for live-caption hosts and has no downstream pipeline effect.
type UserTranscriptInterim struct {
	Base
	Transcript string
}

// NewUserTranscriptInterim creates an interim transcript update event.
func NewUserTranscriptInterim(transcript string) UserTranscriptInterim {
	return UserTranscriptInterim{Base: NewBase(KindUserTranscriptInterim), Transcript: transcript}
}

// UserTranscriptFinal carries the final transcript for the utterance.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}

// RecognitionFailed marks a recognition-engine error. The session auto-stops
// and the user must explicitly restart listening.
type RecognitionFailed struct {
	Base
	Reason string
}

// NewRecognitionFailed creates a recognition failure event.
func NewRecognitionFailed(reason string) RecognitionFailed {
	return RecognitionFailed{Base: NewBase(KindRecognitionFailed), Reason: reason}
}
