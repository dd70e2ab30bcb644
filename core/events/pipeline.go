package events

const (
	// KindStateChanged identifies pipeline state transitions.
	KindStateChanged Kind = "pipeline.state_changed"
	// KindNotice identifies user-visible recoverable notices.
	KindNotice Kind = "pipeline.notice"
	// KindProcessingCompleted identifies completion of an enrichment+generation cycle.
	KindProcessingCompleted Kind = "pipeline.processing_completed"
	// KindPlaybackEnded identifies the end of synthesis playback.
	KindPlaybackEnded Kind = "pipeline.playback_ended"
)

// StateChanged marks a pipeline state transition. Reason is only populated
// for error states.
type StateChanged struct {
	Base
	State  string
	Reason string
}

// NewStateChanged creates a state transition event.
func NewStateChanged(state string, reason string) StateChanged {
	return StateChanged{Base: NewBase(KindStateChanged), State: state, Reason: reason}
}

// Notice carries a user-visible notice. Notices are decided only by the
// orchestrator; components below it never surface anything directly.
type Notice struct {
	Base
	Title  string
	Detail string
}

// NewNotice creates a notice event.
func NewNotice(title, detail string) Notice {
	return Notice{Base: NewBase(KindNotice), Title: title, Detail: detail}
}

// ProcessingCompleted carries the answer produced by one processing cycle.
// CycleID ties the completion back to the cycle that started it so stale
// completions can be discarded. Degraded reports that the answer is the
// fixed fallback rather than generated content.
type ProcessingCompleted struct {
	Base
	CycleID  int64
	Answer   string
	Degraded bool
}

// NewProcessingCompleted creates a processing completion event.
func NewProcessingCompleted(cycleID int64, answer string, degraded bool) ProcessingCompleted {
	return ProcessingCompleted{Base: NewBase(KindProcessingCompleted), CycleID: cycleID, Answer: answer, Degraded: degraded}
}

// PlaybackEnded marks that playback of the current answer finished, failed,
// or was cancelled. Transcript is the text that was being spoken.
type PlaybackEnded struct {
	Base
	Transcript string
}

// NewPlaybackEnded creates a playback ended event.
func NewPlaybackEnded(transcript string) PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded), Transcript: transcript}
}
