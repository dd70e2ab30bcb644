package pipeline

// State is the pipeline's coarse lifecycle state. Listening and Speaking
// are mutually exclusive: synthesis output must never be captured by the
// microphone input.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
	// StateError is transient: the orchestrator surfaces a notice and
	// returns to idle immediately.
	StateError State = "error"
)

func (s State) String() string { return string(s) }

// PendingUtterancePolicy decides what happens to a final utterance that
// arrives while a processing cycle is already in flight.
type PendingUtterancePolicy int

const (
	// PendingReplace keeps a single pending slot where the latest
	// utterance wins; earlier pending ones are dropped.
	PendingReplace PendingUtterancePolicy = iota
	// PendingReject drops new utterances outright while processing.
	PendingReject
)
