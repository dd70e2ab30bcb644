package events

import "time"

// Kind identifies an event type within its namespace, for example
// "pipeline.state_changed".
type Kind string

// Event is the contract every pipeline event satisfies. Receivers switch
// on the concrete type; Kind and Timestamp exist for logging and
// serialization surfaces that cannot.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and capture time shared by all pipeline events.
// Concrete events embed it and add their payload fields.
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps a base with the given kind and the current time.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
