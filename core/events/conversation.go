package events

import "github.com/stockest/stockest-core/core/conversations"

const (
	// KindTurnRecorded identifies an appended conversation turn.
	KindTurnRecorded Kind = "conversation.turn_recorded"
)

// TurnRecorded carries a turn appended to the conversation log.
type TurnRecorded struct {
	Base
	Turn conversations.Turn
}

// NewTurnRecorded creates a turn recorded event.
func NewTurnRecorded(turn conversations.Turn) TurnRecorded {
	return TurnRecorded{Base: NewBase(KindTurnRecorded), Turn: turn}
}
