package pipeline

import (
	"sync"

	"github.com/jinzhu/copier"
	"github.com/stockest/stockest-core/core/conversations"
)

// turnLog is the append-only conversation log. Turns are written only by
// the orchestrator after each completed step, never by the components
// below it.
type turnLog struct {
	mu    sync.Mutex
	turns []conversations.Turn
}

func (l *turnLog) Record(role conversations.Role, content string) conversations.Turn {
	turn := conversations.NewTurn(role, content)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
	return turn
}

// Snapshot returns a point-in-time copy of the log.
func (l *turnLog) Snapshot() []conversations.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	turns := []conversations.Turn{}
	if err := copier.Copy(&turns, &l.turns); err != nil {
		logger.Warn("Failed to snapshot conversation log", "error", err)
		return nil
	}
	return turns
}
