// Package conversations defines the conversation turn model shared by the
// pipeline and its hosts.
package conversations

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation log. Turns are append-only: the
// pipeline emits them once per completed step and never mutates them.
type Turn struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// NewTurn creates a turn with a fresh ID and capture timestamp.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
