package chat

import (
	"time"

	"github.com/google/uuid"
)

// Conversation holds the ordered turn history for one widget session. It is
// append-only: turns are never updated or removed, and the greeting stays at
// index 0 for the life of the conversation.
//
// Conversation itself is not synchronized; the owning controller serializes
// all access.
type Conversation struct {
	ID        string
	CreatedAt time.Time
	turns     []Turn
}

// NewConversation creates a conversation seeded with a single bot greeting
// turn.
func NewConversation(greeting string) *Conversation {
	c := &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		turns:     make([]Turn, 0, 16),
	}
	c.Append(SenderBot, greeting)
	return c
}

// Append adds a turn to the end of the history and returns it with its
// assigned id and timestamp.
func (c *Conversation) Append(sender Sender, text string) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	c.turns = append(c.turns, turn)
	return turn
}

// Snapshot returns a copy of the turn history in insertion order.
func (c *Conversation) Snapshot() []Turn {
	copied := make([]Turn, len(c.turns))
	copy(copied, c.turns)
	return copied
}

// Len reports the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}
