package chat

import "time"

// Sender identifies who authored a turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Turn is one message in a widget conversation. Turns are immutable once
// appended; user-authored turns carry trimmed non-empty text, bot-authored
// turns may carry any string.
type Turn struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
