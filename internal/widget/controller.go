// Package widget implements the chat widget's conversation controller: a
// small state machine over the panel (closed / open-idle / open-awaiting)
// that owns the draft buffer and the append-only turn history.
package widget

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/bhavnacorp/assist/internal/model/chat"
	"github.com/bhavnacorp/assist/internal/transport"
)

// State is the widget panel state.
type State int

const (
	StateClosed State = iota
	StateOpenIdle
	StateOpenAwaiting
)

// String returns the wire representation used in API responses.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenIdle:
		return "idle"
	case StateOpenAwaiting:
		return "awaiting"
	default:
		return "unknown"
	}
}

var (
	// ErrPanelClosed rejects a submit while the panel is closed.
	ErrPanelClosed = errors.New("widget: panel is closed")
	// ErrRequestInFlight rejects a second submit before the first resolves.
	// Submissions are single-flight: the loading indicator promises one
	// outstanding request at a time.
	ErrRequestInFlight = errors.New("widget: a request is already in flight")
)

// Asker resolves one user question to one answer. transport.Client is the
// production implementation.
type Asker interface {
	Ask(ctx context.Context, question string) (transport.Answer, error)
}

// Config carries the fixed conversation strings.
type Config struct {
	// Greeting seeds the conversation as its first bot turn.
	Greeting string
	// Fallback is appended as a bot turn whenever the asker fails.
	Fallback string
}

// Controller drives one widget instance. All state mutation happens under a
// single mutex, so the conversation has exactly one logical writer.
type Controller struct {
	mu       sync.Mutex
	asker    Asker
	fallback string
	conv     *chat.Conversation
	state    State
	inflight bool
	draft    string
	onAppend func(chat.Turn)
}

// NewController creates a controller with a closed panel and a
// greeting-seeded conversation.
func NewController(asker Asker, cfg Config) *Controller {
	return &Controller{
		asker:    asker,
		fallback: cfg.Fallback,
		conv:     chat.NewConversation(cfg.Greeting),
		state:    StateClosed,
	}
}

// OnAppend registers a hook fired after every turn append, in append order.
// The presentation layer uses it to bring the newest turn into view; the
// websocket channel uses it to push turns to the page.
func (c *Controller) OnAppend(fn func(chat.Turn)) {
	c.mu.Lock()
	c.onAppend = fn
	c.mu.Unlock()
}

// Toggle flips panel visibility and returns the resulting state. Closing the
// panel does not cancel an in-flight request; reopening while it is still
// pending resumes the awaiting state.
func (c *Controller) Toggle() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		if c.inflight {
			c.state = StateOpenAwaiting
		} else {
			c.state = StateOpenIdle
		}
	} else {
		c.state = StateClosed
	}
	return c.state
}

// SetDraft replaces the uncommitted input text.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Draft returns the current uncommitted input text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Submit commits the draft as a user turn and dispatches the answer request.
// A draft that trims to empty is silently ignored (queued=false, nil error).
// The user turn is appended and the draft cleared before the request is
// dispatched, so a question always precedes its own answer in the history.
func (c *Controller) Submit(ctx context.Context) (queued bool, err error) {
	c.mu.Lock()

	switch {
	case c.state == StateClosed:
		c.mu.Unlock()
		return false, ErrPanelClosed
	case c.inflight:
		c.mu.Unlock()
		return false, ErrRequestInFlight
	}

	question := strings.TrimSpace(c.draft)
	if question == "" {
		c.mu.Unlock()
		return false, nil
	}

	turn := c.conv.Append(chat.SenderUser, question)
	c.draft = ""
	c.state = StateOpenAwaiting
	c.inflight = true
	notify := c.onAppend
	c.mu.Unlock()

	if notify != nil {
		notify(turn)
	}

	// The request outlives the submit call and cannot be aborted by closing
	// the panel; it runs to completion and its append lands regardless.
	go c.resolve(context.WithoutCancel(ctx), question)
	return true, nil
}

func (c *Controller) resolve(ctx context.Context, question string) {
	answer, err := c.asker.Ask(ctx, question)
	text := answer.Text
	if err != nil {
		log.Printf("[widget] ask failed, substituting fallback: %v", err)
		text = c.fallback
	}

	c.mu.Lock()
	turn := c.conv.Append(chat.SenderBot, text)
	c.inflight = false
	if c.state == StateOpenAwaiting {
		c.state = StateOpenIdle
	}
	notify := c.onAppend
	c.mu.Unlock()

	if notify != nil {
		notify(turn)
	}
}

// State returns the current panel state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether an answer request is outstanding.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Snapshot returns a copy of the conversation history.
func (c *Controller) Snapshot() []chat.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Snapshot()
}

// ConversationID returns the underlying conversation's identifier.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.ID
}
