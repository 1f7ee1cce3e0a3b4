// Package widget manages server-side widget sessions, one controller per
// embedded widget instance.
package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhavnacorp/assist/internal/model/chat"
	widgetctl "github.com/bhavnacorp/assist/internal/widget"
)

var ErrSessionNotFound = errors.New("widget session not found")

// Session binds a widget controller to a page view.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	controller *widgetctl.Controller
}

// Controller exposes the session's underlying controller, mainly for the
// websocket channel.
func (s *Session) Controller() *widgetctl.Controller {
	return s.controller
}

// Service encapsulates widget session state management. Sessions live for the
// duration of a page view and are never persisted.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	asker widgetctl.Asker
	cfg   widgetctl.Config
}

// NewService bootstraps the in-memory session registry.
func NewService(asker widgetctl.Asker, cfg widgetctl.Config) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		asker:    asker,
		cfg:      cfg,
	}
}

// CreateSession provisions a session with a fresh controller and opens its
// panel, since the page only asks for a session when the visitor opens the
// widget.
func (s *Service) CreateSession(_ context.Context) (*Session, error) {
	session := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		controller: widgetctl.NewController(s.asker, s.cfg),
	}
	session.controller.Toggle()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Toggle flips the panel for the given session and returns the new state.
func (s *Service) Toggle(ctx context.Context, sessionID string) (widgetctl.State, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return widgetctl.StateClosed, err
	}
	return session.controller.Toggle(), nil
}

// Submit stores the draft on the session's controller and commits it. The
// returned queued flag is false when the text trimmed to nothing.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (bool, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	session.controller.SetDraft(text)
	return session.controller.Submit(ctx)
}

// Transcript returns a copy of the session's conversation history.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.controller.Snapshot(), nil
}
