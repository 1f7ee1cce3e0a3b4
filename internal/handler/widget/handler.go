// Package widget exposes widget sessions over REST and a websocket live
// channel.
package widget

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bhavnacorp/assist/internal/model/chat"
	widgetservice "github.com/bhavnacorp/assist/internal/service/widget"
	widgetctl "github.com/bhavnacorp/assist/internal/widget"
	"github.com/bhavnacorp/assist/pkg/utils"
)

// Handler serves the widget session endpoints.
type Handler struct {
	svc *widgetservice.Service
}

// New creates the widget handler.
func New(svc *widgetservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the widget routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/widget/session", h.handleCreateSession)
	r.Get("/widget/session/{sessionID}", h.handleGetSession)
	r.Post("/widget/session/{sessionID}/toggle", h.handleToggle)
	r.Post("/widget/session/{sessionID}/message", h.handleMessage)
}

type sessionResponse struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"createdAt"`
	State     string      `json:"state"`
	Turns     []chat.Turn `json:"turns"`
}

func newSessionResponse(session *widgetservice.Session) sessionResponse {
	return sessionResponse{
		ID:        session.ID,
		CreatedAt: session.CreatedAt.Format(time.RFC3339),
		State:     session.Controller().State().String(),
		Turns:     session.Controller().Snapshot(),
	}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, newSessionResponse(session))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Toggle(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"state": state.String()})
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	queued, err := h.svc.Submit(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	switch {
	case errors.Is(err, widgetservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, widgetctl.ErrRequestInFlight), errors.Is(err, widgetctl.ErrPanelClosed):
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := "queued"
	if !queued {
		// Blank input is suppressed, never surfaced as an error.
		status = "ignored"
	}
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": status})
}
