// Package query exposes the REST answer wrapper consumed by the landing page
// and the widget transport.
package query

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bhavnacorp/assist/internal/model/query"
	"github.com/bhavnacorp/assist/internal/service/history"
	"github.com/bhavnacorp/assist/pkg/utils"
)

// Answerer generates answers and summaries for the wrapper endpoints.
// Retrieval internals live behind this interface.
type Answerer interface {
	GenerateAnswer(ctx context.Context, question string) (string, error)
	Summarize(ctx context.Context, question, answer string) (string, error)
}

// Handler serves the query and history endpoints.
type Handler struct {
	answerer Answerer
	history  *history.Store
}

// New creates the wrapper handler. A nil answerer makes the query endpoints
// report 503 while the rest of the service keeps running.
func New(answerer Answerer, store *history.Store) *Handler {
	return &Handler{
		answerer: answerer,
		history:  store,
	}
}

// RegisterRoutes mounts the wrapper routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/query/basic", h.handleBasicQuery)
	r.Post("/query/advanced", h.handleAdvancedQuery)
	r.Get("/history", h.handleGetHistory)
	r.Delete("/history", h.handleClearHistory)
}

func (h *Handler) handleBasicQuery(w http.ResponseWriter, r *http.Request) {
	var req query.BasicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Normalize(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.answerer == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "answer service unavailable")
		return
	}

	log.Printf("[query] basic query received, top_k=%d", req.TopK)

	answer, err := h.answerer.GenerateAnswer(r.Context(), req.Question)
	if err != nil {
		log.Printf("[query] basic query failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.history.Record(history.Entry{Question: req.Question, Answer: answer})

	utils.RespondJSON(w, http.StatusOK, query.BasicResponse{
		Question:  req.Question,
		Answer:    answer,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleAdvancedQuery(w http.ResponseWriter, r *http.Request) {
	var req query.AdvancedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Normalize(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.answerer == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "answer service unavailable")
		return
	}

	log.Printf("[query] advanced query received, top_k=%d summarize=%t", req.TopK, req.Summarize)

	answer, err := h.answerer.GenerateAnswer(r.Context(), req.Question)
	if err != nil {
		log.Printf("[query] advanced query failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var summary *string
	if req.Summarize {
		text, err := h.answerer.Summarize(r.Context(), req.Question, answer)
		if err != nil {
			// The answer is still useful without its summary.
			log.Printf("[query] summarization failed: %v", err)
		} else {
			summary = &text
		}
	}

	entry := history.Entry{Question: req.Question, Answer: answer}
	if summary != nil {
		entry.Summary = *summary
	}
	h.history.Record(entry)

	utils.RespondJSON(w, http.StatusOK, query.AdvancedResponse{
		Question:  req.Question,
		Answer:    answer,
		Sources:   []query.Source{},
		Summary:   summary,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.history.List()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"history": entries,
		"count":   len(entries),
	})
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	h.history.Clear()
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":   "History cleared successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
