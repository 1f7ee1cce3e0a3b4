// Package stream serves answers over Server-Sent Events for pages that want
// incremental output instead of one response body.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"

	"github.com/bhavnacorp/assist/internal/service/history"
)

// AnswerStreamer is the answer backend of the SSE endpoint.
type AnswerStreamer interface {
	StreamingEnabled() bool
	GenerateAnswer(ctx context.Context, question string) (string, error)
	StreamAnswer(ctx context.Context, question string) (*schema.StreamReader[*schema.Message], error)
}

// Handler manages streaming answers via Server-Sent Events.
type Handler struct {
	streamer AnswerStreamer
	history  *history.Store
}

// New creates a stream handler.
func New(streamer AnswerStreamer, store *history.Store) *Handler {
	return &Handler{
		streamer: streamer,
		history:  store,
	}
}

// StreamResponse represents one streamed event.
type StreamResponse struct {
	Event    string `json:"event"`
	Content  string `json:"content,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStreamRequest answers one question over an SSE stream: a start event,
// delta events while the model produces output, a final message event with
// the full answer, then an end event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, question string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.sendSSE(w, flusher, StreamResponse{Event: "start"})

	answer, err := h.generate(ctx, w, flusher, question)
	if err != nil {
		h.sendSSE(w, flusher, StreamResponse{Event: "error", Error: fmt.Sprintf("answer generation failed: %v", err)})
		return err
	}

	h.history.Record(history.Entry{Question: question, Answer: answer})

	h.sendSSE(w, flusher, StreamResponse{Event: "end", Finished: true})
	log.Printf("[stream] completed response, answer_len=%d", len(answer))
	return nil
}

func (h *Handler) generate(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, question string) (string, error) {
	if h.streamer.StreamingEnabled() {
		return h.streamAnswer(ctx, w, flusher, question)
	}

	answer, err := h.streamer.GenerateAnswer(ctx, question)
	if err != nil {
		return "", err
	}

	h.sendSSE(w, flusher, StreamResponse{Event: "message", Content: answer})
	return answer, nil
}

func (h *Handler) streamAnswer(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, question string) (string, error) {
	stream, err := h.streamer.StreamAnswer(ctx, question)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.sendSSE(w, flusher, StreamResponse{Event: "delta", Content: chunk.Content})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}

	h.sendSSE(w, flusher, StreamResponse{Event: "message", Content: response.Content})
	return response.Content, nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("failed to marshal SSE response: %v", err)
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
