package stream

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/bhavnacorp/assist/internal/service/history"
)

type fakeStreamer struct {
	streaming bool
	answer    string
	chunks    []string
	err       error
}

func (f *fakeStreamer) StreamingEnabled() bool {
	return f.streaming
}

func (f *fakeStreamer) GenerateAnswer(_ context.Context, question string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeStreamer) StreamAnswer(_ context.Context, question string) (*schema.StreamReader[*schema.Message], error) {
	if f.err != nil {
		return nil, f.err
	}
	messages := make([]*schema.Message, 0, len(f.chunks))
	for _, chunk := range f.chunks {
		messages = append(messages, schema.AssistantMessage(chunk, nil))
	}
	return schema.StreamReaderFromArray(messages), nil
}

func TestHandleStreamRequestNonStreaming(t *testing.T) {
	store := history.NewStore()
	handler := New(&fakeStreamer{answer: "the answer"}, store)

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "the question"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	body := resp.Body.String()
	for _, want := range []string{`"event":"start"`, `"event":"message"`, `"the answer"`, `"event":"end"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %s:\n%s", want, body)
		}
	}
	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type: %q", got)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 history entry, got %d", store.Len())
	}
}

func TestHandleStreamRequestStreaming(t *testing.T) {
	store := history.NewStore()
	handler := New(&fakeStreamer{streaming: true, chunks: []string{"Unmesh ", "Mehta"}}, store)

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "Who is the CEO?"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	body := resp.Body.String()
	for _, want := range []string{`"event":"delta"`, `"event":"message"`, `"event":"end"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %s:\n%s", want, body)
		}
	}

	entries := store.List()
	if len(entries) != 1 || entries[0].Answer != "Unmesh Mehta" {
		t.Fatalf("unexpected history: %+v", entries)
	}
}

func TestHandleStreamRequestFailure(t *testing.T) {
	store := history.NewStore()
	handler := New(&fakeStreamer{err: errors.New("model down")}, store)

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "q"); err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(resp.Body.String(), `"event":"error"`) {
		t.Fatalf("body missing error event:\n%s", resp.Body.String())
	}
	if store.Len() != 0 {
		t.Fatal("failed stream must not be recorded")
	}
}
