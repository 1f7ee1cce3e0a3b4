package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bhavnacorp/assist/internal/service/history"
)

type fakeAnswerer struct {
	answer     string
	summary    string
	err        error
	summarized bool
}

func (f *fakeAnswerer) GenerateAnswer(_ context.Context, question string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeAnswerer) Summarize(_ context.Context, question, answer string) (string, error) {
	f.summarized = true
	return f.summary, nil
}

func setupRouter(answerer Answerer) (*chi.Mux, *history.Store) {
	store := history.NewStore()
	handler := New(answerer, store)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestBasicQuery(t *testing.T) {
	r, store := setupRouter(&fakeAnswerer{answer: "Unmesh Mehta is the CEO."})

	resp := postJSON(r, "/query/basic", map[string]any{"question": "Who is the CEO?"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Question  string `json:"question"`
		Answer    string `json:"answer"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Answer != "Unmesh Mehta is the CEO." {
		t.Fatalf("unexpected answer: %q", body.Answer)
	}
	if body.Timestamp == "" {
		t.Fatal("missing timestamp")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 history entry, got %d", store.Len())
	}
}

func TestBasicQueryValidation(t *testing.T) {
	r, _ := setupRouter(&fakeAnswerer{answer: "x"})

	cases := []map[string]any{
		{"question": ""},
		{"question": "   "},
		{"question": strings.Repeat("a", 501)},
		{"question": "ok", "top_k": 11},
		{"question": "ok", "top_k": -1},
	}
	for i, body := range cases {
		if resp := postJSON(r, "/query/basic", body); resp.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, resp.Code)
		}
	}
}

func TestBasicQueryWithoutAnswerer(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := postJSON(r, "/query/basic", map[string]any{"question": "anyone there?"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestBasicQueryAnswererFailure(t *testing.T) {
	r, store := setupRouter(&fakeAnswerer{err: errors.New("model exploded")})

	resp := postJSON(r, "/query/basic", map[string]any{"question": "q"})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if store.Len() != 0 {
		t.Fatal("failed query must not be recorded")
	}
}

func TestAdvancedQueryWithSummary(t *testing.T) {
	answerer := &fakeAnswerer{answer: "long answer", summary: "short summary"}
	r, store := setupRouter(answerer)

	resp := postJSON(r, "/query/advanced", map[string]any{
		"question":  "Tell me about maternity leave",
		"summarize": true,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Answer  string  `json:"answer"`
		Sources []any   `json:"sources"`
		Summary *string `json:"summary"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Summary == nil || *body.Summary != "short summary" {
		t.Fatalf("unexpected summary: %v", body.Summary)
	}
	if body.Sources == nil {
		t.Fatal("sources must be an empty array, not null")
	}
	if !answerer.summarized {
		t.Fatal("Summarize was not invoked")
	}

	entries := store.List()
	if len(entries) != 1 || entries[0].Summary != "short summary" {
		t.Fatalf("unexpected history: %+v", entries)
	}
}

func TestAdvancedQuerySkipsSummaryByDefault(t *testing.T) {
	answerer := &fakeAnswerer{answer: "a", summary: "s"}
	r, _ := setupRouter(answerer)

	resp := postJSON(r, "/query/advanced", map[string]any{"question": "q"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if answerer.summarized {
		t.Fatal("Summarize invoked without summarize flag")
	}

	var body struct {
		Summary *string `json:"summary"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Summary != nil {
		t.Fatalf("expected null summary, got %q", *body.Summary)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	r, store := setupRouter(&fakeAnswerer{answer: "a"})
	store.Record(history.Entry{Question: "q1", Answer: "a1"})
	store.Record(history.Entry{Question: "q2", Answer: "a2"})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		History []history.Entry `json:"history"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 2 || len(body.History) != 2 {
		t.Fatalf("unexpected history payload: %+v", body)
	}

	req = httptest.NewRequest(http.MethodDelete, "/history", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if store.Len() != 0 {
		t.Fatalf("history not cleared: %d entries", store.Len())
	}
}
