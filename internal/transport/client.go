// Package transport implements the widget's HTTP client for the external
// answer service.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrTransport is the single failure category for an answer request. Network
// faults, non-2xx responses, and undecodable or answer-less bodies all wrap
// it; callers substitute a fallback message rather than distinguishing them.
var ErrTransport = errors.New("transport: answer request failed")

// Answer is the successful outcome of one Ask call.
type Answer struct {
	Text string
}

// Config carries the two deployment-configured endpoints the widget talks to.
type Config struct {
	// AnswerURL receives POST {"question": ...} and returns {"answer": ...}.
	AnswerURL string
	// HealthURL receives the fire-and-forget liveness probe after a failure.
	HealthURL string
	// HTTPClient overrides the underlying client, mainly for tests. Defaults
	// to http.DefaultClient.
	HTTPClient *http.Client
}

// Client issues one answer request per user turn. No retries, no backoff; a
// failed ask triggers a single detached liveness probe so a cold-started
// backend is awake for the next attempt.
type Client struct {
	answerURL  string
	healthURL  string
	httpClient *http.Client
}

// NewClient builds a client from deployment config.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		answerURL:  cfg.AnswerURL,
		healthURL:  cfg.HealthURL,
		httpClient: httpClient,
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	// Pointer so an absent answer field is distinguishable from an empty one.
	Answer *string `json:"answer"`
}

// Ask sends the trimmed question to the answer endpoint and returns the
// answer text. The caller must never pass an empty question; the widget
// controller enforces that. Any failure wraps ErrTransport and fires exactly
// one liveness probe.
func (c *Client) Ask(ctx context.Context, question string) (Answer, error) {
	answer, err := c.ask(ctx, question)
	if err != nil {
		c.probeAsync()
		return Answer{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return answer, nil
}

func (c *Client) ask(ctx context.Context, question string) (Answer, error) {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return Answer{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.answerURL, bytes.NewReader(body))
	if err != nil {
		return Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Answer{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Answer{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded askResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Answer{}, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Answer == nil {
		return Answer{}, errors.New("response missing answer field")
	}

	return Answer{Text: *decoded.Answer}, nil
}

// probeAsync launches the liveness probe as a detached task. The probe's
// outcome is discarded on purpose: it exists only to nudge a sleeping backend
// awake, and must never block or fail the request that triggered it.
func (c *Client) probeAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
		if err != nil {
			log.Printf("[transport] probe request build failed: %v", err)
			return
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Ignored: the probe is best-effort by contract.
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
}
