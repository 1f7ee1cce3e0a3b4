// Package query defines the request and response shapes of the REST answer
// wrapper.
package query

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MaxQuestionLength = 500
	MinTopK           = 1
	MaxTopK           = 10
	DefaultBasicTopK  = 3
	DefaultTopK       = 5
)

var ErrEmptyQuestion = errors.New("question is required")

// BasicRequest is the body of POST /api/query/basic.
type BasicRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// Normalize applies defaults and validates bounds.
func (r *BasicRequest) Normalize() error {
	if r.TopK == 0 {
		r.TopK = DefaultBasicTopK
	}
	return validate(r.Question, r.TopK, 0)
}

// AdvancedRequest is the body of POST /api/query/advanced.
type AdvancedRequest struct {
	Question  string  `json:"question"`
	TopK      int     `json:"top_k"`
	MinScore  float64 `json:"min_score"`
	Stream    bool    `json:"stream"`
	Summarize bool    `json:"summarize"`
}

// Normalize applies defaults and validates bounds.
func (r *AdvancedRequest) Normalize() error {
	if r.TopK == 0 {
		r.TopK = DefaultTopK
	}
	return validate(r.Question, r.TopK, r.MinScore)
}

func validate(question string, topK int, minScore float64) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	if len(question) > MaxQuestionLength {
		return fmt.Errorf("question exceeds %d characters", MaxQuestionLength)
	}
	if topK < MinTopK || topK > MaxTopK {
		return fmt.Errorf("top_k must be between %d and %d", MinTopK, MaxTopK)
	}
	if minScore < 0 || minScore > 1 {
		return errors.New("min_score must be between 0.0 and 1.0")
	}
	return nil
}

// Source describes one retrieved document behind an answer.
type Source struct {
	Source  string  `json:"source"`
	Page    any     `json:"page"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// BasicResponse is the body returned by the basic query endpoint.
type BasicResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// AdvancedResponse is the body returned by the advanced query endpoint.
type AdvancedResponse struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	Summary   *string  `json:"summary"`
	Timestamp string   `json:"timestamp"`
}
