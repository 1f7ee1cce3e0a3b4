// Package ai generates answers for the query wrapper with an eino chat-model
// chain. Document retrieval happens upstream of this service; it only turns a
// question (plus whatever context the caller supplies) into prose.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/bhavnacorp/assist/internal/config"
)

const systemPrompt = "You are the Bhavna Corp assistant. You answer questions about the company, " +
	"its leadership, HR policies, leave policies, salaries and benefits. Answer concisely and " +
	"factually. If the question is a greeting or small talk, respond briefly and point out that " +
	"you can help with company and policy questions."

const summaryPrompt = "Summarize the following answer to the question %q in exactly 2 sentences:\n\n%s"

// Service encapsulates answer generation for the query endpoints.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the answer chain against the configured chat model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile answer chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled reports whether SSE delta streaming is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GenerateAnswer produces the answer text for a question.
func (s *Service) GenerateAnswer(ctx context.Context, question string) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(question))
	if err != nil {
		return "", fmt.Errorf("failed to run answer chain: %w", err)
	}

	log.Printf("[ai] generated answer, question_len=%d answer_len=%d", len(question), len(response.Content))
	return response.Content, nil
}

// Summarize condenses an answer into a two-sentence summary.
func (s *Service) Summarize(ctx context.Context, question, answer string) (string, error) {
	if strings.TrimSpace(answer) == "" {
		return "", nil
	}

	response, err := s.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(summaryPrompt, question, answer)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize answer: %w", err)
	}
	return response.Content, nil
}

// StreamAnswer streams answer chunks via the configured chain.
func (s *Service) StreamAnswer(ctx context.Context, question string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, s.buildChainInput(question))
	if err != nil {
		return nil, fmt.Errorf("failed to stream answer chain output: %w", err)
	}
	return stream, nil
}

func (s *Service) buildChainInput(question string) map[string]any {
	return map[string]any{
		"system": systemPrompt,
		"query":  question,
	}
}
