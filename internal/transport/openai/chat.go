package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/capability"
	"github.com/kailas-cloud/shopassist/internal/metrics"
)

const (
	phaseSelectTool   = "select_tool"
	phaseComposeReply = "compose_reply"
)

// ChatModel selects tools and composes replies through the chat completions API.
type ChatModel struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

var _ domain.HealthChecker = (*ChatModel)(nil)

// NewChatModel creates a chat model on top of a shared client.
func NewChatModel(client *openai.Client, cfg *Config) *ChatModel {
	return &ChatModel{
		client: client,
		model:  cfg.ChatModel,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

// SelectTool asks the model which capability to invoke. It returns every proposed
// invocation of the first choice in order; an empty slice means none was proposed.
func (m *ChatModel) SelectTool(
	ctx context.Context, transcript *domain.Transcript, tools []capability.Definition,
) ([]domain.ToolInvocation, error) {
	req := openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: toMessages(transcript),
		Tools:    toTools(tools),
		User:     m.user,
	}

	resp, err := m.complete(ctx, phaseSelectTool, req)
	if err != nil {
		return nil, err
	}

	calls := resp.Choices[0].Message.ToolCalls
	out := make([]domain.ToolInvocation, 0, len(calls))
	for _, c := range calls {
		if c.Type != "" && c.Type != openai.ToolTypeFunction {
			continue
		}
		out = append(out, domain.ToolInvocation{
			Name:      c.Function.Name,
			Arguments: json.RawMessage(c.Function.Arguments),
		})
	}
	return out, nil
}

// ComposeText asks the model for a plain text reply (no tools offered).
func (m *ChatModel) ComposeText(ctx context.Context, transcript *domain.Transcript) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: toMessages(transcript),
		User:     m.user,
	}

	resp, err := m.complete(ctx, phaseComposeReply, req)
	if err != nil {
		return "", err
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty completion content: %w", domain.ErrUpstreamUnavailable)
	}
	return content, nil
}

// HealthCheck verifies API availability.
func (m *ChatModel) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, m.client)
}

func (m *ChatModel) complete(
	ctx context.Context, phase string, req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err == nil && len(resp.Choices) == 0 {
		err = fmt.Errorf("no choices in completion: %w", domain.ErrUpstreamUnavailable)
	} else if err != nil {
		err = parseAPIError(err, domain.ErrUpstreamUnavailable, "chat")
	}

	metrics.LLMRequestsTotal.WithLabelValues(m.model, phase, metrics.Status(err)).Inc()
	if err != nil {
		m.logger.Debug("Chat completion failed",
			zap.String("model", m.model),
			zap.String("phase", phase),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return openai.ChatCompletionResponse{}, err
	}
	metrics.LLMRequestDuration.WithLabelValues(m.model, phase).Observe(duration.Seconds())

	m.logger.Debug("Chat completion done",
		zap.String("model", m.model),
		zap.String("phase", phase),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp, nil
}

func toMessages(t *domain.Transcript) []openai.ChatCompletionMessage {
	msgs := t.Messages()
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = openai.ChatCompletionMessage{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}

func toTools(defs []capability.Definition) []openai.Tool {
	out := make([]openai.Tool, len(defs))
	for i, d := range defs {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		}
	}
	return out
}
