// Package chat turns a user prompt into one capability call and a composed reply.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/capability"
	"github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/metrics"
)

// DefaultTopN is the number of recommended rows when none is configured.
const DefaultTopN = 2

// Labels for requests that never reached a known capability.
const (
	labelNone    = "none"
	labelUnknown = "unknown"
)

// Service orchestrates SelectTool, Dispatch and ComposeReply. It keeps no state
// between requests.
type Service struct {
	model     Model
	retriever Retriever
	pricing   Normalizer
	currency  Converter
	topN      int
}

// New creates a chat orchestrator. topN <= 0 falls back to DefaultTopN.
func New(model Model, retriever Retriever, pricing Normalizer, currency Converter, topN int) *Service {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Service{
		model:     model,
		retriever: retriever,
		pricing:   pricing,
		currency:  currency,
		topN:      topN,
	}
}

// HandleUserMessage answers a single prompt. Each phase runs exactly once.
func (s *Service) HandleUserMessage(ctx context.Context, prompt string) (string, error) {
	label := labelNone
	reply, err := s.handle(ctx, prompt, &label)
	metrics.ChatRequestsTotal.WithLabelValues(label, metrics.Status(err)).Inc()
	return reply, err
}

func (s *Service) handle(ctx context.Context, prompt string, label *string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", domain.ErrInvalidArguments)
	}
	log := logger.FromContext(ctx)

	transcript := domain.NewTranscript(
		domain.Message{Role: domain.RoleSystem, Content: capability.SystemPrompt},
		domain.Message{Role: domain.RoleUser, Content: prompt},
	)

	// SelectTool
	start := time.Now()
	calls, err := s.model.SelectTool(ctx, transcript, capability.Definitions())
	if err != nil {
		return "", fmt.Errorf("select tool: %w", err)
	}
	if len(calls) == 0 {
		return "", domain.ErrNoActionSelected
	}
	call := calls[0]
	log.Debug("Tool selected",
		zap.String("capability", call.Name),
		zap.Int("proposed", len(calls)),
		zap.Duration("duration", time.Since(start)),
	)

	// Dispatch
	kind, err := capability.Parse(call.Name)
	if err != nil {
		*label = labelUnknown
		return "", err
	}
	*label = kind.String()

	start = time.Now()
	result, err := s.dispatch(ctx, kind, call.Arguments)
	if err != nil {
		return "", err
	}
	log.Debug("Capability done",
		zap.String("capability", kind.String()),
		zap.Int("result_bytes", len(result)),
		zap.Duration("duration", time.Since(start)),
	)

	// ComposeReply
	transcript.Append(domain.RoleUser, string(result))
	transcript.Append(domain.RoleSystem, capability.ReplyInstruction)

	start = time.Now()
	reply, err := s.model.ComposeText(ctx, transcript)
	if err != nil {
		return "", fmt.Errorf("compose reply: %w", err)
	}
	log.Debug("Reply composed", zap.Duration("duration", time.Since(start)))
	return reply, nil
}

// dispatch runs the capability and returns its serialized result.
func (s *Service) dispatch(ctx context.Context, kind capability.Kind, raw json.RawMessage) ([]byte, error) {
	switch kind {
	case capability.Currency:
		return s.convertCurrency(ctx, raw)
	case capability.Recommendation:
		return s.recommend(ctx, raw)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCapability, kind)
	}
}

type currencyResult struct {
	Result float64 `json:"result"`
}

func (s *Service) convertCurrency(ctx context.Context, raw json.RawMessage) ([]byte, error) {
	args, err := capability.DecodeCurrency(raw)
	if err != nil {
		return nil, err
	}

	amount, err := s.currency.Convert(ctx, args.Amount, args.From, args.To)
	if err != nil {
		return nil, fmt.Errorf("convert currency: %w", err)
	}
	return marshalResult(currencyResult{Result: amount})
}

func (s *Service) recommend(ctx context.Context, raw json.RawMessage) ([]byte, error) {
	args, err := capability.DecodeRecommendation(raw)
	if err != nil {
		return nil, err
	}

	rows, err := s.retriever.FindRelated(ctx, args.SearchTerm, s.topN)
	if err != nil {
		return nil, fmt.Errorf("find related: %w", err)
	}

	rows, err = s.pricing.Normalize(ctx, rows, args.ToCurrency)
	if err != nil {
		return nil, fmt.Errorf("normalize prices: %w", err)
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	return marshalResult(rows)
}

func marshalResult(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return b, nil
}
