package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lexhaus/lexchat/internal/domain"
	"github.com/lexhaus/lexchat/internal/metrics"
)

// Generator produces answers via the chat completions endpoint, in
// streaming and non-streaming mode.
type Generator struct {
	client        *openai.Client
	model         string
	temperature   float32
	maxTokens     int
	streamTimeout time.Duration
	logger        *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float32
	MaxTokens     int
	StreamTimeout time.Duration
	Logger        *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         cfg.Model,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		streamTimeout: cfg.StreamTimeout,
		logger:        cfg.Logger,
	}
}

var _ domain.Generator = (*Generator)(nil)

// Stream implements domain.Generator. Fragments are forwarded in
// generation order; a provider failure mid-stream is delivered as a final
// event with Err set, after which the channel closes. Fragments already
// sent are never retracted.
func (g *Generator) Stream(ctx context.Context, prompt domain.Prompt) (<-chan domain.GenerationEvent, error) {
	var cancel context.CancelFunc = func() {}
	if g.streamTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, g.streamTimeout)
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, g.request(prompt))
	if err != nil {
		cancel()
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return nil, fmt.Errorf("open generation stream: %w: %w", parseAPIError("generation", err), domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()

	out := make(chan domain.GenerationEvent)
	go g.pump(ctx, cancel, stream, out)
	return out, nil
}

// pump reads the provider stream and forwards fragments until EOF, error,
// or context cancellation.
func (g *Generator) pump(
	ctx context.Context,
	cancel context.CancelFunc,
	stream *openai.ChatCompletionStream,
	out chan<- domain.GenerationEvent,
) {
	defer close(out)
	defer cancel()
	defer func() { _ = stream.Close() }()

	start := time.Now()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			metrics.GenerationDuration.Observe(time.Since(start).Seconds())
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				// Caller went away; swallow the read error.
				return
			}
			g.logger.Warn("Generation stream failed", zap.Error(err))
			ev := domain.GenerationEvent{Err: fmt.Errorf("read generation stream: %w: %w", err, domain.ErrGenerationFailed)}
			select {
			case out <- ev:
			case <-ctx.Done():
			}
			return
		}

		if len(resp.Choices) == 0 {
			continue
		}

		select {
		case out <- domain.GenerationEvent{Text: resp.Choices[0].Delta.Content}:
			metrics.StreamFragmentsTotal.Inc()
		case <-ctx.Done():
			return
		}
	}
}

// Invoke implements domain.Generator, returning the full answer in one call.
func (g *Generator) Invoke(ctx context.Context, prompt domain.Prompt) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, g.request(prompt))
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", fmt.Errorf("chat completion: %w: %w", parseAPIError("generation", err), domain.ErrGenerationFailed)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}

func (g *Generator) request(prompt domain.Prompt) openai.ChatCompletionRequest {
	segments := prompt.Segments()
	messages := make([]openai.ChatCompletionMessage, 0, len(segments))
	for _, seg := range segments {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(seg.Role),
			Content: seg.Text,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}
}

func chatRole(role domain.SegmentRole) string {
	switch role {
	case domain.SegmentSystem:
		return openai.ChatMessageRoleSystem
	case domain.SegmentAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
