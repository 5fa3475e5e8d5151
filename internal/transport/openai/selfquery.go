package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lexhaus/lexchat/internal/domain"
	"github.com/lexhaus/lexchat/internal/domain/search/filter"
)

// Analyzer extracts structured filters from a natural-language query
// against the law attribute schema, so the retriever can pre-filter the
// index before vector search (self-querying retrieval).
type Analyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger

	schemaPrompt string
}

// AnalyzerConfig holds the analyzer provider settings.
type AnalyzerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewAnalyzer creates a self-query analyzer.
func NewAnalyzer(cfg *AnalyzerConfig) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Analyzer{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		logger:       cfg.Logger,
		schemaPrompt: buildSchemaPrompt(domain.LawAttributes()),
	}
}

// analyzerOutput is the JSON shape the model is instructed to produce.
type analyzerOutput struct {
	Abbreviation string   `json:"abbreviation"`
	Title        string   `json:"title"`
	Tags         []string `json:"tags"`
	SeqMin       *float64 `json:"seq_min"`
	SeqMax       *float64 `json:"seq_max"`
}

// Analyze maps the query onto filter conditions. Only constraints the
// model is confident about are emitted; an unconstrained query yields an
// empty expression.
func (a *Analyzer) Analyze(ctx context.Context, query string) (filter.Expression, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: a.schemaPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return filter.Expression{}, parseAPIError("analyzer", err)
	}
	if len(resp.Choices) == 0 {
		return filter.Expression{}, fmt.Errorf("empty analyzer response: %w", domain.ErrProviderError)
	}

	var out analyzerOutput
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return filter.Expression{}, fmt.Errorf("parse analyzer output: %w: %w", err, domain.ErrProviderError)
	}

	return toExpression(out)
}

// toExpression converts the model output into filter conditions. Title
// is free text in the index and does not translate into an exact match,
// so it is accepted from the model but never filtered on.
func toExpression(out analyzerOutput) (filter.Expression, error) {
	var conds []filter.Condition

	if v := strings.TrimSpace(out.Abbreviation); v != "" {
		c, err := filter.Match("abbreviation", v)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("abbreviation filter: %w", err)
		}
		conds = append(conds, c)
	}

	for _, tag := range out.Tags {
		if v := strings.TrimSpace(tag); v != "" {
			c, err := filter.Match("tags", v)
			if err != nil {
				return filter.Expression{}, fmt.Errorf("tag filter: %w", err)
			}
			conds = append(conds, c)
		}
	}

	if out.SeqMin != nil || out.SeqMax != nil {
		c, err := filter.InRange("seq", filter.NewRange(out.SeqMin, out.SeqMax))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("seq filter: %w", err)
		}
		conds = append(conds, c)
	}

	expr, err := filter.New(conds...)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("build filter expression: %w", err)
	}
	return expr, nil
}

func buildSchemaPrompt(attrs []domain.AttributeSchema) string {
	var sb strings.Builder
	sb.WriteString("You extract structured filters for a German law document index ")
	sb.WriteString("from a user question. The filterable attributes are:\n")
	for _, attr := range attrs {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", attr.Name, attr.Type, attr.Description)
	}
	sb.WriteString(`
Respond with a JSON object of this exact shape:
{"abbreviation": "", "title": "", "tags": [], "seq_min": null, "seq_max": null}

Rules:
- Fill a field only when the question explicitly constrains it, for
  example a named law code ("BGB") or a clear legal topic for tags.
- Leave every other field empty. Do not guess.
- Never put the whole question into a filter.`)
	return sb.String()
}
