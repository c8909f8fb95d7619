// Package anthropic adapts Anthropic's Claude models to the
// providers.Adapter contract.
package anthropic

import (
	"context"
	"errors"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/quantsignal/consensus/providers"
	"github.com/quantsignal/consensus/types"
)

// statusCoder is implemented by the SDK's own error type; asserted
// against rather than imported by name so a future SDK major bump
// that renames the concrete type doesn't break classification, only
// degrades it to the default TransportErr bucket.
type statusCoder interface {
	StatusCode() int
}

// Provider calls Claude via the official Anthropic SDK.
type Provider struct {
	id         string
	client     anthropicsdk.Client
	model      string
	maxRetries int
	maxTokens  int64
}

// Config configures a Provider.
type Config struct {
	ID         string
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	MaxTokens  int64
}

// New builds a Provider. BaseURL is optional; an empty value uses the
// SDK's default.
func New(cfg Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Provider{
		id:         cfg.ID,
		client:     anthropicsdk.NewClient(opts...),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		maxTokens:  maxTokens,
	}
}

func (p *Provider) ID() string { return p.id }

// Call implements providers.Adapter.
func (p *Provider) Call(ctx context.Context, prompt string, deadline time.Time) (*types.ProviderReply, error) {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	call := func() (*types.ProviderReply, error) {
		start := time.Now()
		msg, err := p.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
			Model:     anthropicsdk.Model(p.model),
			MaxTokens: p.maxTokens,
			Messages: []anthropicsdk.MessageParam{
				anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
			},
		})
		latency := time.Since(start)

		if err != nil {
			return p.classifyFailure(err, latency), nil
		}

		var text string
		for _, block := range msg.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}

		return &types.ProviderReply{
			ProviderID: p.id,
			RawText:    text,
			Latency:    latency,
			Usage: types.TokenUsage{
				PromptTokens:     int(msg.Usage.InputTokens),
				CompletionTokens: int(msg.Usage.OutputTokens),
				TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
			},
			Status: types.StatusOK,
		}, nil
	}

	return providers.RetryOnce(ctx, p.maxRetries, time.Second, call)
}

func (p *Provider) classifyFailure(err error, latency time.Duration) *types.ProviderReply {
	status := types.StatusTransportErr
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = types.StatusTimeoutErr
	case errors.Is(err, context.Canceled):
		status = types.StatusTransportErr
	default:
		var sc statusCoder
		if errors.As(err, &sc) {
			status = providers.ClassifyError(sc.StatusCode(), err.Error())
		}
	}

	return &types.ProviderReply{
		ProviderID: p.id,
		Latency:    latency,
		Status:     status,
	}
}
