// Package openai adapts OpenAI's chat models to the providers.Adapter
// contract.
package openai

import (
	"context"
	"errors"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/quantsignal/consensus/providers"
	"github.com/quantsignal/consensus/types"
)

type statusCoder interface {
	StatusCode() int
}

// Provider calls ChatGPT via the official OpenAI SDK.
type Provider struct {
	id         string
	client     openaisdk.Client
	model      string
	maxRetries int
}

// Config configures a Provider.
type Config struct {
	ID         string
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
}

// New builds a Provider.
func New(cfg Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{
		id:         cfg.ID,
		client:     openaisdk.NewClient(opts...),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
	}
}

func (p *Provider) ID() string { return p.id }

// Call implements providers.Adapter.
func (p *Provider) Call(ctx context.Context, prompt string, deadline time.Time) (*types.ProviderReply, error) {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	call := func() (*types.ProviderReply, error) {
		start := time.Now()
		resp, err := p.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
			Model: openaisdk.ChatModel(p.model),
			Messages: []openaisdk.ChatCompletionMessageParamUnion{
				openaisdk.UserMessage(prompt),
			},
		})
		latency := time.Since(start)

		if err != nil {
			return p.classifyFailure(err, latency), nil
		}

		var text string
		if len(resp.Choices) > 0 {
			text = resp.Choices[0].Message.Content
		}

		return &types.ProviderReply{
			ProviderID: p.id,
			RawText:    text,
			Latency:    latency,
			Usage: types.TokenUsage{
				PromptTokens:     int(resp.Usage.PromptTokens),
				CompletionTokens: int(resp.Usage.CompletionTokens),
				TotalTokens:      int(resp.Usage.TotalTokens),
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
