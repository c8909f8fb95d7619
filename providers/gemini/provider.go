// Package gemini adapts Google's Gemini models to the
// providers.Adapter contract.
package gemini

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"github.com/quantsignal/consensus/providers"
	"github.com/quantsignal/consensus/types"
)

// Provider calls Gemini via the official google.golang.org/genai SDK.
type Provider struct {
	id         string
	client     *genai.Client
	model      string
	maxRetries int
}

// Config configures a Provider.
type Config struct {
	ID         string
	APIKey     string
	Model      string
	MaxRetries int
}

// New builds a Provider. The genai client is constructed once at
// wiring time and reused across calls.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &Provider{
		id:         cfg.ID,
		client:     client,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (p *Provider) ID() string { return p.id }

// Call implements providers.Adapter.
func (p *Provider) Call(ctx context.Context, prompt string, deadline time.Time) (*types.ProviderReply, error) {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	call := func() (*types.ProviderReply, error) {
		start := time.Now()
		result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
		latency := time.Since(start)

		if err != nil {
			return p.classifyFailure(err, latency), nil
		}

		var usage types.TokenUsage
		if result.UsageMetadata != nil {
			usage = types.TokenUsage{
				PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
				TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
			}
		}

		return &types.ProviderReply{
			ProviderID: p.id,
			RawText:    result.Text(),
			Latency:    latency,
			Usage:      usage,
			Status:     types.StatusOK,
		}, nil
	}

	return providers.RetryOnce(ctx, p.maxRetries, time.Second, call)
}

// statusCoder matches genai.APIError's shape without importing the
// concrete type, the same defensive pattern used by the other
// adapters.
type statusCoder interface {
	StatusCode() int
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
		} else if apiErr, ok := err.(genai.APIError); ok {
			status = providers.ClassifyError(apiErr.Code, apiErr.Message)
		}
	}

	return &types.ProviderReply{
		ProviderID: p.id,
		Latency:    latency,
		Status:     status,
	}
}
