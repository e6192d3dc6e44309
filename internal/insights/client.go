// Package insights rewrites the deterministic metrics narrative into a
// short conversational summary using the xAI chat completion API. The
// pipeline never depends on it succeeding.
package insights

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/growtheasy/metrics-manager/internal/entity"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL = "https://api.x.ai/v1"
	defaultModel   = "grok-beta"

	systemPrompt = "You are an e-commerce analytics advisor. You turn raw store metrics " +
		"into one short, specific, actionable insight for the merchant. Two sentences " +
		"maximum. No greetings, no markdown."
)

// Config contains configuration for the insights client.
type Config struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Enabled bool   `mapstructure:"enabled"`
}

// Client generates AI-enhanced insight text for metric snapshots.
type Client struct {
	client *openai.Client
	model  string
	config *Config
}

// New creates a new insights client. When disabled it returns a no-op
// client so callers don't need to branch.
func New(cfg *Config) (*Client, error) {
	if !cfg.Enabled {
		slog.Default().Info("insights client is disabled")
		return &Client{config: cfg}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("insights api key is required when enabled")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(oc),
		model:  model,
		config: cfg,
	}, nil
}

// Enabled returns true if the client is configured and active.
func (c *Client) Enabled() bool {
	return c.config.Enabled && c.client != nil
}

// Enhance asks the model to rewrite the snapshot's narrative. On any
// failure it returns the narrative unchanged so the snapshot is always
// populated.
func (c *Client) Enhance(ctx context.Context, s *entity.MetricsSnapshot) string {
	if !c.Enabled() || s == nil {
		if s == nil {
			return ""
		}
		return s.Insight
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(s),
			},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		slog.Default().ErrorContext(ctx, "insight generation failed, keeping deterministic narrative",
			slog.String("merchantId", s.MerchantID),
			slog.String("err", err.Error()),
		)
		return s.Insight
	}
	if len(resp.Choices) == 0 {
		return s.Insight
	}

	insight := strings.TrimSpace(resp.Choices[0].Message.Content)
	if insight == "" {
		return s.Insight
	}
	return insight
}

func buildPrompt(s *entity.MetricsSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Store metrics:\n")
	fmt.Fprintf(&b, "- Revenue: £%s (trend %s)\n", s.Revenue.Total.StringFixed(2), s.Revenue.Trend)
	fmt.Fprintf(&b, "- Average order value: £%s\n", s.Performance.AvgOrderValue.StringFixed(2))
	fmt.Fprintf(&b, "- Repeat purchase rate: %.1f%%\n", s.Performance.RepeatRate)
	fmt.Fprintf(&b, "- Churn rate: %.1f%% (%d customers at risk)\n", s.Churn.Rate, s.Churn.AtRisk)
	fmt.Fprintf(&b, "- LTV: £%s, CAC: £%s (ratio %s)\n",
		s.Performance.LTV.StringFixed(2), s.Performance.CAC.StringFixed(2), s.Performance.Ratio)
	fmt.Fprintf(&b, "- Top acquisition channel: %s\n", s.Acquisition.TopChannel)
	fmt.Fprintf(&b, "- Health score: %d/100\n", s.HealthScore)
	fmt.Fprintf(&b, "\nBaseline summary: %s\n", s.Insight)
	fmt.Fprintf(&b, "\nRewrite the summary as one concrete recommendation for this merchant.")
	return b.String()
}
