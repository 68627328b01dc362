// internal/generate/client.go
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zhangxinyong12/auto-fill-extension/internal/config"
	"github.com/zhangxinyong12/auto-fill-extension/internal/fields"
	"github.com/zhangxinyong12/auto-fill-extension/internal/inject"
)

// ErrNoCredential means no API key is configured. Surfaced to the caller
// unchanged so the UI layer can point the user at settings.
var ErrNoCredential = errors.New("no API key configured for the generation endpoint")

// Client calls an OpenAI-compatible chat-completions endpoint to synthesize
// fill-in values for extracted field descriptors. It performs no internal
// retries; a failure is reported once and retrying is the caller's decision.
type Client struct {
	api     openai.Client
	model   string
	system  string
	hasKey  bool
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient builds a Client from generator configuration.
func NewClient(cfg config.GeneratorConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	system := defaultSystemPrompt
	if cfg.PromptOverride != "" {
		system = cfg.PromptOverride
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}

	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		system:  system,
		hasKey:  cfg.APIKey != "",
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		logger:  logger.Named("generate"),
	}
}

// Generate asks the model for one value per descriptor. The returned map is
// keyed by field identity (name, then id, then field<N>); an empty or
// non-object response is a failure.
func (c *Client) Generate(ctx context.Context, descs []fields.Descriptor) (inject.ValueMap, error) {
	if !c.hasKey {
		return nil, ErrNoCredential
	}
	if len(descs) == 0 {
		return nil, errors.New("no field descriptors to generate values for")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(descs)
	c.logger.Debug("requesting field values",
		zap.String("model", c.model),
		zap.Int("fields", len(descs)))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	text := resp.Choices[0].Message.Content
	values, err := ExtractValueMap(text)
	if err != nil {
		c.logger.Warn("could not parse model response", zap.Error(err))
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	c.logger.Info("generated field values", zap.Int("values", len(values)))
	return inject.ValueMap(values), nil
}
