package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/benvon/life-tracker/internal/telemetry"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "openai/gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI-compatible API base URL
	DefaultOpenAIBaseURL = "https://openrouter.ai/api/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIConfig configures an OpenAI-compatible provider
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Logger    *zap.Logger
	DebugMode bool
}

// OpenAIProvider implements Provider against any OpenAI-compatible chat completions API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	timeout   time.Duration
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI-compatible provider
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:    client,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
		debugMode: cfg.DebugMode,
	}
}

// Complete sends req as a system and user message pair and returns the first choice's content.
// The call is bounded by the provider timeout as well as ctx.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (content string, err error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "ai.Complete",
		attribute.String("ai.operation", string(req.Operation)),
		attribute.String("ai.model", p.model),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		Messages:    messages,
		Temperature: openai.Float(0),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	requestID := ExtractRequestID(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", string(req.Operation)),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(req.Prompt)),
			zap.String("prompt_preview", SanitizePrompt(req.Prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		p.logger.Warn("llm_api_error",
			zap.String("operation", string(req.Operation)),
			zap.String("model", p.model),
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("%s completion failed: %w", req.Operation, apiErr)
		}
		return "", fmt.Errorf("%s completion failed: %w", req.Operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content = resp.Choices[0].Message.Content
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", string(req.Operation)),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// RegisterOpenAI registers the OpenAI-compatible provider with the registry
func RegisterOpenAI(registry *ProviderRegistry, logger *zap.Logger, debugMode bool) {
	registry.Register("openai", func(config map[string]string) (Provider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		var timeout time.Duration
		if raw := config["timeout_seconds"]; raw != "" {
			secs, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout_seconds %q: %w", raw, err)
			}
			timeout = time.Duration(secs) * time.Second
		}

		return NewOpenAIProvider(OpenAIConfig{
			APIKey:    apiKey,
			BaseURL:   config["base_url"],
			Model:     config["model"],
			Timeout:   timeout,
			Logger:    logger,
			DebugMode: debugMode,
		}), nil
	})
}
