package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/metrics"
)

// DefaultChatModel is the model used for query interpretation when none is configured.
const DefaultChatModel = "gpt-4o-mini"

// InterpreterConfig holds the chat completion settings.
type InterpreterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	// Timeout bounds each Complete call. Zero means the caller's context only.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Interpreter turns instructions plus user text into a JSON object via chat completions.
type Interpreter struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewInterpreter creates an OpenAI-compatible JSON-mode text interpreter.
func NewInterpreter(cfg *InterpreterConfig) *Interpreter {
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		client:      openai.NewClientWithConfig(clientConfig(cfg.APIKey, cfg.BaseURL)),
		model:       model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Complete returns the raw JSON content of the first choice.
func (i *Interpreter) Complete(ctx context.Context, instructions, text string) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	// go-openai omits a zero temperature; the smallest float keeps it on the wire.
	temperature := i.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: i.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.InterpreterRequestDuration.WithLabelValues(i.model, "error").Observe(elapsed)
		return "", parseAPIError("chat", err, domain.ErrInterpreterService)
	}
	if len(resp.Choices) == 0 {
		metrics.InterpreterRequestDuration.WithLabelValues(i.model, "error").Observe(elapsed)
		return "", fmt.Errorf("empty chat response: %w", domain.ErrInterpreterService)
	}

	metrics.InterpreterRequestDuration.WithLabelValues(i.model, "success").Observe(elapsed)
	i.logger.Debug("chat completion",
		zap.String("model", i.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
