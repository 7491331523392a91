package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
)

// ClaudeGenerator produces answers via the Anthropic Messages API with the
// system prompt carried as a system text block. No retries here.
type ClaudeGenerator struct {
	client      anthropic.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      arbor.ILogger
}

var _ interfaces.GenerationClient = (*ClaudeGenerator)(nil)

func newClaudeGenerator(config *common.Config, logger arbor.ILogger) (*ClaudeGenerator, error) {
	if config.LLM.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY, CAPSA_ANTHROPIC_API_KEY, or llm.anthropic_api_key in config)")
	}

	maxTokens := config.LLM.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	generator := &ClaudeGenerator{
		client:      anthropic.NewClient(option.WithAPIKey(config.LLM.AnthropicAPIKey)),
		model:       config.LLM.GenerationModel,
		temperature: config.LLM.Temperature,
		maxTokens:   maxTokens,
		timeout:     common.Duration(config.LLM.Timeout, 60*time.Second),
		logger:      logger,
	}

	logger.Debug().
		Str("model", generator.model).
		Int("max_tokens", maxTokens).
		Msg("Claude client initialized")

	return generator, nil
}

// Generate produces a completion for the prompt pair.
func (c *ClaudeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	startTime := time.Now()
	resp, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("claude generation call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			response.WriteString(variant.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("claude returned no text in response")
	}

	c.logger.Debug().
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Generation completed")

	return response.String(), nil
}

// ModelName returns the generation model identifier.
func (c *ClaudeGenerator) ModelName() string {
	return c.model
}
