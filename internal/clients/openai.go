// internal/clients/openai.go
package clients

import (
	"context"
	"errors"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// openAIMaxRetries bounds attempts against the hosted completion API. Its
// transient failures are rate limits that clear quickly, so no delay is used.
const openAIMaxRetries = 3

// OpenAIClient talks to the hosted chat-completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	retry  retryPolicy
}

// NewOpenAIClient builds a hosted-API client. The key falls back to the
// OPENAI_API_KEY environment variable when not supplied.
func NewOpenAIClient(model, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("openai: API key must be provided via config, flag, or OPENAI_API_KEY")
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		retry: retryPolicy{
			maxAttempts: openAIMaxRetries,
			onExhausted: exhaustFail,
		},
	}, nil
}

// ModelName returns the configured model identifier.
func (c *OpenAIClient) ModelName() string { return c.model }

// Generate requests a single chat completion, retrying transient failures.
// Exhausting the retry budget surfaces the last error.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return c.retry.do(ctx, "openai", c.model, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxCompletionTokens: opts.MaxTokens,
			Temperature:         float32(opts.Temperature),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai: response contained no choices")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
}

// GenerateMultiple collects numRuns sequential completions.
func (c *OpenAIClient) GenerateMultiple(ctx context.Context, prompt string, numRuns int, opts GenerateOptions) ([]string, error) {
	return generateSequential(ctx, c, prompt, numRuns, opts)
}
