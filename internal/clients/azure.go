// internal/clients/azure.go
package clients

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cogbench/cogbench/internal/appconfig"
)

// azureMaxRetries bounds attempts against the enterprise-hosted variant.
const azureMaxRetries = 3

// AzureClient talks to the enterprise-hosted completion deployment. Models
// are deployed under a "lunar-" prefixed name. When the retry budget runs
// out it returns an empty response instead of an error, so a flaky
// deployment degrades a run rather than aborting it.
type AzureClient struct {
	client     *openai.Client
	model      string
	deployment string
	retry      retryPolicy
}

// NewAzureClient builds an enterprise-hosted client. All three of api key,
// api version, and endpoint are required.
func NewAzureClient(model, apiKey, apiVersion, endpoint string) (*AzureClient, error) {
	if apiKey == "" || apiVersion == "" || endpoint == "" {
		return nil, errors.New("azure: api key, api version, and endpoint are all required")
	}
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.APIVersion = apiVersion
	return &AzureClient{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		deployment: appconfig.AzureKeyPrefix + model,
		retry: retryPolicy{
			maxAttempts: azureMaxRetries,
			onExhausted: exhaustEmpty,
		},
	}, nil
}

// ModelName returns the configured model identifier.
func (c *AzureClient) ModelName() string { return c.model }

// Generate requests a single chat completion from the deployment. An
// exhausted retry budget yields an empty string and no error.
func (c *AzureClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return c.retry.do(ctx, "azure", c.model, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.deployment,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   opts.MaxTokens,
			Temperature: float32(opts.Temperature),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("azure: response contained no choices")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
}

// GenerateMultiple collects numRuns sequential completions.
func (c *AzureClient) GenerateMultiple(ctx context.Context, prompt string, numRuns int, opts GenerateOptions) ([]string, error) {
	return generateSequential(ctx, c, prompt, numRuns, opts)
}
