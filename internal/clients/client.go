// internal/clients/client.go

// Package clients provides a uniform interface over the supported model
// backends: the hosted chat-completion API, its enterprise-hosted variant,
// the generative REST API, and a locally running model server.
package clients

import (
	"context"

	"github.com/cogbench/cogbench/internal/logging"
)

// systemPrompt is sent as the first message on every chat-style backend.
const systemPrompt = "You are a helpful assistant."

// ErrorSentinelPrefix marks a response produced in place of a completion
// after a backend exhausted its retries. Consumers must treat any response
// carrying this prefix as a failed run, not as a valid answer.
const ErrorSentinelPrefix = "ERROR: "

// GenerateOptions carries the sampling parameters shared by all backends.
// Backends that do not support a parameter ignore it.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// Client is the interface implemented by every model backend.
type Client interface {
	// ModelName returns the configured model identifier, used in logs and
	// derived file paths.
	ModelName() string
	// Generate produces a single completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// GenerateMultiple produces numRuns completions sequentially, in order.
	GenerateMultiple(ctx context.Context, prompt string, numRuns int, opts GenerateOptions) ([]string, error)
}

// generateSequential runs Generate numRuns times in order and collects the
// responses. There is no parallel fan-out: the workload is offline and
// sequential calls keep provider rate limits simple.
func generateSequential(ctx context.Context, c Client, prompt string, numRuns int, opts GenerateOptions) ([]string, error) {
	responses := make([]string, 0, numRuns)
	for i := 0; i < numRuns; i++ {
		logging.LogEvent("   run %d/%d for model %s", i+1, numRuns, c.ModelName())
		response, err := c.Generate(ctx, prompt, opts)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}
