// internal/clients/ollama.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cogbench/cogbench/internal/logging"
)

const ollamaDefaultBaseURL = "http://localhost:11434"

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
}

// OllamaClient talks to a locally running model server. It issues a single
// blocking call per run with no retry; the local runtime manages its own
// sampling defaults, so token and temperature options are not forwarded.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	// serverModel is the tag the server knows the model by, when it differs
	// from the reporting name (e.g. "llama3.2" vs "llama3.2:latest").
	serverModel string
}

// NewOllamaClient builds a local-server client. serverModel may be empty, in
// which case model is used on the wire as well. baseURL may be empty for the
// default local endpoint.
func NewOllamaClient(model, serverModel, baseURL string, timeout time.Duration) *OllamaClient {
	if serverModel == "" {
		serverModel = model
	}
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &OllamaClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		serverModel: serverModel,
	}
}

// ModelName returns the reporting model identifier.
func (c *OllamaClient) ModelName() string { return c.model }

// Generate issues one blocking chat call. Failures propagate directly.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, _ GenerateOptions) (string, error) {
	body := ollamaChatRequest{
		Model: c.serverModel,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ollama: encoding request: %w", err)
	}
	logging.LogRequest("RUN->MODEL", "ollama", c.serverModel, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("MODEL->RUN", "ollama", c.serverModel, respBody)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama: /api/chat returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var decoded ollamaChatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("ollama: decoding response: %w", err)
	}
	return strings.TrimSpace(decoded.Message.Content), nil
}

// GenerateMultiple collects numRuns sequential completions.
func (c *OllamaClient) GenerateMultiple(ctx context.Context, prompt string, numRuns int, opts GenerateOptions) ([]string, error) {
	return generateSequential(ctx, c, prompt, numRuns, opts)
}
