// internal/clients/gemini.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cogbench/cogbench/internal/logging"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiMaxRetries     = 10
	geminiRetryWait      = 60 * time.Second
	// geminiTokenMultiplier widens the output budget: the generative API
	// counts reasoning tokens against maxOutputTokens, so the common budget
	// starves it.
	geminiTokenMultiplier = 5
)

// geminiHarmCategories are the content-filter categories that get disabled
// on every request. Judgment datasets trip these filters routinely.
var geminiHarmCategories = []string{
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiClient talks to the generative REST API. After exhausting its retry
// budget it returns an ERROR:-prefixed sentinel instead of failing, so a
// long experiment keeps its remaining runs.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	retry      retryPolicy
}

// NewGeminiClient builds a generative-API client. The key is required.
func NewGeminiClient(model, apiKey string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    geminiDefaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		retry: retryPolicy{
			maxAttempts: geminiMaxRetries,
			delay:       geminiRetryWait,
			onExhausted: exhaustSentinel,
		},
	}, nil
}

// ModelName returns the configured model identifier.
func (c *GeminiClient) ModelName() string { return c.model }

// Generate requests a single generation. Content filtering is disabled for
// every harm category and the output budget is widened by the token
// multiplier. An exhausted retry budget yields an ERROR: sentinel response.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens * geminiTokenMultiplier,
		},
	}
	for _, category := range geminiHarmCategories {
		body.SafetySettings = append(body.SafetySettings, geminiSafetySetting{
			Category:  category,
			Threshold: "BLOCK_NONE",
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: encoding request: %w", err)
	}

	return c.retry.do(ctx, "gemini", c.model, func() (string, error) {
		return c.generateOnce(ctx, payload)
	})
}

func (c *GeminiClient) generateOnce(ctx context.Context, payload []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	logging.LogRequest("RUN->MODEL", "gemini", c.model, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("MODEL->RUN", "gemini", c.model, respBody)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: generateContent returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("gemini: decoding response: %w", err)
	}

	var texts []string
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
	}
	content := strings.TrimSpace(strings.Join(texts, "\n"))
	if content == "" {
		// A filtered or empty candidate is not worth retrying.
		return ErrorSentinelPrefix + "no text content in response", nil
	}
	return content, nil
}

// GenerateMultiple collects numRuns sequential generations.
func (c *GeminiClient) GenerateMultiple(ctx context.Context, prompt string, numRuns int, opts GenerateOptions) ([]string, error) {
	return generateSequential(ctx, c, prompt, numRuns, opts)
}
