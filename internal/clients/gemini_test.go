// internal/clients/gemini_test.go
package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGeminiClient(baseURL string, attempts int) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		apiKey:     "test-key",
		model:      "gemini-2.5-pro",
		retry: retryPolicy{
			maxAttempts: attempts,
			onExhausted: exhaustSentinel,
		},
	}
}

func TestGeminiGenerateRequestShape(t *testing.T) {
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-pro:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-goog-api-key"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"output: true"}]}}]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL, 1)
	text, err := client.Generate(context.Background(), "premise...", GenerateOptions{MaxTokens: 2000, Temperature: 1.0})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "output: true" {
		t.Fatalf("unexpected response text %q", text)
	}

	if captured.GenerationConfig.MaxOutputTokens != 2000*geminiTokenMultiplier {
		t.Fatalf("expected widened token budget %d, got %d", 2000*geminiTokenMultiplier, captured.GenerationConfig.MaxOutputTokens)
	}
	if len(captured.SafetySettings) != len(geminiHarmCategories) {
		t.Fatalf("expected %d safety settings, got %d", len(geminiHarmCategories), len(captured.SafetySettings))
	}
	for _, setting := range captured.SafetySettings {
		if setting.Threshold != "BLOCK_NONE" {
			t.Fatalf("expected BLOCK_NONE threshold for %s, got %q", setting.Category, setting.Threshold)
		}
	}
}

func TestGeminiGenerateSentinelAfterRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL, 3)
	text, err := client.Generate(context.Background(), "p", GenerateOptions{MaxTokens: 100})
	if err != nil {
		t.Fatalf("expected sentinel, not error: %v", err)
	}
	if !strings.HasPrefix(text, ErrorSentinelPrefix) {
		t.Fatalf("expected ERROR: sentinel, got %q", text)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGeminiGenerateEmptyCandidatesSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL, 1)
	text, err := client.Generate(context.Background(), "p", GenerateOptions{MaxTokens: 100})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != ErrorSentinelPrefix+"no text content in response" {
		t.Fatalf("expected no-content sentinel, got %q", text)
	}
}

func TestGeminiGenerateJoinsParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"after reasoning"},{"text":"output: entailment"}]}}]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL, 1)
	text, err := client.Generate(context.Background(), "p", GenerateOptions{MaxTokens: 100})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "after reasoning\noutput: entailment" {
		t.Fatalf("expected joined parts, got %q", text)
	}
}
