// internal/experiment/config.go

// Package experiment runs repeated-sampling experiments: it formats a prompt
// per example, invokes a model client a fixed number of times, and persists
// the raw responses one JSON file per input dataset.
package experiment

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Supported model backends.
const (
	ModelTypeOpenAI = "openai"
	ModelTypeAzure  = "azure"
	ModelTypeGemini = "gemini"
	ModelTypeOllama = "ollama"
)

// Supported prompt styles.
const (
	PromptDirect = "direct"
	PromptCoT    = "cot"
)

// Supported task types.
const (
	TaskNLI     = "nli"
	TaskFactual = "factual"
)

// Sampling defaults.
const (
	DefaultNumRuns     = 10
	DefaultMaxTokens   = 2000
	DefaultTemperature = 1.0
)

// Config describes one experiment: which backend and model to sample, which
// task and prompt style, where the data lives, and the sampling parameters.
// It is a value object; construct it once and never mutate it.
type Config struct {
	ModelType  string
	ModelName  string
	DataDir    string
	OutputDir  string
	PromptType string
	TaskType   string
	InputFiles []string

	NumRuns     int
	MaxTokens   int
	Temperature float64

	// Provider-specific settings.
	APIKey          string
	APIVersion      string
	Endpoint        string
	OllamaModelName string
	OllamaURL       string

	// RequestTimeout bounds each provider HTTP call.
	RequestTimeout time.Duration
}

// Validate checks the enum fields and required values before any network
// activity happens.
func (c Config) Validate() error {
	switch c.ModelType {
	case ModelTypeOpenAI, ModelTypeAzure, ModelTypeGemini, ModelTypeOllama:
	default:
		return fmt.Errorf("unknown model type %q", c.ModelType)
	}
	switch c.PromptType {
	case PromptDirect, PromptCoT:
	default:
		return fmt.Errorf("unknown prompt type %q", c.PromptType)
	}
	switch c.TaskType {
	case TaskNLI, TaskFactual:
	default:
		return fmt.Errorf("unknown task type %q", c.TaskType)
	}
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("model name is required")
	}
	if len(c.InputFiles) == 0 {
		return fmt.Errorf("at least one input file is required")
	}
	if c.NumRuns <= 0 {
		return fmt.Errorf("num runs must be positive, got %d", c.NumRuns)
	}
	return nil
}

// PromptPath returns the prompt template location for the configured task
// and prompt style, relative to the project root.
func (c Config) PromptPath(root string) string {
	return filepath.Join(root, "prompts", c.TaskType, c.PromptType+".txt")
}

// OutputFilename derives the results filename for a dataset file:
// "causal.json" becomes "causal_res.json", or "causal_cot_res.json" for
// chain-of-thought runs.
func (c Config) OutputFilename(dataFilename string) string {
	stem := strings.TrimSuffix(filepath.Base(dataFilename), filepath.Ext(dataFilename))
	if c.PromptType == PromptCoT {
		return stem + "_cot_res.json"
	}
	return stem + "_res.json"
}
