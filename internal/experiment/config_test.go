// internal/experiment/config_test.go
package experiment

import (
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		ModelType:  ModelTypeOllama,
		ModelName:  "llama3.2",
		DataDir:    "data/nli",
		OutputDir:  "results/nli/llama3.2",
		PromptType: PromptDirect,
		TaskType:   TaskNLI,
		InputFiles: []string{"causal.json"},
		NumRuns:    DefaultNumRuns,
		MaxTokens:  DefaultMaxTokens,
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	bad := validConfig()
	bad.ModelType = "mystery"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unknown model type to fail validation")
	}

	bad = validConfig()
	bad.PromptType = "zero-shot"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unknown prompt type to fail validation")
	}

	bad = validConfig()
	bad.InputFiles = nil
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected empty input files to fail validation")
	}

	bad = validConfig()
	bad.NumRuns = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected zero runs to fail validation")
	}
}

func TestConfigPromptPath(t *testing.T) {
	cfg := validConfig()
	cfg.TaskType = TaskFactual
	cfg.PromptType = PromptCoT
	want := filepath.Join("root", "prompts", "factual", "cot.txt")
	if got := cfg.PromptPath("root"); got != want {
		t.Fatalf("PromptPath = %q, want %q", got, want)
	}
}

func TestConfigOutputFilename(t *testing.T) {
	cfg := validConfig()
	if got := cfg.OutputFilename("causal.json"); got != "causal_res.json" {
		t.Fatalf("direct output filename = %q, want causal_res.json", got)
	}

	cfg.PromptType = PromptCoT
	if got := cfg.OutputFilename("causal.json"); got != "causal_cot_res.json" {
		t.Fatalf("cot output filename = %q, want causal_cot_res.json", got)
	}
}
