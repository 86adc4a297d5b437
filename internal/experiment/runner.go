// internal/experiment/runner.go
package experiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/cogbench/cogbench/internal/clients"
	"github.com/cogbench/cogbench/internal/logging"
	"github.com/cogbench/cogbench/internal/util"
)

// Template substitution markers.
const (
	premiseMarker   = "{premise}"
	statementMarker = "{statement}"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	stepColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
)

// ResultEntry mirrors one example plus the raw responses sampled for it.
// Entries are written once and never mutated afterwards.
type ResultEntry struct {
	Premise       string   `json:"premise"`
	Statement     string   `json:"statement"`
	Label         string   `json:"label"`
	ReasoningType string   `json:"reasoning_type,omitempty"`
	Responses     []string `json:"responses"`
}

// Runner executes one experiment configuration against one model client.
type Runner struct {
	cfg    Config
	root   string
	client clients.Client
}

// NewRunner validates the configuration and constructs the backend client.
// Credential errors surface here, before any file or network activity.
func NewRunner(cfg Config, root string) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if root == "" {
		root = "."
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, root: root, client: client}, nil
}

// newClient constructs the backend matching the configured model type.
func newClient(cfg Config) (clients.Client, error) {
	switch cfg.ModelType {
	case ModelTypeOpenAI:
		return clients.NewOpenAIClient(cfg.ModelName, cfg.APIKey)
	case ModelTypeAzure:
		return clients.NewAzureClient(cfg.ModelName, cfg.APIKey, cfg.APIVersion, cfg.Endpoint)
	case ModelTypeGemini:
		return clients.NewGeminiClient(cfg.ModelName, cfg.APIKey, cfg.RequestTimeout)
	case ModelTypeOllama:
		return clients.NewOllamaClient(cfg.ModelName, cfg.OllamaModelName, cfg.OllamaURL, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown model type %q", cfg.ModelType)
	}
}

// LoadPromptTemplate reads the template for the configured task and prompt
// style and checks that both substitution markers are present. A template
// missing either marker is a hard error.
func (r *Runner) LoadPromptTemplate() (string, error) {
	path := r.cfg.PromptPath(r.root)
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt template not found: %s: %w", path, err)
	}
	template := string(raw)
	for _, marker := range []string{premiseMarker, statementMarker} {
		if !strings.Contains(template, marker) {
			return "", fmt.Errorf("prompt template %s is missing the %s marker", path, marker)
		}
	}
	return template, nil
}

// ProcessExample samples NumRuns responses for one example.
func (r *Runner) ProcessExample(ctx context.Context, id string, example Example, template string) (ResultEntry, error) {
	prompt := strings.NewReplacer(
		premiseMarker, string(example.Premise),
		statementMarker, example.Statement,
	).Replace(template)

	stepColor.Printf("   generating %d responses for example %s\n", r.cfg.NumRuns, id)
	responses, err := r.client.GenerateMultiple(ctx, prompt, r.cfg.NumRuns, clients.GenerateOptions{
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return ResultEntry{}, fmt.Errorf("example %s: %w", id, err)
	}

	for _, response := range responses {
		if strings.HasPrefix(response, clients.ErrorSentinelPrefix) {
			warnColor.Printf("   example %s produced a failed run: %s\n", id, util.TruncateRunes(response, 120))
		}
	}

	return ResultEntry{
		Premise:       string(example.Premise),
		Statement:     example.Statement,
		Label:         example.Label,
		ReasoningType: example.ReasoningType,
		Responses:     responses,
	}, nil
}

// ProcessFile runs every example of one dataset file and writes the results
// file in a single shot at the end. A crash mid-file loses that file's
// progress; nothing is flushed incrementally.
func (r *Runner) ProcessFile(ctx context.Context, filename string) error {
	dataPath := filepath.Join(r.root, r.cfg.DataDir, filename)
	dataset, err := LoadDataset(dataPath)
	if err != nil {
		return fmt.Errorf("data file %s: %w", filename, err)
	}

	template, err := r.LoadPromptTemplate()
	if err != nil {
		return err
	}

	outputDir := filepath.Join(r.root, r.cfg.OutputDir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, r.cfg.OutputFilename(filename))

	headerColor.Printf("Processing %s (%d examples)\n", filename, len(dataset.Order))

	results := make(map[string]ResultEntry, len(dataset.Order))
	for _, id := range dataset.Order {
		entry, err := r.ProcessExample(ctx, id, dataset.Examples[id], template)
		if err != nil {
			return err
		}
		results[id] = entry
		stepColor.Printf("   completed example %s\n", id)
	}

	encoded, err := marshalOrdered(dataset.Order, results)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := util.WriteFile(outputPath, encoded); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	stepColor.Printf("Saved results to %s\n", outputPath)
	return nil
}

// Run processes every configured input file in order. The first failure
// stops the run after logging which file was in flight.
func (r *Runner) Run(ctx context.Context) error {
	headerColor.Printf("Starting experiment: %s/%s task=%s prompt=%s files=%v\n",
		r.cfg.ModelType, r.cfg.ModelName, r.cfg.TaskType, r.cfg.PromptType, r.cfg.InputFiles)

	for _, filename := range r.cfg.InputFiles {
		if err := r.ProcessFile(ctx, filename); err != nil {
			logging.LogEvent("error processing %s: %v", filename, err)
			return err
		}
	}

	headerColor.Println("All experiments completed.")
	return nil
}

// marshalOrdered encodes the results map as an indented JSON object whose
// keys follow the dataset's source order.
func marshalOrdered(order []string, results map[string]ResultEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, id := range order {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")

		entry, err := json.MarshalIndent(results[id], "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}
