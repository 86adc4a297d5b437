// internal/experiment/runner_test.go
package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cogbench/cogbench/internal/clients"
)

// fixedClient returns canned responses in order, cycling if exhausted.
type fixedClient struct {
	model     string
	responses []string
	calls     int
	prompts   []string
}

func (c *fixedClient) ModelName() string { return c.model }

func (c *fixedClient) Generate(_ context.Context, prompt string, _ clients.GenerateOptions) (string, error) {
	c.prompts = append(c.prompts, prompt)
	response := c.responses[c.calls%len(c.responses)]
	c.calls++
	return response, nil
}

func (c *fixedClient) GenerateMultiple(ctx context.Context, prompt string, numRuns int, opts clients.GenerateOptions) ([]string, error) {
	out := make([]string, 0, numRuns)
	for i := 0; i < numRuns; i++ {
		response, err := c.Generate(ctx, prompt, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, response)
	}
	return out, nil
}

func newTestRunner(t *testing.T, numRuns int, client clients.Client) (*Runner, string) {
	t.Helper()
	root := t.TempDir()

	promptDir := filepath.Join(root, "prompts", "nli")
	if err := os.MkdirAll(promptDir, 0o755); err != nil {
		t.Fatal(err)
	}
	template := "Premise: {premise}\nStatement: {statement}\nOutput:"
	if err := os.WriteFile(filepath.Join(promptDir, "direct.txt"), []byte(template), 0o644); err != nil {
		t.Fatal(err)
	}

	dataDir := filepath.Join(root, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	dataset := `{
        "ex2": {"premise": "The sky is blue.", "statement": "s2", "label": "entailment"},
        "ex1": {"premise": ["a", "b"], "statement": "s1", "label": "neutral"}
    }`
	if err := os.WriteFile(filepath.Join(dataDir, "causal.json"), []byte(dataset), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{
		ModelType:  ModelTypeOllama,
		ModelName:  "fake",
		DataDir:    "data",
		OutputDir:  "results",
		PromptType: PromptDirect,
		TaskType:   TaskNLI,
		InputFiles: []string{"causal.json"},
		NumRuns:    numRuns,
		MaxTokens:  DefaultMaxTokens,
	}
	return &Runner{cfg: cfg, root: root, client: client}, root
}

func TestProcessFileWritesCompleteResults(t *testing.T) {
	client := &fixedClient{model: "fake", responses: []string{"output: entailment"}}
	runner, root := newTestRunner(t, 3, client)

	if err := runner.ProcessFile(context.Background(), "causal.json"); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(root, "results", "causal_res.json"))
	if err != nil {
		t.Fatalf("reading results file: %v", err)
	}

	var results map[string]ResultEntry
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatalf("decoding results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 result entries, got %d", len(results))
	}
	for id, entry := range results {
		if len(entry.Responses) != 3 {
			t.Fatalf("expected exactly 3 responses for %s, got %d", id, len(entry.Responses))
		}
	}
	if results["ex1"].Premise != "a b" {
		t.Fatalf("expected joined premise copied into results, got %q", results["ex1"].Premise)
	}
	if results["ex2"].Label != "entailment" {
		t.Fatalf("expected label copied into results, got %q", results["ex2"].Label)
	}

	// Output keys follow dataset source order, not sorted order.
	if idx2, idx1 := strings.Index(string(raw), `"ex2"`), strings.Index(string(raw), `"ex1"`); idx2 > idx1 {
		t.Fatalf("expected ex2 before ex1 in output, got positions %d and %d", idx2, idx1)
	}
}

func TestProcessFileSubstitutesMarkers(t *testing.T) {
	client := &fixedClient{model: "fake", responses: []string{"output: neutral"}}
	runner, _ := newTestRunner(t, 1, client)

	if err := runner.ProcessFile(context.Background(), "causal.json"); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(client.prompts) == 0 {
		t.Fatalf("expected prompts to be sent")
	}
	first := client.prompts[0]
	if strings.Contains(first, "{premise}") || strings.Contains(first, "{statement}") {
		t.Fatalf("expected markers to be substituted, got %q", first)
	}
	if !strings.Contains(first, "The sky is blue.") {
		t.Fatalf("expected premise text in prompt, got %q", first)
	}
}

func TestLoadPromptTemplateMissingMarkerFails(t *testing.T) {
	client := &fixedClient{model: "fake", responses: []string{"x"}}
	runner, root := newTestRunner(t, 1, client)

	path := filepath.Join(root, "prompts", "nli", "direct.txt")
	if err := os.WriteFile(path, []byte("Premise: {premise}\nOutput:"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runner.LoadPromptTemplate(); err == nil {
		t.Fatalf("expected missing statement marker to be a hard error")
	}
}

func TestProcessFileMissingDataFails(t *testing.T) {
	client := &fixedClient{model: "fake", responses: []string{"x"}}
	runner, _ := newTestRunner(t, 1, client)
	if err := runner.ProcessFile(context.Background(), "missing.json"); err == nil {
		t.Fatalf("expected missing dataset file to abort processing")
	}
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	client := &fixedClient{model: "fake", responses: []string{"x"}}
	runner, _ := newTestRunner(t, 1, client)
	runner.cfg.InputFiles = []string{"missing.json", "causal.json"}

	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected Run to propagate the first file failure")
	}
	if client.calls != 0 {
		t.Fatalf("expected no model calls after the first file failed, got %d", client.calls)
	}
}

func TestNewRunnerRejectsMissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := Config{
		ModelType:  ModelTypeOpenAI,
		ModelName:  "gpt-4o",
		PromptType: PromptDirect,
		TaskType:   TaskNLI,
		InputFiles: []string{"causal.json"},
		NumRuns:    1,
	}
	if _, err := NewRunner(cfg, ""); err == nil {
		t.Fatalf("expected missing API key to fail before any network activity")
	}

	cfg.ModelType = ModelTypeAzure
	if _, err := NewRunner(cfg, ""); err == nil {
		t.Fatalf("expected missing azure settings to fail before any network activity")
	}
}

func TestMarshalOrderedEmpty(t *testing.T) {
	encoded, err := marshalOrdered(nil, map[string]ResultEntry{})
	if err != nil {
		t.Fatalf("marshalOrdered failed: %v", err)
	}
	var decoded map[string]ResultEntry
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("expected valid JSON for empty results, got %v (%s)", err, encoded)
	}
}

func TestMarshalOrderedRoundTrip(t *testing.T) {
	order := make([]string, 0, 5)
	results := map[string]ResultEntry{}
	for i := 5; i > 0; i-- {
		id := fmt.Sprintf("ex%d", i)
		order = append(order, id)
		results[id] = ResultEntry{Statement: id, Responses: []string{"r"}}
	}
	encoded, err := marshalOrdered(order, results)
	if err != nil {
		t.Fatalf("marshalOrdered failed: %v", err)
	}
	var decoded map[string]ResultEntry
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if len(decoded) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(decoded))
	}
}
