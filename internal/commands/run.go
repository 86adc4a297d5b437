// internal/commands/run.go
package cogbench

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/cogbench/cogbench/internal/appconfig"
	"github.com/cogbench/cogbench/internal/experiment"
)

var runFlags struct {
	modelType       string
	modelName       string
	taskType        string
	promptType      string
	dataDir         string
	outputDir       string
	inputFiles      []string
	numRuns         int
	maxTokens       int
	temperature     float64
	projectRoot     string
	apiKey          string
	apiVersion      string
	endpoint        string
	ollamaModelName string
	ollamaURL       string
}

// runCmd executes a repeated-sampling experiment.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a repeated-sampling experiment against a model backend",
	Long: `Run loads each input dataset, formats the task prompt per example,
samples the configured model num-runs times per example, and writes one
results JSON file per input file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildExperimentConfig(GetConfig())
		if DebugEnabled() {
			dump := cfg
			dump.APIKey = ""
			pp.Println(dump)
		}
		runner, err := experiment.NewRunner(cfg, runFlags.projectRoot)
		if err != nil {
			return err
		}
		return runner.Run(cmd.Context())
	},
}

// buildExperimentConfig merges CLI flags with the credentials file. Flags
// win; the enterprise-hosted variant reads its settings from the
// "lunar-{model}" entry.
func buildExperimentConfig(app *appconfig.Config) experiment.Config {
	cfg := experiment.Config{
		ModelType:       runFlags.modelType,
		ModelName:       runFlags.modelName,
		DataDir:         runFlags.dataDir,
		OutputDir:       runFlags.outputDir,
		PromptType:      runFlags.promptType,
		TaskType:        runFlags.taskType,
		InputFiles:      runFlags.inputFiles,
		NumRuns:         runFlags.numRuns,
		MaxTokens:       runFlags.maxTokens,
		Temperature:     runFlags.temperature,
		APIKey:          runFlags.apiKey,
		APIVersion:      runFlags.apiVersion,
		Endpoint:        runFlags.endpoint,
		OllamaModelName: runFlags.ollamaModelName,
		OllamaURL:       runFlags.ollamaURL,
	}
	if app == nil {
		return cfg
	}
	cfg.RequestTimeout = app.RequestTimeout()

	switch cfg.ModelType {
	case experiment.ModelTypeOpenAI:
		if creds, ok := app.ProviderFor("openai"); ok && cfg.APIKey == "" {
			cfg.APIKey = creds.APIKey
		}
	case experiment.ModelTypeGemini:
		if creds, ok := app.ProviderFor("gemini"); ok && cfg.APIKey == "" {
			cfg.APIKey = creds.APIKey
		}
	case experiment.ModelTypeAzure:
		if creds, ok := app.AzureFor(cfg.ModelName); ok {
			if cfg.APIKey == "" {
				cfg.APIKey = creds.APIKey
			}
			if cfg.APIVersion == "" {
				cfg.APIVersion = creds.Version
			}
			if cfg.Endpoint == "" {
				cfg.Endpoint = creds.Endpoint
			}
		}
	}
	return cfg
}

func init() {
	runCmd.Flags().StringVar(&runFlags.modelType, "model-type", "", "model backend: openai, azure, gemini, or ollama")
	runCmd.Flags().StringVar(&runFlags.modelName, "model-name", "", "model name (e.g. gpt-4o, deepseek-r1, gemini-2.5-pro, llama3.2)")
	runCmd.Flags().StringVar(&runFlags.taskType, "task-type", "", "task type: nli or factual")
	runCmd.Flags().StringVar(&runFlags.promptType, "prompt-type", "", "prompt type: direct or cot")
	runCmd.Flags().StringVar(&runFlags.dataDir, "data-dir", "", "directory containing dataset files, relative to the project root")
	runCmd.Flags().StringVar(&runFlags.outputDir, "output-dir", "", "directory for results files, relative to the project root")
	runCmd.Flags().StringSliceVar(&runFlags.inputFiles, "input-files", nil, "dataset JSON files to process")
	runCmd.Flags().IntVar(&runFlags.numRuns, "num-runs", experiment.DefaultNumRuns, "number of sampled runs per example")
	runCmd.Flags().IntVar(&runFlags.maxTokens, "max-tokens", experiment.DefaultMaxTokens, "maximum completion tokens per run")
	runCmd.Flags().Float64Var(&runFlags.temperature, "temperature", experiment.DefaultTemperature, "sampling temperature")
	runCmd.Flags().StringVar(&runFlags.projectRoot, "project-root", "", "project root directory (default: current working directory)")
	runCmd.Flags().StringVar(&runFlags.apiKey, "api-key", "", "override the API key from the config file")
	runCmd.Flags().StringVar(&runFlags.apiVersion, "api-version", "", "override the API version for the enterprise-hosted backend")
	runCmd.Flags().StringVar(&runFlags.endpoint, "endpoint", "", "override the endpoint for the enterprise-hosted backend")
	runCmd.Flags().StringVar(&runFlags.ollamaModelName, "ollama-model-name", "", "server-side model tag when it differs from model-name")
	runCmd.Flags().StringVar(&runFlags.ollamaURL, "ollama-url", "", "base URL of the local model server")

	_ = runCmd.MarkFlagRequired("model-type")
	_ = runCmd.MarkFlagRequired("model-name")
	_ = runCmd.MarkFlagRequired("task-type")
	_ = runCmd.MarkFlagRequired("prompt-type")
	_ = runCmd.MarkFlagRequired("data-dir")
	_ = runCmd.MarkFlagRequired("output-dir")
	_ = runCmd.MarkFlagRequired("input-files")

	rootCmd.AddCommand(runCmd)
}
