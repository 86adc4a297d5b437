// internal/evaluation/evaluator.go
package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cogbench/cogbench/internal/experiment"
	"github.com/cogbench/cogbench/internal/logging"
)

// SmallModelPrefix marks model directories that are stored but excluded from
// reporting.
const SmallModelPrefix = "llama3.2_1b"

// TaskScore aggregates the qualifying predictions of one (model, task,
// prompt style) combination.
type TaskScore struct {
	Accuracy float64 `json:"accuracy"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
}

// ScoreTable maps model -> "{task}_{prompt}" -> score. Combinations with
// zero qualifying predictions never appear.
type ScoreTable map[string]map[string]TaskScore

type resultEntry struct {
	Responses []string `json:"responses"`
}

type goldEntry struct {
	Label json.RawMessage `json:"label"`
}

// FileCounts are the raw tallies of one result file.
type FileCounts struct {
	Correct int
	Total   int
	// Missing counts responses whose extraction came back empty; they are
	// excluded from the accuracy denominator and reported separately.
	Missing int
}

// EvaluateFile scores one results file against one gold file. A missing
// gold file is not an error: the file is skipped with a warning and
// contributes nothing. An example whose gold label is empty is skipped
// entirely. Matching is substring containment of the gold label in the
// extracted prediction, deliberately looser than equality to tolerate
// punctuation noise — with the documented consequence that a short gold
// label can be credited inside a longer wrong token (e.g. "no" inside
// "unknown").
func EvaluateFile(resultPath, goldPath string) (FileCounts, error) {
	goldRaw, err := os.ReadFile(goldPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.LogEvent("skipping %s (no gold data at %s)", filepath.Base(resultPath), goldPath)
			return FileCounts{}, nil
		}
		return FileCounts{}, fmt.Errorf("reading gold file: %w", err)
	}

	resultRaw, err := os.ReadFile(resultPath)
	if err != nil {
		return FileCounts{}, fmt.Errorf("reading results file: %w", err)
	}

	gold := map[string]goldEntry{}
	if err := json.Unmarshal(goldRaw, &gold); err != nil {
		return FileCounts{}, fmt.Errorf("decoding gold file %s: %w", goldPath, err)
	}
	results := map[string]resultEntry{}
	if err := json.Unmarshal(resultRaw, &results); err != nil {
		return FileCounts{}, fmt.Errorf("decoding results file %s: %w", resultPath, err)
	}

	var counts FileCounts
	for id, entry := range results {
		goldLabel := strings.ToLower(strings.TrimSpace(experiment.RawLabelText(gold[id].Label)))
		if goldLabel == "" {
			continue
		}

		for _, response := range entry.Responses {
			pred := ExtractOutput(response)
			if pred == "" {
				counts.Missing++
				continue
			}
			if strings.Contains(pred, goldLabel) {
				counts.Correct++
			}
			counts.Total++
		}
	}
	return counts, nil
}

// EvaluateDirectory scores every model subdirectory under resultsRoot (or
// just modelFilter if non-empty) against the gold files in goldDir. It
// returns the score table plus the grand total of missing-output responses.
func EvaluateDirectory(resultsRoot, goldDir, modelFilter string) (ScoreTable, int, error) {
	modelDirs, err := listModelDirs(resultsRoot, modelFilter)
	if err != nil {
		return nil, 0, err
	}

	scores := ScoreTable{}
	totalMissing := 0

	for _, modelDir := range modelDirs {
		model := filepath.Base(modelDir)
		if strings.HasPrefix(model, SmallModelPrefix) {
			continue
		}

		resultFiles, err := filepath.Glob(filepath.Join(modelDir, "*_res.json"))
		if err != nil {
			return nil, 0, err
		}
		sort.Strings(resultFiles)

		for _, resultFile := range resultFiles {
			task, promptType := ParseResultFilename(filepath.Base(resultFile))
			goldPath := filepath.Join(goldDir, task+".json")

			counts, err := EvaluateFile(resultFile, goldPath)
			if err != nil {
				return nil, 0, err
			}

			if counts.Total > 0 {
				if scores[model] == nil {
					scores[model] = map[string]TaskScore{}
				}
				scores[model][task+"_"+promptType] = TaskScore{
					Accuracy: float64(counts.Correct) / float64(counts.Total),
					Correct:  counts.Correct,
					Total:    counts.Total,
				}
			}
			totalMissing += counts.Missing
		}
	}

	return scores, totalMissing, nil
}

// ParseResultFilename recovers the task name and prompt style from a results
// filename: "causal_res.json" -> ("causal", "direct"),
// "causal_cot_res.json" -> ("causal", "cot").
func ParseResultFilename(name string) (task, promptType string) {
	stem := strings.TrimSuffix(name, ".json")
	promptType = "direct"
	if strings.Contains(stem, "_cot") {
		promptType = "cot"
	}
	task = strings.ReplaceAll(stem, "_cot_res", "")
	task = strings.ReplaceAll(task, "_res", "")
	return task, promptType
}

func listModelDirs(resultsRoot, modelFilter string) ([]string, error) {
	if modelFilter != "" {
		dir := filepath.Join(resultsRoot, modelFilter)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			// Match the directory-walk behavior: a missing model simply
			// yields no entries.
			return nil, nil
		}
		return []string{dir}, nil
	}

	entries, err := os.ReadDir(resultsRoot)
	if err != nil {
		return nil, fmt.Errorf("reading results directory: %w", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(resultsRoot, entry.Name()))
		}
	}
	return dirs, nil
}
