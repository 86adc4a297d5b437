// internal/evaluation/render.go
package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Output formats accepted by the evaluate command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatLaTeX = "latex"
)

// Metrics accepted by the evaluate command. F1 is accepted but the
// directory aggregation stores accuracy only, so it renders as zero.
const (
	MetricAccuracy = "accuracy"
	MetricF1       = "f1"
)

var (
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	modelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Render writes the score table in the requested format.
func Render(w io.Writer, scores ScoreTable, format, metric string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, scores)
	case FormatLaTeX:
		renderLaTeX(w, scores, metric)
		return nil
	case FormatTable:
		renderTable(w, scores, metric)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderMissingFooter reports the grand total of responses that carried no
// extractable output. Zero prints nothing.
func RenderMissingFooter(w io.Writer, totalMissing int) {
	if totalMissing <= 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, footerStyle.Render(fmt.Sprintf("Total responses missing %q output: %d", OutputMarker, totalMissing)))
}

func renderTable(w io.Writer, scores ScoreTable, metric string) {
	rule := ruleStyle.Render(strings.Repeat("=", 60))
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Evaluation Results (%s)", strings.ToUpper(metric))))
	fmt.Fprintln(w, rule)

	for _, model := range sortedKeys(scores) {
		fmt.Fprintf(w, "\n%s:\n", modelStyle.Render(model))
		tasks := scores[model]
		for _, task := range sortedTaskKeys(tasks) {
			score := tasks[task]
			fmt.Fprintf(w, "  %-30s %.3f (%d/%d)\n", task, metricValue(score, metric), score.Correct, score.Total)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

// renderLaTeX emits tabular row fragments ready for pasting into a paper.
func renderLaTeX(w io.Writer, scores ScoreTable, metric string) {
	fmt.Fprintln(w, `\begin{tabular}{l l c}`)
	fmt.Fprintf(w, `\textbf{Model} & \textbf{Task} & \textbf{%s} \\ \hline`+"\n", titleCase(metric))
	for _, model := range sortedKeys(scores) {
		tasks := scores[model]
		for _, task := range sortedTaskKeys(tasks) {
			fmt.Fprintf(w, `%s & %s & %.3f \\`+"\n", model, task, metricValue(tasks[task], metric))
		}
	}
	fmt.Fprintln(w, `\end{tabular}`)
}

func renderJSON(w io.Writer, scores ScoreTable) error {
	encoded, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

func metricValue(score TaskScore, metric string) float64 {
	if metric == MetricAccuracy {
		return score.Accuracy
	}
	return 0.0
}

func sortedKeys(scores ScoreTable) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedTaskKeys(tasks map[string]TaskScore) []string {
	keys := make([]string, 0, len(tasks))
	for key := range tasks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
