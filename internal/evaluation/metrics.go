// internal/evaluation/metrics.go

// Package evaluation scores experiment result files against gold labels and
// renders the aggregated score table.
package evaluation

import (
	"sort"
	"strings"
)

// OutputMarker is the literal that models are prompted to emit before their
// final answer.
const OutputMarker = "output:"

// ExtractOutput pulls a predicted label out of a free-text response. When
// the marker is present (any case) it returns the first whitespace-delimited
// token after the last occurrence, lowercased; an empty tail yields "".
// Without the marker the whole lowercased, trimmed response is returned —
// which for multi-word responses means the match later happens against the
// full text, a known quirk of this extraction.
func ExtractOutput(response string) string {
	lower := strings.ToLower(strings.TrimSpace(response))
	idx := strings.LastIndex(lower, OutputMarker)
	if idx < 0 {
		return lower
	}
	fields := strings.Fields(lower[idx+len(OutputMarker):])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Accuracy is the fraction of exact matches between paired labels. Empty or
// mismatched-length inputs score zero.
func Accuracy(yTrue, yPred []string) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0.0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// MacroF1 computes the unweighted mean of per-class F1 scores over every
// class that appears in either label list. Defined for completeness; the
// directory-level aggregation reports accuracy only.
func MacroF1(yTrue, yPred []string) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0.0
	}

	classes := map[string]bool{}
	for _, label := range yTrue {
		classes[label] = true
	}
	for _, label := range yPred {
		classes[label] = true
	}

	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, class := range names {
		var tp, fp, fn int
		for i := range yTrue {
			switch {
			case yPred[i] == class && yTrue[i] == class:
				tp++
			case yPred[i] == class:
				fp++
			case yTrue[i] == class:
				fn++
			}
		}
		if tp == 0 {
			continue
		}
		precision := float64(tp) / float64(tp+fp)
		recall := float64(tp) / float64(tp+fn)
		sum += 2 * precision * recall / (precision + recall)
	}
	return sum / float64(len(names))
}
