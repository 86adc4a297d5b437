// internal/experiment/dataset.go
package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// datasetSchema validates the shape of a dataset file before any network
// call is made: an object keyed by example id, each entry carrying a
// statement and label, with an optional premise that is either a string or a
// list of strings.
const datasetSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["statement", "label"],
    "properties": {
      "premise": {
        "oneOf": [
          {"type": "string"},
          {"type": "array", "items": {"type": "string"}}
        ]
      },
      "statement": {"type": "string"},
      "label": {}
    }
  }
}`

// Premise is a dataset premise field, which may be a single string or a list
// of strings in the source JSON. Lists are joined with single spaces.
type Premise string

// UnmarshalJSON accepts both encodings of the premise field.
func (p *Premise) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = Premise(strings.TrimSpace(single))
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("premise must be a string or a list of strings")
	}
	*p = Premise(strings.TrimSpace(strings.Join(parts, " ")))
	return nil
}

// Example is one labeled dataset item.
type Example struct {
	Premise       Premise
	Statement     string
	Label         string
	ReasoningType string
}

// UnmarshalJSON tolerates the two reasoning-type spellings found in the
// datasets and normalizes non-string labels to their text form.
func (e *Example) UnmarshalJSON(data []byte) error {
	var aux struct {
		Premise        Premise         `json:"premise"`
		Statement      string          `json:"statement"`
		Label          json.RawMessage `json:"label"`
		ReasoningType  string          `json:"reasoning_type"`
		ReasoningType2 string          `json:"Reasoning type"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Premise = aux.Premise
	e.Statement = strings.TrimSpace(aux.Statement)
	e.Label = RawLabelText(aux.Label)
	e.ReasoningType = aux.ReasoningType
	if e.ReasoningType == "" {
		e.ReasoningType = aux.ReasoningType2
	}
	return nil
}

// RawLabelText renders a raw JSON label value as plain text: strings are
// unquoted, everything else keeps its JSON spelling (true, 1, ...).
func RawLabelText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Dataset holds the examples of one input file plus the id order in which
// they appeared, since processing and output follow source order.
type Dataset struct {
	Order    []string
	Examples map[string]Example
}

// LoadDataset reads and validates a dataset file.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(datasetSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validating dataset %s: %w", path, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("dataset %s is malformed: %s", path, strings.Join(details, "; "))
	}

	examples := map[string]Example{}
	if err := json.Unmarshal(raw, &examples); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
	}

	order, err := topLevelKeyOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s key order: %w", path, err)
	}

	return &Dataset{Order: order, Examples: examples}, nil
}

// topLevelKeyOrder walks the JSON token stream to recover the order of the
// top-level object keys, which encoding/json maps discard.
func topLevelKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a top-level JSON object")
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", keyTok)
		}
		order = append(order, key)

		// Skip the value.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, err
		}
	}
	return order, nil
}
