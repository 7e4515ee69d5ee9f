package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StepDraft is one step as the model emitted it. Fields are copied verbatim:
// strings as-is, any other value as its JSON text. Missing or null fields stay
// empty and a missing or null command stays nil.
type StepDraft struct {
	Title   string
	Content string
	Command *string
}

type rawStep struct {
	Title   json.RawMessage `json:"title"`
	Content json.RawMessage `json:"content"`
	Command json.RawMessage `json:"command"`
}

// DecodeSteps accepts three shapes: a bare list of step objects, an object
// whose "steps" field holds the list, or an object whose "data" field holds
// it. "steps" is preferred whenever it holds a truthy value.
//
// Malformed JSON yields the decoder error; any other shape yields an error
// wrapping ErrInvalidFormat.
func DecodeSteps(text string) ([]StepDraft, error) {
	var top json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	list, ok := resolveStepList(top)
	if !ok {
		return nil, ErrInvalidFormat
	}

	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	drafts := make([]StepDraft, len(items))
	for i, item := range items {
		if leadingByte(item) != '{' {
			return nil, fmt.Errorf("%w: step %d is not an object", ErrInvalidFormat, i)
		}
		var raw rawStep
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidFormat, i, err)
		}
		drafts[i].Title, _ = verbatim(raw.Title)
		drafts[i].Content, _ = verbatim(raw.Content)
		if command, ok := verbatim(raw.Command); ok {
			drafts[i].Command = &command
		}
	}
	return drafts, nil
}

// verbatim renders a field value as text. It reports false for an absent or
// null value.
func verbatim(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return "", false
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s, true
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, v); err != nil {
		return string(v), true
	}
	return compact.String(), true
}

func resolveStepList(v json.RawMessage) (json.RawMessage, bool) {
	switch leadingByte(v) {
	case '[':
		return v, true
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(v, &wrapper); err != nil {
			return nil, false
		}
		chosen := wrapper["data"]
		if steps, ok := wrapper["steps"]; ok && truthy(steps) {
			chosen = steps
		}
		if leadingByte(chosen) == '[' {
			return chosen, true
		}
	}
	return nil, false
}

// truthy mirrors JavaScript truthiness for a JSON value.
func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	switch string(v) {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(string(v), 64); err == nil {
		return f != 0
	}
	return true
}

func leadingByte(v json.RawMessage) byte {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}
