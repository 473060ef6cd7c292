package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in model output")

// StripCodeFences removes a surrounding ```json ... ``` (or bare ```) fence.
func StripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	// Drop the opening fence line, including any language tag
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
		cleaned = cleaned[nl+1:]
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}

	cleaned = strings.TrimRight(cleaned, " \r\n")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// ExtractJSONObject returns the outermost {...} span of text.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", errNoJSONObject
	}
	return text[start : end+1], nil
}

// Decode parses raw model text into out and validates it. Every error it
// returns is a validation-class CallError.
func Decode(raw string, out Schema) error {
	obj, err := ExtractJSONObject(StripCodeFences(raw))
	if err != nil {
		return validationError(err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	if err := dec.Decode(out); err != nil {
		return validationError(fmt.Errorf("failed to decode model output: %w", err))
	}

	if err := out.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}
