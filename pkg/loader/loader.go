// Package loader reads schema and filter files in JSON, YAML, TOML, or
// NDJSON form, dispatching on file extension first and falling back to
// content sniffing. All entry points decode into typed values supplied by the
// caller.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a supported serialization format.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatNDJSON  Format = "ndjson"
)

// ForPath returns the format implied by a file extension, or FormatUnknown
// when the extension is not recognized.
func ForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	default:
		return FormatUnknown
	}
}

// Detect sniffs the format of raw content.
// Order matters: NDJSON needs multiple JSON-looking lines, TOML section
// headers would otherwise parse as JSON arrays, and YAML accepts nearly
// anything so it is the fallback.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if input == "" {
		return FormatUnknown
	}

	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses input in the given format into out. FormatUnknown detects the
// format from the content first.
func Decode(input string, f Format, out any) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}
	if f == FormatUnknown {
		f = Detect(input)
	}
	switch f {
	case FormatJSON:
		if err := json.Unmarshal([]byte(input), out); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(input), out); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal([]byte(input), out); err != nil {
			return fmt.Errorf("invalid TOML: %w", err)
		}
	case FormatNDJSON:
		arr, err := ndjsonToArray(input)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(arr, out); err != nil {
			return fmt.Errorf("invalid NDJSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
	return nil
}

// DecodeFile reads path and decodes its content into out.
func DecodeFile(path string, out any) error {
	return DecodeFileWithLogger(path, out, logr.Discard())
}

// DecodeFileWithLogger is like DecodeFile but records extension dispatch and
// sniffing fallback on the provided logger.
func DecodeFileWithLogger(path string, out any, lgr logr.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	f := ForPath(path)
	if f == FormatUnknown {
		f = Detect(string(data))
		lgr.V(1).Info("no known file extension, sniffing content", "path", path, "format", string(f))
	} else {
		lgr.V(1).Info("dispatching on file extension", "path", path, "format", string(f))
	}

	if err := Decode(string(data), f, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ndjsonToArray turns one-JSON-document-per-line input into a single JSON
// array so it can be decoded into a slice target in one pass. Blank lines are
// skipped; a line that is not valid JSON is an error, since typed targets
// leave no room for plain-string fallbacks.
func ndjsonToArray(input string) ([]byte, error) {
	var docs []json.RawMessage
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			return nil, fmt.Errorf("invalid NDJSON: line %d is not valid JSON", i+1)
		}
		docs = append(docs, json.RawMessage(line))
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return json.Marshal(docs)
}

// isLikelyNDJSON heuristic: returns true if the input looks like newline-delimited JSON.
// Uses positive JSON matching: a majority of non-empty lines must start with '{' or '['
// to be classified as NDJSON. This prevents YAML files (which may have many bare list
// items like "- name" that lack colons) from being misclassified as NDJSON.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++

		// Positive match: line looks like a JSON object or array
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}

	// Require multiple lines and a majority must look like JSON
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

// isLikelyTOML heuristic: returns true if the input looks like TOML.
// Detects TOML by looking for section headers [name] or key = value patterns
// that are distinct from YAML syntax.
func isLikelyTOML(input string) bool {
	lines := strings.Split(input, "\n")

	// Pattern for TOML section headers: [section] or [[array]]
	// Supports bare keys, quoted keys, and dotted keys:
	//   [server], [[items]], ["table name"], [database.credentials], [server."host.name"]
	// Excludes JSON arrays like [1, 2, 3] which have spaces/commas without quotes
	sectionPattern := regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)

	// Pattern for TOML key = value (not key: value which is YAML)
	// Supports bare keys, quoted keys, and dotted keys:
	//   name = "value", "table name" = "value", database.host = "localhost"
	keyValuePattern := regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)

	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++

		if sectionPattern.MatchString(line) {
			sectionCount++
		}
		if keyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	// Consider it TOML if we have sections, or if majority of lines are key=value
	if sectionCount > 0 {
		return true
	}
	if nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2 {
		return true
	}
	return false
}
