package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

func validateOutputFormat(format string) error {
	switch format {
	case "json", "yaml", "toml", "query", "display":
		return nil
	}
	return fmt.Errorf("invalid --output value %q (expected json, yaml, toml, query, or display)", format)
}

// renderFilters renders the committed list in the requested format. The
// structured formats emit the serialized record form wrapped in a filters
// key, which loadFilters reads back; query emits the compact query-string
// form and display the human-readable line.
func renderFilters(list []filter.Expression, s *filter.Schema, format string) (string, error) {
	switch format {
	case "query":
		return filter.ToQueryString(list) + "\n", nil
	case "display":
		return filter.ToDisplayString(list, s, nil) + "\n", nil
	}

	file := filtersFile{Filters: filter.Serialize(list, s)}
	switch format {
	case "json":
		data, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "toml":
		data, err := toml.Marshal(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("invalid --output value %q", format)
}
