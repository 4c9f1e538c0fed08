package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/oakwood-commons/filtx/pkg/filter"
	"github.com/oakwood-commons/filtx/pkg/loader"
	"github.com/oakwood-commons/filtx/pkg/logger"
	"github.com/oakwood-commons/filtx/pkg/rules"
)

// filtersFile is the on-disk shape for saved filter lists. The wrapper keeps
// the document a table in TOML, where a top-level array is not representable.
type filtersFile struct {
	Filters []filter.Serialized `json:"filters" yaml:"filters" toml:"filters"`
}

// loadSchema reads a schema declaration file, resolves it against the builtin
// operator catalog, and compiles any CEL rules into the schema's validate
// hook.
func loadSchema(ctx context.Context, path string) (*filter.Schema, error) {
	lgr := logger.FromContext(ctx)
	sf, err := filter.LoadSchemaFileWithLogger(path, *lgr)
	if err != nil {
		return nil, err
	}
	schema, err := sf.Schema()
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	if len(sf.Rules) > 0 {
		engine, err := rules.NewEngine(sf.Rules)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", path, err)
		}
		schema.Validate = engine.Validate
	}
	return schema, nil
}

// loadFilters reads a saved filter list and rebinds it against the schema.
// An empty path yields an empty list.
func loadFilters(ctx context.Context, path string, s *filter.Schema) ([]filter.Expression, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	var file filtersFile
	if err := loader.DecodeFileWithLogger(path, &file, *logger.FromContext(ctx)); err != nil {
		return nil, err
	}
	list, err := filter.Deserialize(file.Filters, s)
	if err != nil {
		return nil, fmt.Errorf("filters %s: %w", path, err)
	}
	return list, nil
}
