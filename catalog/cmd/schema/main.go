package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"ricochet/server/catalog"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema, err := buildSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build schema: %v\n", err)
		os.Exit(1)
	}
	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

// buildSchema reflects one catalog entry and wraps it in the two document
// shapes the loader accepts: an array of entries, or an object keyed by
// weapon ID.
func buildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	entrySchema := reflector.ReflectFromType(reflect.TypeOf(catalog.EntryDocument{}))
	if entrySchema == nil {
		return nil, fmt.Errorf("failed to reflect entry schema")
	}
	entrySchema.Version = ""
	entrySchema.Title = "Weapon Catalog Entry"
	entrySchema.Description = "Designer-authored weapon definition plus free-form tuning blocks."
	entrySchema.AdditionalProperties = &jsonschema.Schema{}

	arraySchema := &jsonschema.Schema{
		Type:        "array",
		Title:       "Array Catalog",
		Description: "Weapon catalog expressed as an array of entry objects.",
		Items:       entrySchema,
	}

	objectSchema := &jsonschema.Schema{
		Type:                 "object",
		Title:                "Object Catalog",
		Description:          "Weapon catalog expressed as an object keyed by weapon ID.",
		AdditionalProperties: entrySchema,
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Ricochet Weapon Catalog",
		Description: "Validates config/weapons/definitions.json.",
		OneOf: []*jsonschema.Schema{
			arraySchema,
			objectSchema,
		},
	}, nil
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
