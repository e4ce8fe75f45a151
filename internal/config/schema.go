package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const schemaURL = "https://github.com/stacklok/lakehouse-bootstrap/config.schema.json"

//go:embed config.schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded config schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to register config schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// ValidateSchema checks the structure of a YAML configuration document against the
// embedded JSON schema. It catches unknown keys and wrong types before decoding.
func ValidateSchema(data []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("configuration is empty")
	}

	// Round-trip through JSON so the validator sees JSON types only
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("configuration is not representable as JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("configuration does not match schema: %w", err)
	}
	return nil
}
