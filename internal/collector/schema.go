package collector

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed status.schema.json
var statusSchemaJSON []byte

var (
	statusSchemaOnce sync.Once
	statusSchema     *jsonschema.Schema
	statusSchemaErr  error
)

func loadStatusSchema() (*jsonschema.Schema, error) {
	statusSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		statusSchema, statusSchemaErr = compiler.Compile(statusSchemaJSON)
		if statusSchemaErr != nil {
			statusSchemaErr = fmt.Errorf("compile status schema: %w", statusSchemaErr)
		}
	})
	return statusSchema, statusSchemaErr
}

// validateStatus checks raw status output against the embedded schema.
func validateStatus(data []byte) error {
	schema, err := loadStatusSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("%w: schema validation failed: %v", ErrMalformedStatus, result.Errors)
}
