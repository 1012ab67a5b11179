package tastelever

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/teilomillet/tastelever/compiler"
	"github.com/teilomillet/tastelever/llm"
)

// Validate checks a value against its `validate` struct tags, the same rules
// the compiler applies to parsed targets and loaded data points.
//
// Example usage:
//
//	type Materiality struct {
//	    MaterialityRating float64 `json:"materialityRating" validate:"min=1,max=3"`
//	}
//
//	err := Validate(&Materiality{MaterialityRating: 4}) // out of range
func Validate(s any) error {
	if err := llm.Validate(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// RegisterCustomValidation adds a validation tag usable on data and target types.
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return llm.RegisterCustomValidation(tag, fn)
}

// BundleJSONSchema returns the indented JSON schema of a compiled bundle for
// data type D and target type T.
func BundleJSONSchema[D, T any]() ([]byte, error) {
	return json.MarshalIndent(llm.SchemaFor[compiler.Bundle[D, T]](), "", "  ")
}
