// Package llm provides the generation client used by the prompt compiler:
// structured output with token log-probabilities, free-text generation, and
// the validation and schema helpers around them.
package llm

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance used across the package.
var validate = validator.New()

// Validate checks if the given struct is valid according to its validation rules.
// It uses the go-playground/validator package to perform validation based on struct tags.
// Values that are not structs (or pointers to structs) have no tags to check and pass.
//
// Example:
//
//	type Target struct {
//	    MaterialityRating int `json:"materialityRating" validate:"min=1,max=3"`
//	}
//
//	if err := Validate(&Target{MaterialityRating: 4}); err != nil {
//	    // rating out of range
//	}
func Validate(s any) error {
	v := reflect.ValueOf(s)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("cannot validate nil %T", s)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(s)
}

// RegisterCustomValidation registers a custom validation function with the validator.
// This allows adding domain-specific validation rules beyond the standard ones.
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}
