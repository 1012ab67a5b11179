package compiler

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/teilomillet/tastelever/llm"
)

// Schema is the contract for the input type D and the target type T. Parsing
// uses encoding/json and validation uses the `validate` struct tags.
type Schema[D, T any] struct {
	dataType   reflect.Type
	targetType reflect.Type

	once         sync.Once
	dataSchema   *jsonschema.Schema
	targetSchema *jsonschema.Schema
}

func NewSchema[D, T any]() *Schema[D, T] {
	return &Schema[D, T]{
		dataType:   reflect.TypeFor[D](),
		targetType: reflect.TypeFor[T](),
	}
}

// CheckConcrete reports a configuration error unless T is a struct or a
// pointer to a struct, the only shapes a structured response can be asked for.
func (s *Schema[D, T]) CheckConcrete() error {
	t := s.targetType
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return newError(KindConfiguration, fmt.Sprintf("target type %s is not a concrete struct", s.targetType), nil)
	}
	return nil
}

func (s *Schema[D, T]) resolve() {
	s.once.Do(func() {
		s.dataSchema = llm.ReflectSchema(s.dataType)
		s.targetSchema = llm.ReflectSchema(s.targetType)
	})
}

// DataSchema returns the JSON schema of D.
func (s *Schema[D, T]) DataSchema() *jsonschema.Schema {
	s.resolve()
	return s.dataSchema
}

// TargetSchema returns the JSON schema of T.
func (s *Schema[D, T]) TargetSchema() *jsonschema.Schema {
	s.resolve()
	return s.targetSchema
}

// ParseTarget decodes and validates a structured response object.
func (s *Schema[D, T]) ParseTarget(raw json.RawMessage) (T, error) {
	var target T
	if err := json.Unmarshal(raw, &target); err != nil {
		return target, newError(KindValidation, "response does not match target type", err)
	}
	if err := s.ValidateTarget(target); err != nil {
		return target, err
	}
	return target, nil
}

func (s *Schema[D, T]) ValidateTarget(target T) error {
	if err := llm.Validate(target); err != nil {
		return newError(KindValidation, "invalid target", err)
	}
	return nil
}

func (s *Schema[D, T]) ValidateData(data D) error {
	if err := llm.Validate(data); err != nil {
		return newError(KindValidation, "invalid data", err)
	}
	return nil
}
