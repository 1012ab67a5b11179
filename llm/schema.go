package llm

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
)

var reflector = &jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// ReflectSchema returns the JSON schema of t with every definition inlined, the
// shape expected by chat-completions response_format.
func ReflectSchema(t reflect.Type) *jsonschema.Schema {
	schema := reflector.ReflectFromType(t)
	schema.Version = ""
	return schema
}

// SchemaFor returns the inlined JSON schema of T.
func SchemaFor[T any]() *jsonschema.Schema {
	return ReflectSchema(reflect.TypeFor[T]())
}

// SchemaJSON renders a schema as indented JSON for embedding into prompts.
func SchemaJSON(schema *jsonschema.Schema) (string, error) {
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
