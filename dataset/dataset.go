// Package dataset reads labeled datasets and persists compiled bundles.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/teilomillet/tastelever/compiler"
	"github.com/teilomillet/tastelever/llm"
)

// Load reads a JSON array of {"data": ..., "target": ...} records and
// validates every record against the struct tags of D and T.
func Load[D, T any](path string) ([]compiler.DataPoint[D, T], error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse[D, T](raw)
}

// Parse is Load on an in-memory document.
func Parse[D, T any](raw []byte) ([]compiler.DataPoint[D, T], error) {
	var points []compiler.DataPoint[D, T]
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	schema := compiler.NewSchema[D, T]()
	for i, p := range points {
		if err := schema.ValidateData(p.Data); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := schema.ValidateTarget(p.Target); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return points, nil
}

type bundleFile[D, T any] struct {
	Schema string `json:"$schema,omitempty"`
	*compiler.Bundle[D, T]
}

// WriteBundle writes bundle as indented JSON. A non-empty schemaRef is stored
// as the "$schema" property. A nil example set is written as [].
func WriteBundle[D, T any](path string, bundle *compiler.Bundle[D, T], schemaRef string) error {
	if bundle == nil {
		return fmt.Errorf("nil bundle")
	}
	if bundle.Examples == nil {
		b := *bundle
		b.Examples = []compiler.FewshotExample[D, T]{}
		bundle = &b
	}
	return writeJSON(path, bundleFile[D, T]{Schema: schemaRef, Bundle: bundle})
}

// ReadBundle reads a bundle written by WriteBundle, ignoring "$schema".
func ReadBundle[D, T any](path string) (*compiler.Bundle[D, T], error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var bundle compiler.Bundle[D, T]
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &bundle, nil
}

// WriteBundleSchema exports the JSON schema of Bundle[D, T].
func WriteBundleSchema[D, T any](path string) error {
	schema := llm.ReflectSchema(reflect.TypeFor[compiler.Bundle[D, T]]())
	return writeJSON(path, schema)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
