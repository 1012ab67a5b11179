package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/tastelever/compiler"
)

type takeaway struct {
	Type     string `json:"type" validate:"required"`
	Takeaway string `json:"takeaway"`
	Score    int    `json:"importanceScore" validate:"min=1,max=3"`
}

type rating struct {
	Materiality int `json:"materialityRating" validate:"min=1,max=3"`
}

func TestParse(t *testing.T) {
	points, err := Parse[takeaway, rating]([]byte(`[
		{"data": {"type": "guidance", "takeaway": "FY guide raised", "importanceScore": 3}, "target": {"materialityRating": 3}},
		{"data": {"type": "other", "takeaway": "CFO thanked analysts", "importanceScore": 1}, "target": {"materialityRating": 1}}
	]`))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "guidance", points[0].Data.Type)
	assert.Equal(t, 1, points[1].Target.Materiality)
}

func TestParseRejectsInvalidRecords(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"bad target":   `[{"data": {"type": "other", "importanceScore": 1}, "target": {"materialityRating": 4}}]`,
		"missing type": `[{"data": {"importanceScore": 2}, "target": {"materialityRating": 2}}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse[takeaway, rating]([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load[takeaway, rating](filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compiled-prompt.json")
	bundle := &compiler.Bundle[takeaway, rating]{
		Prompt: compiler.PromptTemplate{SystemPrompt: "sys", FinalPrompt: "final"},
		Examples: []compiler.FewshotExample[takeaway, rating]{
			{Data: takeaway{Type: "kpi_commentary", Score: 2}, Target: rating{Materiality: 2}, Explanation: "kpi beat"},
		},
	}

	require.NoError(t, WriteBundle(path, bundle, "./compiled-prompt-schema.json"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "./compiled-prompt-schema.json", doc["$schema"])
	assert.Contains(t, doc, "prompt")
	assert.Contains(t, doc, "examples")

	read, err := ReadBundle[takeaway, rating](path)
	require.NoError(t, err)
	assert.Equal(t, bundle, read)
}

func TestWriteBundleSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, WriteBundleSchema[takeaway, rating](path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "object", doc.Type)
	assert.Contains(t, doc.Properties, "prompt")
	assert.Contains(t, doc.Properties, "examples")
	assert.Contains(t, string(raw), "materialityRating")
}

func TestWriteBundleWithoutExamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compiled-prompt.json")
	bundle := &compiler.Bundle[takeaway, rating]{Prompt: compiler.PromptTemplate{SystemPrompt: "sys"}}

	require.NoError(t, WriteBundle(path, bundle, ""))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"examples": []`)
	assert.NotContains(t, string(raw), "null")
	assert.Nil(t, bundle.Examples, "caller's bundle is left as is")
}
