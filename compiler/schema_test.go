package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConcrete(t *testing.T) {
	assert.NoError(t, NewSchema[quote, rating]().CheckConcrete())
	assert.NoError(t, NewSchema[quote, *rating]().CheckConcrete())

	for name, err := range map[string]error{
		"interface": NewSchema[quote, any]().CheckConcrete(),
		"map":       NewSchema[quote, map[string]int]().CheckConcrete(),
		"slice":     NewSchema[quote, []rating]().CheckConcrete(),
		"scalar":    NewSchema[quote, int]().CheckConcrete(),
	} {
		assert.True(t, IsKind(err, KindConfiguration), name)
	}
}

func TestParseTarget(t *testing.T) {
	schema := NewSchema[quote, rating]()

	target, err := schema.ParseTarget([]byte(`{"materialityRating":3}`))
	require.NoError(t, err)
	assert.Equal(t, rating{Materiality: 3}, target)

	_, err = schema.ParseTarget([]byte(`{"materialityRating":0}`))
	assert.True(t, IsKind(err, KindValidation))

	_, err = schema.ParseTarget(nil)
	assert.True(t, IsKind(err, KindValidation))
}

func TestParsePointerTarget(t *testing.T) {
	schema := NewSchema[quote, *rating]()

	target, err := schema.ParseTarget([]byte(`{"materialityRating":2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, target.Materiality)

	_, err = schema.ParseTarget([]byte(`null`))
	assert.True(t, IsKind(err, KindValidation))
}

func TestValidateData(t *testing.T) {
	schema := NewSchema[quote, rating]()
	assert.NoError(t, schema.ValidateData(quote{ID: "x"}))
	assert.True(t, IsKind(schema.ValidateData(quote{}), KindValidation))
}

func TestSchemasAreInlined(t *testing.T) {
	schema := NewSchema[quote, rating]()
	target := schema.TargetSchema()
	assert.Equal(t, "object", target.Type)
	assert.Empty(t, target.Ref)
	assert.Contains(t, target.Required, "materialityRating")
	assert.Equal(t, "object", schema.DataSchema().Type)
}
