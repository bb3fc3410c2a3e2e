package ingest

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValue_Accessors validates that accessors are safe across kinds: reading
// a value as the wrong kind yields the documented neutral result.
func TestValue_Accessors(t *testing.T) {
	t.Run("zero_value_is_absent", func(t *testing.T) {
		var v Value
		assert.True(t, v.IsAbsent())
		assert.Equal(t, KindAbsent, v.Kind())
	})

	t.Run("text_of_a_number_is_empty", func(t *testing.T) {
		assert.Equal(t, "", Number(42).Text())
	})

	t.Run("number_of_a_text_is_NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(Text("hello").Number()))
	})

	t.Run("list_of_a_text_is_nil", func(t *testing.T) {
		assert.Nil(t, Text("hello").List())
	})
}

// TestValue_String validates display rendering per kind.
func TestValue_String(t *testing.T) {
	assert.Equal(t, "AN_CCDG_X", Text("AN_CCDG_X").String())
	assert.Equal(t, "1234", Number(1234).String())
	assert.Equal(t, "1234.5", Number(1234.5).String())
	assert.Equal(t, "NaN", Number(math.NaN()).String())
	assert.Equal(t, "WGS, WES", List([]string{"WGS", "WES"}).String())
	assert.Equal(t, "", Value{}.String())
}

// TestValue_MarshalJSON validates that each kind serializes to its natural
// JSON type, with NaN rendered as null.
func TestValue_MarshalJSON(t *testing.T) {
	t.Run("text_is_a_string", func(t *testing.T) {
		assert.Equal(t, `"GTEx (v8)"`, marshal(t, Text("GTEx (v8)")))
	})

	t.Run("number_is_a_number", func(t *testing.T) {
		assert.Equal(t, `1234`, marshal(t, Number(1234)))
	})

	t.Run("NaN_is_null", func(t *testing.T) {
		assert.Equal(t, `null`, marshal(t, Number(math.NaN())))
	})

	t.Run("list_is_an_array", func(t *testing.T) {
		assert.Equal(t, `["WGS","WES"]`, marshal(t, List([]string{"WGS", "WES"})))
	})

	t.Run("nil_list_is_an_empty_array", func(t *testing.T) {
		assert.Equal(t, `[]`, marshal(t, List(nil)))
	})

	t.Run("absent_is_null", func(t *testing.T) {
		assert.Equal(t, `null`, marshal(t, Value{}))
	})
}

// TestRecord_MarshalJSON validates that absent fields are dropped from the
// serialized record rather than rendered as nulls.
func TestRecord_MarshalJSON(t *testing.T) {
	record := Record{
		FieldProjectID:  Text("AN_CCDG_X"),
		FieldSamples:    Number(120),
		FieldStudyID:    Value{},
		FieldConsortium: Text("CCDG"),
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "AN_CCDG_X", decoded[FieldProjectID])
	assert.Equal(t, float64(120), decoded[FieldSamples])
	assert.NotContains(t, decoded, FieldStudyID)
}

// Helper functions

func marshal(t *testing.T, v Value) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
