package ingest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCanonicalField validates the mapping from export header labels to
// canonical field names, including labels that share one field.
func TestCanonicalField(t *testing.T) {
	t.Run("workspace_and_project_id_share_one_field", func(t *testing.T) {
		a, ok := CanonicalField("WORKSPACE")
		require.True(t, ok)
		b, ok := CanonicalField("PROJECT_ID")
		require.True(t, ok)

		assert.Equal(t, FieldProjectID, a)
		assert.Equal(t, FieldProjectID, b)
	})

	t.Run("data_type_variants_share_one_field", func(t *testing.T) {
		a, ok := CanonicalField("DATA_TYPE")
		require.True(t, ok)
		b, ok := CanonicalField("DATA_TYPES")
		require.True(t, ok)

		assert.Equal(t, FieldDataTypes, a)
		assert.Equal(t, FieldDataTypes, b)
	})

	t.Run("unmapped_labels_are_rejected", func(t *testing.T) {
		_, ok := CanonicalField("BILLING_ACCOUNT")
		assert.False(t, ok)
	})
}

// TestCoerce validates the per-field type rules applied to raw export text.
func TestCoerce(t *testing.T) {
	t.Run("number_strips_thousands_separators", func(t *testing.T) {
		value := Coerce(FieldSize, "1,234")
		require.Equal(t, KindNumber, value.Kind())
		assert.Equal(t, float64(1234), value.Number())
	})

	t.Run("non_numeric_content_yields_NaN", func(t *testing.T) {
		value := Coerce(FieldSamples, "n/a")
		require.Equal(t, KindNumber, value.Kind())
		assert.True(t, math.IsNaN(value.Number()))
	})

	t.Run("list_splits_on_comma", func(t *testing.T) {
		value := Coerce(FieldDataTypes, "WGS,WES,RNA-Seq")
		require.Equal(t, KindList, value.Kind())
		assert.Equal(t, []string{"WGS", "WES", "RNA-Seq"}, value.List())
	})

	t.Run("singular_values_still_become_lists", func(t *testing.T) {
		value := Coerce(FieldIndication, "Asthma")
		require.Equal(t, KindList, value.Kind())
		assert.Equal(t, []string{"Asthma"}, value.List())
	})

	t.Run("list_items_are_not_trimmed", func(t *testing.T) {
		value := Coerce(FieldStudyDesign, "Case-Control, Family")
		assert.Equal(t, []string{"Case-Control", " Family"}, value.List())
	})

	t.Run("consortium_resolves_display_name", func(t *testing.T) {
		value := Coerce(FieldConsortium, "gtex")
		assert.Equal(t, "GTEx (v8)", value.Text())
	})

	t.Run("unknown_consortium_upper_cases", func(t *testing.T) {
		value := Coerce(FieldConsortium, "ccdg")
		assert.Equal(t, "CCDG", value.Text())
	})

	t.Run("text_fields_pass_through", func(t *testing.T) {
		value := Coerce(FieldStudyID, "phs000424")
		require.Equal(t, KindText, value.Kind())
		assert.Equal(t, "phs000424", value.Text())
	})
}

// TestCoerce_Rendering validates that a coerced value renders back to its
// normalized text form.
func TestCoerce_Rendering(t *testing.T) {
	assert.Equal(t, "1234", Coerce(FieldSize, "1,234").String())
	assert.Equal(t, "WGS, WES", Coerce(FieldDataTypes, "WGS,WES").String())
	assert.Equal(t, "1000 Genomes", Coerce(FieldConsortium, "1000g").String())
}

// TestAccessTier validates the public-workspace roster classification.
func TestAccessTier(t *testing.T) {
	t.Run("roster_workspaces_are_public", func(t *testing.T) {
		assert.Equal(t, AccessPublic, accessTier("AN_GTEX_V8_HG38"))
		assert.Equal(t, AccessPublic, accessTier("AN_1000G_HIGH_COVERAGE"))
	})

	t.Run("everything_else_is_private", func(t *testing.T) {
		assert.Equal(t, AccessPrivate, accessTier("AN_CCDG_EXAMPLE"))
		assert.Equal(t, AccessPrivate, accessTier(""))
	})
}
