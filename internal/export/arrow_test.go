package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KatherineCox/anvil-portal/internal/ingest"
)

// TestSchema validates the canonical export schema layout.
func TestSchema(t *testing.T) {
	schema := Schema()

	names := make([]string, 0, schema.NumFields())
	for _, field := range schema.Fields() {
		names = append(names, field.Name)
	}

	assert.Equal(t, []string{
		ingest.FieldProjectID,
		ingest.FieldConsortium,
		ingest.FieldAccess,
		ingest.FieldDataTypes,
		ingest.FieldIndication,
		ingest.FieldStudyDesign,
		ingest.FieldSamples,
		ingest.FieldSize,
		ingest.FieldStudyID,
		ingest.FieldStudyAccession,
	}, names)

	assert.Equal(t, arrow.FLOAT64, schema.Field(6).Type.ID())
	assert.Equal(t, arrow.LIST, schema.Field(3).Type.ID())
}

// TestWriteIPC validates the IPC stream round-trip: what the writer encodes,
// a stream reader gets back, with NaN and absent fields rendered as nulls.
func TestWriteIPC(t *testing.T) {
	records := []ingest.Record{
		{
			ingest.FieldProjectID:      ingest.Text("AN_CCDG_A"),
			ingest.FieldConsortium:     ingest.Text("CCDG"),
			ingest.FieldAccess:         ingest.Text("Private"),
			ingest.FieldDataTypes:      ingest.List([]string{"WGS", "WES"}),
			ingest.FieldSamples:        ingest.Number(1200),
			ingest.FieldSize:           ingest.Number(2.5e9),
			ingest.FieldStudyID:        ingest.Text("phs001000"),
			ingest.FieldStudyAccession: ingest.Text("phs001000.v3.p1"),
		},
		{
			ingest.FieldProjectID: ingest.Text("ANVIL"),
			ingest.FieldSamples:   ingest.Number(math.NaN()),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIPC(&buf, records), "Failed to write IPC stream")

	reader, err := ipc.NewReader(&buf)
	require.NoError(t, err, "Failed to create Arrow reader")
	defer reader.Release()

	assert.True(t, Schema().Equal(reader.Schema()))

	require.True(t, reader.Next(), "Expected one record batch")
	rec := reader.Record()
	require.EqualValues(t, 2, rec.NumRows())

	t.Run("text_fields_round_trip", func(t *testing.T) {
		projectIDs := column(t, rec, ingest.FieldProjectID).(*array.String)
		assert.Equal(t, "AN_CCDG_A", projectIDs.Value(0))
		assert.Equal(t, "ANVIL", projectIDs.Value(1))

		consortia := column(t, rec, ingest.FieldConsortium).(*array.String)
		assert.Equal(t, "CCDG", consortia.Value(0))
		assert.True(t, consortia.IsNull(1))
	})

	t.Run("number_fields_round_trip_with_NaN_as_null", func(t *testing.T) {
		samples := column(t, rec, ingest.FieldSamples).(*array.Float64)
		assert.Equal(t, float64(1200), samples.Value(0))
		assert.True(t, samples.IsNull(1))

		sizes := column(t, rec, ingest.FieldSize).(*array.Float64)
		assert.Equal(t, 2.5e9, sizes.Value(0))
		assert.True(t, sizes.IsNull(1))
	})

	t.Run("list_fields_round_trip", func(t *testing.T) {
		dataTypes := column(t, rec, ingest.FieldDataTypes).(*array.List)
		assert.Equal(t, []string{"WGS", "WES"}, listItems(dataTypes, 0))
		assert.True(t, dataTypes.IsNull(1))
	})

	assert.False(t, reader.Next(), "Expected a single record batch")
}

// TestWriteIPC_Empty validates that an empty record set encodes to a valid
// stream with zero rows.
func TestWriteIPC_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIPC(&buf, nil))

	reader, err := ipc.NewReader(&buf)
	require.NoError(t, err)
	defer reader.Release()

	var rows int64
	for reader.Next() {
		rows += reader.Record().NumRows()
	}
	assert.EqualValues(t, 0, rows)
}

// Helper functions

func column(t *testing.T, rec arrow.Record, name string) arrow.Array {
	t.Helper()
	indices := rec.Schema().FieldIndices(name)
	require.Len(t, indices, 1, "Expected exactly one column named %s", name)
	return rec.Column(indices[0])
}

func listItems(list *array.List, row int) []string {
	offsets := list.Offsets()
	values := list.ListValues().(*array.String)

	var items []string
	for i := offsets[row]; i < offsets[row+1]; i++ {
		items = append(items, values.Value(int(i)))
	}
	return items
}
