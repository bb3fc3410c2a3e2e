// Package export encodes ingested record sets as Arrow IPC streams for
// analytics consumers.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/KatherineCox/anvil-portal/internal/ingest"
)

// workspaceSchema is the canonical Arrow rendition of a workspace record:
// utf8 for text fields, float64 for numbers, list<utf8> for list fields.
var workspaceSchema = arrow.NewSchema([]arrow.Field{
	{Name: ingest.FieldProjectID, Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: ingest.FieldConsortium, Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: ingest.FieldAccess, Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: ingest.FieldDataTypes, Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
	{Name: ingest.FieldIndication, Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
	{Name: ingest.FieldStudyDesign, Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
	{Name: ingest.FieldSamples, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: ingest.FieldSize, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: ingest.FieldStudyID, Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: ingest.FieldStudyAccession, Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

// Schema returns the canonical workspace export schema.
func Schema() *arrow.Schema {
	return workspaceSchema
}

// WriteIPC encodes a record set as a single-batch Arrow IPC stream.
func WriteIPC(w io.Writer, records []ingest.Record) error {
	pool := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(pool, workspaceSchema)
	defer builder.Release()

	for _, record := range records {
		for i, field := range workspaceSchema.Fields() {
			appendValue(builder.Field(i), field.Type, record[field.Name])
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(workspaceSchema))
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write Arrow record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow stream: %w", err)
	}

	return nil
}

// appendValue appends one field value to the matching Arrow builder. A NaN
// number becomes null, the same rendering the JSON surface uses.
func appendValue(b array.Builder, dataType arrow.DataType, value ingest.Value) {
	if value.IsAbsent() {
		b.AppendNull()
		return
	}

	switch dataType.ID() {
	case arrow.STRING:
		if sb, ok := b.(*array.StringBuilder); ok {
			sb.Append(value.String())
		}
	case arrow.FLOAT64:
		if fb, ok := b.(*array.Float64Builder); ok {
			n := value.Number()
			if math.IsNaN(n) {
				fb.AppendNull()
			} else {
				fb.Append(n)
			}
		}
	case arrow.LIST:
		if lb, ok := b.(*array.ListBuilder); ok {
			vb := lb.ValueBuilder().(*array.StringBuilder)
			lb.Append(true)
			for _, item := range value.List() {
				vb.Append(item)
			}
		}
	default:
		b.AppendNull()
	}
}
