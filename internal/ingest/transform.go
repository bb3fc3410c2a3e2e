package ingest

import (
	"context"
	"math"
	"strings"

	"github.com/KatherineCox/anvil-portal/internal/tsv"
)

// lookups are the three per-run associations a row transform joins against.
type lookups struct {
	studies Lookup
	samples Lookup
	sizes   Lookup
}

type resolveFunc func(ctx context.Context, studyID string) (string, error)

// transformRow produces one workspace record from a content row of the main
// export. Columns whose header has a canonical mapping are coerced into a
// partial record; everything else is discarded. The derived fields are built
// separately and merged after the partial record, so they win key
// collisions. Rows without a project id yield a nil record.
func transformRow(ctx context.Context, header, row []string, lk lookups, resolve resolveFunc) (Record, error) {
	partial := make(Record, len(header))
	for i, label := range header {
		field, ok := CanonicalField(label)
		if !ok {
			continue
		}
		raw, ok := tsv.Field(row, i)
		if !ok {
			continue
		}
		partial[field] = Coerce(field, raw)
	}

	projectID := partial[FieldProjectID].Text()
	if projectID == "" {
		return nil, nil
	}

	derived := Record{
		FieldAccess:     Text(accessTier(projectID)),
		FieldConsortium: derivedConsortium(projectID),
		FieldSamples:    Number(resolveCount(lk.samples, projectID)),
		FieldSize:       Number(resolveCount(lk.sizes, projectID)),
		FieldStudyID:    lk.studies[projectID],
	}

	if studyID := derived[FieldStudyID].Text(); studyID != "" {
		accession, err := resolve(ctx, studyID)
		if err != nil {
			return nil, err
		}
		if accession != "" {
			derived[FieldStudyAccession] = Text(accession)
		}
	}

	merged := make(Record, len(partial)+len(derived))
	for field, value := range partial {
		merged[field] = value
	}
	for field, value := range derived {
		merged[field] = value
	}

	return merged, nil
}

// derivedConsortium extracts the consortium code from the middle segment of
// a project id such as AN_CCDG_EXAMPLE and resolves its display name. Ids
// without a middle segment carry no consortium.
func derivedConsortium(projectID string) Value {
	parts := strings.Split(projectID, "_")
	if len(parts) < 2 {
		return Value{}
	}
	return Coerce(FieldConsortium, parts[1])
}

// resolveCount reads a numeric lookup for a project id. Ids absent from the
// lookup, unparseable values, and negative values all resolve to 0; resolved
// numeric fields are never negative and never NaN.
func resolveCount(lookup Lookup, projectID string) float64 {
	value, ok := lookup[projectID]
	if !ok || value.Kind() != KindNumber {
		return 0
	}
	n := value.Number()
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	return n
}
