// Package sorting orders ingested workspace record sets for display.
package sorting

import (
	"math"
	"sort"
	"strings"

	"github.com/KatherineCox/anvil-portal/internal/ingest"
)

// Service sorts record sets by named fields.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Sort returns a new slice ordered by the grouping field, ties broken by the
// tie-break field. The sort is stable and the input is never mutated.
// Numbers compare numerically, everything else by display form; absent
// fields order before present ones.
func (s *Service) Sort(records []ingest.Record, groupField, tieBreakField string) []ingest.Record {
	sorted := make([]ingest.Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if c := compareValues(sorted[i][groupField], sorted[j][groupField]); c != 0 {
			return c < 0
		}
		return compareValues(sorted[i][tieBreakField], sorted[j][tieBreakField]) < 0
	})

	return sorted
}

func compareValues(a, b ingest.Value) int {
	if a.IsAbsent() || b.IsAbsent() {
		switch {
		case a.IsAbsent() && b.IsAbsent():
			return 0
		case a.IsAbsent():
			return -1
		default:
			return 1
		}
	}

	if a.Kind() == ingest.KindNumber && b.Kind() == ingest.KindNumber {
		return compareNumbers(a.Number(), b.Number())
	}

	return strings.Compare(a.String(), b.String())
}

// compareNumbers orders NaN before every number so unparseable values group
// together at the front rather than interleaving unpredictably.
func compareNumbers(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return -1
	case math.IsNaN(b):
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
