package ingest

import (
	"go.uber.org/zap"

	"github.com/KatherineCox/anvil-portal/internal/tsv"
)

// Lookup maps a project id to one scalar read from a two-column export. A
// lookup is built once per pipeline run and read-only afterwards.
type Lookup map[string]Value

// BuildLookup folds a two-column export into a Lookup: one entry per content
// row, keyed by the value under keyLabel, mapping to the coerced value under
// valueLabel. Later rows overwrite earlier ones on key collision. Rows too
// short to carry the key are skipped; rows too short to carry the value
// store an absent value. Malformed rows never abort the build.
func BuildLookup(table tsv.Table, keyLabel, valueLabel string, logger *zap.Logger) Lookup {
	lookup := make(Lookup)

	keyIdx := table.Column(keyLabel)
	valueIdx := table.Column(valueLabel)
	if keyIdx < 0 || valueIdx < 0 {
		// An empty or absent file parses to a table without these
		// columns; downstream joins tolerate the empty lookup.
		return lookup
	}

	field, _ := CanonicalField(valueLabel)

	for i, row := range table.Rows {
		key, ok := tsv.Field(row, keyIdx)
		if !ok || key == "" {
			logger.Warn("Skipping lookup row without key",
				zap.String("column", keyLabel),
				zap.Int("row", i+1))
			continue
		}

		raw, ok := tsv.Field(row, valueIdx)
		if !ok {
			lookup[key] = Value{}
			continue
		}
		lookup[key] = Coerce(field, raw)
	}

	return lookup
}
