// Package ingest turns the platform's TSV exports into normalized workspace
// records for the dashboard.
package ingest

import (
	"math"
	"strconv"
	"strings"
)

// The fixed export files one pipeline run reads. The workspaces export is
// the main input; the other three each feed one lookup.
const (
	FileWorkspaces     = "workspaces.tsv"
	FileProjectStudies = "project-studies.tsv"
	FileSampleCounts   = "sample-counts.tsv"
	FileFileSizes      = "file-sizes.tsv"
)

// Canonical field names of a workspace record.
const (
	FieldProjectID      = "projectId"
	FieldConsortium     = "consortium"
	FieldAccess         = "access"
	FieldDataTypes      = "dataTypes"
	FieldIndication     = "indication"
	FieldStudyDesign    = "studyDesign"
	FieldSamples        = "samples"
	FieldSize           = "size"
	FieldStudyID        = "studyId"
	FieldStudyAccession = "studyAccession"
)

// Access tiers derived from the public-workspace roster.
const (
	AccessPublic  = "Public"
	AccessPrivate = "Private"
)

// fieldNames maps the header labels used by the exports to canonical field
// names. Several external labels share one canonical field because the
// export files name the same column differently.
var fieldNames = map[string]string{
	"WORKSPACE":      FieldProjectID,
	"PROJECT_ID":     FieldProjectID,
	"CONSORTIUM":     FieldConsortium,
	"DATA_TYPE":      FieldDataTypes,
	"DATA_TYPES":     FieldDataTypes,
	"INDICATION":     FieldIndication,
	"DISEASE":        FieldIndication,
	"STUDY_DESIGN":   FieldStudyDesign,
	"NO_OF_SAMPLES":  FieldSamples,
	"SAMPLE_COUNT":   FieldSamples,
	"FILE_SIZE":      FieldSize,
	"DBGAP_STUDY_ID": FieldStudyID,
	"STUDY_ID":       FieldStudyID,
}

// listFields are split on comma into an ordered list, even when singular.
var listFields = map[string]bool{
	FieldDataTypes:   true,
	FieldIndication:  true,
	FieldStudyDesign: true,
}

// numberFields are parsed as numbers with thousands-separator commas
// stripped.
var numberFields = map[string]bool{
	FieldSamples: true,
	FieldSize:    true,
}

// consortiumDisplay maps upper-cased consortium codes to their dashboard
// display names. Codes with no entry display as the upper-cased code itself.
var consortiumDisplay = map[string]string{
	"GTEX":        "GTEx (v8)",
	"1000G":       "1000 Genomes",
	"EMERGE":      "eMERGE",
	"CONVERGENCE": "Convergence",
}

// publicWorkspaces is the roster of workspaces whose data is openly
// accessible. Everything else is controlled access.
var publicWorkspaces = map[string]bool{
	"AN_1000G_HIGH_COVERAGE": true,
	"AN_GTEX_V8_HG38":        true,
	"AN_EMERGE_COMMONS":      true,
}

// CanonicalField resolves an export header label to its canonical field
// name. Labels with no mapping are not part of a workspace record.
func CanonicalField(label string) (string, bool) {
	name, ok := fieldNames[label]
	return name, ok
}

// Coerce applies the per-field type rule to one raw text value: list fields
// split on comma, number fields parse with thousands separators stripped,
// the consortium field resolves to its display name, and everything else
// passes through as text.
func Coerce(field, raw string) Value {
	switch {
	case listFields[field]:
		return List(strings.Split(raw, ","))
	case numberFields[field]:
		return Number(parseNumber(raw))
	case field == FieldConsortium:
		return Text(displayConsortium(raw))
	default:
		return Text(raw)
	}
}

// parseNumber strips thousands-separator commas and parses the remainder.
// Non-numeric content yields NaN; that is accepted behavior, not validated
// away here.
func parseNumber(raw string) float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

func displayConsortium(raw string) string {
	code := strings.ToUpper(raw)
	if display, ok := consortiumDisplay[code]; ok {
		return display
	}
	return code
}

// accessTier classifies a workspace by the public roster.
func accessTier(projectID string) string {
	if publicWorkspaces[projectID] {
		return AccessPublic
	}
	return AccessPrivate
}
