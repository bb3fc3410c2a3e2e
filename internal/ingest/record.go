package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the shapes a coerced field value can take.
type Kind int

const (
	// KindAbsent is the zero Value: the field carries no data. Absent
	// values are dropped when a record is serialized.
	KindAbsent Kind = iota
	KindText
	KindNumber
	KindList
)

// Value is one coerced field of a workspace record: free text, a number, or
// an ordered list of strings. The zero Value is absent.
type Value struct {
	kind   Kind
	text   string
	number float64
	list   []string
}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, number: f}
}

func List(items []string) Value {
	return Value{kind: KindList, list: items}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Text returns the textual content of a text value, and "" for every other
// kind.
func (v Value) Text() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

// Number returns the numeric content of a number value, and NaN for every
// other kind.
func (v Value) Number() float64 {
	if v.kind != KindNumber {
		return math.NaN()
	}
	return v.number
}

// List returns the items of a list value, and nil for every other kind.
func (v Value) List() []string {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// String renders the value for display and ordering.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		if math.IsNaN(v.number) {
			return "NaN"
		}
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// MarshalJSON renders the value as its natural JSON type. A NaN number, the
// documented outcome of coercing non-numeric content, serializes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.number)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// Record is one normalized workspace keyed by canonical field name. Records
// are built once by the row transformer and never mutated afterwards.
type Record map[string]Value

// MarshalJSON drops absent fields, so a workspace with no study id simply
// has no studyId key in the dashboard payload.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := make(map[string]Value, len(r))
	for name, value := range r {
		if value.IsAbsent() {
			continue
		}
		fields[name] = value
	}
	return json.Marshal(fields)
}
