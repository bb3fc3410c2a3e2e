// Package tsv models the tab-separated export files produced by the data
// coordination platform.
package tsv

import "strings"

// lineBreak is the terminator the exports are generated with. It is a fixed
// property of the upstream export job, not auto-detected.
const lineBreak = "\r\n"

// SplitLines splits raw export content into logical lines. Content without
// CRLF terminators is a single logical line. Blank lines are dropped.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(content, lineBreak) {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// Table is one parsed export: a header row of column labels and the content
// rows positionally aligned to it.
type Table struct {
	Header []string
	Rows   [][]string
}

// Parse builds a Table from logical lines. The first line is the header. Rows
// are split on tab and may be shorter or longer than the header; no width
// validation is applied.
func Parse(lines []string) Table {
	if len(lines) == 0 {
		return Table{}
	}

	table := Table{
		Header: strings.Split(lines[0], "\t"),
	}
	for _, line := range lines[1:] {
		table.Rows = append(table.Rows, strings.Split(line, "\t"))
	}

	return table
}

// Column returns the position of the given header label, or -1 when the
// table has no such column.
func (t Table) Column(label string) int {
	for i, h := range t.Header {
		if h == label {
			return i
		}
	}
	return -1
}

// Field reads the value at the given position of a row. Rows shorter than
// the header are legal; missing positions report ok=false.
func Field(row []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}
