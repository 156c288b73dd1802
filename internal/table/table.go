// Package table provides the in-memory relational model over flattened
// plan rows: column-wise access, value filtering, and the cascading
// filter resolver behind the dashboard's multi-select controls.
package table

import (
	"sort"

	"tuxboard/internal/plan"
)

// Column identifies one field of a Mapping Row.
type Column string

const (
	ColJob       Column = "job_name"
	ColBuild     Column = "build_name"
	ColTest      Column = "test_name"
	ColDevice    Column = "device"
	ColArch      Column = "target_arch"
	ColToolchain Column = "toolchain"
	ColFile      Column = "source_file"
	ColLevel     Column = "level"
)

// Columns lists every column in export order.
var Columns = []Column{
	ColJob, ColBuild, ColTest, ColDevice, ColArch, ColToolchain, ColFile, ColLevel,
}

// Value extracts the named column from a row.
func Value(r plan.Row, col Column) string {
	switch col {
	case ColJob:
		return r.JobName
	case ColBuild:
		return r.BuildName
	case ColTest:
		return r.TestName
	case ColDevice:
		return r.Device
	case ColArch:
		return r.TargetArch
	case ColToolchain:
		return r.Toolchain
	case ColFile:
		return r.SourceFile
	case ColLevel:
		return string(r.Level)
	default:
		return ""
	}
}

// Table is an immutable ordered collection of Mapping Rows. Filtering
// returns a new Table; row order is always preserved from the source.
type Table struct {
	rows []plan.Row
}

// New wraps rows in a Table. The slice is not copied; callers must not
// mutate it afterwards.
func New(rows []plan.Row) Table {
	return Table{rows: rows}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.rows) == 0 }

// Rows returns the underlying rows in order.
func (t Table) Rows() []plan.Row { return t.rows }

// Concat appends another table's rows, preserving both orders.
func (t Table) Concat(other Table) Table {
	if other.Empty() {
		return t
	}
	merged := make([]plan.Row, 0, len(t.rows)+len(other.rows))
	merged = append(merged, t.rows...)
	merged = append(merged, other.rows...)
	return Table{rows: merged}
}

// Distinct returns the sorted unique values of a column.
func (t Table) Distinct(col Column) []string {
	seen := make(map[string]bool, len(t.rows))
	var values []string
	for _, r := range t.rows {
		v := Value(r, col)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}

// DistinctCount returns the number of unique values of a column.
func (t Table) DistinctCount(col Column) int {
	seen := make(map[string]bool, len(t.rows))
	for _, r := range t.rows {
		seen[Value(r, col)] = true
	}
	return len(seen)
}

// Filter keeps rows whose column value is in the given set. An empty
// set means no constraint and returns the table unchanged.
func (t Table) Filter(col Column, values []string) Table {
	if len(values) == 0 {
		return t
	}
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	var kept []plan.Row
	for _, r := range t.rows {
		if want[Value(r, col)] {
			kept = append(kept, r)
		}
	}
	return Table{rows: kept}
}
