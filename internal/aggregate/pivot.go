package aggregate

import (
	"sort"

	"tuxboard/internal/table"
)

// Pivot is a cross-tabulation: row labels x column labels with a count
// in each cell. Absent combinations are zero. Labels are sorted, so
// identical inputs always pivot identically.
type Pivot struct {
	RowLabels []string
	ColLabels []string
	cells     map[[2]string]int
}

// Cell returns the count for (rowLabel, colLabel), zero when absent.
func (p *Pivot) Cell(rowLabel, colLabel string) int {
	return p.cells[[2]string{rowLabel, colLabel}]
}

// Max returns the largest cell count (zero for an empty pivot).
func (p *Pivot) Max() int {
	max := 0
	for _, n := range p.cells {
		if n > max {
			max = n
		}
	}
	return max
}

// Total returns the sum of all cells. For a pivot built from a table
// this equals the table's row count.
func (p *Pivot) Total() int {
	sum := 0
	for _, n := range p.cells {
		sum += n
	}
	return sum
}

// CrossTab cross-tabulates the table: rows keyed by rowKey(r), columns
// by colCol's value. The heatmap uses rowKey = "job (arch)".
func CrossTab(t table.Table, rowKey func(r int) string, colCol table.Column) *Pivot {
	p := &Pivot{cells: make(map[[2]string]int)}
	rowSeen := make(map[string]bool)
	colSeen := make(map[string]bool)
	rows := t.Rows()
	for i := range rows {
		rl := rowKey(i)
		cl := table.Value(rows[i], colCol)
		if !rowSeen[rl] {
			rowSeen[rl] = true
			p.RowLabels = append(p.RowLabels, rl)
		}
		if !colSeen[cl] {
			colSeen[cl] = true
			p.ColLabels = append(p.ColLabels, cl)
		}
		p.cells[[2]string{rl, cl}]++
	}
	sort.Strings(p.RowLabels)
	sort.Strings(p.ColLabels)
	return p
}

// JobArchByToolchain builds the heatmap pivot: "job (arch)" rows against
// toolchain columns.
func JobArchByToolchain(t table.Table) *Pivot {
	rows := t.Rows()
	return CrossTab(t, func(i int) string {
		return rows[i].JobName + " (" + rows[i].TargetArch + ")"
	}, table.ColToolchain)
}

// DeviceByFile builds the device x source file cross-tabulation used by
// the cross-file analysis page.
func DeviceByFile(t table.Table) *Pivot {
	rows := t.Rows()
	return CrossTab(t, func(i int) string { return rows[i].Device }, table.ColFile)
}

// Pair is one deduplicated (A, B) combination with the source files it
// was seen in.
type Pair struct {
	A     string
	B     string
	Files []string
}

// Pairs returns the unique (aCol, bCol) combinations in the table with
// their sorted source files, ordered by (A, B). Drives the device->test
// and test->device reference tables.
func Pairs(t table.Table, aCol, bCol table.Column) []Pair {
	files := make(map[[2]string]map[string]bool)
	for _, r := range t.Rows() {
		key := [2]string{table.Value(r, aCol), table.Value(r, bCol)}
		if files[key] == nil {
			files[key] = make(map[string]bool)
		}
		files[key][r.SourceFile] = true
	}

	out := make([]Pair, 0, len(files))
	for key, fileSet := range files {
		p := Pair{A: key[0], B: key[1]}
		for f := range fileSet {
			p.Files = append(p.Files, f)
		}
		sort.Strings(p.Files)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
