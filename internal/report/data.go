// Package report renders the current chart set and filtered table as a
// self-contained HTML document, and optionally prints that document to
// PDF through headless Chrome.
package report

import (
	"time"

	"tuxboard/internal/aggregate"
	"tuxboard/internal/display"
	"tuxboard/internal/table"
)

// ScatterPoint is one build/test combination for the scatter chart,
// grouped by architecture for coloring.
type ScatterPoint struct {
	Build string `json:"x"`
	Test  string `json:"y"`
	Job   string `json:"job"`
}

// ScatterSeries is the scatter points of one architecture.
type ScatterSeries struct {
	Arch   string         `json:"arch"`
	Points []ScatterPoint `json:"points"`
}

// Heatmap is the pivot flattened for templating: one cell per
// (row, col) including zeros, with a 0..1 intensity for shading.
type Heatmap struct {
	RowLabels []string
	ColLabels []string
	Cells     [][]HeatCell // indexed [row][col]
}

// HeatCell is one heatmap cell.
type HeatCell struct {
	Count     int
	Intensity float64
}

// Data is everything the report template needs.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Filters     []FilterSummary
	RowCount    int

	ArchCounts      []aggregate.Count // pie
	ToolchainCounts []aggregate.Count // bar, descending
	TestsPerJob     []aggregate.Count // line
	Scatter         []ScatterSeries
	Heatmap         Heatmap

	Table table.Table
}

// FilterSummary is one active filter for the report header.
type FilterSummary struct {
	Column string
	Values []string
}

// Build computes every chart aggregate for the filtered table.
func Build(t table.Table, title string, sel table.Selection) Data {
	d := Data{
		Title:           title,
		GeneratedAt:     time.Now().UTC(),
		RowCount:        t.Len(),
		ArchCounts:      aggregate.CountBy(t, table.ColArch),
		ToolchainCounts: aggregate.CountByDesc(t, table.ColToolchain),
		TestsPerJob:     aggregate.CountBy(t, table.ColJob),
		Scatter:         scatterSeries(t),
		Heatmap:         heatmap(aggregate.JobArchByToolchain(t)),
		Table:           t,
	}
	for _, col := range table.FilterChain {
		if values := sel.Values(col); len(values) > 0 {
			d.Filters = append(d.Filters, FilterSummary{
				Column: display.ColumnTitle(string(col)),
				Values: values,
			})
		}
	}
	return d
}

func scatterSeries(t table.Table) []ScatterSeries {
	byArch := make(map[string][]ScatterPoint)
	for _, r := range t.Rows() {
		byArch[r.TargetArch] = append(byArch[r.TargetArch], ScatterPoint{
			Build: r.BuildName,
			Test:  r.TestName,
			Job:   r.JobName,
		})
	}
	var series []ScatterSeries
	for _, arch := range t.Distinct(table.ColArch) {
		series = append(series, ScatterSeries{Arch: arch, Points: byArch[arch]})
	}
	return series
}

func heatmap(p *aggregate.Pivot) Heatmap {
	h := Heatmap{RowLabels: p.RowLabels, ColLabels: p.ColLabels}
	max := p.Max()
	for _, rl := range p.RowLabels {
		cells := make([]HeatCell, 0, len(p.ColLabels))
		for _, cl := range p.ColLabels {
			n := p.Cell(rl, cl)
			cell := HeatCell{Count: n}
			if max > 0 {
				cell.Intensity = float64(n) / float64(max)
			}
			cells = append(cells, cell)
		}
		h.Cells = append(h.Cells, cells)
	}
	return h
}
