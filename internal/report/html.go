package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"tuxboard/internal/display"
	"tuxboard/internal/table"
)

//go:embed templates/report.html.tmpl
var reportTemplate string

// chartPayload is the JSON handed to the inline Chart.js bootstrap.
type chartPayload struct {
	ArchLabels      []string        `json:"archLabels"`
	ArchCounts      []int           `json:"archCounts"`
	ToolchainLabels []string        `json:"toolchainLabels"`
	ToolchainCounts []int           `json:"toolchainCounts"`
	JobLabels       []string        `json:"jobLabels"`
	JobCounts       []int           `json:"jobCounts"`
	BuildLabels     []string        `json:"buildLabels"`
	TestLabels      []string        `json:"testLabels"`
	Scatter         []ScatterSeries `json:"scatter"`
}

// templateData wraps Data with precomputed template fields.
type templateData struct {
	Data
	ChartJSON    template.JS
	ColumnTitles []string
	TableRows    [][]string
}

var funcs = template.FuncMap{
	"heatColor": HeatColor,
}

var tmpl = template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate))

// ChartJSON marshals the chart datasets for the inline Chart.js
// bootstrap. The dashboard server reuses it for its live pages.
func ChartJSON(d Data) (template.JS, error) {
	payload, err := json.Marshal(buildPayload(d))
	if err != nil {
		return "", fmt.Errorf("report: marshal chart data: %w", err)
	}
	return template.JS(payload), nil
}

// HTML writes the report as one self-contained document. Charts render
// client-side from embedded JSON; no server is needed to view it.
func HTML(w io.Writer, d Data) error {
	chartJSON, err := ChartJSON(d)
	if err != nil {
		return err
	}

	td := templateData{
		Data:      d,
		ChartJSON: chartJSON,
	}
	for _, col := range table.Columns {
		td.ColumnTitles = append(td.ColumnTitles, display.ColumnTitle(string(col)))
	}
	for _, r := range d.Table.Rows() {
		row := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			row[i] = table.Value(r, col)
		}
		td.TableRows = append(td.TableRows, row)
	}

	if err := tmpl.Execute(w, td); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

func buildPayload(d Data) chartPayload {
	p := chartPayload{Scatter: d.Scatter}
	for _, c := range d.ArchCounts {
		p.ArchLabels = append(p.ArchLabels, c.Value)
		p.ArchCounts = append(p.ArchCounts, c.Count)
	}
	for _, c := range d.ToolchainCounts {
		p.ToolchainLabels = append(p.ToolchainLabels, c.Value)
		p.ToolchainCounts = append(p.ToolchainCounts, c.Count)
	}
	for _, c := range d.TestsPerJob {
		p.JobLabels = append(p.JobLabels, c.Value)
		p.JobCounts = append(p.JobCounts, c.Count)
	}
	p.BuildLabels = d.Table.Distinct(table.ColBuild)
	p.TestLabels = d.Table.Distinct(table.ColTest)
	return p
}

// HeatColor shades a cell from white (zero) to red (max), matching the
// report heatmap's white-to-red scale. Shared with the dashboard pages.
func HeatColor(intensity float64) template.CSS {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	// Fade green and blue channels out as intensity rises.
	gb := int(255 * (1 - intensity))
	return template.CSS(fmt.Sprintf("background-color: rgb(255, %d, %d)", gb, gb))
}
