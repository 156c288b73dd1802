package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"tuxboard/internal/aggregate"
	"tuxboard/internal/display"
	"tuxboard/internal/export"
	"tuxboard/internal/listing"
	"tuxboard/internal/plan"
	"tuxboard/internal/report"
	"tuxboard/internal/table"
)

// selectionParams maps query parameter names to filter chain columns.
var selectionParams = []struct {
	Param string
	Col   table.Column
}{
	{"build", table.ColBuild},
	{"test", table.ColTest},
	{"job", table.ColJob},
	{"arch", table.ColArch},
	{"device", table.ColDevice},
}

func columnTitle(key string) string { return display.ColumnTitle(key) }

// parseSelection reads the repeated filter parameters from a request.
func parseSelection(q url.Values) table.Selection {
	sel := table.Selection{}
	for _, p := range selectionParams {
		if values := q[p.Param]; len(values) > 0 {
			sel[p.Col] = values
		}
	}
	return sel
}

// selectionQuery re-encodes a selection (plus the plan choice) so the
// download links reproduce the current view.
func selectionQuery(planFile string, sel table.Selection) template.URL {
	q := url.Values{}
	if planFile != "" {
		q.Set("plan", planFile)
	}
	for _, p := range selectionParams {
		for _, v := range sel.Values(p.Col) {
			q.Add(p.Param, v)
		}
	}
	return template.URL(q.Encode())
}

// planOption is one entry of the plan file dropdown.
type planOption struct {
	File     string
	Selected bool
}

// control is one multi-select with its cascaded candidates.
type control struct {
	Param    string
	Title    string
	Options  []string
	Selected []string
}

type dashboardView struct {
	Title         string
	Error         string
	Plans         []planOption
	PlanFile      string
	Controls      []control
	RowCount      int
	ChartJSON     template.JS
	Heatmap       report.Heatmap
	ColumnTitles  []string
	TableRows     [][]string
	DownloadQuery template.URL
}

// resolvePlan picks the plan URL for a request: the "plan" parameter
// if it names a listed file, else the first listed plan.
func resolvePlan(urls []string, requested string) (string, string) {
	if len(urls) == 0 {
		return "", ""
	}
	for _, u := range urls {
		if listing.FileName(u) == requested {
			return u, requested
		}
	}
	return urls[0], listing.FileName(urls[0])
}

// filteredView loads the selected plan and applies the selection. Any
// fetch or parse failure comes back as a message; the caller renders it
// as a banner over an empty table.
func (s *Server) filteredView(r *http.Request) (table.Table, table.Selection, []string, string, string) {
	ctx := r.Context()
	q := r.URL.Query()
	sel := parseSelection(q)

	urls, err := s.client.Index(ctx)
	if err != nil {
		s.logger.Error("fetch index", "error", err)
		return table.New(nil), sel, nil, "", fmt.Sprintf("Error fetching plan files: %v", err)
	}
	if len(urls) == 0 {
		return table.New(nil), sel, nil, "", "No plan files found at the configured URL"
	}

	var files []string
	for _, u := range urls {
		files = append(files, listing.FileName(u))
	}

	planURL, planFile := resolvePlan(urls, q.Get("plan"))
	loaded, err := s.client.Load(ctx, planURL)
	if err != nil {
		s.logger.Error("load plan", "url", planURL, "error", err)
		return table.New(nil), sel, files, planFile, fmt.Sprintf("Error loading plan file: %v", err)
	}

	base := table.New(loaded.Rows)
	return base, sel, files, planFile, ""
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	base, sel, files, planFile, errMsg := s.filteredView(r)

	cascade := table.NewCascade(base, sel)
	filtered := cascade.Apply()

	view := dashboardView{
		Title:         Title,
		Error:         errMsg,
		PlanFile:      planFile,
		RowCount:      filtered.Len(),
		DownloadQuery: selectionQuery(planFile, sel),
	}
	for _, f := range files {
		view.Plans = append(view.Plans, planOption{File: f, Selected: f == planFile})
	}
	for _, p := range selectionParams {
		view.Controls = append(view.Controls, control{
			Param:    p.Param,
			Title:    display.ColumnTitle(string(p.Col)),
			Options:  cascade.Candidates(p.Col),
			Selected: sel.Values(p.Col),
		})
	}

	data := report.Build(filtered, Title, sel)
	chartJSON, err := report.ChartJSON(data)
	if err != nil {
		s.logger.Error("chart data", "error", err)
		if view.Error == "" {
			view.Error = "Error preparing chart data"
		}
	}
	view.ChartJSON = chartJSON
	view.Heatmap = data.Heatmap

	for _, col := range table.Columns {
		view.ColumnTitles = append(view.ColumnTitles, display.ColumnTitle(string(col)))
	}
	for _, row := range filtered.Rows() {
		cells := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cells[i] = table.Value(row, col)
		}
		view.TableRows = append(view.TableRows, cells)
	}

	s.render(w, "dashboard.html.tmpl", view)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.client.Invalidate()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- analysis pages ---

// fileSeries is the per-file chart and detail rows shared by the device
// and test analysis pages.
type fileSeries struct {
	Title     string
	Error     string
	Heading   string
	ChartJSON template.JS
	Details   []fileDetail
	Summary   aggregate.Summary
	Query     string
}

type fileDetail struct {
	File   string
	Count  int
	Values string
}

// loadAll merges every listed plan into one table. Failures degrade to
// an error banner, never a failed page.
func (s *Server) loadAll(r *http.Request) (table.Table, string) {
	loaded, err := s.client.All(r.Context())
	if err != nil {
		s.logger.Error("fetch all plans", "error", err)
		return table.New(nil), fmt.Sprintf("Error fetching plan files: %v", err)
	}
	if len(loaded) == 0 {
		return table.New(nil), "No plan files could be loaded"
	}
	merged := table.New(nil)
	for _, l := range loaded {
		merged = merged.Concat(table.New(l.Rows))
	}
	return merged, ""
}

// seriesJSON marshals a per-file count series for the line chart.
func seriesJSON(counts []aggregate.Count, label string) template.JS {
	payload := struct {
		Labels []string `json:"labels"`
		Counts []int    `json:"counts"`
		Label  string   `json:"label"`
	}{Label: label}
	for _, c := range counts {
		payload.Labels = append(payload.Labels, c.Value)
		payload.Counts = append(payload.Counts, c.Count)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "null"
	}
	return template.JS(b)
}

func (s *Server) handleDeviceAnalysis(w http.ResponseWriter, r *http.Request) {
	merged, errMsg := s.loadAll(r)

	counts := aggregate.DistinctPerGroup(merged, table.ColFile, table.ColDevice)
	values := aggregate.DistinctValuesPerGroup(merged, table.ColFile, table.ColDevice)

	view := fileSeries{
		Title:     "Device Analysis",
		Error:     errMsg,
		Heading:   "Number of Devices per File",
		ChartJSON: seriesJSON(counts, "Devices"),
		Summary:   aggregate.Summarize(counts),
	}
	for _, c := range counts {
		view.Details = append(view.Details, fileDetail{
			File:   c.Value,
			Count:  c.Count,
			Values: strings.Join(values[c.Value], ", "),
		})
	}
	s.render(w, "analysis.html.tmpl", view)
}

func (s *Server) handleTestAnalysis(w http.ResponseWriter, r *http.Request) {
	merged, errMsg := s.loadAll(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	counts := aggregate.DistinctPerGroup(merged, table.ColFile, table.ColTest)
	values := aggregate.DistinctValuesPerGroup(merged, table.ColFile, table.ColTest)

	view := fileSeries{
		Title:     "Test Count Analysis",
		Error:     errMsg,
		Heading:   "Number of Unique Tests per File",
		ChartJSON: seriesJSON(counts, "Unique Tests"),
		Summary:   aggregate.Summarize(counts),
		Query:     query,
	}
	for _, c := range counts {
		joined := strings.Join(values[c.Value], ", ")
		if query != "" && !containsFold(joined, query) && !containsFold(c.Value, query) {
			continue
		}
		view.Details = append(view.Details, fileDetail{
			File:   c.Value,
			Count:  c.Count,
			Values: joined,
		})
	}
	s.render(w, "analysis.html.tmpl", view)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// crossView is the device/test cross analysis page model.
type crossView struct {
	Title       string
	Error       string
	Devices     []string
	Tests       []string
	SelDevices  []string
	SelTests    []string
	DeviceCount int
	TestCount   int
	ByDevice    []crossGroup
	ByTest      []crossGroup
}

type crossGroup struct {
	Name    string
	Entries []crossEntry
}

type crossEntry struct {
	Value string
	Files string
}

func (s *Server) handleCrossAnalysis(w http.ResponseWriter, r *http.Request) {
	merged, errMsg := s.loadAll(r)
	q := r.URL.Query()

	// Rows without a real device carry no device/test relationship.
	var withDevice []plan.Row
	for _, row := range merged.Rows() {
		if row.Device != plan.UnknownValue {
			withDevice = append(withDevice, row)
		}
	}
	known := table.New(withDevice)

	view := crossView{
		Title:      "Device and Test Analysis",
		Error:      errMsg,
		Devices:    known.Distinct(table.ColDevice),
		Tests:      known.Distinct(table.ColTest),
		SelDevices: q["device"],
		SelTests:   q["test"],
	}

	filtered := known.
		Filter(table.ColDevice, view.SelDevices).
		Filter(table.ColTest, view.SelTests)
	view.DeviceCount = filtered.DistinctCount(table.ColDevice)
	view.TestCount = filtered.DistinctCount(table.ColTest)

	pairs := aggregate.Pairs(filtered, table.ColDevice, table.ColTest)
	view.ByDevice = groupPairs(pairs, func(p aggregate.Pair) (string, string) { return p.A, p.B })

	inverted := aggregate.Pairs(filtered, table.ColTest, table.ColDevice)
	view.ByTest = groupPairs(inverted, func(p aggregate.Pair) (string, string) { return p.A, p.B })

	s.render(w, "crossref.html.tmpl", view)
}

func groupPairs(pairs []aggregate.Pair, split func(aggregate.Pair) (string, string)) []crossGroup {
	var groups []crossGroup
	for _, p := range pairs {
		key, value := split(p)
		if len(groups) == 0 || groups[len(groups)-1].Name != key {
			groups = append(groups, crossGroup{Name: key})
		}
		groups[len(groups)-1].Entries = append(groups[len(groups)-1].Entries, crossEntry{
			Value: value,
			Files: strings.Join(p.Files, ", "),
		})
	}
	return groups
}

// --- downloads ---

// filteredForDownload recomputes the filtered table for a download
// request from its query parameters.
func (s *Server) filteredForDownload(r *http.Request) (table.Table, table.Selection, error) {
	base, sel, _, _, errMsg := s.filteredView(r)
	if errMsg != "" {
		return table.New(nil), sel, fmt.Errorf("%s", errMsg)
	}
	return table.NewCascade(base, sel).Apply(), sel, nil
}

func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	filtered, sel, err := s.filteredForDownload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	name := export.Filename("filtered_data", "csv", sel)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := export.CSV(w, filtered); err != nil {
		s.logger.Error("csv export", "error", err)
	}
}

func (s *Server) handleDownloadExcel(w http.ResponseWriter, r *http.Request) {
	filtered, sel, err := s.filteredForDownload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	name := export.Filename("filtered_data", "xlsx", sel)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := export.Excel(w, filtered); err != nil {
		s.logger.Error("excel export", "error", err)
	}
}

func (s *Server) handleDownloadHTML(w http.ResponseWriter, r *http.Request) {
	filtered, sel, err := s.filteredForDownload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	name := export.Filename("report", "html", sel)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := report.HTML(w, report.Build(filtered, Title, sel)); err != nil {
		s.logger.Error("html report", "error", err)
	}
}

func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	filtered, sel, err := s.filteredForDownload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	pdf, err := report.PDF(r.Context(), report.Build(filtered, Title, sel))
	if err != nil {
		s.logger.Error("pdf report", "error", err)
		http.Error(w, "PDF rendering failed; is Chrome installed?", http.StatusInternalServerError)
		return
	}
	name := export.Filename("report", "pdf", sel)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(pdf)
}
