package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"tuxboard/internal/plan"
	"tuxboard/internal/table"
)

func fixtureTable() table.Table {
	return table.New([]plan.Row{
		{JobName: "next", BuildName: "gcc-arm64", TestName: "boot", Device: "rk3399", TargetArch: "arm64", Toolchain: "gcc", SourceFile: "a.yml", Level: plan.LevelBuild},
		{JobName: "stable", BuildName: "gcc-x86", TestName: "kunit", Device: "qemu-x86", TargetArch: "x86_64", Toolchain: "gcc", SourceFile: "b.yml", Level: plan.LevelJob},
	})
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, fixtureTable()); err != nil {
		t.Fatalf("CSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (header + 2 rows)", len(records))
	}

	wantHeader := []string{
		"Job Name", "Build Name", "Test Name", "Device",
		"Target Architecture", "Toolchain", "Configuration File", "Level",
	}
	if diff := cmp.Diff(wantHeader, records[0]); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
	if records[1][0] != "next" || records[1][2] != "boot" {
		t.Errorf("unexpected first row: %v", records[1])
	}
}

func TestCSV_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, table.New(nil)); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("empty table should still write the header, got %d records", len(records))
	}
}

func TestExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := Excel(&buf, fixtureTable()); err != nil {
		t.Fatalf("Excel: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d sheet rows, want 3", len(rows))
	}
	if rows[0][0] != "Job Name" {
		t.Errorf("header cell = %q", rows[0][0])
	}
	if rows[2][1] != "gcc-x86" {
		t.Errorf("data cell = %q", rows[2][1])
	}
}

func TestFilename(t *testing.T) {
	sel := table.Selection{
		table.ColBuild: {"gcc-arm64"},
		table.ColTest:  {"boot", "ltp"},
	}
	got := Filename("filtered_data", "csv", sel)
	want := "filtered_data_gcc-arm64_boot_ltp.csv"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestFilename_NoSelections(t *testing.T) {
	if got := Filename("report", "html", table.Selection{}); got != "report.html" {
		t.Errorf("Filename = %q, want report.html", got)
	}
}

func TestFilename_ChainOrderStable(t *testing.T) {
	sel := table.Selection{
		table.ColDevice: {"rk3399"},
		table.ColBuild:  {"b1"},
	}
	// Build precedes device in the chain regardless of map iteration.
	if got := Filename("x", "csv", sel); !strings.HasPrefix(got, "x_b1_") {
		t.Errorf("Filename = %q, want build part first", got)
	}
}
