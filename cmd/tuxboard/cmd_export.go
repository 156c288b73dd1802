package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tuxboard/internal/export"
	"tuxboard/internal/report"
	"tuxboard/internal/server"
	"tuxboard/internal/table"
)

var exportFlags struct {
	output  string
	builds  []string
	tests   []string
	jobs    []string
	archs   []string
	devices []string
}

var exportCmd = &cobra.Command{
	Use:   "export <plan-file>",
	Short: "Export the filtered table or report to a file",
	Long: `Exports the flattened, filtered rows of one plan file. The output
format follows the file extension: .csv, .xlsx, .html or .pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFlags.output, "output", "o", "", "Output path; default is a name derived from the filters")
	f.StringSliceVar(&exportFlags.builds, "build", nil, "Build names to keep")
	f.StringSliceVar(&exportFlags.tests, "test", nil, "Test names to keep")
	f.StringSliceVar(&exportFlags.jobs, "job", nil, "Job names to keep")
	f.StringSliceVar(&exportFlags.archs, "arch", nil, "Target architectures to keep")
	f.StringSliceVar(&exportFlags.devices, "device", nil, "Device names to keep")
}

func runExport(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	base, err := loadPlan(cmd, client, args[0])
	if err != nil {
		return err
	}

	sel := table.Selection{}
	for col, values := range map[table.Column][]string{
		table.ColBuild:  exportFlags.builds,
		table.ColTest:   exportFlags.tests,
		table.ColJob:    exportFlags.jobs,
		table.ColArch:   exportFlags.archs,
		table.ColDevice: exportFlags.devices,
	} {
		if len(values) > 0 {
			sel[col] = values
		}
	}
	filtered := table.NewCascade(base, sel).Apply()

	ext := "csv"
	if exportFlags.output != "" {
		ext = strings.TrimPrefix(filepath.Ext(exportFlags.output), ".")
	}
	out := exportFlags.output
	if out == "" {
		out = export.Filename("filtered_data", ext, sel)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext {
	case "csv":
		err = export.CSV(f, filtered)
	case "xlsx":
		err = export.Excel(f, filtered)
	case "html":
		err = report.HTML(f, report.Build(filtered, server.Title, sel))
	case "pdf":
		var pdf []byte
		pdf, err = report.PDF(cmd.Context(), report.Build(filtered, server.Title, sel))
		if err == nil {
			_, err = f.Write(pdf)
		}
	default:
		return fmt.Errorf("unsupported output extension %q (want csv, xlsx, html or pdf)", ext)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d rows to %s\n", filtered.Len(), out)
	return nil
}
