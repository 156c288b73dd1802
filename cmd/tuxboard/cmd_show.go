package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tuxboard/internal/display"
	"tuxboard/internal/format"
	"tuxboard/internal/listing"
	"tuxboard/internal/table"
)

var showFlags struct {
	markdown bool
}

var showCmd = &cobra.Command{
	Use:   "show <plan-file>",
	Short: "Print the flattened rows of one plan file",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showFlags.markdown, "markdown", false, "Render as a Markdown table")
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	t, err := loadPlan(cmd, client, args[0])
	if err != nil {
		return err
	}

	mode := format.ASCII
	if showFlags.markdown {
		mode = format.Markdown
	}
	tb := format.NewTable(mode)

	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = display.ColumnTitle(string(col))
	}
	tb.Header(headers...)
	for _, r := range t.Rows() {
		vals := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			vals[i] = table.Value(r, col)
		}
		tb.Row(vals...)
	}
	tb.Footer(format.FmtCount(t.Len()) + " rows")
	fmt.Println(tb.String())
	return nil
}

// loadPlan resolves a plan file name against the index and flattens it.
func loadPlan(cmd *cobra.Command, client *listing.Client, planFile string) (table.Table, error) {
	ctx := cmd.Context()
	urls, err := client.Index(ctx)
	if err != nil {
		return table.Table{}, err
	}
	for _, u := range urls {
		if listing.FileName(u) == planFile {
			loaded, err := client.Load(ctx, u)
			if err != nil {
				return table.Table{}, err
			}
			return table.New(loaded.Rows), nil
		}
	}
	return table.Table{}, fmt.Errorf("plan %q not listed at %s", planFile, client.BaseURL())
}
