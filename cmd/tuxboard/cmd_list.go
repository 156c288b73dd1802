package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tuxboard/internal/format"
	"tuxboard/internal/listing"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the published plan files",
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	urls, err := client.Index(cmd.Context())
	if err != nil {
		return err
	}

	tb := format.NewTable(format.ASCII)
	tb.Header("#", "File", "URL")
	tb.Columns(format.ColumnConfig{Number: 1, Align: format.AlignRight})
	for i, u := range urls {
		tb.Row(i+1, listing.FileName(u), u)
	}
	tb.Footer("", format.FmtCount(len(urls))+" files", "")
	fmt.Println(tb.String())
	return nil
}
