package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tuxboard/internal/server"
)

var serveFlags struct {
	listen string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser dashboard",
	Long: `Starts the HTTP dashboard: the filter/chart page, the per-file device
and test analysis pages, and the CSV/spreadsheet/report downloads.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", ":8080", "Address to listen on")
}

func runServe(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	srv, err := server.New(client)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, serveFlags.listen)
}
