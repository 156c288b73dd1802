// tuxboard serves a browser dashboard over published Linux kernel
// build/test plan files, and exposes the same analytics as CLI
// commands and MCP tools.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tuxboard/internal/listing"
	"tuxboard/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// DefaultBaseURL is the public plan directory the dashboard was built
// for; override with --base-url.
const DefaultBaseURL = "https://storage.tuxsuite.com/public/linaro/lkft/plans/"

var rootFlags struct {
	baseURL   string
	logLevel  string
	logFormat string
	timeout   time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "tuxboard",
	Short: "Analytics dashboard for Linux kernel build/test plan files",
	Long: "Tuxboard fetches YAML plan files from a published directory listing,\n" +
		"flattens them into a relational table and serves filterable charts,\n" +
		"exports and analysis pages.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(*cobra.Command, []string) {
		logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.baseURL, "base-url", DefaultBaseURL, "URL of the plan file directory listing")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")
	pf.DurationVar(&rootFlags.timeout, "timeout", 30*time.Second, "HTTP timeout for plan fetches")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.Version = version
}

// newClient builds the listing client from the persistent flags.
func newClient() (*listing.Client, error) {
	return listing.New(rootFlags.baseURL, listing.WithTimeout(rootFlags.timeout))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
