package cmd

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant-tools/internal/logging"
)

// rootCmd represents the base command for the assistant-tools application
var rootCmd = newRootCmd()

// version will be set by main
var version = "dev"

// getenv is swapped in tests.
var getenv = os.Getenv

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistant-tools",
		Short: "Fastmail calendar and contacts fetchers plus a headless browser MCP server",
		Long: `assistant-tools bundles the helpers a personal assistant needs:

  - calendar: fetch Fastmail calendar events over CalDAV as JSON
  - contacts: fetch Fastmail contacts over CardDAV as JSON
  - serve:    run an MCP server that renders web pages in headless Chrome
              and returns them as Markdown

Credentials are read from FASTMAIL_USERNAME and the per-protocol
FASTMAIL_CALDAV_PASSWORD / FASTMAIL_CARDDAV_PASSWORD variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(newCalendarCmd())
	cmd.AddCommand(newContactsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGenerateDocsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "assistant-tools version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds a stderr logger honouring --debug and installs it as the
// slog default.
func newLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	logger := logging.New(cmd.ErrOrStderr(), debug)
	slog.SetDefault(logger)
	return logger
}

// writeJSON prints v with two-space indentation and without HTML escaping.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
