package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "dof",
	Short: "FAA Digital Obstacle File tooling",
	Long: `dof works with FAA Digital Obstacle File publications: parsing the
fixed-width record format, resolving the 56-day publication cycle, and
moving obstacle data between the FAA download site, a local SQLite
index, and Kafka.

Examples:
  dof cycle                         show the current publication cycle
  dof fetch                         download the current cycle's file
  dof parse DOF_251220.dat          parse and print a summary
  dof load DOF_251220.dat --db dof.db
  dof get 01-001307 --db dof.db --json
  dof publish DOF_251220.dat       parse and publish to Kafka
  dof serve                         run the continuous sync service`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newCommandLogger builds the logger shared by one-shot commands. Text
// output when stderr is a terminal, JSON when piped, so scripted runs stay
// machine-parseable. The serve command configures its logger from the
// environment instead.
func newCommandLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}
