package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
)

var (
	parseJSON       bool
	parsePrintLines bool
	parseQuiet      bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a DOF file and print a summary",
	Long: `Parse a Digital Obstacle File and print the publication cycle, the
obstacle count, and per-kind counts of skipped lines. With --json the
full record set is written to stdout instead and the summary moves to
stderr.

Malformed lines are skipped, not fatal; only a missing currency date, an
empty record set, or a read failure aborts the parse.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newCommandLogger()
		metrics := observability.NewMetrics()

		badLines := make(map[string]int)
		onError := func(err error, lineNumber int) {
			badLines[pipeline.ErrorKind(err)]++
			if parsePrintLines {
				fmt.Fprintf(os.Stderr, "line %d: %v\n", lineNumber, err)
			}
		}

		parser := pipeline.New(logger, metrics, pipeline.WithErrorHandler(onError))
		container, err := parser.ParseFile(cmd.Context(), args[0], 0)
		if err != nil {
			return err
		}

		if parseJSON {
			if err := json.NewEncoder(os.Stdout).Encode(container); err != nil {
				return fmt.Errorf("encode output: %w", err)
			}
		}
		if !parseQuiet {
			out := io.Writer(os.Stdout)
			if parseJSON {
				out = os.Stderr
			}
			fmt.Fprintf(out, "cycle:     %s\n", container.Cycle().ID())
			fmt.Fprintf(out, "obstacles: %d\n", container.Len())
			fmt.Fprintf(out, "bad lines: %s\n", formatBadLines(badLines))
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "write all records to stdout as JSON")
	parseCmd.Flags().BoolVar(&parsePrintLines, "errors", false, "print each skipped line's error to stderr")
	parseCmd.Flags().BoolVarP(&parseQuiet, "quiet", "q", false, "suppress the summary")
	rootCmd.AddCommand(parseCmd)
}

func formatBadLines(badLines map[string]int) string {
	total := 0
	for _, n := range badLines {
		total += n
	}
	if total == 0 {
		return "0"
	}
	kinds := make([]string, 0, len(badLines))
	for kind := range badLines {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s: %d", kind, badLines[kind]))
	}
	return fmt.Sprintf("%d (%s)", total, strings.Join(parts, ", "))
}
