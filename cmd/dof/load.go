package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
)

var (
	loadDB     string
	loadStates bool
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Parse a DOF file into a SQLite index",
	Long: `Parse a Digital Obstacle File and replace the contents of a SQLite
index with its records. The whole publication is swapped in one
transaction; readers never see a half-loaded cycle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newCommandLogger()
		metrics := observability.NewMetrics()

		parser := pipeline.New(logger, metrics)
		container, err := parser.ParseFile(cmd.Context(), args[0], 0)
		if err != nil {
			return err
		}

		store, err := sqlite.Open(loadDB, logger)
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("sqlite close error", "error", err)
			}
		}()

		if err := store.ReplaceContainer(cmd.Context(), container); err != nil {
			return fmt.Errorf("load cycle %s: %w", container.Cycle().ID(), err)
		}

		fmt.Printf("loaded %d obstacles for cycle %s into %s\n",
			container.Len(), container.Cycle().ID(), loadDB)

		if loadStates {
			counts, err := store.CountByState(cmd.Context())
			if err != nil {
				return fmt.Errorf("count by state: %w", err)
			}
			fmt.Print(formatStateCounts(counts))
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadDB, "db", "", "path to the SQLite index")
	loadCmd.Flags().BoolVar(&loadStates, "states", false, "print obstacle counts per state")
	_ = loadCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(loadCmd)
}

// formatStateCounts renders per-state counts in state order, one line per
// state. Records with no state code (territories, offshore) group under
// "--".
func formatStateCounts(counts map[string]int) string {
	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, state)
	}
	sort.Strings(states)

	var b strings.Builder
	for _, state := range states {
		label := state
		if label == "" {
			label = "--"
		}
		fmt.Fprintf(&b, "  %s %6d\n", label, counts[state])
	}
	return b.String()
}
