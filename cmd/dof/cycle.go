package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle [DATE|ID]",
	Short: "Show publication cycle details",
	Long: `Show the publication cycle covering a date, or the details of a cycle
given by its 8-digit identifier. With no argument, shows the cycle
covering the present moment.

Examples:
  dof cycle                 the current cycle
  dof cycle 2025-12-25      the cycle covering a calendar date
  dof cycle 20251222        a cycle by identifier`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		cycle, err := resolveCycleArg(arg)
		if err != nil {
			return err
		}
		printCycle(cycle)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

// resolveCycleArg interprets the positional argument. A YYYY-MM-DD date
// resolves to the cycle covering that date; an 8-digit identifier names a
// cycle directly, boundary or not; empty means now.
func resolveCycleArg(arg string) (domain.Cycle, error) {
	switch {
	case arg == "":
		return domain.CurrentCycle(), nil
	case strings.Contains(arg, "-"):
		t, err := time.Parse("2006-01-02", arg)
		if err != nil {
			return domain.Cycle{}, fmt.Errorf("%q is not a YYYY-MM-DD date or an 8-digit cycle id", arg)
		}
		return domain.CycleContaining(t.UTC()), nil
	default:
		return domain.ParseCycleID(arg)
	}
}

func printCycle(cycle domain.Cycle) {
	fmt.Printf("cycle:     %s\n", cycle.ID())
	fmt.Printf("effective: %s\n", cycle.Time().Format("2006-01-02"))
	fmt.Printf("cutoff:    %s\n", cycle.CutoffDate().Format("2006-01-02"))
	fmt.Printf("boundary:  %t\n", cycle.IsBoundary())
	fmt.Printf("previous:  %s\n", shiftedID(cycle.Previous()))
	fmt.Printf("next:      %s\n", shiftedID(cycle.Next()))
}

func shiftedID(cycle domain.Cycle, ok bool) string {
	if !ok {
		return "-"
	}
	return cycle.ID()
}
