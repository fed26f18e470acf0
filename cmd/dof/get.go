package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

var (
	getDB   string
	getJSON bool
)

var getCmd = &cobra.Command{
	Use:   "get <identifier>",
	Short: "Look up one obstacle in a SQLite index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newCommandLogger()

		store, err := sqlite.Open(getDB, logger)
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("sqlite close error", "error", err)
			}
		}()

		obstacle, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("look up %s: %w", args[0], err)
		}
		if obstacle == nil {
			return fmt.Errorf("obstacle %s not found", args[0])
		}

		if getJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(obstacle)
		}
		printObstacle(obstacle)
		return nil
	},
}

func init() {
	getCmd.Flags().StringVar(&getDB, "db", "", "path to the SQLite index")
	getCmd.Flags().BoolVar(&getJSON, "json", false, "print the record as JSON")
	_ = getCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(getCmd)
}

func printObstacle(o *domain.Obstacle) {
	state := "-"
	if o.State != nil {
		state = *o.State
	}
	fmt.Printf("identifier:   %s\n", o.Identifier)
	fmt.Printf("type:         %s (x%d)\n", o.Type, o.Quantity)
	fmt.Printf("location:     %s, %s %s\n", o.City, state, o.Country)
	fmt.Printf("coordinates:  %.6f, %.6f\n", o.Latitude, o.Longitude)
	fmt.Printf("height:       %d ft AGL, %d ft MSL\n", o.HeightAGL, o.HeightMSL)
	fmt.Printf("verification: %s\n", o.Verification)
	fmt.Printf("lighting:     %s\n", o.Lighting)
	fmt.Printf("marking:      %s\n", o.Marking)
	fmt.Printf("accuracy:     %s\n", o.Accuracy)
	fmt.Printf("study:        %s\n", o.StudyNumber)
	fmt.Printf("action:       %s\n", o.Action)
	fmt.Printf("last updated: %s\n", formatJulian(o.LastUpdated))
}

func formatJulian(j domain.JulianDate) string {
	date, err := j.Date()
	if err != nil {
		return j.String()
	}
	return date.Format("2006-01-02")
}
