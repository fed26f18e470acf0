package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

var (
	fetchCycleID string
	fetchDate    string
	fetchDir     string
	fetchKeepZip bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and extract a DOF publication",
	Long: `Download the ZIP archive for a publication cycle from the FAA site and
extract the data file next to it. Defaults to the current cycle; a file
already on disk is reused without a network round trip.

The download URL and target directory come from DOF_BASE_URL and
DATA_DIR; --dir overrides the directory. The extracted file's path is
printed to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if fetchCycleID != "" && fetchDate != "" {
			return errors.New("--cycle and --date are mutually exclusive")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if fetchDir != "" {
			cfg.DataDir = fetchDir
		}

		cycle, err := resolveFetchCycle()
		if err != nil {
			return err
		}

		logger := newCommandLogger()
		client := faa.NewClient(cfg, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path, cached, err := runFetch(ctx, client, cycle, logger)
		if err != nil {
			return err
		}
		if cached {
			logger.Info("cycle already on disk", "cycle", cycle.ID(), "path", path)
		} else if !fetchKeepZip {
			archive := filepath.Join(cfg.DataDir, faa.ArchiveName(cycle))
			if err := os.Remove(archive); err != nil {
				logger.Warn("could not remove archive", "path", archive, "error", err)
			}
		}

		fmt.Println(path)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCycleID, "cycle", "", "cycle identifier (YYYYMMDD); default is the current cycle")
	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "resolve the cycle covering this date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "download directory (overrides DATA_DIR)")
	fetchCmd.Flags().BoolVar(&fetchKeepZip, "keep-zip", false, "keep the downloaded archive after extraction")
	rootCmd.AddCommand(fetchCmd)
}

func resolveFetchCycle() (domain.Cycle, error) {
	switch {
	case fetchCycleID != "":
		return domain.ParseCycleID(fetchCycleID)
	case fetchDate != "":
		t, err := time.Parse("2006-01-02", fetchDate)
		if err != nil {
			return domain.Cycle{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", fetchDate)
		}
		return domain.CycleContaining(t.UTC()), nil
	default:
		return domain.CurrentCycle(), nil
	}
}
