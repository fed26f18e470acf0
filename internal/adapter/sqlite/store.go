package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// Store keeps the most recently loaded container queryable on disk. Each
// load replaces the previous cycle's rows wholesale; the DOF is a full
// snapshot, not a delta feed.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes the obstacle index at the given path, creating the
// schema when absent.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	// WAL keeps readers unblocked while a replace runs.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Performance pragmas + schema in a single batch.
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS obstacles (
			identifier     TEXT PRIMARY KEY,
			verification   TEXT NOT NULL,
			country        TEXT NOT NULL,
			state          TEXT,
			city           TEXT NOT NULL,
			latitude       REAL NOT NULL,
			longitude      REAL NOT NULL,
			obstacle_type  TEXT NOT NULL,
			quantity       INTEGER NOT NULL,
			height_agl_ft  INTEGER NOT NULL,
			height_msl_ft  INTEGER NOT NULL,
			lighting       TEXT NOT NULL,
			accuracy       INTEGER NOT NULL,
			marking        TEXT NOT NULL,
			study_number   TEXT NOT NULL,
			action         TEXT NOT NULL,
			updated_year   INTEGER NOT NULL,
			updated_day    INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_obstacles_state ON obstacles(state);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setup database: %w", err)
	}

	if _, err := db.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		schemaVersion,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("update metadata: %w", err)
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ReplaceContainer swaps the indexed snapshot for the given container in
// one transaction. Readers see either the old cycle or the new one, never
// a mix.
func (s *Store) ReplaceContainer(ctx context.Context, container *domain.ObstacleContainer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM obstacles`); err != nil {
		return fmt.Errorf("clear previous cycle: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO obstacles (
			identifier, verification, country, state, city,
			latitude, longitude, obstacle_type, quantity,
			height_agl_ft, height_msl_ft, lighting, accuracy, marking,
			study_number, action, updated_year, updated_day
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range container.Obstacles() {
		var state any
		if o.State != nil {
			state = *o.State
		}
		_, err := stmt.ExecContext(ctx,
			o.Identifier, string(o.Verification), o.Country, state, o.City,
			o.Latitude, o.Longitude, o.Type, o.Quantity,
			o.HeightAGL, o.HeightMSL, string(o.Lighting), o.Accuracy, string(o.Marking),
			o.StudyNumber, string(o.Action), o.LastUpdated.Year, o.LastUpdated.Day,
		)
		if err != nil {
			return fmt.Errorf("insert obstacle %s: %w", o.Identifier, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO meta (key, value) VALUES ('cycle', ?);
	`, container.Cycle().ID()); err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO meta (key, value) VALUES ('loaded_at', ?);
	`, domain.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record load time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	s.logger.Info("index replaced",
		"cycle", container.Cycle().ID(),
		"obstacles", container.Len(),
		"path", s.path,
	)
	return nil
}

// Get retrieves an obstacle by identifier, nil when absent.
func (s *Store) Get(ctx context.Context, identifier string) (*domain.Obstacle, error) {
	var (
		o     domain.Obstacle
		state sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT identifier, verification, country, state, city,
		       latitude, longitude, obstacle_type, quantity,
		       height_agl_ft, height_msl_ft, lighting, accuracy, marking,
		       study_number, action, updated_year, updated_day
		FROM obstacles WHERE identifier = ?
	`, identifier).Scan(
		&o.Identifier, &o.Verification, &o.Country, &state, &o.City,
		&o.Latitude, &o.Longitude, &o.Type, &o.Quantity,
		&o.HeightAGL, &o.HeightMSL, &o.Lighting, &o.Accuracy, &o.Marking,
		&o.StudyNumber, &o.Action, &o.LastUpdated.Year, &o.LastUpdated.Day,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if state.Valid {
		o.State = &state.String
	}
	return &o, nil
}

// Cycle returns the cycle of the indexed snapshot; ok is false before the
// first load.
func (s *Store) Cycle(ctx context.Context) (domain.Cycle, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'cycle'`,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return domain.Cycle{}, false, nil
	}
	if err != nil {
		return domain.Cycle{}, false, err
	}

	cycle, err := domain.ParseCycleID(id)
	if err != nil {
		return domain.Cycle{}, false, fmt.Errorf("stored cycle %q: %w", id, err)
	}
	return cycle, true, nil
}

// Count returns the number of indexed obstacles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM obstacles`).Scan(&n)
	return n, err
}

// CountByState returns obstacle counts grouped by state code. Rows with no
// state group under the empty string.
func (s *Store) CountByState(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(state, ''), COUNT(*)
		FROM obstacles GROUP BY COALESCE(state, '')
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			state string
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[state] = n
	}
	return counts, rows.Err()
}
