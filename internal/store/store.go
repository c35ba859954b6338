// Package store persists validation decisions. The primary copy lives in
// Postgres; a local JSON cache keeps decisions available when the database
// is unreachable. The two copies are reconciled by set union at load time.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/valdor-terrains/internal/config"
	"github.com/valdor-terrains/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS validation_entry (
	land_id    TEXT PRIMARY KEY,
	decision   TEXT NOT NULL CHECK (decision IN ('validated', 'rejected')),
	decided_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store is the Postgres-backed validation store.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// DSNFromEnv assembles a Postgres DSN from the PG* environment variables.
func DSNFromEnv() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.GetEnv("PGHOST", "localhost"),
		config.GetEnv("PGPORT", "5432"),
		config.GetEnv("PGUSER", "terrains"),
		config.GetEnv("PGPASSWORD", "terrains"),
		config.GetEnv("PGDATABASE", "terrains"),
		config.GetEnv("PGSSLMODE", "disable"),
	)
}

// Open connects to Postgres, verifies the connection and ensures the
// validation schema exists.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening validation store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to validation store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring validation schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// entry mirrors one validation_entry row.
type entry struct {
	LandID    string    `db:"land_id"`
	Decision  string    `db:"decision"`
	DecidedAt time.Time `db:"decided_at"`
}

// Load reads all persisted decisions into a snapshot.
func (s *Store) Load(ctx context.Context) (ledger.Snapshot, error) {
	var rows []entry
	err := s.db.SelectContext(ctx, &rows,
		`SELECT land_id, decision, decided_at FROM validation_entry ORDER BY land_id`)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("loading validations: %w", err)
	}

	snap := ledger.Snapshot{Validated: []string{}, Rejected: []string{}}
	var last time.Time
	for _, row := range rows {
		switch row.Decision {
		case "validated":
			snap.Validated = append(snap.Validated, row.LandID)
		case "rejected":
			snap.Rejected = append(snap.Rejected, row.LandID)
		}
		if row.DecidedAt.After(last) {
			last = row.DecidedAt
		}
	}
	if !last.IsZero() {
		snap.LastUpdate = last.UTC().Format(time.RFC3339)
	}
	s.log.Debug().
		Int("validated", len(snap.Validated)).
		Int("rejected", len(snap.Rejected)).
		Msg("validations loaded")
	return snap, nil
}

// Save replaces the persisted decision set with the given snapshot inside
// one transaction. The snapshot is the source of truth: ids absent from it
// are removed.
func (s *Store) Save(ctx context.Context, snap ledger.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving validations: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM validation_entry`); err != nil {
		return fmt.Errorf("clearing validations: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO validation_entry (land_id, decision) VALUES ($1, $2)
		 ON CONFLICT (land_id) DO UPDATE SET decision = EXCLUDED.decision, decided_at = now()`)
	if err != nil {
		return fmt.Errorf("preparing validation insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range snap.Validated {
		if _, err := stmt.ExecContext(ctx, id, "validated"); err != nil {
			return fmt.Errorf("inserting validated id: %w", err)
		}
	}
	for _, id := range snap.Rejected {
		if _, err := stmt.ExecContext(ctx, id, "rejected"); err != nil {
			return fmt.Errorf("inserting rejected id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing validations: %w", err)
	}
	s.log.Debug().
		Int("validated", len(snap.Validated)).
		Int("rejected", len(snap.Rejected)).
		Msg("validations saved")
	return nil
}
