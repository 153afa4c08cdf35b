// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

// Package probestore caches backend capability probes in SQLite so repeated
// test runs and CLI invocations do not re-probe a simulator whose answer
// cannot have changed.
package probestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dotandev/qharness/internal/backend"
	"github.com/dotandev/qharness/internal/eventbus"
	"github.com/dotandev/qharness/internal/logger"
	_ "modernc.org/sqlite"
)

const (
	// SchemaVersion tracks the probe table layout for migrations.
	SchemaVersion = 1

	// DefaultTTL is how long a cached probe stays trustworthy.
	DefaultTTL = 24 * time.Hour

	// DefaultMaxRecords bounds the table size.
	DefaultMaxRecords = 100
)

// Record is one cached probe outcome. The key is the backend name plus the
// version it reported; upgrading a simulator naturally invalidates the cache.
type Record struct {
	backend.Capabilities

	ProbedAt      time.Time `json:"probed_at"`
	SchemaVersion int       `json:"schema_version"`
}

// Fresh reports whether the record is still within ttl.
func (r *Record) Fresh(ttl time.Duration) bool {
	return time.Since(r.ProbedAt) < ttl
}

// Store persists probe records in SQLite and announces cache changes on the
// event bus.
type Store struct {
	db  *sql.DB
	bus *eventbus.Bus
}

// NewStore creates or opens the probe database under ~/.qharness.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(homeDir, ".qharness", "probes.db"))
}

// NewStoreAt creates or opens the probe database at an explicit path.
func NewStoreAt(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open probe database: %w", err)
	}

	store := &Store{db: db, bus: eventbus.Default()}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil {
		logger.Logger.Warn("Failed to set probe database permissions", "error", err)
	}

	return store, nil
}

// SetBus redirects cache notifications to a non-default bus.
func (s *Store) SetBus(bus *eventbus.Bus) {
	s.bus = bus
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS probes (
		backend TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		methods_json TEXT NOT NULL,
		omp_enabled INTEGER NOT NULL,
		num_threads INTEGER NOT NULL,
		max_qubits INTEGER NOT NULL,
		probed_at TIMESTAMP NOT NULL,
		schema_version INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_probed_at ON probes(probed_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Save persists a probe record, replacing any previous record for the same
// backend, and emits TopicProbeUpdated.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.Backend == "" {
		return fmt.Errorf("backend name is required")
	}

	if rec.ProbedAt.IsZero() {
		rec.ProbedAt = time.Now()
	}
	rec.SchemaVersion = SchemaVersion

	methodsJSON, err := json.Marshal(rec.Methods)
	if err != nil {
		return fmt.Errorf("failed to encode method list: %w", err)
	}

	query := `
	INSERT INTO probes (
		backend, version, methods_json, omp_enabled, num_threads, max_qubits,
		probed_at, schema_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(backend) DO UPDATE SET
		version = excluded.version,
		methods_json = excluded.methods_json,
		omp_enabled = excluded.omp_enabled,
		num_threads = excluded.num_threads,
		max_qubits = excluded.max_qubits,
		probed_at = excluded.probed_at,
		schema_version = excluded.schema_version
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.Backend, rec.Version, string(methodsJSON),
		rec.OMPEnabled, rec.NumThreads, rec.MaxQubits,
		rec.ProbedAt, rec.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to save probe record: %w", err)
	}

	logger.Logger.Debug("Probe record saved", "backend", rec.Backend, "version", rec.Version)
	s.bus.Emit(eventbus.TopicProbeUpdated, rec)
	return nil
}

// Load retrieves the cached record for a backend. A missing record is an
// error; callers that want probe-or-cache behavior use Capabilities.
func (s *Store) Load(ctx context.Context, backendName string) (*Record, error) {
	query := `
	SELECT backend, version, methods_json, omp_enabled, num_threads, max_qubits,
	       probed_at, schema_version
	FROM probes
	WHERE backend = ?
	`

	var rec Record
	var methodsJSON, probedAt string

	err := s.db.QueryRowContext(ctx, query, backendName).Scan(
		&rec.Backend, &rec.Version, &methodsJSON,
		&rec.OMPEnabled, &rec.NumThreads, &rec.MaxQubits,
		&probedAt, &rec.SchemaVersion,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no probe record for backend: %s", backendName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load probe record: %w", err)
	}

	if err := json.Unmarshal([]byte(methodsJSON), &rec.Methods); err != nil {
		return nil, fmt.Errorf("failed to decode method list: %w", err)
	}
	if rec.ProbedAt, err = time.Parse(time.RFC3339, probedAt); err != nil {
		return nil, fmt.Errorf("failed to parse probed_at: %w", err)
	}

	return &rec, nil
}

// List returns all cached records, most recently probed first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	query := `
	SELECT backend, version, methods_json, omp_enabled, num_threads, max_qubits,
	       probed_at, schema_version
	FROM probes
	ORDER BY probed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list probe records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var methodsJSON, probedAt string

		err := rows.Scan(
			&rec.Backend, &rec.Version, &methodsJSON,
			&rec.OMPEnabled, &rec.NumThreads, &rec.MaxQubits,
			&probedAt, &rec.SchemaVersion,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan probe record: %w", err)
		}

		if err := json.Unmarshal([]byte(methodsJSON), &rec.Methods); err != nil {
			return nil, fmt.Errorf("failed to decode method list: %w", err)
		}
		if rec.ProbedAt, err = time.Parse(time.RFC3339, probedAt); err != nil {
			return nil, fmt.Errorf("failed to parse probed_at: %w", err)
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating probe records: %w", err)
	}

	return records, nil
}

// Delete removes a cached record.
func (s *Store) Delete(ctx context.Context, backendName string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM probes WHERE backend = ?`, backendName)
	if err != nil {
		return fmt.Errorf("failed to delete probe record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no probe record for backend: %s", backendName)
	}

	logger.Logger.Debug("Probe record deleted", "backend", backendName)
	return nil
}

// Cleanup removes records older than ttl and enforces the record limit,
// emitting TopicProbeExpired with the number of pruned rows.
func (s *Store) Cleanup(ctx context.Context, ttl time.Duration, maxRecords int) error {
	cutoff := time.Now().Add(-ttl)

	result, err := s.db.ExecContext(ctx, `DELETE FROM probes WHERE probed_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired probe records: %w", err)
	}

	pruned, _ := result.RowsAffected()

	if maxRecords > 0 {
		var count int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM probes`).Scan(&count); err != nil {
			return fmt.Errorf("failed to count probe records: %w", err)
		}

		if count > maxRecords {
			excess := count - maxRecords
			deleteOldest := `
				DELETE FROM probes
				WHERE backend IN (
					SELECT backend FROM probes
					ORDER BY probed_at ASC
					LIMIT ?
				)
			`
			result, err := s.db.ExecContext(ctx, deleteOldest, excess)
			if err != nil {
				return fmt.Errorf("failed to delete oldest probe records: %w", err)
			}
			n, _ := result.RowsAffected()
			pruned += n
		}
	}

	if pruned > 0 {
		logger.Logger.Debug("Cleaned up probe records", "count", pruned)
		s.bus.Emit(eventbus.TopicProbeExpired, int(pruned))
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Capabilities returns the backend's capabilities, serving a fresh cached
// record when one exists and probing (then caching) otherwise.
func (s *Store) Capabilities(ctx context.Context, b backend.Backend, ttl time.Duration) (*backend.Capabilities, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if rec, err := s.Load(ctx, b.Name()); err == nil && rec.Fresh(ttl) && rec.Version == b.Version() {
		logger.Logger.Debug("Probe cache hit", "backend", b.Name())
		return &rec.Capabilities, nil
	}

	caps, err := backend.Probe(ctx, b)
	if err != nil {
		return nil, err
	}

	rec := &Record{Capabilities: *caps, ProbedAt: time.Now()}
	if err := s.Save(ctx, rec); err != nil {
		logger.Logger.Warn("Failed to cache probe result", "backend", b.Name(), "error", err)
	}

	return caps, nil
}
