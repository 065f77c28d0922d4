package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is stored in SQLite's user_version header field. A fresh
// database reports 0.
const ledgerVersion = 1

// ErrSchemaMismatch reports a ledger written by an incompatible release.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read ledger version: %w", err)
	}
	switch version {
	case ledgerVersion:
		return nil
	case 0:
		return s.install(ctx)
	default:
		return fmt.Errorf("%w: %s has version %d, want %d; move it aside to start a new history",
			ErrSchemaMismatch, s.path, version, ledgerVersion)
	}
}

// install creates the tables and stamps the version in one transaction.
func (s *Store) install(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin install: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", ledgerVersion)); err != nil {
		return fmt.Errorf("stamp ledger version: %w", err)
	}
	return tx.Commit()
}
