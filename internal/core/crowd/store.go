package crowd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

// Store is the read side of the aggregated crowd table.
type Store interface {
	// Lookup returns the first record about (subject, predicate).
	Lookup(ctx context.Context, subject, predicate string) (model.CrowdRecord, error)
	// LookupFix returns the first record about subject whose proposed fix is value.
	LookupFix(ctx context.Context, subject, value string) (model.CrowdRecord, error)
	// BatchRating returns the agreement of a batch; ok is false when unknown.
	BatchRating(ctx context.Context, batchID string) (float64, bool, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	hit_id       TEXT PRIMARY KEY,
	batch_id     TEXT NOT NULL,
	subject      TEXT NOT NULL,
	predicate    TEXT NOT NULL,
	object       TEXT NOT NULL,
	correct      INTEGER NOT NULL,
	incorrect    INTEGER NOT NULL,
	fix_position TEXT NOT NULL DEFAULT '',
	fix_value    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS verdicts_subject_predicate ON verdicts(subject, predicate);
CREATE INDEX IF NOT EXISTS verdicts_subject_fix ON verdicts(subject, fix_value);
CREATE TABLE IF NOT EXISTS batch_ratings (
	batch_id TEXT PRIMARY KEY,
	kappa    REAL NOT NULL
);
`

const (
	selectVerdict = `SELECT hit_id, batch_id, subject, predicate, object, correct, incorrect, fix_position, fix_value FROM verdicts`

	lookupQuery    = selectVerdict + ` WHERE subject = ? AND predicate = ? ORDER BY rowid LIMIT 1`
	lookupFixQuery = selectVerdict + ` WHERE subject = ? AND fix_value = ? ORDER BY rowid LIMIT 1`
	ratingQuery    = `SELECT kappa FROM batch_ratings WHERE batch_id = ?`

	insertVerdict = `INSERT OR REPLACE INTO verdicts
		(hit_id, batch_id, subject, predicate, object, correct, incorrect, fix_position, fix_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertRating = `INSERT OR REPLACE INTO batch_ratings (batch_id, kappa) VALUES (?, ?)`
)

// SQLiteStore keeps verdicts and batch ratings in a SQLite file.
type SQLiteStore struct {
	conn *sql.DB
	Path string
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening crowd database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating crowd schema: %w", err)
	}
	return &SQLiteStore{conn: conn, Path: path}, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Import replaces the stored verdicts and ratings with the given ones.
func (s *SQLiteStore) Import(ctx context.Context, records []model.CrowdRecord, ratings map[string]float64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM verdicts", "DELETE FROM batch_ratings"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clearing crowd tables: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertVerdict)
	if err != nil {
		return fmt.Errorf("preparing verdict insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.HITID, r.BatchID, r.Subject, r.Predicate, r.Object,
			r.Correct, r.Incorrect, r.FixPosition, r.FixValue); err != nil {
			return fmt.Errorf("inserting verdict %s: %w", r.HITID, err)
		}
	}

	for batch, kappa := range ratings {
		if _, err := tx.ExecContext(ctx, insertRating, batch, kappa); err != nil {
			return fmt.Errorf("inserting rating %s: %w", batch, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Lookup(ctx context.Context, subject, predicate string) (model.CrowdRecord, error) {
	return s.queryOne(ctx, lookupQuery, subject, predicate)
}

func (s *SQLiteStore) LookupFix(ctx context.Context, subject, value string) (model.CrowdRecord, error) {
	return s.queryOne(ctx, lookupFixQuery, subject, value)
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, args ...any) (model.CrowdRecord, error) {
	var r model.CrowdRecord
	err := s.conn.QueryRowContext(ctx, query, args...).Scan(
		&r.HITID, &r.BatchID, &r.Subject, &r.Predicate, &r.Object,
		&r.Correct, &r.Incorrect, &r.FixPosition, &r.FixValue)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CrowdRecord{}, model.ErrCrowdLookupEmpty
	}
	if err != nil {
		return model.CrowdRecord{}, fmt.Errorf("querying verdicts: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) BatchRating(ctx context.Context, batchID string) (float64, bool, error) {
	var kappa float64
	err := s.conn.QueryRowContext(ctx, ratingQuery, batchID).Scan(&kappa)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying batch rating: %w", err)
	}
	return kappa, true, nil
}

// Count returns the number of stored verdicts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT count(*) FROM verdicts").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
