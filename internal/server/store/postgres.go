package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vss-go/server/internal/common"
	"github.com/vss-go/server/internal/dbx"
)

// PostgresStore implements RecordStore over a *sql.DB; individual
// statements run against a dbx.DBTX so they work identically on the pooled
// handle and on an in-flight transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a store bound to the given connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userToken, storeID, key string) (*Record, error) {
	return get(ctx, s.db, userToken, storeID, key)
}

func get(ctx context.Context, q dbx.DBTX, userToken, storeID, key string) (*Record, error) {
	const query = `
		SELECT value, version, created_at, last_updated_at
		FROM vss_items
		WHERE user_token = $1 AND store_id = $2 AND key = $3
	`
	r := &Record{UserToken: userToken, StoreID: storeID, Key: key}
	err := q.QueryRowContext(ctx, query, userToken, storeID, key).
		Scan(&r.Value, &r.Version, &r.CreatedAt, &r.LastUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select record: %v", common.ErrInternal, err)
	}
	return r, nil
}

// ExecuteBatch runs every op inside one transaction and aborts with
// common.ErrConflict the instant any op affects zero rows, preserving the
// all-or-nothing guarantee the engine depends on.
func (s *PostgresStore) ExecuteBatch(ctx context.Context, userToken, storeID string, ops []WriteOp) error {
	// Audit timestamps carry day granularity only: UTC, truncated to the day.
	now := time.Now().UTC().Truncate(24 * time.Hour)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, op := range ops {
			affected, err := execOp(ctx, tx, userToken, storeID, op, now)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrInternal, err)
			}
			if affected == 0 {
				return common.ErrConflict
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return common.ErrConflict
		}
		return err
	}
	return nil
}

func execOp(ctx context.Context, tx dbx.DBTX, userToken, storeID string, op WriteOp, now time.Time) (int64, error) {
	// The value column is NOT NULL; an absent value is stored as empty bytes
	// rather than bound as SQL NULL.
	if op.Value == nil {
		op.Value = []byte{}
	}
	switch op.Kind {
	case OpInsertIfAbsent:
		return insertIfAbsent(ctx, tx, userToken, storeID, op.Key, op.Value, now)
	case OpUpdateIfVersionEquals:
		return updateIfVersionEquals(ctx, tx, userToken, storeID, op.Key, op.Value, op.ExpectedVersion, now)
	case OpUpsertReset:
		return upsertReset(ctx, tx, userToken, storeID, op.Key, op.Value, now)
	case OpDeleteIfVersionEquals:
		return deleteIfVersionEquals(ctx, tx, userToken, storeID, op.Key, op.ExpectedVersion)
	case OpDeleteUnconditional:
		return deleteUnconditional(ctx, tx, userToken, storeID, op.Key)
	default:
		return 0, fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

func insertIfAbsent(ctx context.Context, tx dbx.DBTX, userToken, storeID, key string, value []byte, now time.Time) (int64, error) {
	const query = `
		INSERT INTO vss_items (user_token, store_id, key, value, version, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, $5)
		ON CONFLICT (user_token, store_id, key) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query, userToken, storeID, key, value, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func updateIfVersionEquals(ctx context.Context, tx dbx.DBTX, userToken, storeID, key string, value []byte, expectedVersion int64, now time.Time) (int64, error) {
	const query = `
		UPDATE vss_items
		SET value = $1, version = $2, last_updated_at = $3
		WHERE user_token = $4 AND store_id = $5 AND key = $6 AND version = $7
	`
	res, err := tx.ExecContext(ctx, query, value, expectedVersion+1, now, userToken, storeID, key, expectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func upsertReset(ctx context.Context, tx dbx.DBTX, userToken, storeID, key string, value []byte, now time.Time) (int64, error) {
	const query = `
		INSERT INTO vss_items (user_token, store_id, key, value, version, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, $5)
		ON CONFLICT (user_token, store_id, key)
		DO UPDATE SET value = EXCLUDED.value, version = 1, last_updated_at = EXCLUDED.last_updated_at
	`
	res, err := tx.ExecContext(ctx, query, userToken, storeID, key, value, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Upserts via ON CONFLICT DO UPDATE report 1 row on Postgres even
		// for the overwrite path; an unconditional upsert never conflicts,
		// so a driver reporting 0 here must not abort the batch.
		return 1, nil
	}
	return n, nil
}

func deleteIfVersionEquals(ctx context.Context, tx dbx.DBTX, userToken, storeID, key string, expectedVersion int64) (int64, error) {
	const query = `
		DELETE FROM vss_items
		WHERE user_token = $1 AND store_id = $2 AND key = $3 AND version = $4
	`
	res, err := tx.ExecContext(ctx, query, userToken, storeID, key, expectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func deleteUnconditional(ctx context.Context, tx dbx.DBTX, userToken, storeID, key string) (int64, error) {
	const query = `
		DELETE FROM vss_items
		WHERE user_token = $1 AND store_id = $2 AND key = $3
	`
	_, err := tx.ExecContext(ctx, query, userToken, storeID, key)
	if err != nil {
		return 0, err
	}
	// Unconditional delete always "succeeds" whether or not a row existed.
	return 1, nil
}

// ListKeys performs the ordered range scan backing listKeyVersions. It
// always excludes the reserved global-version key.
func (s *PostgresStore) ListKeys(ctx context.Context, userToken, storeID, keyPrefix, afterKey string, limit int) ([]KeyVersion, error) {
	const query = `
		SELECT key, version
		FROM vss_items
		WHERE user_token = $1
		  AND store_id = $2
		  AND key > $3
		  AND key LIKE $4
		  AND key <> $5
		ORDER BY key ASC
		LIMIT $6
	`
	rows, err := s.db.QueryContext(ctx, query, userToken, storeID, afterKey, likePattern(keyPrefix), common.GlobalVersionKey, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list keys: %v", common.ErrInternal, err)
	}
	defer rows.Close()

	result := make([]KeyVersion, 0, limit)
	for rows.Next() {
		var kv KeyVersion
		if err := rows.Scan(&kv.Key, &kv.Version); err != nil {
			return nil, fmt.Errorf("%w: scan key version: %v", common.ErrInternal, err)
		}
		result = append(result, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate key versions: %v", common.ErrInternal, err)
	}
	return result, nil
}

// likePattern turns a plain prefix into a SQL LIKE pattern, escaping the
// wildcard characters the prefix might itself contain.
func likePattern(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+1)
	for _, b := range []byte(prefix) {
		if b == '%' || b == '_' || b == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, b)
	}
	return string(escaped) + "%"
}
