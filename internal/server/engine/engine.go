// Package engine implements the transactional versioning engine: the
// interpretation of client version fields into conditional database
// operations, the global-version guard that rides along inside the same
// transaction, and the snapshot-safe listing protocol. The engine is
// stateless between requests; all concurrency control is delegated to the
// RecordStore's transactional backend.
package engine

import (
	"context"
	"fmt"

	"github.com/vss-go/server/internal/common"
	"github.com/vss-go/server/internal/server/store"
)

// Engine is the Versioning Engine + Global-Version Guard + Listing
// Protocol, bound to one RecordStore. Construct with New; there is no
// mutable state to synchronize across concurrent calls.
type Engine struct {
	records         store.RecordStore
	maxListPageSize int
}

// New builds an Engine over the given RecordStore, using
// common.MaxListPageSize as the listing page-size cap.
func New(records store.RecordStore) *Engine {
	return &Engine{records: records, maxListPageSize: common.MaxListPageSize}
}

// NewWithPageSizeCap builds an Engine whose listKeyVersions page-size cap
// comes from configuration, falling back to common.MaxListPageSize when
// maxPageSize is non-positive.
func NewWithPageSizeCap(records store.RecordStore, maxPageSize int) *Engine {
	if maxPageSize <= 0 {
		maxPageSize = common.MaxListPageSize
	}
	return &Engine{records: records, maxListPageSize: maxPageSize}
}

// KeyValue mirrors the wire KeyValue triple at the engine boundary.
type KeyValue struct {
	Key     string
	Version int64
	Value   []byte
}

// defaultGlobalVersionKV is the synthetic value returned for a get of the
// reserved key when no record has ever been written for it. A store that
// never used global versioning reads version 0.
var defaultGlobalVersionKV = KeyValue{Key: common.GlobalVersionKey, Version: 0, Value: nil}

// Get implements get(user, {store, key}) -> {value}.
func (e *Engine) Get(ctx context.Context, userToken, storeID, key string) (KeyValue, error) {
	if err := validateStoreAndUser(userToken, storeID); err != nil {
		return KeyValue{}, err
	}
	if err := validateKey(key); err != nil {
		return KeyValue{}, err
	}

	rec, err := e.records.Get(ctx, userToken, storeID, key)
	if err != nil {
		return KeyValue{}, err
	}
	if rec == nil {
		if key == common.GlobalVersionKey {
			return defaultGlobalVersionKV, nil
		}
		return KeyValue{}, fmt.Errorf("%w: key %q", common.ErrNoSuchKey, key)
	}
	return KeyValue{Key: rec.Key, Version: rec.Version, Value: rec.Value}, nil
}

// PutRequest is the engine-level view of a put: a batch of conditional
// writes and deletes, plus an optional global-version bump, all committed
// in a single transaction.
type PutRequest struct {
	StoreID          string
	GlobalVersion    *int64
	TransactionItems []KeyValue
	DeleteItems      []KeyValue
}

// Put implements put(user, {...}) -> {}: every item in TransactionItems
// and DeleteItems, plus the global-version bump if requested, commits
// atomically or the whole call fails with ErrConflict.
func (e *Engine) Put(ctx context.Context, userToken string, req PutRequest) error {
	if err := validateStoreAndUser(userToken, req.StoreID); err != nil {
		return err
	}
	if err := validateDistinctKeys(req.TransactionItems, req.DeleteItems); err != nil {
		return err
	}

	ops := make([]store.WriteOp, 0, len(req.TransactionItems)+len(req.DeleteItems)+1)

	for _, kv := range req.TransactionItems {
		if err := validateKey(kv.Key); err != nil {
			return err
		}
		op, err := putOpFor(kv)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	for _, kv := range req.DeleteItems {
		if err := validateKey(kv.Key); err != nil {
			return err
		}
		op, err := deleteOpFor(kv)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	if req.GlobalVersion != nil {
		g := *req.GlobalVersion
		if g < 0 {
			return fmt.Errorf("%w: global_version must be >= 0", common.ErrInvalidRequest)
		}
		ops = append(ops, globalVersionOp(g))
	}

	return e.records.ExecuteBatch(ctx, userToken, req.StoreID, ops)
}

// putOpFor translates one transaction_items entry into a conditional
// write op: 0 means insert-if-absent, a positive version means
// update-if-version-matches, -1 means unconditional upsert.
func putOpFor(kv KeyValue) (store.WriteOp, error) {
	switch {
	case kv.Version == -1:
		return store.WriteOp{Key: kv.Key, Value: kv.Value, Kind: store.OpUpsertReset}, nil
	case kv.Version == 0:
		return store.WriteOp{Key: kv.Key, Value: kv.Value, Kind: store.OpInsertIfAbsent}, nil
	case kv.Version > 0:
		return store.WriteOp{Key: kv.Key, Value: kv.Value, ExpectedVersion: kv.Version, Kind: store.OpUpdateIfVersionEquals}, nil
	default:
		return store.WriteOp{}, fmt.Errorf("%w: invalid version %d for key %q", common.ErrInvalidRequest, kv.Version, kv.Key)
	}
}

// deleteOpFor translates one delete_items entry into a conditional delete
// op: -1 means unconditional, any other version must match the stored one.
func deleteOpFor(kv KeyValue) (store.WriteOp, error) {
	switch {
	case kv.Version == -1:
		return store.WriteOp{Key: kv.Key, Kind: store.OpDeleteUnconditional}, nil
	case kv.Version >= 0:
		return store.WriteOp{Key: kv.Key, ExpectedVersion: kv.Version, Kind: store.OpDeleteIfVersionEquals}, nil
	default:
		return store.WriteOp{}, fmt.Errorf("%w: invalid version %d for key %q", common.ErrInvalidRequest, kv.Version, kv.Key)
	}
}

// globalVersionOp builds the guard's write against the reserved key: the
// same update rule as a user item, stored version g -> g+1, except that
// g=0 resolves to an insert-if-absent (the store has never used global
// versioning on this key before).
func globalVersionOp(g int64) store.WriteOp {
	if g == 0 {
		return store.WriteOp{Key: common.GlobalVersionKey, Value: nil, Kind: store.OpInsertIfAbsent}
	}
	return store.WriteOp{Key: common.GlobalVersionKey, Value: nil, ExpectedVersion: g, Kind: store.OpUpdateIfVersionEquals}
}

// Delete implements delete(user, {store, key_value}) -> {}: a single-item
// deletion, always wrapped in its own transaction.
func (e *Engine) Delete(ctx context.Context, userToken, storeID string, kv KeyValue) error {
	if err := validateStoreAndUser(userToken, storeID); err != nil {
		return err
	}
	if err := validateKey(kv.Key); err != nil {
		return err
	}
	op, err := deleteOpFor(kv)
	if err != nil {
		return err
	}
	return e.records.ExecuteBatch(ctx, userToken, storeID, []store.WriteOp{op})
}

func validateStoreAndUser(userToken, storeID string) error {
	if userToken == "" {
		return fmt.Errorf("%w: empty user token", common.ErrAuth)
	}
	if len(userToken) > common.MaxUserTokenLength {
		return fmt.Errorf("%w: user token too long", common.ErrAuth)
	}
	if storeID == "" {
		return fmt.Errorf("%w: empty store_id", common.ErrInvalidRequest)
	}
	return nil
}

func validateKey(key string) error {
	if len(key) > common.MaxKeyLength {
		return fmt.Errorf("%w: key exceeds maximum length", common.ErrInvalidRequest)
	}
	return nil
}

// validateDistinctKeys rejects a put whose transaction_items and
// delete_items name the same key. The outcome of writing and deleting one
// key in the same batch would depend on statement order, so it is rejected
// outright rather than resolved silently.
func validateDistinctKeys(transactionItems, deleteItems []KeyValue) error {
	seen := make(map[string]struct{}, len(transactionItems))
	for _, kv := range transactionItems {
		seen[kv.Key] = struct{}{}
	}
	for _, kv := range deleteItems {
		if _, ok := seen[kv.Key]; ok {
			return fmt.Errorf("%w: key %q present in both transaction_items and delete_items", common.ErrInvalidRequest, kv.Key)
		}
	}
	return nil
}
