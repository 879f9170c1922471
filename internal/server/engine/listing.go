package engine

import (
	"context"
	"fmt"

	"github.com/vss-go/server/internal/common"
)

// ListRequest is the engine-level view of listKeyVersions.
type ListRequest struct {
	StoreID   string
	KeyPrefix string
	PageSize  *int32
	PageToken *string
}

// ListResponse mirrors the wire ListKeyVersionsResponse. GlobalVersion is
// nil on every page after the first, per the snapshot-safety rule.
type ListResponse struct {
	KeyVersions   []KeyVersion
	NextPageToken string
	GlobalVersion *int64
}

// KeyVersion is a (key, version) pair returned by listKeyVersions; value
// is never populated.
type KeyVersion struct {
	Key     string
	Version int64
}

// ListKeyVersions returns a key-ordered page of (key, version) pairs. The
// snapshot-safety rule is load-bearing: on the first page only, the
// store's global_version is read BEFORE the range scan runs, so any
// concurrent writer can only make the returned global_version a *lower*
// bound on the version at which every listed key existed, never a higher
// one. Reordering this (scan first, then read global_version) would let a
// client store a global version ahead of the key state it actually holds.
func (e *Engine) ListKeyVersions(ctx context.Context, userToken string, req ListRequest) (ListResponse, error) {
	if err := validateStoreAndUser(userToken, req.StoreID); err != nil {
		return ListResponse{}, err
	}

	limit := common.DefaultListPageSize
	if req.PageSize != nil {
		limit = int(*req.PageSize)
		if limit <= 0 {
			return ListResponse{}, fmt.Errorf("%w: page_size must be positive", common.ErrInvalidRequest)
		}
	}
	if limit > e.maxListPageSize {
		limit = e.maxListPageSize
	}

	var globalVersion *int64
	isFirstPage := req.PageToken == nil
	if isFirstPage {
		gv, err := e.Get(ctx, userToken, req.StoreID, common.GlobalVersionKey)
		if err != nil {
			return ListResponse{}, err
		}
		v := gv.Version
		globalVersion = &v
	}

	afterKey := ""
	if req.PageToken != nil {
		afterKey = *req.PageToken
	}

	rows, err := e.records.ListKeys(ctx, userToken, req.StoreID, req.KeyPrefix, afterKey, limit)
	if err != nil {
		return ListResponse{}, err
	}

	keyVersions := make([]KeyVersion, 0, len(rows))
	for _, r := range rows {
		keyVersions = append(keyVersions, KeyVersion{Key: r.Key, Version: r.Version})
	}

	nextPageToken := ""
	if len(keyVersions) > 0 {
		nextPageToken = keyVersions[len(keyVersions)-1].Key
	}

	return ListResponse{
		KeyVersions:   keyVersions,
		NextPageToken: nextPageToken,
		GlobalVersion: globalVersion,
	}, nil
}
