package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/vss-go/server/internal/common"
	"github.com/vss-go/server/internal/proto"
	"github.com/vss-go/server/internal/server/engine"
)

const maxRequestBodyBytes = 8 << 20 // 8 MiB, generous for a single put batch.

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading request body: %v", common.ErrInvalidRequest, err)
	}
	if len(body) > maxRequestBodyBytes {
		return nil, fmt.Errorf("%w: request body exceeds %d bytes", common.ErrInvalidRequest, maxRequestBodyBytes)
	}
	return body, nil
}

func writeBinary(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func toEngineKeyValues(kvs []proto.KeyValue) []engine.KeyValue {
	out := make([]engine.KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, engine.KeyValue{Key: kv.Key, Version: kv.Version, Value: kv.Value})
	}
	return out
}

func (s *Server) handleGetObject(ctx context.Context, userToken string, w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := proto.UnmarshalGetObjectRequest(body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err))
		return
	}

	kv, err := s.engine.Get(ctx, userToken, req.StoreID, req.Key)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := proto.GetObjectResponse{Value: proto.KeyValue{Key: kv.Key, Version: kv.Version, Value: kv.Value}}
	writeBinary(w, resp.Marshal())
}

func (s *Server) handlePutObjects(ctx context.Context, userToken string, w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := proto.UnmarshalPutObjectRequest(body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err))
		return
	}

	err = s.engine.Put(ctx, userToken, engine.PutRequest{
		StoreID:          req.StoreID,
		GlobalVersion:    req.GlobalVersion,
		TransactionItems: toEngineKeyValues(req.TransactionItems),
		DeleteItems:      toEngineKeyValues(req.DeleteItems),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := proto.PutObjectResponse{}
	writeBinary(w, resp.Marshal())
}

func (s *Server) handleDeleteObject(ctx context.Context, userToken string, w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := proto.UnmarshalDeleteObjectRequest(body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err))
		return
	}

	kv := engine.KeyValue{Key: req.KeyValue.Key, Version: req.KeyValue.Version, Value: req.KeyValue.Value}
	if err := s.engine.Delete(ctx, userToken, req.StoreID, kv); err != nil {
		writeError(w, err)
		return
	}

	resp := proto.DeleteObjectResponse{}
	writeBinary(w, resp.Marshal())
}

func (s *Server) handleListKeyVersions(ctx context.Context, userToken string, w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := proto.UnmarshalListKeyVersionsRequest(body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err))
		return
	}

	keyPrefix := ""
	if req.KeyPrefix != nil {
		keyPrefix = *req.KeyPrefix
	}

	listResp, err := s.engine.ListKeyVersions(ctx, userToken, engine.ListRequest{
		StoreID:   req.StoreID,
		KeyPrefix: keyPrefix,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	keyVersions := make([]proto.KeyValue, 0, len(listResp.KeyVersions))
	for _, kv := range listResp.KeyVersions {
		keyVersions = append(keyVersions, proto.KeyValue{Key: kv.Key, Version: kv.Version})
	}

	resp := proto.ListKeyVersionsResponse{
		KeyVersions:   keyVersions,
		NextPageToken: &listResp.NextPageToken,
		GlobalVersion: listResp.GlobalVersion,
	}
	writeBinary(w, resp.Marshal())
}
