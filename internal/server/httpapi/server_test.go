package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vss-go/server/internal/common"
	"github.com/vss-go/server/internal/logging"
	"github.com/vss-go/server/internal/proto"
	"github.com/vss-go/server/internal/server/auth"
	"github.com/vss-go/server/internal/server/engine"
	"github.com/vss-go/server/internal/server/store"
)

// memStore is a minimal in-memory RecordStore used only to exercise the
// HTTP transport end to end; correctness of the conditional semantics
// themselves is covered by the engine and postgres test suites.
type memStore struct {
	rows map[string]*store.Record
}

func newMemStore() *memStore { return &memStore{rows: map[string]*store.Record{}} }

func (m *memStore) rowKey(userToken, storeID, key string) string {
	return userToken + "\x00" + storeID + "\x00" + key
}

func (m *memStore) Get(_ context.Context, userToken, storeID, key string) (*store.Record, error) {
	rec, ok := m.rows[m.rowKey(userToken, storeID, key)]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (m *memStore) ExecuteBatch(_ context.Context, userToken, storeID string, ops []store.WriteOp) error {
	snapshot := make(map[string]*store.Record, len(m.rows))
	for k, v := range m.rows {
		snapshot[k] = v
	}

	for _, op := range ops {
		rk := m.rowKey(userToken, storeID, op.Key)
		cur := m.rows[rk]

		switch op.Kind {
		case store.OpInsertIfAbsent:
			if cur != nil {
				m.rows = snapshot
				return common.ErrConflict
			}
			m.rows[rk] = &store.Record{UserToken: userToken, StoreID: storeID, Key: op.Key, Value: op.Value, Version: 1, LastUpdatedAt: time.Now()}
		case store.OpUpdateIfVersionEquals:
			if cur == nil || cur.Version != op.ExpectedVersion {
				m.rows = snapshot
				return common.ErrConflict
			}
			m.rows[rk] = &store.Record{UserToken: userToken, StoreID: storeID, Key: op.Key, Value: op.Value, Version: cur.Version + 1, LastUpdatedAt: time.Now()}
		case store.OpUpsertReset:
			m.rows[rk] = &store.Record{UserToken: userToken, StoreID: storeID, Key: op.Key, Value: op.Value, Version: 1, LastUpdatedAt: time.Now()}
		case store.OpDeleteIfVersionEquals:
			if cur == nil || cur.Version != op.ExpectedVersion {
				m.rows = snapshot
				return common.ErrConflict
			}
			delete(m.rows, rk)
		case store.OpDeleteUnconditional:
			delete(m.rows, rk)
		}
	}
	return nil
}

func (m *memStore) ListKeys(_ context.Context, userToken, storeID, keyPrefix, afterKey string, limit int) ([]store.KeyVersion, error) {
	var out []store.KeyVersion
	for _, rec := range m.rows {
		if rec.UserToken != userToken || rec.StoreID != storeID || rec.Key == common.GlobalVersionKey {
			continue
		}
		if keyPrefix != "" && !strings.HasPrefix(rec.Key, keyPrefix) {
			continue
		}
		if afterKey != "" && rec.Key <= afterKey {
			continue
		}
		out = append(out, store.KeyVersion{Key: rec.Key, Version: rec.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	e := engine.New(newMemStore())
	a := auth.NewNullAuthorizer("test-user")
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", e, a, logger)
}

func doBinary(t *testing.T, srv *Server, path string, body []byte) *http.Response {
	t.Helper()
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+path, "application/octet-stream", strings.NewReader(string(body)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

func TestPutThenGet(t *testing.T) {
	srv := newTestServer(t)

	putReq := proto.PutObjectRequest{
		StoreID:          "s1",
		TransactionItems: []proto.KeyValue{{Key: "k1", Version: 0, Value: []byte("v1")}},
	}
	resp := doBinary(t, srv, "/vss/putObjects", putReq.Marshal())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getReq := proto.GetObjectRequest{StoreID: "s1", Key: "k1"}
	resp = doBinary(t, srv, "/vss/getObject", getReq.Marshal())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := proto.UnmarshalGetObjectResponse(readAll(t, resp))
	require.NoError(t, err)
	require.Equal(t, "k1", got.Value.Key)
	require.EqualValues(t, 1, got.Value.Version)
	require.Equal(t, []byte("v1"), got.Value.Value)
}

func TestGetMissingKeyReturns404(t *testing.T) {
	srv := newTestServer(t)

	getReq := proto.GetObjectRequest{StoreID: "s1", Key: "missing"}
	resp := doBinary(t, srv, "/vss/getObject", getReq.Marshal())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	errResp, err := proto.UnmarshalErrorResponse(readAll(t, resp))
	require.NoError(t, err)
	require.Equal(t, proto.ErrorCodeNoSuchKey, errResp.ErrorCode)
}

func TestPutConflictReturns409(t *testing.T) {
	srv := newTestServer(t)

	putReq := proto.PutObjectRequest{
		StoreID:          "s1",
		TransactionItems: []proto.KeyValue{{Key: "k1", Version: 5, Value: []byte("v1")}},
	}
	resp := doBinary(t, srv, "/vss/putObjects", putReq.Marshal())
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	errResp, err := proto.UnmarshalErrorResponse(readAll(t, resp))
	require.NoError(t, err)
	require.Equal(t, proto.ErrorCodeConflict, errResp.ErrorCode)
}

func TestMalformedBodyReturns400(t *testing.T) {
	srv := newTestServer(t)

	resp := doBinary(t, srv, "/vss/getObject", []byte{0xff, 0xff, 0xff})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListKeyVersions(t *testing.T) {
	srv := newTestServer(t)

	for _, k := range []string{"a", "b", "c"} {
		putReq := proto.PutObjectRequest{StoreID: "s1", TransactionItems: []proto.KeyValue{{Key: k, Version: 0}}}
		doBinary(t, srv, "/vss/putObjects", putReq.Marshal())
	}

	listReq := proto.ListKeyVersionsRequest{StoreID: "s1"}
	resp := doBinary(t, srv, "/vss/listKeyVersions", listReq.Marshal())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := proto.UnmarshalListKeyVersionsResponse(readAll(t, resp))
	require.NoError(t, err)
	require.Len(t, got.KeyVersions, 3)
	require.NotNil(t, got.GlobalVersion)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	srv := newTestServer(t)

	getReq := proto.GetObjectRequest{StoreID: "s1", Key: "missing"}
	resp := doBinary(t, srv, "/vss/getObject", getReq.Marshal())
	require.NotEmpty(t, resp.Header.Get(common.RequestIDHeaderName))
}
