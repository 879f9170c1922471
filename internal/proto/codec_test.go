package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestKeyValue_RoundTrip(t *testing.T) {
	kv := KeyValue{Key: "k1", Version: 42, Value: []byte("hello")}
	got, err := UnmarshalKeyValue(kv.Marshal())
	require.NoError(t, err)
	require.Equal(t, kv, got)
}

func TestKeyValue_ZeroValueRoundTrip(t *testing.T) {
	kv := KeyValue{}
	got, err := UnmarshalKeyValue(kv.Marshal())
	require.NoError(t, err)
	require.Equal(t, "", got.Key)
	require.EqualValues(t, 0, got.Version)
	require.Empty(t, got.Value)
}

func TestPutObjectRequest_RoundTrip(t *testing.T) {
	req := PutObjectRequest{
		StoreID:       "s1",
		GlobalVersion: ptr(int64(7)),
		TransactionItems: []KeyValue{
			{Key: "a", Version: 0, Value: []byte("1")},
			{Key: "b", Version: 2, Value: []byte("2")},
		},
		DeleteItems: []KeyValue{
			{Key: "c", Version: -1},
		},
	}

	got, err := UnmarshalPutObjectRequest(req.Marshal())
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestPutObjectRequest_NoGlobalVersionOmitsField(t *testing.T) {
	req := PutObjectRequest{StoreID: "s1", TransactionItems: []KeyValue{{Key: "a", Version: 0}}}
	got, err := UnmarshalPutObjectRequest(req.Marshal())
	require.NoError(t, err)
	require.Nil(t, got.GlobalVersion)
}

func TestGetObjectResponse_RoundTrip(t *testing.T) {
	resp := GetObjectResponse{Value: KeyValue{Key: "vss_global_version", Version: 0}}
	got, err := UnmarshalGetObjectResponse(resp.Marshal())
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestDeleteObjectRequest_RoundTrip(t *testing.T) {
	req := DeleteObjectRequest{StoreID: "s1", KeyValue: KeyValue{Key: "k", Version: 3}}
	got, err := UnmarshalDeleteObjectRequest(req.Marshal())
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestListKeyVersionsRequest_RoundTrip(t *testing.T) {
	req := ListKeyVersionsRequest{
		StoreID:   "s1",
		KeyPrefix: ptr("pfx"),
		PageSize:  ptr(int32(50)),
		PageToken: ptr("k010"),
	}
	got, err := UnmarshalListKeyVersionsRequest(req.Marshal())
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestListKeyVersionsRequest_OmitsUnsetOptionalFields(t *testing.T) {
	req := ListKeyVersionsRequest{StoreID: "s1"}
	got, err := UnmarshalListKeyVersionsRequest(req.Marshal())
	require.NoError(t, err)
	require.Nil(t, got.KeyPrefix)
	require.Nil(t, got.PageSize)
	require.Nil(t, got.PageToken)
}

func TestListKeyVersionsResponse_RoundTrip(t *testing.T) {
	resp := ListKeyVersionsResponse{
		KeyVersions:   []KeyValue{{Key: "a", Version: 1}, {Key: "b", Version: 2}},
		NextPageToken: ptr("b"),
		GlobalVersion: ptr(int64(5)),
	}
	got, err := UnmarshalListKeyVersionsResponse(resp.Marshal())
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestListKeyVersionsResponse_EmptyPageHasEmptyNextPageToken(t *testing.T) {
	resp := ListKeyVersionsResponse{NextPageToken: ptr("")}
	got, err := UnmarshalListKeyVersionsResponse(resp.Marshal())
	require.NoError(t, err)
	require.NotNil(t, got.NextPageToken)
	require.Equal(t, "", *got.NextPageToken)
}

func TestErrorResponse_RoundTrip(t *testing.T) {
	resp := ErrorResponse{ErrorCode: ErrorCodeConflict, Message: "stale version"}
	got, err := UnmarshalErrorResponse(resp.Marshal())
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestUnmarshal_MalformedBytesError(t *testing.T) {
	_, err := UnmarshalKeyValue([]byte{0xff})
	require.Error(t, err)
}
