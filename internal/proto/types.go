// Package proto defines the versioned-storage wire schema and a
// hand-written proto3-compatible binary codec for it. The bytes produced
// and consumed here are standard proto3 wire format — decodable by any protobuf
// client — encoded directly against google.golang.org/protobuf's low-level
// protowire primitives rather than protoc-generated stubs, since no
// .proto-to-Go generation step runs as part of building this service.
package proto

// KeyValue is the (key, version, value) triple used throughout the wire
// protocol. Field numbers: key=1, version=2, value=3.
type KeyValue struct {
	Key     string
	Version int64
	Value   []byte
}

// GetObjectRequest. Field numbers: store_id=1, key=2.
type GetObjectRequest struct {
	StoreID string
	Key     string
}

// GetObjectResponse. Field numbers: value=1.
type GetObjectResponse struct {
	Value KeyValue
}

// PutObjectRequest. Field numbers: store_id=1, global_version=2 (optional),
// transaction_items=3 (repeated), delete_items=4 (repeated).
type PutObjectRequest struct {
	StoreID          string
	GlobalVersion    *int64
	TransactionItems []KeyValue
	DeleteItems      []KeyValue
}

// PutObjectResponse carries no fields.
type PutObjectResponse struct{}

// DeleteObjectRequest. Field numbers: store_id=1, key_value=2.
type DeleteObjectRequest struct {
	StoreID  string
	KeyValue KeyValue
}

// DeleteObjectResponse carries no fields.
type DeleteObjectResponse struct{}

// ListKeyVersionsRequest. Field numbers: store_id=1, key_prefix=2
// (optional), page_size=3 (optional), page_token=4 (optional).
type ListKeyVersionsRequest struct {
	StoreID   string
	KeyPrefix *string
	PageSize  *int32
	PageToken *string
}

// ListKeyVersionsResponse. Field numbers: key_versions=1 (repeated),
// next_page_token=2 (optional), global_version=3 (optional).
type ListKeyVersionsResponse struct {
	KeyVersions   []KeyValue
	NextPageToken *string
	GlobalVersion *int64
}

// ErrorCode is the wire error taxonomy.
type ErrorCode int32

const (
	ErrorCodeUnknown        ErrorCode = 0
	ErrorCodeConflict       ErrorCode = 1
	ErrorCodeInvalidRequest ErrorCode = 2
	ErrorCodeInternal       ErrorCode = 3
	ErrorCodeNoSuchKey      ErrorCode = 4
	ErrorCodeAuth           ErrorCode = 5
)

// ErrorResponse. Field numbers: error_code=1, message=2.
type ErrorResponse struct {
	ErrorCode ErrorCode
	Message   string
}
