package common

// GlobalVersionKey is the reserved key that holds a store's global-version
// sequence number. It is co-located with user records in the same table
// and participates in the same transaction as user writes, but it is never
// surfaced as a user key in listKeyVersions results.
const GlobalVersionKey = "vss_global_version"

// MaxUserTokenLength bounds the authenticated principal identifier. The
// record store's user_token column width must stay aligned with this value.
const MaxUserTokenLength = 120

// MaxKeyLength bounds a client-supplied key's length.
const MaxKeyLength = 600

// DefaultListPageSize and MaxListPageSize bound listKeyVersions
// pagination. Callers may request fewer keys per page; MaxListPageSize is
// the page-size cap unless the engine is built with a different positive
// cap (engine.NewWithPageSizeCap).
const (
	DefaultListPageSize = 100
	MaxListPageSize     = 100
)

// RequestIDHeaderName carries the server-minted per-request correlation ID.
const RequestIDHeaderName = "X-Request-Id"
