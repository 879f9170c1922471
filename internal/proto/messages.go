package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// --- GetObjectRequest / GetObjectResponse ---

func (r GetObjectRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.StoreID)
	b = appendString(b, 2, r.Key)
	return b
}

func UnmarshalGetObjectRequest(data []byte) (GetObjectRequest, error) {
	var r GetObjectRequest
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			s, n := protowire.ConsumeString(v)
			r.StoreID = s
			return n, errIfNeg(n, "store_id")
		case 2:
			s, n := protowire.ConsumeString(v)
			r.Key = s
			return n, errIfNeg(n, "key")
		default:
			return skipField(num, typ, v)
		}
	})
	return r, err
}

func (r GetObjectResponse) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, r.Value.Marshal())
	return b
}

func UnmarshalGetObjectResponse(data []byte) (GetObjectResponse, error) {
	var r GetObjectResponse
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			msg, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, fmt.Errorf("value: %w", protowire.ParseError(n))
			}
			kv, err := UnmarshalKeyValue(msg)
			if err != nil {
				return 0, fmt.Errorf("value: %w", err)
			}
			r.Value = kv
			return n, nil
		default:
			return skipField(num, typ, v)
		}
	})
	return r, err
}

// --- PutObjectRequest / PutObjectResponse ---

func (r PutObjectRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.StoreID)
	b = appendOptionalVarint(b, 2, r.GlobalVersion)
	for _, kv := range r.TransactionItems {
		b = appendMessage(b, 3, kv.Marshal())
	}
	for _, kv := range r.DeleteItems {
		b = appendMessage(b, 4, kv.Marshal())
	}
	return b
}

func UnmarshalPutObjectRequest(data []byte) (PutObjectRequest, error) {
	var r PutObjectRequest
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			s, n := protowire.ConsumeString(v)
			r.StoreID = s
			return n, errIfNeg(n, "store_id")
		case 2:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return 0, fmt.Errorf("global_version: %w", protowire.ParseError(n))
			}
			gv := int64(x)
			r.GlobalVersion = &gv
			return n, nil
		case 3:
			msg, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, fmt.Errorf("transaction_items: %w", protowire.ParseError(n))
			}
			kv, err := UnmarshalKeyValue(msg)
			if err != nil {
				return 0, fmt.Errorf("transaction_items: %w", err)
			}
			r.TransactionItems = append(r.TransactionItems, kv)
			return n, nil
		case 4:
			msg, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, fmt.Errorf("delete_items: %w", protowire.ParseError(n))
			}
			kv, err := UnmarshalKeyValue(msg)
			if err != nil {
				return 0, fmt.Errorf("delete_items: %w", err)
			}
			r.DeleteItems = append(r.DeleteItems, kv)
			return n, nil
		default:
			return skipField(num, typ, v)
		}
	})
	return r, err
}

func (PutObjectResponse) Marshal() []byte { return nil }

func UnmarshalPutObjectResponse(data []byte) (PutObjectResponse, error) {
	return PutObjectResponse{}, skipUnknownOnly(data)
}

// --- DeleteObjectRequest / DeleteObjectResponse ---

func (r DeleteObjectRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.StoreID)
	b = appendMessage(b, 2, r.KeyValue.Marshal())
	return b
}

func UnmarshalDeleteObjectRequest(data []byte) (DeleteObjectRequest, error) {
	var r DeleteObjectRequest
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			s, n := protowire.ConsumeString(v)
			r.StoreID = s
			return n, errIfNeg(n, "store_id")
		case 2:
			msg, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, fmt.Errorf("key_value: %w", protowire.ParseError(n))
			}
			kv, err := UnmarshalKeyValue(msg)
			if err != nil {
				return 0, fmt.Errorf("key_value: %w", err)
			}
			r.KeyValue = kv
			return n, nil
		default:
			return skipField(num, typ, v)
		}
	})
	return r, err
}

func (DeleteObjectResponse) Marshal() []byte { return nil }

func UnmarshalDeleteObjectResponse(data []byte) (DeleteObjectResponse, error) {
	return DeleteObjectResponse{}, skipUnknownOnly(data)
}

// --- ListKeyVersionsRequest / ListKeyVersionsResponse ---

func (r ListKeyVersionsRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.StoreID)
	b = appendOptionalString(b, 2, r.KeyPrefix)
	b = appendOptionalInt32(b, 3, r.PageSize)
	b = appendOptionalString(b, 4, r.PageToken)
	return b
}

func UnmarshalListKeyVersionsRequest(data []byte) (ListKeyVersionsRequest, error) {
	var r ListKeyVersionsRequest
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			s, n := protowire.ConsumeString(v)
			r.StoreID = s
			return n, errIfNeg(n, "store_id")
		case 2:
			s, n := protowire.ConsumeString(v)
			if n < 0 {
				return 0, fmt.Errorf("key_prefix: %w", protowire.ParseError(n))
			}
			r.KeyPrefix = &s
			return n, nil
		case 3:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return 0, fmt.Errorf("page_size: %w", protowire.ParseError(n))
			}
			ps := int32(x)
			r.PageSize = &ps
			return n, nil
		case 4:
			s, n := protowire.ConsumeString(v)
			if n < 0 {
				return 0, fmt.Errorf("page_token: %w", protowire.ParseError(n))
			}
			r.PageToken = &s
			return n, nil
		default:
			return skipField(num, typ, v)
		}
	})
	return r, err
}

func (r ListKeyVersionsResponse) Marshal() []byte {
	var b []byte
	for _, kv := range r.KeyVersions {
		b = appendMessage(b, 1, kv.Marshal())
	}
	b = appendOptionalString(b, 2, r.NextPageToken)
	b = appendOptionalVarint(b, 3, r.GlobalVersion)
	return b
}

func UnmarshalListKeyVersionsResponse(data []byte) (ListKeyVersionsResponse, error) {
	var r ListKeyVersionsResponse
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			msg, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, fmt.Errorf("key_versions: %w", protowire.ParseError(n))
			}
			kv, err := UnmarshalKeyValue(msg)
			if err != nil {
				return 0, fmt.Errorf("key_versions: %w", err)
			}
			r.KeyVersions = append(r.KeyVersions, kv)
			return n, nil
		case 2:
			s, n := protowire.ConsumeString(v)
			if n < 0 {
				return 0, fmt.Errorf("next_page_token: %w", protowire.ParseError(n))
			}
			r.NextPageToken = &s
			return n, nil
		case 3:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return 0, fmt.Errorf("global_version: %w", protowire.ParseError(n))
			}
			gv := int64(x)
			r.GlobalVersion = &gv
			return n, nil
		default:
			return skipField(num, typ, v)
		}
	})
	return r, err
}

func errIfNeg(n int, field string) error {
	if n < 0 {
		return fmt.Errorf("%s: %w", field, protowire.ParseError(n))
	}
	return nil
}

// skipUnknownOnly decodes a message expected to carry no fields of
// interest, validating that the bytes are at least well-formed.
func skipUnknownOnly(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		return skipField(num, typ, v)
	})
}
