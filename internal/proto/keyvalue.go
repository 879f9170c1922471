package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes a KeyValue as a proto3 message: key=1, version=2, value=3.
func (kv KeyValue) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, kv.Key)
	b = appendVarint(b, 2, kv.Version)
	b = appendBytes(b, 3, kv.Value)
	return b
}

// UnmarshalKeyValue decodes a KeyValue from its serialized form.
func UnmarshalKeyValue(data []byte) (KeyValue, error) {
	var kv KeyValue
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			s, n := protowire.ConsumeString(v)
			if n < 0 {
				return 0, fmt.Errorf("key: %w", protowire.ParseError(n))
			}
			kv.Key = s
			return n, nil
		case 2:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return 0, fmt.Errorf("version: %w", protowire.ParseError(n))
			}
			kv.Version = int64(x)
			return n, nil
		case 3:
			bs, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, fmt.Errorf("value: %w", protowire.ParseError(n))
			}
			kv.Value = append([]byte(nil), bs...)
			return n, nil
		default:
			return skipField(num, typ, v)
		}
	})
	if err != nil {
		return KeyValue{}, err
	}
	return kv, nil
}
