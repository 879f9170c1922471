package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

func (r ErrorResponse) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, int64(r.ErrorCode))
	b = appendString(b, 2, r.Message)
	return b
}

func UnmarshalErrorResponse(data []byte) (ErrorResponse, error) {
	var r ErrorResponse
	err := forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return 0, fmt.Errorf("error_code: %w", protowire.ParseError(n))
			}
			r.ErrorCode = ErrorCode(x)
			return n, nil
		case 2:
			s, n := protowire.ConsumeString(v)
			r.Message = s
			return n, errIfNeg(n, "message")
		default:
			return skipField(num, typ, v)
		}
	})
	return r, err
}
