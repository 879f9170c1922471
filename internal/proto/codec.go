package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendString appends a length-delimited string field if non-empty. Proto3
// treats the empty string as the field's default, so it is simply omitted
// on the wire, matching protoc-gen-go's own behavior for scalar fields.
func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendOptionalString always appends, even for "", since the field has
// explicit presence (proto3 `optional`).
func appendOptionalString(b []byte, num protowire.Number, v *string) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendOptionalVarint(b []byte, num protowire.Number, v *int64) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(*v))
}

func appendOptionalInt32(b []byte, num protowire.Number, v *int32) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(*v)))
}

func appendMessage(b []byte, num protowire.Number, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

// forEachField walks the tag-delimited fields of a serialized message,
// calling fn with each field's number, wire type, and the bytes starting
// at its value. fn must return how many bytes of its value it consumed;
// fields fn doesn't recognize should be skipped with protowire.ConsumeFieldValue.
func forEachField(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (n int, err error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("malformed tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		consumed, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if consumed < 0 {
			return fmt.Errorf("malformed field %d: %w", num, protowire.ParseError(consumed))
		}
		b = b[consumed:]
	}
	return nil
}

// skipField consumes an unrecognized field's value without interpreting it.
func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("malformed field %d: %w", num, protowire.ParseError(n))
	}
	return n, nil
}
