package value

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// codec.go implements the literal-pool wire format spec.md §6 "Bytecode
// image format" describes: each entry is a one-byte type tag followed by a
// variant-specific payload. Kind is already the explicit, enumerable byte
// the rest of this package switches on (kind.go), so it doubles as that
// wire tag directly rather than needing a second mapping table.

// WriteCString appends s to buf followed by a NUL terminator, the encoding
// spec.md §6 specifies for String, Identifier, and build-timestamp payloads.
func WriteCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

// ReadCString reads a NUL-terminated string from r.
func ReadCString(r *bytes.Reader) (string, error) {
	var out []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("unterminated string: %w", err)
		}
		if b == 0 {
			break
		}
		out = append(out, b)
	}
	return string(out), nil
}

// Encode writes t's wire form: a variant byte, a constant flag, a subtype
// count, then that many subtypes encoded recursively. This collapses
// spec.md §6's separate TYPE/TYPE_INT tags into one self-describing shape
// (a zero subtype count is the simple TYPE case) rather than threading
// literal-pool indices through a type that isn't itself pool-resident.
func (t *Type) Encode(buf *bytes.Buffer) {
	if t == nil {
		buf.WriteByte(byte(KindAny))
		buf.WriteByte(0)
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(byte(t.TypeOf))
	if t.Constant {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.WriteByte(byte(len(t.Subtypes)))
	for i := range t.Subtypes {
		t.Subtypes[i].Encode(buf)
	}
}

// DecodeType reads a Type written by Type.Encode.
func DecodeType(r *bytes.Reader) (*Type, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("truncated type: %w", err)
	}
	constByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("truncated type: %w", err)
	}
	count, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("truncated type: %w", err)
	}
	t := &Type{TypeOf: Kind(kindByte), Constant: constByte != 0}
	for i := 0; i < int(count); i++ {
		sub, err := DecodeType(r)
		if err != nil {
			return nil, err
		}
		t.Subtypes = append(t.Subtypes, *sub)
	}
	return t, nil
}

// EncodeLiteral writes v's literal-pool wire form (spec.md §6): a one-byte
// Kind tag followed by a variant-specific payload. Array, Dictionary, and
// Function values are never produced here — this compiler desugars array
// and dictionary literals into runtime ARRAY_BUILD/DICT_BUILD opcodes and
// references functions by their function-section index rather than a pool
// entry (compiler/compiler.go's VisitArrayLiteral/VisitDictLiteral/
// VisitFnDecl), so those Kinds are rejected here rather than given a
// payload encoding that nothing would ever exercise.
func (v Value) EncodeLiteral(buf *bytes.Buffer) error {
	buf.WriteByte(byte(v.Kind))
	switch v.Kind {
	case KindNull, KindAny, KindIndexBlank, KindRestArg:
		// no payload
	case KindBoolean:
		if v.b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case KindInteger:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v.i))
		buf.Write(b[:])
	case KindFloat:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v.f))
		buf.Write(b[:])
	case KindString, KindIdentifier:
		WriteCString(buf, v.str.String())
	case KindType, KindIntermediateType:
		v.typ.Encode(buf)
	default:
		return fmt.Errorf("%s values are never placed in the literal pool by this compiler", v.Kind)
	}
	return nil
}

// DecodeLiteral reads one literal-pool entry written by EncodeLiteral.
func DecodeLiteral(r *bytes.Reader) (Value, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return Value{}, fmt.Errorf("truncated literal: %w", err)
	}
	switch Kind(tagByte) {
	case KindNull:
		return Null, nil
	case KindIndexBlank:
		return IndexBlank, nil
	case KindAny:
		return Any, nil
	case KindRestArg:
		return RestArg, nil
	case KindBoolean:
		b, err := r.ReadByte()
		if err != nil {
			return Value{}, fmt.Errorf("truncated boolean literal: %w", err)
		}
		return NewBool(b != 0), nil
	case KindInteger:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Value{}, fmt.Errorf("truncated integer literal: %w", err)
		}
		return NewInt(int32(binary.LittleEndian.Uint32(b[:]))), nil
	case KindFloat:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Value{}, fmt.Errorf("truncated float literal: %w", err)
		}
		return NewFloat(math.Float32frombits(binary.LittleEndian.Uint32(b[:]))), nil
	case KindString:
		s, err := ReadCString(r)
		if err != nil {
			return Value{}, err
		}
		return NewString(s)
	case KindIdentifier:
		s, err := ReadCString(r)
		if err != nil {
			return Value{}, err
		}
		return NewIdentifier(s)
	case KindType:
		t, err := DecodeType(r)
		if err != nil {
			return Value{}, err
		}
		return NewType(t), nil
	default:
		return Value{}, fmt.Errorf("literal pool tag %d is not decodable", tagByte)
	}
}
