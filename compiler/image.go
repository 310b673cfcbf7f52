package compiler

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/xvr-lang/xvr/value"
)

// image.go implements spec.md §6 "Bytecode image format (big picture,
// byte-exact)": Encode turns a Bytecode into the wire layout (header,
// literal pool, function section, code section, each section-terminated);
// Decode is its inverse, enforcing the version-check policy spec.md §6
// describes. Bytecode.Exports is not part of the image: a decoded Bytecode
// has no Exports. This is the "collate(compiler, out_size) → byte buffer" /
// "run(interpreter, bytecode, length) reads the header..." contract from
// spec.md §4.5/§4.6, made concrete as a byte buffer rather than staying an
// in-memory Go struct.

// RuntimeMajor, RuntimeMinor, RuntimePatch identify this build's bytecode
// dialect, embedded in every image's header (spec.md §6).
const (
	RuntimeMajor byte = 0
	RuntimeMinor byte = 1
	RuntimePatch byte = 0
)

// BuildTimestamp is embedded in every image's header. A mismatch against a
// loader's own BuildTimestamp is a non-fatal condition (spec.md §6
// "Build-timestamp mismatch produces a verbose-mode warning only"); it
// carries no parsed meaning here beyond round-tripping. Overridable at link
// time: -ldflags "-X github.com/xvr-lang/xvr/compiler.BuildTimestamp=...".
var BuildTimestamp = "dev"

// Section and function terminators (spec.md §6). SECTION_END's value (255)
// is spelled out by the spec; FN_END and the code section's trailing EOF
// marker are not, so they're placed elsewhere in the unused tail of the
// byte range well clear of any live Opcode value.
const (
	sectionEnd byte = 0xFF
	fnEnd      byte = 0xFE
	eofMarker  byte = 0xFD
)

func writeU16(buf *bytes.Buffer, n int) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(n))
	buf.Write(b[:])
}

func readU16(r *bytes.Reader) (int, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("truncated length: %w", err)
	}
	return int(binary.BigEndian.Uint16(b[:])), nil
}

// encode serializes one function-section entry: name, parameter names and
// types, the rest-parameter (if any), return types, then the function's own
// headerless code. spec.md §3's function-subsection diagram shows only the
// length-prefixed code bytes; this parameter/return-type preamble is a
// necessary, documented extension, since the interpreter's FN_DECL handling
// (interp.callFunction) binds parameters from this metadata and nothing in
// the emitted code stream carries it (VisitFnDecl compiles only the body).
func (fn FunctionProto) encode() ([]byte, error) {
	var buf bytes.Buffer
	value.WriteCString(&buf, fn.Name)

	if len(fn.ParamNames) > 0xFF {
		return nil, fmt.Errorf("function %q has more than 255 parameters", fn.Name)
	}
	buf.WriteByte(byte(len(fn.ParamNames)))
	for i, pname := range fn.ParamNames {
		value.WriteCString(&buf, pname)
		t := value.Type{TypeOf: value.KindAny}
		if i < len(fn.ParamTypes) {
			t = fn.ParamTypes[i]
		}
		t.Encode(&buf)
	}

	if fn.HasRestParam {
		buf.WriteByte(1)
		value.WriteCString(&buf, fn.RestParamName)
	} else {
		buf.WriteByte(0)
	}

	if len(fn.ReturnTypes) > 0xFF {
		return nil, fmt.Errorf("function %q has more than 255 return types", fn.Name)
	}
	buf.WriteByte(byte(len(fn.ReturnTypes)))
	for _, rt := range fn.ReturnTypes {
		rt.Encode(&buf)
	}

	buf.Write(fn.Code)
	return buf.Bytes(), nil
}

func decodeFunctionProto(payload []byte) (FunctionProto, error) {
	r := bytes.NewReader(payload)

	name, err := value.ReadCString(r)
	if err != nil {
		return FunctionProto{}, err
	}
	proto := FunctionProto{Name: name}

	paramCount, err := r.ReadByte()
	if err != nil {
		return FunctionProto{}, fmt.Errorf("truncated function %q: %w", name, err)
	}
	for i := 0; i < int(paramCount); i++ {
		pname, err := value.ReadCString(r)
		if err != nil {
			return FunctionProto{}, err
		}
		t, err := value.DecodeType(r)
		if err != nil {
			return FunctionProto{}, err
		}
		proto.ParamNames = append(proto.ParamNames, pname)
		proto.ParamTypes = append(proto.ParamTypes, *t)
	}

	hasRest, err := r.ReadByte()
	if err != nil {
		return FunctionProto{}, fmt.Errorf("truncated function %q: %w", name, err)
	}
	if hasRest != 0 {
		proto.HasRestParam = true
		rname, err := value.ReadCString(r)
		if err != nil {
			return FunctionProto{}, err
		}
		proto.RestParamName = rname
	}

	returnCount, err := r.ReadByte()
	if err != nil {
		return FunctionProto{}, fmt.Errorf("truncated function %q: %w", name, err)
	}
	for i := 0; i < int(returnCount); i++ {
		t, err := value.DecodeType(r)
		if err != nil {
			return FunctionProto{}, err
		}
		proto.ReturnTypes = append(proto.ReturnTypes, *t)
	}

	code := make([]byte, r.Len())
	if _, err := io.ReadFull(r, code); err != nil {
		return FunctionProto{}, err
	}
	proto.Code = code
	return proto, nil
}

// Encode serializes bc into the image spec.md §6 describes: a version
// header, a literal pool, a function section, and a code section, each
// ending in SECTION_END. The caller owns the returned buffer, mirroring
// spec.md §4.5's "collate(compiler, out_size) → byte buffer" contract.
func (bc Bytecode) Encode() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(RuntimeMajor)
	buf.WriteByte(RuntimeMinor)
	buf.WriteByte(RuntimePatch)
	value.WriteCString(&buf, BuildTimestamp)
	buf.WriteByte(sectionEnd)

	if len(bc.Literals) > 0xFFFF {
		return nil, fmt.Errorf("literal pool exceeds 65535 entries")
	}
	writeU16(&buf, len(bc.Literals))
	for i, lit := range bc.Literals {
		if err := lit.EncodeLiteral(&buf); err != nil {
			return nil, fmt.Errorf("literal %d: %w", i, err)
		}
	}
	buf.WriteByte(sectionEnd)

	if len(bc.Functions) > 0xFFFF {
		return nil, fmt.Errorf("function section exceeds 65535 entries")
	}
	var fnBuf bytes.Buffer
	for _, fn := range bc.Functions {
		encoded, err := fn.encode()
		if err != nil {
			return nil, err
		}
		if len(encoded) > 0xFFFF {
			return nil, fmt.Errorf("function %q exceeds 65535 bytes", fn.Name)
		}
		writeU16(&fnBuf, len(encoded))
		fnBuf.Write(encoded)
		fnBuf.WriteByte(fnEnd)
	}
	writeU16(&buf, len(bc.Functions))
	writeU16(&buf, fnBuf.Len())
	buf.Write(fnBuf.Bytes())
	buf.WriteByte(sectionEnd)

	buf.Write(bc.Code)
	buf.WriteByte(sectionEnd)
	buf.WriteByte(eofMarker)

	return buf.Bytes(), nil
}

// Decode reads an image written by Encode, enforcing spec.md §6's
// version-check policy: a major mismatch or a newer minor than this
// runtime supports is rejected outright.
func Decode(data []byte) (Bytecode, error) {
	r := bytes.NewReader(data)

	major, err := r.ReadByte()
	if err != nil {
		return Bytecode{}, fmt.Errorf("truncated header: %w", err)
	}
	minor, err := r.ReadByte()
	if err != nil {
		return Bytecode{}, fmt.Errorf("truncated header: %w", err)
	}
	patch, err := r.ReadByte()
	if err != nil {
		return Bytecode{}, fmt.Errorf("truncated header: %w", err)
	}
	if _, err := value.ReadCString(r); err != nil {
		return Bytecode{}, fmt.Errorf("truncated header: %w", err)
	}
	if end, err := r.ReadByte(); err != nil || end != sectionEnd {
		return Bytecode{}, fmt.Errorf("malformed header terminator")
	}
	if major != RuntimeMajor || minor > RuntimeMinor {
		return Bytecode{}, fmt.Errorf(
			"bytecode version %d.%d.%d is incompatible with runtime version %d.%d.%d",
			major, minor, patch, RuntimeMajor, RuntimeMinor, RuntimePatch)
	}

	litCount, err := readU16(r)
	if err != nil {
		return Bytecode{}, err
	}
	literals := make([]value.Value, 0, litCount)
	for i := 0; i < litCount; i++ {
		lit, err := value.DecodeLiteral(r)
		if err != nil {
			return Bytecode{}, fmt.Errorf("literal %d: %w", i, err)
		}
		literals = append(literals, lit)
	}
	if end, err := r.ReadByte(); err != nil || end != sectionEnd {
		return Bytecode{}, fmt.Errorf("malformed literal pool terminator")
	}

	fnCount, err := readU16(r)
	if err != nil {
		return Bytecode{}, err
	}
	if _, err := readU16(r); err != nil { // aggregate byte size, not needed to decode
		return Bytecode{}, err
	}
	functions := make([]FunctionProto, 0, fnCount)
	for i := 0; i < fnCount; i++ {
		length, err := readU16(r)
		if err != nil {
			return Bytecode{}, err
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return Bytecode{}, fmt.Errorf("function %d: %w", i, err)
		}
		marker, err := r.ReadByte()
		if err != nil || marker != fnEnd {
			return Bytecode{}, fmt.Errorf("function %d missing FN_END marker", i)
		}
		proto, err := decodeFunctionProto(payload)
		if err != nil {
			return Bytecode{}, fmt.Errorf("function %d: %w", i, err)
		}
		functions = append(functions, proto)
	}
	if end, err := r.ReadByte(); err != nil || end != sectionEnd {
		return Bytecode{}, fmt.Errorf("malformed function section terminator")
	}

	if r.Len() < 2 {
		return Bytecode{}, fmt.Errorf("truncated code section")
	}
	code := make([]byte, r.Len()-2)
	if _, err := io.ReadFull(r, code); err != nil {
		return Bytecode{}, err
	}
	if end, err := r.ReadByte(); err != nil || end != sectionEnd {
		return Bytecode{}, fmt.Errorf("malformed code section terminator")
	}
	if end, err := r.ReadByte(); err != nil || end != eofMarker {
		return Bytecode{}, fmt.Errorf("missing EOF marker")
	}

	return Bytecode{Literals: literals, Functions: functions, Code: code}, nil
}
