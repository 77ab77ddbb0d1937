package dagcbor

import (
	"encoding/binary"

	"github.com/ipld/libipld/ipld"
)

// majorType and additionalInfo split a CBOR initial byte, per RFC 8949
// section 3.
type majorType byte

const (
	majUint    majorType = 0
	majNegInt  majorType = 1
	majBytes   majorType = 2
	majText    majorType = 3
	majArray   majorType = 4
	majMap     majorType = 5
	majTag     majorType = 6
	majSimple  majorType = 7
)

// readInitial splits data[pos] into its major type and additional info,
// failing with UnexpectedEOF if pos is out of range.
func readInitial(data []byte, pos int) (majorType, byte, int, *ipld.DecodeError) {
	if pos >= len(data) {
		return 0, 0, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "expected a value")
	}
	b := data[pos]
	return majorType(b >> 5), b & 0x1f, pos + 1, nil
}

// readArgument reads the length/value argument that follows an initial
// byte for major types 0 through 6 (major type 7 encodes simple values
// and floats differently; see decodeSimple). It enforces DAG-CBOR's
// minimal-encoding rule: the argument must use the shortest of the five
// forms (direct in additionalInfo, or 1/2/4/8 trailing bytes) that can
// represent its value.
//
// ai == 31 (indefinite length) is reported via the indefinite return;
// DAG-CBOR forbids it everywhere, so every caller treats indefinite ==
// true as NotCanonical.
func readArgument(data []byte, pos int, ai byte) (arg uint64, indefinite bool, next int, err *ipld.DecodeError) {
	switch {
	case ai <= 23:
		return uint64(ai), false, pos, nil
	case ai == 24:
		if pos+1 > len(data) {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated 1-byte argument")
		}
		v := uint64(data[pos])
		if v < 24 {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "1-byte argument encodes a value representable directly")
		}
		return v, false, pos + 1, nil
	case ai == 25:
		if pos+2 > len(data) {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated 2-byte argument")
		}
		v := uint64(binary.BigEndian.Uint16(data[pos : pos+2]))
		if v < 1<<8 {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "2-byte argument encodes a value representable in 1 byte")
		}
		return v, false, pos + 2, nil
	case ai == 26:
		if pos+4 > len(data) {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated 4-byte argument")
		}
		v := uint64(binary.BigEndian.Uint32(data[pos : pos+4]))
		if v < 1<<16 {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "4-byte argument encodes a value representable in 2 bytes")
		}
		return v, false, pos + 4, nil
	case ai == 27:
		if pos+8 > len(data) {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated 8-byte argument")
		}
		v := binary.BigEndian.Uint64(data[pos : pos+8])
		if v < 1<<32 {
			return 0, false, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "8-byte argument encodes a value representable in 4 bytes")
		}
		return v, false, pos + 8, nil
	case ai == 31:
		return 0, true, pos, nil
	default: // 28, 29, 30: reserved
		return 0, false, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos-1, "reserved additional info value")
	}
}

// putArgument appends the minimal CBOR header for (major, arg) to buf.
func putArgument(buf []byte, major majorType, arg uint64) []byte {
	m := byte(major) << 5
	switch {
	case arg <= 23:
		return append(buf, m|byte(arg))
	case arg <= 0xff:
		return append(buf, m|24, byte(arg))
	case arg <= 0xffff:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(arg))
		return append(append(buf, m|25), b...)
	case arg <= 0xffffffff:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(arg))
		return append(append(buf, m|26), b...)
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, arg)
		return append(append(buf, m|27), b...)
	}
}
