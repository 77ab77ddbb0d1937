package dagcbor

import (
	"encoding/binary"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/multiformats/go-multibase"
)

type decoder struct {
	data     []byte
	maxDepth int
}

// decodeValue reads one complete DAG-CBOR value starting at pos and
// returns it along with the position just past it.
func (d *decoder) decodeValue(pos int) (ipld.Node, int, *ipld.DecodeError) {
	return d.decodeValueAt(pos, 0)
}

func (d *decoder) decodeValueAt(pos, depth int) (ipld.Node, int, *ipld.DecodeError) {
	if depth > d.maxDepth {
		return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.DepthExceeded, pos, "nesting too deep")
	}
	major, ai, next, err := readInitial(d.data, pos)
	if err != nil {
		return ipld.Node{}, pos, err
	}

	switch major {
	case majUint:
		arg, indef, next, err := readArgument(d.data, next, ai)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		if indef {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		return ipld.Uint(arg), next, nil

	case majNegInt:
		arg, indef, next, err := readArgument(d.data, next, ai)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		if indef {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		// Value is -(arg+1); arg can be up to 2^64-1 so this can reach
		// -2^64, one bit past what an int64 can hold.
		v := new(big.Int).SetUint64(arg)
		v.Add(v, big.NewInt(1))
		v.Neg(v)
		return ipld.BigInt(v), next, nil

	case majBytes:
		b, next, err := d.readByteRun(next, ai, pos)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		return ipld.Bytes(b), next, nil

	case majText:
		b, next, err := d.readByteRun(next, ai, pos)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		if !utf8.Valid(b) {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.InvalidUTF8, pos, "text string is not valid UTF-8")
		}
		return ipld.String(string(b)), next, nil

	case majArray:
		arg, indef, afterLen, err := readArgument(d.data, next, ai)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		if indef {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		// Each item takes at least one byte, so arg can't legitimately
		// exceed the remaining input length. Reject before allocating.
		if arg > uint64(len(d.data)-afterLen) {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.LengthMismatch, pos, "array length exceeds remaining input")
		}
		items := make([]ipld.Node, 0, arg)
		p := afterLen
		for i := uint64(0); i < arg; i++ {
			var item ipld.Node
			item, p, err = d.decodeValueAt(p, depth+1)
			if err != nil {
				return ipld.Node{}, pos, err
			}
			items = append(items, item)
		}
		return ipld.List(items), p, nil

	case majMap:
		arg, indef, afterLen, err := readArgument(d.data, next, ai)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		if indef {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		// Each pair needs at least a 1-byte key and a 1-byte value.
		if arg > uint64(len(d.data)-afterLen)/2 {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.LengthMismatch, pos, "map length exceeds remaining input")
		}
		m := ipld.NewMapCapacity(int(arg))
		p := afterLen
		prevKey := ""
		for i := uint64(0); i < arg; i++ {
			kMajor, kAI, kNext, kErr := readInitial(d.data, p)
			if kErr != nil {
				return ipld.Node{}, pos, kErr
			}
			if kMajor != majText {
				return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, p, "map keys must be text strings")
			}
			kBytes, afterKey, kErr := d.readByteRun(kNext, kAI, p)
			if kErr != nil {
				return ipld.Node{}, pos, kErr
			}
			if !utf8.Valid(kBytes) {
				return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.InvalidUTF8, p, "map key is not valid UTF-8")
			}
			key := string(kBytes)
			if i > 0 {
				if key == prevKey {
					return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.DuplicateKey, p, "duplicate map key "+quote(key))
				}
				if key < prevKey {
					return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, p, "map keys out of byte-lexicographic order")
				}
			}
			prevKey = key

			var val ipld.Node
			val, p, err = d.decodeValueAt(afterKey, depth+1)
			if err != nil {
				return ipld.Node{}, pos, err
			}
			m.Set(key, val)
		}
		return ipld.MapNode(m), p, nil

	case majTag:
		tagNum, indef, afterTag, err := readArgument(d.data, next, ai)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		if indef {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		if tagNum != linkTagNumber {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedTag, pos, "only tag 42 is permitted")
		}
		cMajor, cAI, cNext, cErr := readInitial(d.data, afterTag)
		if cErr != nil {
			return ipld.Node{}, pos, cErr
		}
		if cMajor != majBytes {
			return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, afterTag, "tag 42 content must be a byte string")
		}
		payload, after, cErr := d.readByteRun(cNext, cAI, afterTag)
		if cErr != nil {
			return ipld.Node{}, pos, cErr
		}
		c, cErr := parseLinkPayload(payload, afterTag)
		if cErr != nil {
			return ipld.Node{}, pos, cErr
		}
		return ipld.Link(c), after, nil

	case majSimple:
		n, next, err := d.decodeSimple(next, ai, pos)
		return n, next, err
	}

	return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "unknown major type")
}

// readByteRun reads the length-delimited payload for a byte or text
// string major type, validating the declared length against remaining
// input before allocating.
func (d *decoder) readByteRun(next int, ai byte, itemStart int) ([]byte, int, *ipld.DecodeError) {
	arg, indef, afterLen, err := readArgument(d.data, next, ai)
	if err != nil {
		return nil, next, err
	}
	if indef {
		return nil, next, ipld.NewDecodeErrorAt(ipld.NotCanonical, itemStart, "indefinite length not allowed")
	}
	if arg > uint64(len(d.data)-afterLen) {
		return nil, next, ipld.NewDecodeErrorAt(ipld.LengthMismatch, itemStart, "declared length exceeds remaining input")
	}
	b := d.data[afterLen : afterLen+int(arg)]
	return b, afterLen + int(arg), nil
}

func (d *decoder) decodeSimple(next int, ai byte, itemStart int) (ipld.Node, int, *ipld.DecodeError) {
	switch ai {
	case 20:
		return ipld.Bool(false), next, nil
	case 21:
		return ipld.Bool(true), next, nil
	case 22:
		return ipld.Null(), next, nil
	case 23:
		return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.UnsupportedType, itemStart, "simple value 'undefined' not permitted")
	case 24:
		return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.UnsupportedType, itemStart, "only false/true/null simple values are permitted")
	case 25:
		return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.UnsupportedType, itemStart, "half-precision floats are not permitted")
	case 26:
		return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.UnsupportedType, itemStart, "single-precision floats are not permitted")
	case 27:
		if next+8 > len(d.data) {
			return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, itemStart, "truncated float64")
		}
		u := binary.BigEndian.Uint64(d.data[next : next+8])
		f := math.Float64frombits(u)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.FloatNotFinite, itemStart, "NaN/Inf not permitted")
		}
		return ipld.Float(f), next + 8, nil
	case 31:
		return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.NotCanonical, itemStart, "unexpected break marker")
	default:
		return ipld.Node{}, next, ipld.NewDecodeErrorAt(ipld.UnsupportedType, itemStart, "reserved or unsupported simple value")
	}
}

// parseLinkPayload validates and strips the tag-42 payload's leading
// multibase-identity byte. The payload is raw bytes rather than a
// multibase text string, so it is decoded by hand rather than via
// multibase.Decode (which expects a string whose first byte is the
// encoding's ASCII/code prefix followed by base-encoded text); the
// identity base's "encoding" is simply the identity function on the
// remaining bytes, so multibase.Encode(multibase.Identity, ...) is used
// on the encode side to produce that exact shape, and this function
// checks the prefix byte against multibase.Identity rather than a bare
// 0x00 literal.
func parseLinkPayload(payload []byte, at int) (cid.Cid, *ipld.DecodeError) {
	if len(payload) == 0 {
		return cid.Undef, ipld.NewDecodeErrorAt(ipld.InvalidCid, at, "empty link payload")
	}
	if multibase.Encoding(payload[0]) != multibase.Identity {
		return cid.Undef, ipld.NewDecodeErrorAt(ipld.InvalidCid, at, "link payload missing multibase-identity prefix")
	}
	c, err := cid.Cast(payload[1:])
	if err != nil {
		return cid.Undef, &ipld.DecodeError{Kind: ipld.InvalidCid, Offset: at, Msg: "invalid cid: " + err.Error(), Err: err}
	}
	return c, nil
}

func quote(s string) string { return `"` + s + `"` }
