package dagcbor

import (
	"unicode/utf8"

	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
)

// scanner walks DAG-CBOR bytes without building a Node tree, calling fn
// for each tag-42 link it finds. It applies the same structural rules as
// decoder (minimal encoding, key order, UTF-8, finite floats) so that a
// document References rejects is one decoder would also reject — per
// spec section 8 property 3, the set and order of links it reports must
// match ipld.WalkLinks(decoded value).
type scanner struct {
	data     []byte
	maxDepth int
	fn       func(cid.Cid) error
}

func (s *scanner) skip(pos, depth int) (int, *ipld.DecodeError) {
	if depth > s.maxDepth {
		return pos, ipld.NewDecodeErrorAt(ipld.DepthExceeded, pos, "nesting too deep")
	}
	major, ai, next, err := readInitial(s.data, pos)
	if err != nil {
		return pos, err
	}

	switch major {
	case majUint, majNegInt:
		_, indef, next, err := readArgument(s.data, next, ai)
		if err != nil {
			return pos, err
		}
		if indef {
			return pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		return next, nil

	case majBytes, majText:
		_, next, err := s.readRun(next, ai, pos, major == majText)
		if err != nil {
			return pos, err
		}
		return next, nil

	case majArray:
		arg, indef, afterLen, err := readArgument(s.data, next, ai)
		if err != nil {
			return pos, err
		}
		if indef {
			return pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		if arg > uint64(len(s.data)-afterLen) {
			return pos, ipld.NewDecodeErrorAt(ipld.LengthMismatch, pos, "array length exceeds remaining input")
		}
		p := afterLen
		for i := uint64(0); i < arg; i++ {
			p, err = s.skip(p, depth+1)
			if err != nil {
				return pos, err
			}
		}
		return p, nil

	case majMap:
		arg, indef, afterLen, err := readArgument(s.data, next, ai)
		if err != nil {
			return pos, err
		}
		if indef {
			return pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		if arg > uint64(len(s.data)-afterLen)/2 {
			return pos, ipld.NewDecodeErrorAt(ipld.LengthMismatch, pos, "map length exceeds remaining input")
		}
		p := afterLen
		prevKey := ""
		for i := uint64(0); i < arg; i++ {
			kMajor, kAI, kNext, kErr := readInitial(s.data, p)
			if kErr != nil {
				return pos, kErr
			}
			if kMajor != majText {
				return pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, p, "map keys must be text strings")
			}
			keyBytes, afterKey, kErr := s.readRun(kNext, kAI, p, true)
			if kErr != nil {
				return pos, kErr
			}
			key := string(keyBytes)
			if i > 0 {
				if key == prevKey {
					return pos, ipld.NewDecodeErrorAt(ipld.DuplicateKey, p, "duplicate map key "+quote(key))
				}
				if key < prevKey {
					return pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, p, "map keys out of byte-lexicographic order")
				}
			}
			prevKey = key
			p, err = s.skip(afterKey, depth+1)
			if err != nil {
				return pos, err
			}
		}
		return p, nil

	case majTag:
		tagNum, indef, afterTag, err := readArgument(s.data, next, ai)
		if err != nil {
			return pos, err
		}
		if indef {
			return pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "indefinite length not allowed")
		}
		if tagNum != linkTagNumber {
			return pos, ipld.NewDecodeErrorAt(ipld.UnsupportedTag, pos, "only tag 42 is permitted")
		}
		cMajor, cAI, cNext, cErr := readInitial(s.data, afterTag)
		if cErr != nil {
			return pos, cErr
		}
		if cMajor != majBytes {
			return pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, afterTag, "tag 42 content must be a byte string")
		}
		payload, after, cErr := s.readRun(cNext, cAI, afterTag, false)
		if cErr != nil {
			return pos, cErr
		}
		c, cErr := parseLinkPayload(payload, afterTag)
		if cErr != nil {
			return pos, cErr
		}
		if err := s.fn(c); err != nil {
			return pos, ipld.NewDecodeErrorAt(ipld.SchemaViolation, afterTag, err.Error())
		}
		return after, nil

	case majSimple:
		d := &decoder{data: s.data, maxDepth: s.maxDepth}
		_, next, err := d.decodeSimple(next, ai, pos)
		if err != nil {
			return pos, err
		}
		return next, nil
	}

	return pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "unknown major type")
}

func (s *scanner) readRun(next int, ai byte, itemStart int, isText bool) ([]byte, int, *ipld.DecodeError) {
	arg, indef, afterLen, err := readArgument(s.data, next, ai)
	if err != nil {
		return nil, next, err
	}
	if indef {
		return nil, next, ipld.NewDecodeErrorAt(ipld.NotCanonical, itemStart, "indefinite length not allowed")
	}
	if arg > uint64(len(s.data)-afterLen) {
		return nil, next, ipld.NewDecodeErrorAt(ipld.LengthMismatch, itemStart, "declared length exceeds remaining input")
	}
	b := s.data[afterLen : afterLen+int(arg)]
	if isText && !utf8.Valid(b) {
		return nil, next, ipld.NewDecodeErrorAt(ipld.InvalidUTF8, itemStart, "text string is not valid UTF-8")
	}
	return b, afterLen + int(arg), nil
}
