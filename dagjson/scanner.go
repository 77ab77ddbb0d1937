package dagjson

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
)

// scanner walks DAG-JSON bytes without building a Node tree, calling fn
// for each link it finds, in the same order ipld.WalkLinks(decoded)
// would (spec section 8 property 3).
type scanner struct {
	data     []byte
	maxDepth int
	fn       func(cid.Cid) error
}

func (s *scanner) skip(pos, depth int) (int, *ipld.DecodeError) {
	if depth > s.maxDepth {
		return pos, ipld.NewDecodeErrorAt(ipld.DepthExceeded, pos, "nesting too deep")
	}
	pos = skipWS(s.data, pos)
	if pos >= len(s.data) {
		return pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "expected a value")
	}
	switch s.data[pos] {
	case 'n':
		return expectLiteral(s.data, pos, "null")
	case 't':
		return expectLiteral(s.data, pos, "true")
	case 'f':
		return expectLiteral(s.data, pos, "false")
	case '"':
		_, next, err := parseString(s.data, pos)
		return next, err
	case '[':
		return s.skipArray(pos, depth)
	case '{':
		return s.skipObject(pos, depth)
	default:
		if s.data[pos] == '-' || (s.data[pos] >= '0' && s.data[pos] <= '9') {
			d := &decoder{data: s.data}
			_, next, err := d.parseNumber(pos)
			return next, err
		}
		return pos, unexpectedByteErr(pos)
	}
}

func (s *scanner) skipArray(pos, depth int) (int, *ipld.DecodeError) {
	start := pos
	pos++
	pos = skipWS(s.data, pos)
	if pos < len(s.data) && s.data[pos] == ']' {
		return pos + 1, nil
	}
	for {
		next, err := s.skip(pos, depth+1)
		if err != nil {
			return start, err
		}
		pos = skipWS(s.data, next)
		if pos >= len(s.data) {
			return start, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "unterminated array")
		}
		switch s.data[pos] {
		case ',':
			pos++
		case ']':
			return pos + 1, nil
		default:
			return start, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "expected ',' or ']'")
		}
	}
}

func (s *scanner) skipObject(pos, depth int) (int, *ipld.DecodeError) {
	start := pos
	type entry struct {
		key   string
		start int
	}
	var entries []entry
	pos++
	pos = skipWS(s.data, pos)
	if pos < len(s.data) && s.data[pos] == '}' {
		return pos + 1, nil
	}
	prevKey := ""
	for i := 0; ; i++ {
		key, next, err := parseString(s.data, pos)
		if err != nil {
			return start, err
		}
		pos = next
		pos, err = expect(s.data, pos, ':', "':'")
		if err != nil {
			return start, err
		}
		valStart := skipWS(s.data, pos)
		next2, err := s.skip(pos, depth+1)
		if err != nil {
			return start, err
		}
		pos = skipWS(s.data, next2)
		if i > 0 {
			if key == prevKey {
				return start, ipld.NewDecodeErrorAt(ipld.DuplicateKey, pos, "duplicate map key")
			}
			if key < prevKey {
				return start, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "map keys out of byte-lexicographic order")
			}
		}
		prevKey = key
		entries = append(entries, entry{key, valStart})

		if pos >= len(s.data) {
			return start, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "unterminated object")
		}
		switch s.data[pos] {
		case ',':
			pos++
			continue
		case '}':
			pos++
			if len(entries) == 1 && entries[0].key == "/" {
				if err := s.reportIfLink(entries[0].start); err != nil {
					return start, err
				}
			}
			return pos, nil
		default:
			return start, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "expected ',' or '}'")
		}
	}
}

// reportIfLink re-parses the already-validated value span of a single
// "/"-keyed object to decide whether it is a link (and, if so, reports
// it) or a bytes form (which carries no links).
func (s *scanner) reportIfLink(start int) *ipld.DecodeError {
	d := &decoder{data: s.data, maxDepth: s.maxDepth}
	v, _, err := d.parseValue(start, 0)
	if err != nil {
		return err
	}
	n, rerr := resolveReservedForm(v, start)
	if rerr != nil {
		return rerr
	}
	if n.Kind() == ipld.KindLink {
		if err := s.fn(n.AsLink()); err != nil {
			return ipld.NewDecodeErrorAt(ipld.SchemaViolation, start, err.Error())
		}
	}
	return nil
}
