package dagjson

import (
	"encoding/base64"
	"math"
	"math/big"
	"strconv"

	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
)

type decoder struct {
	data     []byte
	maxDepth int
}

func (d *decoder) parseValue(pos, depth int) (ipld.Node, int, *ipld.DecodeError) {
	if depth > d.maxDepth {
		return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.DepthExceeded, pos, "nesting too deep")
	}
	pos = skipWS(d.data, pos)
	if pos >= len(d.data) {
		return ipld.Node{}, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "expected a value")
	}
	switch d.data[pos] {
	case 'n':
		next, err := expectLiteral(d.data, pos, "null")
		return ipld.Null(), next, err
	case 't':
		next, err := expectLiteral(d.data, pos, "true")
		return ipld.Bool(true), next, err
	case 'f':
		next, err := expectLiteral(d.data, pos, "false")
		return ipld.Bool(false), next, err
	case '"':
		s, next, err := parseString(d.data, pos)
		if err != nil {
			return ipld.Node{}, pos, err
		}
		return ipld.String(s), next, nil
	case '[':
		return d.parseArray(pos, depth)
	case '{':
		return d.parseObject(pos, depth)
	default:
		if d.data[pos] == '-' || (d.data[pos] >= '0' && d.data[pos] <= '9') {
			return d.parseNumber(pos)
		}
		return ipld.Node{}, pos, unexpectedByteErr(pos)
	}
}

// unexpectedByteErr reports a byte that parseValue's switch could not
// place. Whitespace never reaches here: every call site skips it first.
func unexpectedByteErr(pos int) *ipld.DecodeError {
	return ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "unexpected character")
}

func (d *decoder) parseArray(pos, depth int) (ipld.Node, int, *ipld.DecodeError) {
	start := pos
	pos++ // consume '['
	var items []ipld.Node
	pos = skipWS(d.data, pos)
	if pos < len(d.data) && d.data[pos] == ']' {
		return ipld.List(nil), pos + 1, nil
	}
	for {
		item, next, err := d.parseValue(pos, depth+1)
		if err != nil {
			return ipld.Node{}, start, err
		}
		items = append(items, item)
		pos = skipWS(d.data, next)
		if pos >= len(d.data) {
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "unterminated array")
		}
		switch d.data[pos] {
		case ',':
			pos++
		case ']':
			return ipld.List(items), pos + 1, nil
		default:
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "expected ',' or ']'")
		}
	}
}

func (d *decoder) parseObject(pos, depth int) (ipld.Node, int, *ipld.DecodeError) {
	start := pos
	type entry struct {
		key string
		val ipld.Node
	}
	var entries []entry
	pos++ // consume '{'
	pos = skipWS(d.data, pos)
	if pos < len(d.data) && d.data[pos] == '}' {
		return ipld.MapNode(ipld.NewMap()), pos + 1, nil
	}
	prevKey := ""
	for i := 0; ; i++ {
		key, next, err := parseString(d.data, pos)
		if err != nil {
			return ipld.Node{}, start, err
		}
		pos = next
		pos, err = expect(d.data, pos, ':', "':'")
		if err != nil {
			return ipld.Node{}, start, err
		}
		val, next2, err := d.parseValue(pos, depth+1)
		if err != nil {
			return ipld.Node{}, start, err
		}
		pos = skipWS(d.data, next2)
		if i > 0 {
			if key == prevKey {
				return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.DuplicateKey, pos, "duplicate map key "+strconv.Quote(key))
			}
			if key < prevKey {
				return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "map keys out of byte-lexicographic order")
			}
		}
		prevKey = key
		entries = append(entries, entry{key, val})

		if pos >= len(d.data) {
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "unterminated object")
		}
		switch d.data[pos] {
		case ',':
			pos++
			continue
		case '}':
			pos++
			if len(entries) == 1 && entries[0].key == "/" {
				n, rerr := resolveReservedForm(entries[0].val, start)
				if rerr != nil {
					return ipld.Node{}, start, rerr
				}
				return n, pos, nil
			}
			m := ipld.NewMapCapacity(len(entries))
			for _, e := range entries {
				m.Set(e.key, e.val)
			}
			return ipld.MapNode(m), pos, nil
		default:
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "expected ',' or '}'")
		}
	}
}

// resolveReservedForm interprets the value of a single-key {"/": ...}
// object as either a link (string value) or bytes (single-key {"bytes":
// "<base64>"} object value).
func resolveReservedForm(v ipld.Node, at int) (ipld.Node, *ipld.DecodeError) {
	if v.Kind() == ipld.KindString {
		c, err := cid.Decode(v.AsString())
		if err != nil {
			return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.InvalidCid, at, "invalid cid string: "+err.Error())
		}
		if c.String() != v.AsString() {
			return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.NotCanonical, at, "cid is not in its default string form")
		}
		return ipld.Link(c), nil
	}
	if v.Kind() == ipld.KindMap {
		m := v.AsMap()
		if m.Len() == 1 {
			if bv, ok := m.Get("bytes"); ok && bv.Kind() == ipld.KindString {
				b, err := base64.RawStdEncoding.DecodeString(bv.AsString())
				if err != nil {
					return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.UnsupportedType, at, "invalid base64 in bytes form: "+err.Error())
				}
				if base64.RawStdEncoding.EncodeToString(b) != bv.AsString() {
					return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.NotCanonical, at, "base64 in bytes form is not canonical")
				}
				return ipld.Bytes(b), nil
			}
		}
	}
	return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.SchemaViolation, at, `reserved "/" key must hold a link string or a {"bytes":...} object`)
}

func (d *decoder) parseNumber(pos int) (ipld.Node, int, *ipld.DecodeError) {
	start := pos
	if pos < len(d.data) && d.data[pos] == '-' {
		pos++
	}
	digitsStart := pos
	for pos < len(d.data) && d.data[pos] >= '0' && d.data[pos] <= '9' {
		pos++
	}
	if pos == digitsStart {
		return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.UnsupportedType, start, "invalid number")
	}
	if pos-digitsStart > 1 && d.data[digitsStart] == '0' {
		return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.NotCanonical, start, "number has a leading zero")
	}
	isFloat := false
	if pos < len(d.data) && d.data[pos] == '.' {
		isFloat = true
		pos++
		fracStart := pos
		for pos < len(d.data) && d.data[pos] >= '0' && d.data[pos] <= '9' {
			pos++
		}
		if pos == fracStart {
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.UnsupportedType, start, "invalid number, digits required after '.'")
		}
	}
	if pos < len(d.data) && (d.data[pos] == 'e' || d.data[pos] == 'E') {
		isFloat = true
		pos++
		if pos < len(d.data) && (d.data[pos] == '+' || d.data[pos] == '-') {
			pos++
		}
		expStart := pos
		for pos < len(d.data) && d.data[pos] >= '0' && d.data[pos] <= '9' {
			pos++
		}
		if pos == expStart {
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.UnsupportedType, start, "invalid number, digits required in exponent")
		}
	}
	raw := string(d.data[start:pos])
	if isFloat {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.UnsupportedType, start, "unparseable float")
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.FloatNotFinite, start, "NaN/Inf not permitted")
		}
		if raw != formatFloat(f) {
			return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.NotCanonical, start, "float is not in its shortest canonical form")
		}
		return ipld.Float(f), pos, nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.UnsupportedType, start, "unparseable integer")
	}
	maxVal := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	minVal := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 63))
	if v.Cmp(maxVal) > 0 || v.Cmp(minVal) < 0 {
		return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.IntegerOutOfRange, start, "integer outside [-2^63, 2^64-1]")
	}
	if raw != v.String() {
		return ipld.Node{}, start, ipld.NewDecodeErrorAt(ipld.NotCanonical, start, "integer is not in canonical form")
	}
	return ipld.BigInt(v), pos, nil
}
