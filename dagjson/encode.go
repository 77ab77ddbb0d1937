package dagjson

import (
	"encoding/base64"
	"math"
	"math/big"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/ipld/libipld/ipld"
)

type encoder struct {
	buf []byte
}

func (e *encoder) encode(n ipld.Node) *ipld.EncodeError {
	switch n.Kind() {
	case ipld.KindNull:
		e.buf = append(e.buf, "null"...)
		return nil

	case ipld.KindBool:
		if n.AsBool() {
			e.buf = append(e.buf, "true"...)
		} else {
			e.buf = append(e.buf, "false"...)
		}
		return nil

	case ipld.KindInt:
		v := n.AsInt()
		maxVal := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
		minVal := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 63))
		if v.Cmp(maxVal) > 0 || v.Cmp(minVal) < 0 {
			return ipld.NewEncodeError(ipld.IntegerOutOfRange, "integer outside [-2^63, 2^64-1]")
		}
		e.buf = append(e.buf, v.String()...)
		return nil

	case ipld.KindFloat:
		f := n.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ipld.NewEncodeError(ipld.FloatNotFinite, "cannot encode NaN or Inf")
		}
		e.buf = append(e.buf, formatFloat(f)...)
		return nil

	case ipld.KindString:
		e.encodeString(n.AsString())
		return nil

	case ipld.KindBytes:
		e.buf = append(e.buf, `{"/":{"bytes":"`...)
		e.buf = append(e.buf, base64.RawStdEncoding.EncodeToString(n.AsBytes())...)
		e.buf = append(e.buf, `"}}`...)
		return nil

	case ipld.KindList:
		items := n.AsList()
		e.buf = append(e.buf, '[')
		for i, item := range items {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			if err := e.encode(item); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, ']')
		return nil

	case ipld.KindMap:
		m := n.AsMap()
		keys := append([]string(nil), m.Keys()...)
		sort.Strings(keys)
		if len(keys) == 1 && keys[0] == "/" {
			return ipld.NewEncodeError(ipld.SchemaViolation, `a map with the single key "/" collides with the reserved link/bytes form`)
		}
		e.buf = append(e.buf, '{')
		for i, k := range keys {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			e.encodeString(k)
			e.buf = append(e.buf, ':')
			v, _ := m.Get(k)
			if err := e.encode(v); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, '}')
		return nil

	case ipld.KindLink:
		e.buf = append(e.buf, `{"/":"`...)
		e.buf = append(e.buf, n.AsLink().String()...)
		e.buf = append(e.buf, `"}`...)
		return nil

	default:
		return ipld.NewEncodeError(ipld.SchemaViolation, "cannot encode a Node of kind "+n.Kind().String())
	}
}

func (e *encoder) encodeString(s string) {
	e.buf = append(e.buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			e.buf = append(e.buf, `\"`...)
		case '\\':
			e.buf = append(e.buf, `\\`...)
		case '\b':
			e.buf = append(e.buf, `\b`...)
		case '\f':
			e.buf = append(e.buf, `\f`...)
		case '\n':
			e.buf = append(e.buf, `\n`...)
		case '\r':
			e.buf = append(e.buf, `\r`...)
		case '\t':
			e.buf = append(e.buf, `\t`...)
		default:
			if r < 0x20 {
				e.buf = append(e.buf, `\u00`...)
				const hex = "0123456789abcdef"
				e.buf = append(e.buf, hex[(r>>4)&0xf], hex[r&0xf])
			} else {
				var b [utf8.UTFMax]byte
				n := utf8.EncodeRune(b[:], r)
				e.buf = append(e.buf, b[:n]...)
			}
		}
	}
	e.buf = append(e.buf, '"')
}

// formatFloat renders f using the shortest decimal that round-trips,
// always including a '.' or exponent so the result is unambiguously a
// float when read back (distinguishing it from an Integer).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'E' {
			return s
		}
	}
	return s + ".0"
}
