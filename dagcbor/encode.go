package dagcbor

import (
	"math"
	"math/big"
	"sort"

	"github.com/ipld/libipld/ipld"
	"github.com/multiformats/go-multibase"
)

type encoder struct {
	buf []byte
}

func (e *encoder) encode(n ipld.Node) *ipld.EncodeError {
	switch n.Kind() {
	case ipld.KindNull:
		e.buf = append(e.buf, 0xf6)
		return nil

	case ipld.KindBool:
		if n.AsBool() {
			e.buf = append(e.buf, 0xf5)
		} else {
			e.buf = append(e.buf, 0xf4)
		}
		return nil

	case ipld.KindInt:
		return e.encodeInt(n.AsInt())

	case ipld.KindFloat:
		f := n.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ipld.NewEncodeError(ipld.FloatNotFinite, "cannot encode NaN or Inf")
		}
		e.buf = append(e.buf, 0xfb)
		var b [8]byte
		putUint64BE(b[:], math.Float64bits(f))
		e.buf = append(e.buf, b[:]...)
		return nil

	case ipld.KindString:
		s := n.AsString()
		e.buf = putArgument(e.buf, majText, uint64(len(s)))
		e.buf = append(e.buf, s...)
		return nil

	case ipld.KindBytes:
		b := n.AsBytes()
		e.buf = putArgument(e.buf, majBytes, uint64(len(b)))
		e.buf = append(e.buf, b...)
		return nil

	case ipld.KindList:
		items := n.AsList()
		e.buf = putArgument(e.buf, majArray, uint64(len(items)))
		for _, item := range items {
			if err := e.encode(item); err != nil {
				return err
			}
		}
		return nil

	case ipld.KindMap:
		m := n.AsMap()
		keys := append([]string(nil), m.Keys()...)
		sort.Strings(keys)
		e.buf = putArgument(e.buf, majMap, uint64(len(keys)))
		for _, k := range keys {
			e.buf = putArgument(e.buf, majText, uint64(len(k)))
			e.buf = append(e.buf, k...)
			v, _ := m.Get(k)
			if err := e.encode(v); err != nil {
				return err
			}
		}
		return nil

	case ipld.KindLink:
		c := n.AsLink()
		// The identity base's "encoding" is the prefix byte followed by
		// the data unchanged, so this produces exactly the prefixed byte
		// string the tag-42 convention requires.
		encoded, err := multibase.Encode(multibase.Identity, c.Bytes())
		if err != nil {
			return ipld.NewEncodeError(ipld.SchemaViolation, "link: "+err.Error())
		}
		e.buf = putArgument(e.buf, majTag, linkTagNumber)
		e.buf = putArgument(e.buf, majBytes, uint64(len(encoded)))
		e.buf = append(e.buf, encoded...)
		return nil

	default:
		return ipld.NewEncodeError(ipld.SchemaViolation, "cannot encode a Node of kind "+n.Kind().String())
	}
}

// encodeInt picks the minimal CBOR representation for v, which may fall
// anywhere in DAG-CBOR's permitted range of -2^64 .. 2^64-1.
func (e *encoder) encodeInt(v *big.Int) *ipld.EncodeError {
	if v.Sign() >= 0 {
		if !v.IsUint64() {
			return ipld.NewEncodeError(ipld.IntegerOutOfRange, "integer exceeds 2^64-1")
		}
		e.buf = putArgument(e.buf, majUint, v.Uint64())
		return nil
	}
	// Negative: wire value is -(arg+1), so arg = -v-1 = |v|-1.
	mag := new(big.Int).Neg(v)
	mag.Sub(mag, big.NewInt(1))
	if !mag.IsUint64() {
		return ipld.NewEncodeError(ipld.IntegerOutOfRange, "integer is below -2^64")
	}
	e.buf = putArgument(e.buf, majNegInt, mag.Uint64())
	return nil
}

func putUint64BE(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
