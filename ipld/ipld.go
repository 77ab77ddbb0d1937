/*
Package ipld implements the core IPLD data model: a small tagged-variant
value type that every DASL/IPLD codec encodes and decodes, plus the
error taxonomy and link-enumeration helpers shared across codecs.

https://ipld.io/docs/data-model/

Package ipld itself performs no I/O and does no hashing; a Link is
carried as an opaque github.com/ipfs/go-cid.Cid, and resolving a Link to
the block it names is left entirely to the caller.
*/
package ipld

import (
	"math/big"

	"github.com/ipfs/go-cid"
)

// Kind identifies which of the IPLD data model's kinds a Node holds.
type Kind uint8

const (
	// KindInvalid is the zero value of Kind. A Node{} has this kind and
	// every As* accessor on it panics.
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindLink
)

// String returns the kind's name, e.g. "map" or "link".
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindLink:
		return "link"
	default:
		return "invalid"
	}
}

// Node is an IPLD value: exactly one of the kinds in the data model.
//
// The zero Node has KindInvalid and must not be used; construct values
// with the functions below (Null, Bool, Int, ...).
//
// Node is a value type. Copying a Node copies the discriminant and a
// reference to its payload (for List/Map/Bytes), mirroring how a Go
// slice or map copies by reference; callers that need an independent
// copy should use Clone.
type Node struct {
	kind Kind
	b    bool
	i    *big.Int
	f    float64
	s    string
	by   []byte
	list []Node
	m    *Map
	link cid.Cid
}

// Kind returns the node's kind. A zero Node reports KindInvalid.
func (n Node) Kind() Kind { return n.kind }

// IsValid reports whether n was produced by one of this package's
// constructors (as opposed to being a zero Node).
func (n Node) IsValid() bool { return n.kind != KindInvalid }

// Null is the IPLD null value, distinct from an absent value.
func Null() Node { return Node{kind: KindNull} }

// Bool wraps a boolean.
func Bool(v bool) Node { return Node{kind: KindBool, b: v} }

// Int wraps a machine int as an IPLD Integer.
func Int(v int64) Node { return Node{kind: KindInt, i: big.NewInt(v)} }

// Uint wraps a machine uint as an IPLD Integer.
func Uint(v uint64) Node { return Node{kind: KindInt, i: new(big.Int).SetUint64(v)} }

// BigInt wraps an arbitrary-precision integer as an IPLD Integer.
// The value is copied, so the caller's big.Int may be reused afterward.
//
// BigInt does not itself enforce the integer range that DAG-CBOR
// ([-2^64, 2^64-1]) or DAG-JSON ([-2^63, 2^64-1]) requires; that is
// validated by each codec at encode time
// so that out-of-range values fail with IntegerOutOfRange rather than
// being silently accepted here and rejected somewhere less obvious.
func BigInt(v *big.Int) Node { return Node{kind: KindInt, i: new(big.Int).Set(v)} }

// Float wraps a float64. Float does not validate finiteness; codecs
// reject NaN/Inf at encode time with FloatNotFinite.
func Float(v float64) Node { return Node{kind: KindFloat, f: v} }

// String wraps a UTF-8 string. String does not itself validate UTF-8;
// decoders are responsible for rejecting invalid bytes before calling
// this constructor, per the UTF-8 totality property.
func String(v string) Node { return Node{kind: KindString, s: v} }

// Bytes wraps an opaque byte sequence. The slice is not copied.
func Bytes(v []byte) Node { return Node{kind: KindBytes, by: v} }

// List wraps an ordered sequence of values. The slice is not copied.
func List(items []Node) Node { return Node{kind: KindList, list: items} }

// Link wraps a CID reference.
func Link(c cid.Cid) Node { return Node{kind: KindLink, link: c} }

// MapNode wraps an already-built Map.
func MapNode(m *Map) Node { return Node{kind: KindMap, m: m} }

// AsBool returns the boolean payload. It panics if Kind() != KindBool.
func (n Node) AsBool() bool { n.expect(KindBool); return n.b }

// AsInt returns the integer payload. It panics if Kind() != KindInt.
// The returned *big.Int is shared; callers must not mutate it.
func (n Node) AsInt() *big.Int { n.expect(KindInt); return n.i }

// AsFloat returns the float payload. It panics if Kind() != KindFloat.
func (n Node) AsFloat() float64 { n.expect(KindFloat); return n.f }

// AsString returns the string payload. It panics if Kind() != KindString.
func (n Node) AsString() string { n.expect(KindString); return n.s }

// AsBytes returns the byte-string payload. It panics if Kind() != KindBytes.
// The returned slice is shared; callers must not mutate it.
func (n Node) AsBytes() []byte { n.expect(KindBytes); return n.by }

// AsList returns the list payload. It panics if Kind() != KindList.
// The returned slice is shared; callers must not mutate it.
func (n Node) AsList() []Node { n.expect(KindList); return n.list }

// AsMap returns the map payload. It panics if Kind() != KindMap.
func (n Node) AsMap() *Map { n.expect(KindMap); return n.m }

// AsLink returns the CID payload. It panics if Kind() != KindLink.
func (n Node) AsLink() cid.Cid { n.expect(KindLink); return n.link }

func (n Node) expect(k Kind) {
	if n.kind != k {
		panic("ipld: Node is a " + n.kind.String() + ", not a " + k.String())
	}
}

// Clone returns a deep copy of n: List/Map/Bytes payloads are copied
// recursively so that mutating the result never affects n.
func (n Node) Clone() Node {
	switch n.kind {
	case KindBytes:
		b := make([]byte, len(n.by))
		copy(b, n.by)
		return Node{kind: KindBytes, by: b}
	case KindList:
		items := make([]Node, len(n.list))
		for i, item := range n.list {
			items[i] = item.Clone()
		}
		return Node{kind: KindList, list: items}
	case KindMap:
		return Node{kind: KindMap, m: n.m.Clone()}
	case KindInt:
		return Node{kind: KindInt, i: new(big.Int).Set(n.i)}
	default:
		return n
	}
}

// Equal reports whether n and o represent the same IPLD value.
// Map equality ignores insertion order, per the data model's invariant
// that a Map's logical identity is its set of key/value pairs.
func (n Node) Equal(o Node) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindInvalid, KindNull:
		return true
	case KindBool:
		return n.b == o.b
	case KindInt:
		return n.i.Cmp(o.i) == 0
	case KindFloat:
		return n.f == o.f
	case KindString:
		return n.s == o.s
	case KindBytes:
		if len(n.by) != len(o.by) {
			return false
		}
		for i := range n.by {
			if n.by[i] != o.by[i] {
				return false
			}
		}
		return true
	case KindList:
		if len(n.list) != len(o.list) {
			return false
		}
		for i := range n.list {
			if !n.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return n.m.equal(o.m)
	case KindLink:
		return n.link.Equals(o.link)
	default:
		return false
	}
}
