/*
Package dagcbor implements DAG-CBOR: the restricted, canonical subset of
RFC 8949 CBOR that IPLD uses as its primary binary codec.

https://ipld.io/specs/codecs/dag-cbor/spec/

The codec is strict in both directions (spec section 4.1): Decode
accepts only the canonical byte form of a value and rejects everything
else — non-minimal integers, out-of-order map keys, indefinite lengths,
non-finite floats, duplicate keys, tags other than 42 — with a typed
ipld.DecodeError naming which rule was violated. Encode always produces
that canonical form, so re-encoding a successfully decoded value
reproduces the input bytes exactly.

This codec is implemented at the byte level rather than on top of a
reflection-based CBOR engine (contrast ipldcbor, the optional generic
bridge, which does use github.com/hyphacoop/cbor/v2) because the
strictness rules above — particularly that a decoded Map must preserve
the exact on-wire key order so that ipld.WalkLinks agrees with
References's structural byte scan (spec section 4.5 / section 8 property
3) — are awkward to get out of a decoder that hands back a native Go
map, which has no iteration order of its own.
*/
package dagcbor

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/ipld/libipld/multicodec"
)

// Code is DAG-CBOR's multicodec identifier.
const Code = 0x71

// linkTagNumber is CBOR tag 42, the only tag DAG-CBOR permits.
const linkTagNumber = 42

// defaultMaxDepth bounds recursion depth absent an explicit Codec.MaxDepth.
const defaultMaxDepth = 64

// Codec implements ipld.Codec for DAG-CBOR.
type Codec struct {
	// MaxDepth bounds the nesting depth of arrays, maps, and tags a
	// Decode call will follow before failing with DepthExceeded. Zero
	// means defaultMaxDepth (64), per spec section 5's suggestion.
	MaxDepth int
}

func init() {
	multicodec.RegisterBuiltin(Codec{})
}

// Code returns DAG-CBOR's multicodec identifier, 0x71.
func (c Codec) Code() uint64 { return Code }

func (c Codec) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return defaultMaxDepth
}

// Encode returns the canonical DAG-CBOR encoding of n.
func (c Codec) Encode(n ipld.Node) ([]byte, error) {
	e := &encoder{buf: make([]byte, 0, 64)}
	if err := e.encode(n); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// Decode parses data as DAG-CBOR.
func (c Codec) Decode(data []byte) (ipld.Node, error) {
	d := &decoder{data: data, maxDepth: c.maxDepth()}
	n, pos, err := d.decodeValue(0)
	if err != nil {
		return ipld.Node{}, err
	}
	if pos != len(data) {
		return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.TrailingBytes, pos, "extra bytes after top-level value")
	}
	return n, nil
}

// References extracts every CID referenced by data via a structural
// scan for tag-42 items, without materializing the full Node tree.
func (c Codec) References(data []byte, fn func(cid.Cid) error) error {
	s := &scanner{data: data, maxDepth: c.maxDepth(), fn: fn}
	pos, err := s.skip(0, 0)
	if err != nil {
		return err
	}
	if pos != len(data) {
		return ipld.NewDecodeErrorAt(ipld.TrailingBytes, pos, "extra bytes after top-level value")
	}
	return nil
}
