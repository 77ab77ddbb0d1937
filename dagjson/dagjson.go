/*
Package dagjson implements DAG-JSON: the restricted, canonical subset of
JSON (RFC 8259) that IPLD uses as a human-readable alternative to
DAG-CBOR.

https://ipld.io/specs/codecs/dag-json/spec/

Links are represented as the reserved single-key object
{"/": "<cid string>"} and byte strings as {"/": {"bytes": "<base64>"}}.
Canonical DAG-JSON carries no insignificant whitespace at all, and
Encode emits none, but Decode accepts arbitrary whitespace between
tokens (spec section 4.3): skipWS is threaded through every structural
boundary in decode.go/scanner.go, the one place this parser is
deliberately more permissive than what it produces. Decode still
rejects every other non-canonical form (non-minimal numbers, unsorted
or duplicate map keys, disallowed escapes) the same way dagcbor rejects
a non-minimal integer encoding, and building the parser by hand rather
than on a generic JSON tokenizer is what makes tracking byte-exact key
order possible (spec section 8 property 3).
*/
package dagjson

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/ipld/libipld/multicodec"
)

// Code is DAG-JSON's multicodec identifier.
const Code = 0x0129

const defaultMaxDepth = 64

// Codec implements ipld.Codec for DAG-JSON.
type Codec struct {
	// MaxDepth bounds array/object nesting depth, mirroring
	// dagcbor.Codec.MaxDepth. Zero means defaultMaxDepth.
	MaxDepth int
}

func init() {
	multicodec.RegisterBuiltin(Codec{})
}

func (c Codec) Code() uint64 { return Code }

func (c Codec) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return defaultMaxDepth
}

// Encode returns the canonical DAG-JSON encoding of n.
func (c Codec) Encode(n ipld.Node) ([]byte, error) {
	e := &encoder{buf: make([]byte, 0, 64)}
	if err := e.encode(n); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// Decode parses data as DAG-JSON.
func (c Codec) Decode(data []byte) (ipld.Node, error) {
	d := &decoder{data: data, maxDepth: c.maxDepth()}
	n, pos, err := d.parseValue(0, 0)
	if err != nil {
		return ipld.Node{}, err
	}
	pos = skipWS(data, pos)
	if pos != len(data) {
		return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.TrailingBytes, pos, "extra bytes after top-level value")
	}
	return n, nil
}

// References extracts every CID referenced by data via a structural
// scan, without materializing the full Node tree.
func (c Codec) References(data []byte, fn func(cid.Cid) error) error {
	s := &scanner{data: data, maxDepth: c.maxDepth(), fn: fn}
	pos, err := s.skip(0, 0)
	if err != nil {
		return err
	}
	pos = skipWS(data, pos)
	if pos != len(data) {
		return ipld.NewDecodeErrorAt(ipld.TrailingBytes, pos, "extra bytes after top-level value")
	}
	return nil
}
