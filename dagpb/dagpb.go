/*
Package dagpb implements DAG-PB: IPLD's codec for the restricted
Protobuf message used throughout UnixFS and the original IPFS MerkleDAG.

https://ipld.io/specs/codecs/dag-pb/spec/

A DAG-PB node is schema-shaped rather than an arbitrary IPLD value: it
must be a Map with an optional "Data" bytes field and a required
"Links" list, each entry itself a Map of {Hash: Link, Name?: String,
Tsize?: Integer}. Encode and Decode both enforce that shape, and Decode
additionally enforces the two wire-level canonicalization rules the
spec lays out: Links must be sorted stably by Name (bytewise), with no
further constraint on relative order among links sharing a Name, and
the message's top-level fields must appear as Links (field 2, repeated,
grouped together) followed by Data (field 1) -- the reverse of their
field numbers.

The wire format is hand-decoded with github.com/multiformats/go-varint
rather than built on generated google.golang.org/protobuf message code,
because that strict field-order-and-no-unknown-fields contract doesn't
fit a generated struct's free-order field population.
*/
package dagpb

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/ipld/libipld/multicodec"
)

// Code is DAG-PB's multicodec identifier.
const Code = 0x70

// Codec implements ipld.Codec for DAG-PB.
type Codec struct{}

func init() {
	multicodec.RegisterBuiltin(Codec{})
}

func (c Codec) Code() uint64 { return Code }

// Encode returns the canonical DAG-PB encoding of n, which must be
// shaped like a PBNode (see package doc). A node of any other shape
// fails with SchemaViolation.
func (c Codec) Encode(n ipld.Node) ([]byte, error) {
	pn, err := nodeToPB(n)
	if err != nil {
		return nil, err
	}
	if err := checkLinkOrder(pn.Links); err != nil {
		return nil, err
	}
	e := &encoder{}
	e.encodeNode(pn)
	return e.buf, nil
}

// Decode parses data as DAG-PB.
func (c Codec) Decode(data []byte) (ipld.Node, error) {
	d := &decoder{data: data}
	pn, pos, err := d.decodeNode(0, len(data))
	if err != nil {
		return ipld.Node{}, err
	}
	if pos != len(data) {
		return ipld.Node{}, ipld.NewDecodeErrorAt(ipld.TrailingBytes, pos, "extra bytes after message")
	}
	return pbToNode(pn), nil
}

// References reports the Hash of every Link in data.
func (c Codec) References(data []byte, fn func(cid.Cid) error) error {
	d := &decoder{data: data}
	pn, pos, err := d.decodeNode(0, len(data))
	if err != nil {
		return err
	}
	if pos != len(data) {
		return ipld.NewDecodeErrorAt(ipld.TrailingBytes, pos, "extra bytes after message")
	}
	for _, l := range pn.Links {
		if err := fn(l.Hash); err != nil {
			return err
		}
	}
	return nil
}
