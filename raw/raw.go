/*
Package raw implements the "raw" multicodec (0x55): an identity codec
that treats a block's bytes as an opaque ipld.Bytes value rather than
parsing any structure out of them.

https://github.com/multiformats/multicodec/blob/master/table.csv

Raw blocks carry no Links, so References never calls fn.
*/
package raw

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/ipld/libipld/multicodec"
)

// Code is the raw codec's multicodec identifier.
const Code = 0x55

// Codec implements ipld.Codec for raw binary blocks.
type Codec struct{}

func init() {
	multicodec.RegisterBuiltin(Codec{})
}

func (c Codec) Code() uint64 { return Code }

// Encode requires n to be a Bytes Node and returns its bytes unchanged.
func (c Codec) Encode(n ipld.Node) ([]byte, error) {
	if n.Kind() != ipld.KindBytes {
		return nil, ipld.NewEncodeError(ipld.SchemaViolation, "raw codec can only encode a Node of kind Bytes, got "+n.Kind().String())
	}
	return append([]byte(nil), n.AsBytes()...), nil
}

// Decode wraps data as a Bytes Node unchanged; every byte sequence is
// valid raw content.
func (c Codec) Decode(data []byte) (ipld.Node, error) {
	return ipld.Bytes(append([]byte(nil), data...)), nil
}

// References is a no-op: raw blocks contain no Links.
func (c Codec) References(data []byte, fn func(cid.Cid) error) error {
	return nil
}
