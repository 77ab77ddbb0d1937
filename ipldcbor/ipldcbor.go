/*
Package ipldcbor is the optional generic serializer bridge described in
spec section 6.9: a way to get an ipld.Node to and from CBOR bytes via
reflection, for callers who want ordinary encoding/json-shaped
ergonomics and do not need dagcbor's byte-exact canonical guarantees.

Unlike dagcbor, this package is built on
github.com/hyphacoop/cbor/v2's generic Marshal/Unmarshal engine and a
registered cbor.TagSet, the way drisl.go configures the same engine for
DRISL and drisl.Cid wraps an external CID type with tag-42
MarshalCBOR/UnmarshalCBOR methods. That reuse is safe here only because
this bridge makes no claim about preserving wire order: Marshal is free
to choose any valid CBOR encoding of a Node's Map, and Unmarshal
rebuilds Map entries in whatever order decoding into map[string]any
produces, which Go deliberately randomizes on range. Callers who need
ipld.WalkLinks to agree with a bytes-level link scan (spec section 8
property 3) must use dagcbor, not this package.
*/
package ipldcbor

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
)

// linkTagNumber mirrors dagcbor's; ipldcbor happens to use the same tag
// so that bytes this package produces remain plain tag-42 CBOR, even
// though nothing here relies on that tag being canonical.
const linkTagNumber = 42

// link adapts cid.Cid to the MarshalCBOR/UnmarshalCBOR contract the
// underlying engine dispatches to via reflection.
type link struct{ cid.Cid }

func (l link) MarshalCBOR() ([]byte, error) {
	if !l.Defined() {
		return nil, errors.New("ipldcbor: undefined link")
	}
	return cbor.Marshal(cbor.Tag{
		Number:  linkTagNumber,
		Content: append([]byte{0x00}, l.Bytes()...),
	})
}

func (l *link) UnmarshalCBOR(b []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(b, &tag); err != nil {
		return err
	}
	if tag.Number != linkTagNumber {
		return fmt.Errorf("ipldcbor: tag %d, want %d", tag.Number, linkTagNumber)
	}
	raw, ok := tag.Content.([]byte)
	if !ok {
		return fmt.Errorf("ipldcbor: tag content is %T, want []byte", tag.Content)
	}
	if len(raw) == 0 || raw[0] != 0x00 {
		return errors.New("ipldcbor: link payload missing 0x00 prefix")
	}
	c, err := cid.Cast(raw[1:])
	if err != nil {
		return err
	}
	*l = link{c}
	return nil
}

var (
	tagSet  cbor.TagSet
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	tagSet = cbor.NewTagSet()
	if err := tagSet.Add(
		cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired},
		reflect.TypeOf(link{}),
		linkTagNumber,
	); err != nil {
		panic(err)
	}

	var err error
	encMode, err = cbor.EncOptions{}.EncModeWithTags(tagSet)
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any{}),
	}.DecModeWithTags(tagSet)
	if err != nil {
		panic(err)
	}
}

// Marshal encodes n as CBOR via reflection. It does not guarantee the
// canonical byte form dagcbor.Codec.Encode does.
func Marshal(n ipld.Node) ([]byte, error) {
	v, err := toGeneric(n)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes produced by Marshal (or by any
// reasonably well-behaved CBOR encoder) into a Node. Map key order is
// not preserved; see the package doc.
func Unmarshal(data []byte) (ipld.Node, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return ipld.Node{}, err
	}
	return fromGeneric(v)
}
