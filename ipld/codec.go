package ipld

import "github.com/ipfs/go-cid"

// Codec is the uniform surface every wire format in this module
// implements: dagcbor.Codec, dagjson.Codec, and dagpb.Codec all satisfy
// this interface, and multicodec.Registry dispatches through it.
//
// All Codec implementations in this module are strict (spec section
// 4.1): for any input bytes, Decode either returns a Node whose
// re-encoding via Encode is byte-identical to the input, or fails. The
// one exception is dagjson.Codec, whose Decode also accepts
// insignificant whitespace between tokens, which Encode never emits.
type Codec interface {
	// Code returns the codec's stable multicodec identifier.
	Code() uint64

	// Encode returns the canonical encoding of n. It fails with an
	// EncodeError: IntegerOutOfRange or FloatNotFinite for a number the
	// codec cannot carry; SchemaViolation for a value the codec cannot
	// represent (for dagpb a Node not shaped like a PBNode, for dagjson
	// a Map whose only key is "/", for raw anything but Bytes); and
	// NotCanonical for dagpb Links that are not sorted by Name.
	Encode(n Node) ([]byte, error)

	// Decode parses data into a Node, or fails with a DecodeError.
	// Decode never returns a partially-built Node alongside an error.
	Decode(data []byte) (Node, error)

	// References extracts every CID referenced by data without
	// materializing the full Node tree, calling fn once per Link in the
	// same order WalkLinks visits them in the decoded Node. If fn
	// returns an error, References stops: dagpb returns that error
	// unchanged, while dagcbor and dagjson return a DecodeError of kind
	// SchemaViolation whose Msg is the error's text (the original error
	// is not wrapped).
	References(data []byte, fn func(cid.Cid) error) error
}

// Marshaler is implemented by a type that can produce its own
// equivalent IPLD representation (a Map, List, or scalar Node) from a
// user record, per spec section 6.3's derive contract: the core does
// not prescribe representation policy, only that the result round-trips
// through a codec the same way decoding the codec's own output would.
type Marshaler interface {
	MarshalIPLD() (Node, error)
}

// Unmarshaler is the reverse of Marshaler: it populates a user record
// from a decoded Node.
type Unmarshaler interface {
	UnmarshalIPLD(Node) error
}
