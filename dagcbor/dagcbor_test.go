package dagcbor_test

import (
	"encoding/hex"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/dagcbor"
	"github.com/ipld/libipld/ipld"
	"github.com/multiformats/go-multihash"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func mustCid(t *testing.T, s string) cid.Cid {
	t.Helper()
	c, err := cid.Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRoundTripScalars(t *testing.T) {
	tests := []struct {
		name string
		n    ipld.Node
		hex  string
	}{
		{"null", ipld.Null(), "f6"},
		{"true", ipld.Bool(true), "f5"},
		{"false", ipld.Bool(false), "f4"},
		{"zero", ipld.Int(0), "00"},
		{"small uint", ipld.Int(23), "17"},
		{"boundary uint needs 1 byte", ipld.Int(24), "1818"},
		{"negative one", ipld.Int(-1), "20"},
		{"negative boundary", ipld.Int(-24), "37"},
		{"empty string", ipld.String(""), "60"},
		{"short string", ipld.String("a"), "6161"},
		{"empty bytes", ipld.Bytes([]byte{}), "40"},
		{"float zero", ipld.Float(0), "fb0000000000000000"},
	}
	c := dagcbor.Codec{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Encode(tt.n)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if hex.EncodeToString(got) != tt.hex {
				t.Fatalf("encode: want %s, got %x", tt.hex, got)
			}
			back, err := c.Decode(got)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !back.Equal(tt.n) {
				t.Fatalf("round-trip mismatch for %v", tt.name)
			}
		})
	}
}

func TestDecodeSingleByteInteger(t *testing.T) {
	c := dagcbor.Codec{}
	n, err := c.Decode(hexBytes(t, "00"))
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind() != ipld.KindInt || n.AsInt().Sign() != 0 {
		t.Fatalf("want integer 0, got %#v", n)
	}
}

func TestDecodeRejectsNonMinimalInteger(t *testing.T) {
	c := dagcbor.Codec{}
	// 0x1800 encodes 0 using the 1-byte-argument form, which is
	// non-canonical; 0x00 is required instead.
	_, err := c.Decode(hexBytes(t, "1800"))
	assertDecodeErrKind(t, err, ipld.NotCanonical)
}

func TestDecodeRejectsOutOfOrderMapKeys(t *testing.T) {
	c := dagcbor.Codec{}
	// {"b": 1, "a": 2} -- keys given out of byte-lexicographic order.
	data := hexBytes(t, "a2616201616102")
	_, err := c.Decode(data)
	assertDecodeErrKind(t, err, ipld.NotCanonical)
}

func TestDecodeRejectsDuplicateMapKeys(t *testing.T) {
	c := dagcbor.Codec{}
	// {"a": 1, "a": 2}
	data := hexBytes(t, "a2616101616102")
	_, err := c.Decode(data)
	assertDecodeErrKind(t, err, ipld.DuplicateKey)
}

func TestDecodeRejectsUnsupportedTag(t *testing.T) {
	c := dagcbor.Codec{}
	// Tag 24 wrapping a byte string: a real CBOR construct, but not the
	// tag 42 DAG-CBOR permits.
	_, err := c.Decode(hexBytes(t, "d81840"))
	assertDecodeErrKind(t, err, ipld.UnsupportedTag)
}

func TestDecodeRejectsTagWithNonByteStringContent(t *testing.T) {
	c := dagcbor.Codec{}
	// Tag 42 wrapping a text string instead of a byte string.
	_, err := c.Decode(hexBytes(t, "d82a60"))
	assertDecodeErrKind(t, err, ipld.UnsupportedType)
}

func TestDecodeRejectsLengthExceedingInput(t *testing.T) {
	c := dagcbor.Codec{}
	// Declares a 4-byte-length byte string of 2^32-1 bytes, far beyond
	// the 5 bytes actually present; must fail without allocating.
	_, err := c.Decode(hexBytes(t, "5affffffff0000000000"))
	assertDecodeErrKind(t, err, ipld.LengthMismatch)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	c := dagcbor.Codec{}
	_, err := c.Decode(hexBytes(t, "0000"))
	assertDecodeErrKind(t, err, ipld.TrailingBytes)
}

func TestDecodeRejectsIndefiniteLength(t *testing.T) {
	c := dagcbor.Codec{}
	_, err := c.Decode(hexBytes(t, "5f"))
	assertDecodeErrKind(t, err, ipld.NotCanonical)
}

func TestDecodeRejectsNonFiniteFloat(t *testing.T) {
	c := dagcbor.Codec{}
	// fb 7ff8000000000000 is a NaN bit pattern.
	_, err := c.Decode(hexBytes(t, "fb7ff8000000000000"))
	assertDecodeErrKind(t, err, ipld.FloatNotFinite)
}

func TestEncodeRejectsNonFiniteFloat(t *testing.T) {
	c := dagcbor.Codec{}
	_, err := c.Encode(ipld.Float(math.NaN()))
	var ee *ipld.EncodeError
	if !errors.As(err, &ee) || ee.Kind != ipld.FloatNotFinite {
		t.Fatalf("want FloatNotFinite, got %v", err)
	}
}

func TestMapEncodesInByteLexicographicOrder(t *testing.T) {
	m := ipld.NewMap()
	m.Set("b", ipld.Int(1))
	m.Set("a", ipld.Int(2))
	c := dagcbor.Codec{}
	got, err := c.Encode(ipld.MapNode(m))
	if err != nil {
		t.Fatal(err)
	}
	want := hexBytes(t, "a2616102616201")
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Fatalf("want %x, got %x", want, got)
	}
}

func TestLinkRoundTrip(t *testing.T) {
	c := mustCid(t, "bafkreifn5yxi7nkftsn46b6x26grda57ict7md2xuvfbsgkiahe2e7vnq4")
	codec := dagcbor.Codec{}
	data, err := codec.Encode(ipld.Link(c))
	if err != nil {
		t.Fatal(err)
	}
	back, err := codec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Kind() != ipld.KindLink || !back.AsLink().Equals(c) {
		t.Fatalf("want link %v, got %v", c, back)
	}
}

func TestReferencesMatchesWalkLinks(t *testing.T) {
	c1 := mustCid(t, "bafkreifn5yxi7nkftsn46b6x26grda57ict7md2xuvfbsgkiahe2e7vnq4")
	mh, err := multihash.Sum([]byte("second link"), multihash.SHA2_256, -1)
	if err != nil {
		t.Fatal(err)
	}
	c2 := cid.NewCidV1(cid.Raw, mh)
	m := ipld.NewMap()
	m.Set("first", ipld.Link(c1))
	m.Set("second", ipld.List([]ipld.Node{ipld.Link(c1), ipld.Link(c2)}))
	n := ipld.MapNode(m)

	codec := dagcbor.Codec{}
	data, err := codec.Encode(n)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	want := ipld.Links(decoded)
	var got []cid.Cid
	err = codec.References(data, func(c cid.Cid) error {
		got = append(got, c)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("want %d links, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equals(want[i]) {
			t.Fatalf("link %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDepthExceeded(t *testing.T) {
	c := dagcbor.Codec{MaxDepth: 2}
	n := ipld.List([]ipld.Node{ipld.List([]ipld.Node{ipld.List([]ipld.Node{ipld.Int(1)})})})
	data, err := dagcbor.Codec{}.Encode(n)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Decode(data)
	assertDecodeErrKind(t, err, ipld.DepthExceeded)
}

func TestEncodeNegativeBigRange(t *testing.T) {
	c := dagcbor.Codec{}
	v := new(big.Int).Lsh(big.NewInt(-1), 64) // -2^64
	data, err := c.Encode(ipld.BigInt(v))
	if err != nil {
		t.Fatal(err)
	}
	back, err := c.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.AsInt().Cmp(v) != 0 {
		t.Fatalf("want %v, got %v", v, back.AsInt())
	}
}

func assertDecodeErrKind(t *testing.T, err error, kind ipld.ErrorKind) {
	t.Helper()
	var de *ipld.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want a DecodeError, got %v (%T)", err, err)
	}
	if de.Kind != kind {
		t.Fatalf("want kind %s, got %s: %v", kind, de.Kind, de)
	}
}
