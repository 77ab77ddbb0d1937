package multicodec_test

import (
	"testing"

	"github.com/ipld/libipld/dagcbor"
	_ "github.com/ipld/libipld/dagjson"
	_ "github.com/ipld/libipld/dagpb"
	"github.com/ipld/libipld/ipld"
	"github.com/ipld/libipld/multicodec"
	_ "github.com/ipld/libipld/raw"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		c    multicodec.Code
		want string
	}{
		{multicodec.Raw, "raw"},
		{multicodec.DagPB, "dag-pb"},
		{multicodec.DagCBOR, "dag-cbor"},
		{multicodec.DagJSON, "dag-json"},
		{multicodec.Code(0x9999), "0x9999"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Fatalf("Code(%#x).String() = %q, want %q", uint64(tt.c), got, tt.want)
		}
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := multicodec.NewRegistry()
	if _, ok := r.Lookup(multicodec.DagCBOR); ok {
		t.Fatal("Lookup on an empty registry reported ok = true")
	}

	r.Register(dagcbor.Codec{})
	c, ok := r.Lookup(multicodec.DagCBOR)
	if !ok {
		t.Fatal("Lookup after Register reported ok = false")
	}
	if c.Code() != uint64(multicodec.DagCBOR) {
		t.Fatalf("registered codec Code() = %#x, want %#x", c.Code(), uint64(multicodec.DagCBOR))
	}
}

func TestRegistryEncodeDecodeRoundTrip(t *testing.T) {
	r := multicodec.NewRegistry()
	r.Register(dagcbor.Codec{})

	n := ipld.String("round trip via registry")
	data, err := r.Encode(multicodec.DagCBOR, n)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := r.Decode(multicodec.DagCBOR, data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !back.Equal(n) {
		t.Fatalf("Decode(Encode(n)) = %v, want %v", back, n)
	}
}

func TestRegistryDecodeUnregisteredCodeErrors(t *testing.T) {
	r := multicodec.NewRegistry()
	if _, err := r.Decode(multicodec.DagJSON, []byte("x")); err == nil {
		t.Fatal("Decode with no registered codec returned nil error")
	}
}

func TestDefaultHasBuiltins(t *testing.T) {
	// dagcbor/dagjson/dagpb/raw all register themselves via RegisterBuiltin
	// in their own init functions; this file imports all four (dagjson,
	// dagpb and raw blank) for that side effect, since Default() only reflects packages actually
	// imported somewhere in the test binary.
	for _, c := range []multicodec.Code{multicodec.DagCBOR, multicodec.DagJSON, multicodec.DagPB, multicodec.Raw} {
		if _, ok := multicodec.Default().Lookup(c); !ok {
			t.Fatalf("Default() registry missing %s; is its package imported for its init side effect?", c)
		}
	}
}
