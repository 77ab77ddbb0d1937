package ipld_test

import (
	"math/big"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/multiformats/go-multihash"
)

func mustCid(t *testing.T, seed string) cid.Cid {
	t.Helper()
	mh, err := multihash.Sum([]byte(seed), multihash.SHA2_256, -1)
	if err != nil {
		t.Fatal(err)
	}
	return cid.NewCidV1(cid.Raw, mh)
}

func TestConstructorsReportKind(t *testing.T) {
	c := mustCid(t, "node-kind")
	tests := []struct {
		name string
		n    ipld.Node
		want ipld.Kind
	}{
		{"null", ipld.Null(), ipld.KindNull},
		{"bool", ipld.Bool(true), ipld.KindBool},
		{"int", ipld.Int(-3), ipld.KindInt},
		{"uint", ipld.Uint(3), ipld.KindInt},
		{"bigint", ipld.BigInt(big.NewInt(9)), ipld.KindInt},
		{"float", ipld.Float(1.5), ipld.KindFloat},
		{"string", ipld.String("x"), ipld.KindString},
		{"bytes", ipld.Bytes([]byte{1}), ipld.KindBytes},
		{"list", ipld.List(nil), ipld.KindList},
		{"map", ipld.MapNode(ipld.NewMap()), ipld.KindMap},
		{"link", ipld.Link(c), ipld.KindLink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.Kind(); got != tt.want {
				t.Fatalf("Kind() = %v, want %v", got, tt.want)
			}
			if !tt.n.IsValid() {
				t.Fatal("IsValid() = false for a constructed Node")
			}
		})
	}
}

func TestZeroNodeIsInvalid(t *testing.T) {
	var n ipld.Node
	if n.IsValid() {
		t.Fatal("zero Node reported valid")
	}
	if n.Kind() != ipld.KindInvalid {
		t.Fatalf("zero Node Kind() = %v, want KindInvalid", n.Kind())
	}
}

func TestAccessorsPanicOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("AsString on an Int Node did not panic")
		}
	}()
	ipld.Int(1).AsString()
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    ipld.Kind
		want string
	}{
		{ipld.KindInvalid, "invalid"},
		{ipld.KindNull, "null"},
		{ipld.KindBool, "bool"},
		{ipld.KindInt, "int"},
		{ipld.KindFloat, "float"},
		{ipld.KindString, "string"},
		{ipld.KindBytes, "bytes"},
		{ipld.KindList, "list"},
		{ipld.KindMap, "map"},
		{ipld.KindLink, "link"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Fatalf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	c1 := mustCid(t, "equal-a")
	c2 := mustCid(t, "equal-b")

	m1 := ipld.NewMap()
	m1.Set("a", ipld.Int(1))
	m1.Set("b", ipld.String("x"))
	m2 := ipld.NewMap()
	m2.Set("b", ipld.String("x"))
	m2.Set("a", ipld.Int(1))

	tests := []struct {
		name string
		a, b ipld.Node
		want bool
	}{
		{"equal ints", ipld.Int(5), ipld.Uint(5), true},
		{"different ints", ipld.Int(5), ipld.Int(6), false},
		{"equal bytes", ipld.Bytes([]byte{1, 2}), ipld.Bytes([]byte{1, 2}), true},
		{"different bytes length", ipld.Bytes([]byte{1, 2}), ipld.Bytes([]byte{1}), false},
		{"equal lists", ipld.List([]ipld.Node{ipld.Int(1)}), ipld.List([]ipld.Node{ipld.Int(1)}), true},
		{"different list length", ipld.List([]ipld.Node{ipld.Int(1)}), ipld.List(nil), false},
		{"maps ignore insertion order", ipld.MapNode(m1), ipld.MapNode(m2), true},
		{"equal links", ipld.Link(c1), ipld.Link(c1), true},
		{"different links", ipld.Link(c1), ipld.Link(c2), false},
		{"different kinds", ipld.Int(1), ipld.String("1"), false},
		{"null equals null", ipld.Null(), ipld.Null(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Fatalf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := ipld.Bytes([]byte{1, 2, 3})
	clone := orig.Clone()
	clone.AsBytes()[0] = 0xff
	if orig.AsBytes()[0] != 1 {
		t.Fatal("mutating a clone's bytes mutated the original")
	}

	m := ipld.NewMap()
	m.Set("k", ipld.Int(1))
	origMap := ipld.MapNode(m)
	cloneMap := origMap.Clone()
	cloneMap.AsMap().Set("k", ipld.Int(2))
	v, _ := origMap.AsMap().Get("k")
	if v.AsInt().Int64() != 1 {
		t.Fatal("mutating a clone's map mutated the original")
	}
}

func TestCloneBigIntIsIndependent(t *testing.T) {
	orig := big.NewInt(1)
	n := ipld.BigInt(orig)
	orig.SetInt64(99)
	if n.AsInt().Int64() != 1 {
		t.Fatal("BigInt did not copy its argument")
	}

	clone := n.Clone()
	clone.AsInt().SetInt64(7)
	if n.AsInt().Int64() != 1 {
		t.Fatal("Clone shared the underlying big.Int")
	}
}
