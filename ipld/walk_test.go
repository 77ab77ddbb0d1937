package ipld_test

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/multiformats/go-multihash"
)

func TestWalkLinksOrderIsDepthFirstPreOrder(t *testing.T) {
	c1 := mustCid(t, "walk-1")
	c2 := mustCid(t, "walk-2")
	c3 := mustCid(t, "walk-3")

	inner := ipld.NewMap()
	inner.Set("z", ipld.Link(c2))
	inner.Set("a", ipld.Link(c3))

	n := ipld.List([]ipld.Node{
		ipld.Link(c1),
		ipld.MapNode(inner),
	})

	got := ipld.Links(n)
	want := []cid.Cid{c1, c2, c3}
	if len(got) != len(want) {
		t.Fatalf("Links() = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equals(want[i]) {
			t.Fatalf("Links()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWalkLinksKeepsDuplicates(t *testing.T) {
	c := mustCid(t, "walk-dup")
	n := ipld.List([]ipld.Node{ipld.Link(c), ipld.Link(c)})
	if got := ipld.Links(n); len(got) != 2 {
		t.Fatalf("Links() = %v, want 2 entries (duplicates preserved)", got)
	}
}

func TestWalkLinksOnScalarIsEmpty(t *testing.T) {
	if got := ipld.Links(ipld.String("no links here")); len(got) != 0 {
		t.Fatalf("Links() = %v, want empty", got)
	}
}

func TestWalkLinksCallbackForm(t *testing.T) {
	c := mustCid(t, "walk-cb")
	var got []cid.Cid
	ipld.WalkLinks(ipld.Link(c), func(c cid.Cid) { got = append(got, c) })
	if len(got) != 1 || !got[0].Equals(c) {
		t.Fatalf("WalkLinks callback got %v, want [%v]", got, c)
	}
}

func TestWalkLinksIgnoresUnrelatedHash(t *testing.T) {
	mh, err := multihash.Sum([]byte("unrelated"), multihash.SHA2_256, -1)
	if err != nil {
		t.Fatal(err)
	}
	_ = mh // constructing a multihash without wrapping it in a Link must not itself produce a link
	n := ipld.Bytes(mh)
	if got := ipld.Links(n); len(got) != 0 {
		t.Fatalf("Links() on a Bytes node = %v, want empty", got)
	}
}
