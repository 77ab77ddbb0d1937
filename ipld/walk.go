package ipld

import "github.com/ipfs/go-cid"

// Links walks n depth-first, pre-order, and returns every Link
// encountered in traversal order. Duplicates are not removed — per
// spec section 4.5, de-duplication is the caller's job.
func Links(n Node) []cid.Cid {
	var out []cid.Cid
	WalkLinks(n, func(c cid.Cid) { out = append(out, c) })
	return out
}

// WalkLinks is the streaming form of Links: it calls fn for each Link
// encountered during a depth-first, pre-order traversal of n, without
// building an intermediate slice.
func WalkLinks(n Node, fn func(cid.Cid)) {
	switch n.kind {
	case KindLink:
		fn(n.link)
	case KindList:
		for _, item := range n.list {
			WalkLinks(item, fn)
		}
	case KindMap:
		n.m.Range(func(_ string, v Node) bool {
			WalkLinks(v, fn)
			return true
		})
	}
}
