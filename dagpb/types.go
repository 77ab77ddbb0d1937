package dagpb

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
)

// pbLink mirrors the PBLink protobuf message: Hash (field 1, required
// in practice though optional on the wire), Name (field 2, optional),
// Tsize (field 3, optional).
type pbLink struct {
	Hash    cid.Cid
	Name    *string
	Tsize   *uint64
	HasHash bool
}

// pbNode mirrors the PBNode protobuf message: Links (field 2, repeated)
// and Data (field 1, optional).
type pbNode struct {
	Links   []pbLink
	Data    []byte
	HasData bool
}

// linkLess reports whether a must sort strictly before b under DAG-PB's
// canonical order: bytewise by Name, stable otherwise. Equal-Name links
// carry no further ordering constraint — any relative order between them
// is canonical, so linkLess never reports a tie as a violation.
func linkLess(a, b pbLink) bool {
	an, bn := "", ""
	if a.Name != nil {
		an = *a.Name
	}
	if b.Name != nil {
		bn = *b.Name
	}
	return an < bn
}

func checkLinkOrder(links []pbLink) *ipld.EncodeError {
	for i := 1; i < len(links); i++ {
		if linkLess(links[i], links[i-1]) {
			return ipld.NewEncodeError(ipld.NotCanonical, "Links are not sorted into canonical order")
		}
	}
	return nil
}

// nodeToPB validates that n has the PBNode shape and converts it.
func nodeToPB(n ipld.Node) (pbNode, *ipld.EncodeError) {
	if n.Kind() != ipld.KindMap {
		return pbNode{}, ipld.NewEncodeError(ipld.SchemaViolation, "a dag-pb node must be a map")
	}
	m := n.AsMap()
	var pn pbNode
	for _, k := range m.Keys() {
		if k != "Links" && k != "Data" {
			return pbNode{}, ipld.NewEncodeError(ipld.SchemaViolation, "unexpected key "+k+" in dag-pb node")
		}
	}
	if dv, ok := m.Get("Data"); ok {
		if dv.Kind() != ipld.KindBytes {
			return pbNode{}, ipld.NewEncodeError(ipld.SchemaViolation, "Data must be bytes")
		}
		pn.Data = dv.AsBytes()
		pn.HasData = true
	}
	lv, ok := m.Get("Links")
	if !ok {
		return pbNode{}, ipld.NewEncodeError(ipld.SchemaViolation, "dag-pb node is missing Links")
	}
	if lv.Kind() != ipld.KindList {
		return pbNode{}, ipld.NewEncodeError(ipld.SchemaViolation, "Links must be a list")
	}
	for _, item := range lv.AsList() {
		pl, err := nodeToPBLink(item)
		if err != nil {
			return pbNode{}, err
		}
		pn.Links = append(pn.Links, pl)
	}
	return pn, nil
}

func nodeToPBLink(n ipld.Node) (pbLink, *ipld.EncodeError) {
	if n.Kind() != ipld.KindMap {
		return pbLink{}, ipld.NewEncodeError(ipld.SchemaViolation, "a dag-pb link must be a map")
	}
	m := n.AsMap()
	for _, k := range m.Keys() {
		if k != "Hash" && k != "Name" && k != "Tsize" {
			return pbLink{}, ipld.NewEncodeError(ipld.SchemaViolation, "unexpected key "+k+" in dag-pb link")
		}
	}
	var pl pbLink
	if hv, ok := m.Get("Hash"); ok {
		if hv.Kind() != ipld.KindLink {
			return pbLink{}, ipld.NewEncodeError(ipld.SchemaViolation, "Hash must be a link")
		}
		pl.Hash = hv.AsLink()
		pl.HasHash = true
	} else {
		return pbLink{}, ipld.NewEncodeError(ipld.SchemaViolation, "dag-pb link is missing Hash")
	}
	if nv, ok := m.Get("Name"); ok {
		if nv.Kind() != ipld.KindString {
			return pbLink{}, ipld.NewEncodeError(ipld.SchemaViolation, "Name must be a string")
		}
		s := nv.AsString()
		pl.Name = &s
	}
	if tv, ok := m.Get("Tsize"); ok {
		if tv.Kind() != ipld.KindInt {
			return pbLink{}, ipld.NewEncodeError(ipld.SchemaViolation, "Tsize must be an integer")
		}
		if !tv.AsInt().IsUint64() {
			return pbLink{}, ipld.NewEncodeError(ipld.IntegerOutOfRange, "Tsize must fit in a uint64")
		}
		v := tv.AsInt().Uint64()
		pl.Tsize = &v
	}
	return pl, nil
}

func pbToNode(pn pbNode) ipld.Node {
	m := ipld.NewMapCapacity(2)
	links := make([]ipld.Node, len(pn.Links))
	for i, l := range pn.Links {
		lm := ipld.NewMapCapacity(3)
		lm.Set("Hash", ipld.Link(l.Hash))
		if l.Name != nil {
			lm.Set("Name", ipld.String(*l.Name))
		}
		if l.Tsize != nil {
			lm.Set("Tsize", ipld.Uint(*l.Tsize))
		}
		links[i] = ipld.MapNode(lm)
	}
	m.Set("Links", ipld.List(links))
	if pn.HasData {
		m.Set("Data", ipld.Bytes(pn.Data))
	}
	return ipld.MapNode(m)
}
