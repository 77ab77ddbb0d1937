package dagpb

import (
	"github.com/multiformats/go-varint"
)

const (
	wireVarint = 0
	wireBytes  = 2
)

type encoder struct {
	buf []byte
}

func (e *encoder) putTag(field int, wireType int) {
	e.buf = append(e.buf, varint.ToUvarint(uint64(field<<3|wireType))...)
}

func (e *encoder) putVarint(field int, v uint64) {
	e.putTag(field, wireVarint)
	e.buf = append(e.buf, varint.ToUvarint(v)...)
}

func (e *encoder) putBytes(field int, b []byte) {
	e.putTag(field, wireBytes)
	e.buf = append(e.buf, varint.ToUvarint(uint64(len(b)))...)
	e.buf = append(e.buf, b...)
}

// encodeLink serializes a PBLink submessage: Hash=1, Name=2, Tsize=3,
// in that order, each only if present.
func (e *encoder) encodeLink(l pbLink) {
	if l.HasHash {
		e.putBytes(1, l.Hash.Bytes())
	}
	if l.Name != nil {
		e.putBytes(2, []byte(*l.Name))
	}
	if l.Tsize != nil {
		e.putVarint(3, *l.Tsize)
	}
}

// encodeNode serializes a PBNode: every Link (field 2) in order, then
// Data (field 1) -- the reverse of their field numbers, per the dag-pb
// canonical wire order.
func (e *encoder) encodeNode(pn pbNode) {
	for _, l := range pn.Links {
		le := &encoder{}
		le.encodeLink(l)
		e.putBytes(2, le.buf)
	}
	if pn.HasData {
		e.putBytes(1, pn.Data)
	}
}
