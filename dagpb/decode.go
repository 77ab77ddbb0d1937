package dagpb

import (
	"unicode/utf8"

	"github.com/ipfs/go-cid"
	"github.com/ipld/libipld/ipld"
	"github.com/multiformats/go-varint"
)

type decoder struct {
	data []byte
}

// readTag reads a protobuf tag varint and splits it into field number
// and wire type.
func (d *decoder) readTag(pos, limit int) (field int, wireType int, next int, err *ipld.DecodeError) {
	v, n, verr := varint.FromUvarint(d.data[pos:limit])
	if verr != nil {
		return 0, 0, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated or malformed tag varint: "+verr.Error())
	}
	return int(v >> 3), int(v & 0x7), pos + n, nil
}

func (d *decoder) readVarint(pos, limit int) (uint64, int, *ipld.DecodeError) {
	v, n, verr := varint.FromUvarint(d.data[pos:limit])
	if verr != nil {
		return 0, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated or malformed varint: "+verr.Error())
	}
	return v, pos + n, nil
}

func (d *decoder) readBytes(pos, limit int) ([]byte, int, *ipld.DecodeError) {
	n, next, err := d.readVarint(pos, limit)
	if err != nil {
		return nil, pos, err
	}
	if n > uint64(limit-next) {
		return nil, pos, ipld.NewDecodeErrorAt(ipld.LengthMismatch, pos, "length-delimited field exceeds remaining input")
	}
	return d.data[next : next+int(n)], next + int(n), nil
}

// decodeNode parses a PBNode message occupying data[pos:limit],
// enforcing that every Links entry (field 2) appears before Data (field
// 1), with no other fields and no field repeated beyond what the shape
// allows.
func (d *decoder) decodeNode(pos, limit int) (pbNode, int, *ipld.DecodeError) {
	var pn pbNode
	seenData := false
	for pos < limit {
		field, wireType, next, err := d.readTag(pos, limit)
		if err != nil {
			return pbNode{}, pos, err
		}
		switch field {
		case 2:
			if seenData {
				return pbNode{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "Links field must precede Data")
			}
			if wireType != wireBytes {
				return pbNode{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "Links field has the wrong wire type")
			}
			payload, after, err := d.readBytes(next, limit)
			if err != nil {
				return pbNode{}, pos, err
			}
			ld := &decoder{data: payload}
			link, lpos, err := ld.decodeLink(0, len(payload))
			if err != nil {
				return pbNode{}, pos, err
			}
			if lpos != len(payload) {
				return pbNode{}, pos, ipld.NewDecodeErrorAt(ipld.TrailingBytes, pos, "extra bytes in Link submessage")
			}
			if len(pn.Links) > 0 && linkLess(link, pn.Links[len(pn.Links)-1]) {
				return pbNode{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "Links are not sorted into canonical order")
			}
			pn.Links = append(pn.Links, link)
			pos = after

		case 1:
			if seenData {
				return pbNode{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "Data field repeated")
			}
			if wireType != wireBytes {
				return pbNode{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "Data field has the wrong wire type")
			}
			payload, after, err := d.readBytes(next, limit)
			if err != nil {
				return pbNode{}, pos, err
			}
			pn.Data = payload
			pn.HasData = true
			seenData = true
			pos = after

		default:
			return pbNode{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "unknown dag-pb field number")
		}
	}
	return pn, pos, nil
}

// decodeLink parses a PBLink submessage. Hash, Name, and Tsize must
// appear in strictly ascending field-number order (1, then 2, then 3),
// each at most once.
func (d *decoder) decodeLink(pos, limit int) (pbLink, int, *ipld.DecodeError) {
	var pl pbLink
	lastField := 0
	for pos < limit {
		field, wireType, next, err := d.readTag(pos, limit)
		if err != nil {
			return pbLink{}, pos, err
		}
		if field <= lastField {
			return pbLink{}, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "Link fields out of order or repeated")
		}
		lastField = field
		switch field {
		case 1:
			if wireType != wireBytes {
				return pbLink{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "Hash field has the wrong wire type")
			}
			raw, after, err := d.readBytes(next, limit)
			if err != nil {
				return pbLink{}, pos, err
			}
			c, cerr := cid.Cast(raw)
			if cerr != nil {
				return pbLink{}, pos, &ipld.DecodeError{Kind: ipld.InvalidCid, Offset: pos, Msg: "invalid cid in Hash: " + cerr.Error(), Err: cerr}
			}
			pl.Hash = c
			pl.HasHash = true
			pos = after

		case 2:
			if wireType != wireBytes {
				return pbLink{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "Name field has the wrong wire type")
			}
			raw, after, err := d.readBytes(next, limit)
			if err != nil {
				return pbLink{}, pos, err
			}
			if !utf8.Valid(raw) {
				return pbLink{}, pos, ipld.NewDecodeErrorAt(ipld.InvalidUTF8, pos, "Name is not valid UTF-8")
			}
			s := string(raw)
			pl.Name = &s
			pos = after

		case 3:
			if wireType != wireVarint {
				return pbLink{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "Tsize field has the wrong wire type")
			}
			v, after, err := d.readVarint(next, limit)
			if err != nil {
				return pbLink{}, pos, err
			}
			pl.Tsize = &v
			pos = after

		default:
			return pbLink{}, pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "unknown dag-pb link field number")
		}
	}
	if !pl.HasHash {
		return pbLink{}, pos, ipld.NewDecodeErrorAt(ipld.SchemaViolation, pos, "Link is missing Hash")
	}
	return pl, pos, nil
}
