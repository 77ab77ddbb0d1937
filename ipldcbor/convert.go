package ipldcbor

import (
	"fmt"
	"math/big"

	"github.com/ipld/libipld/ipld"
)

// toGeneric converts a Node into the plain Go values the CBOR engine
// already knows how to marshal by reflection: bool, int64/uint64 (or
// big.Int for integers outside that range), float64, string, []byte,
// []any, map[string]any, and link for KindLink.
func toGeneric(n ipld.Node) (any, error) {
	switch n.Kind() {
	case ipld.KindNull:
		return nil, nil
	case ipld.KindBool:
		return n.AsBool(), nil
	case ipld.KindInt:
		v := n.AsInt()
		if v.IsInt64() {
			return v.Int64(), nil
		}
		if v.IsUint64() {
			return v.Uint64(), nil
		}
		return new(big.Int).Set(v), nil
	case ipld.KindFloat:
		return n.AsFloat(), nil
	case ipld.KindString:
		return n.AsString(), nil
	case ipld.KindBytes:
		return n.AsBytes(), nil
	case ipld.KindList:
		items := n.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			v, err := toGeneric(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ipld.KindMap:
		m := n.AsMap()
		out := make(map[string]any, m.Len())
		var convErr error
		m.Range(func(k string, v ipld.Node) bool {
			gv, err := toGeneric(v)
			if err != nil {
				convErr = err
				return false
			}
			out[k] = gv
			return true
		})
		if convErr != nil {
			return nil, convErr
		}
		return out, nil
	case ipld.KindLink:
		return link{n.AsLink()}, nil
	default:
		return nil, fmt.Errorf("ipldcbor: cannot encode a Node of kind %s", n.Kind())
	}
}

// fromGeneric is the reverse of toGeneric, applied to whatever shape
// decMode.Unmarshal produced: map[string]any for maps (per
// DefaultMapType), []any for arrays, the tag-set's link type for tag
// 42, and CBOR's usual scalar Go types otherwise.
func fromGeneric(v any) (ipld.Node, error) {
	switch x := v.(type) {
	case nil:
		return ipld.Null(), nil
	case bool:
		return ipld.Bool(x), nil
	case int64:
		return ipld.Int(x), nil
	case uint64:
		return ipld.Uint(x), nil
	case *big.Int:
		return ipld.BigInt(x), nil
	case big.Int:
		return ipld.BigInt(&x), nil
	case float32:
		return ipld.Float(float64(x)), nil
	case float64:
		return ipld.Float(x), nil
	case string:
		return ipld.String(x), nil
	case []byte:
		return ipld.Bytes(x), nil
	case []any:
		items := make([]ipld.Node, len(x))
		for i, item := range x {
			n, err := fromGeneric(item)
			if err != nil {
				return ipld.Node{}, err
			}
			items[i] = n
		}
		return ipld.List(items), nil
	case map[string]any:
		m := ipld.NewMapCapacity(len(x))
		for k, val := range x {
			n, err := fromGeneric(val)
			if err != nil {
				return ipld.Node{}, err
			}
			m.Set(k, n)
		}
		return ipld.MapNode(m), nil
	case link:
		return ipld.Link(x.Cid), nil
	default:
		return ipld.Node{}, fmt.Errorf("ipldcbor: cannot represent decoded value of type %T", v)
	}
}
