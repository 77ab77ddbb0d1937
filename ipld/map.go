package ipld

// Map is the carrier for the IPLD Map kind: a mapping from string keys
// to Node values with no duplicate keys, preserving insertion order for
// the in-memory representation.
//
// Insertion order is what Range and Keys walk in, which keeps debugging
// output and round-tripping of non-canonically-ordered decoded input
// faithful to the bytes it came from. DAG-CBOR and DAG-JSON encoders
// impose their own canonical (byte-lexicographic) order on the wire
// regardless of the order recorded here.
type Map struct {
	keys []string
	idx  map[string]int
	vals []Node
}

// NewMap returns an empty Map ready for use.
func NewMap() *Map {
	return &Map{idx: make(map[string]int)}
}

// NewMapCapacity returns an empty Map pre-sized for n entries.
func NewMapCapacity(n int) *Map {
	return &Map{
		keys: make([]string, 0, n),
		idx:  make(map[string]int, n),
		vals: make([]Node, 0, n),
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (Node, bool) {
	if m == nil {
		return Node{}, false
	}
	i, ok := m.idx[key]
	if !ok {
		return Node{}, false
	}
	return m.vals[i], true
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.idx[key]
	return ok
}

// Set inserts key/val, appending key to the insertion order if it is
// new, or overwriting the value in place if key already exists. Set
// never introduces a duplicate key.
func (m *Map) Set(key string, val Node) {
	if i, ok := m.idx[key]; ok {
		m.vals[i] = val
		return
	}
	m.idx[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

// SetUnique inserts key/val and reports a DuplicateKey DecodeError if
// key is already present, leaving the first value in place. The
// decoders in this module do not call it: they reject duplicate keys
// while checking key order and then build their maps with Set.
func (m *Map) SetUnique(key string, val Node) error {
	if m.Has(key) {
		return &DecodeError{Kind: DuplicateKey, Msg: "duplicate map key " + quote(key)}
	}
	m.Set(key, val)
	return nil
}

// Keys returns the keys in insertion order. The returned slice must not
// be modified.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Range calls fn for each entry in insertion order, stopping early if
// fn returns false.
func (m *Map) Range(fn func(key string, val Node) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := NewMapCapacity(len(m.keys))
	for i, k := range m.keys {
		out.Set(k, m.vals[i].Clone())
	}
	return out
}

func (m *Map) equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	eq := true
	m.Range(func(k string, v Node) bool {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			eq = false
			return false
		}
		return true
	})
	return eq
}

func quote(s string) string {
	return `"` + s + `"`
}
