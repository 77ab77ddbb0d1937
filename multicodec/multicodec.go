/*
Package multicodec implements the codec registry described in spec
section 6.1: a mapping from a multicodec code to the ipld.Codec that
implements it, used to dispatch decode given only bytes plus a codec
identifier.

https://github.com/multiformats/multicodec
*/
package multicodec

import (
	"fmt"
	"sync"

	"github.com/ipld/libipld/ipld"
)

// Code is a multicodec identifier, per spec section 3.3.
type Code uint64

// The codec codes this module ships implementations for.
const (
	Raw     Code = 0x55
	DagPB   Code = 0x70
	DagCBOR Code = 0x71
	DagJSON Code = 0x0129
)

func (c Code) String() string {
	switch c {
	case Raw:
		return "raw"
	case DagPB:
		return "dag-pb"
	case DagCBOR:
		return "dag-cbor"
	case DagJSON:
		return "dag-json"
	default:
		return fmt.Sprintf("0x%x", uint64(c))
	}
}

// Registry maps codec codes to implementations. The zero Registry is
// empty and ready to use; Default returns one pre-populated with this
// module's built-in codecs.
type Registry struct {
	mu sync.RWMutex
	m  map[Code]ipld.Codec
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[Code]ipld.Codec)}
}

// Register adds or replaces the codec for its own Code().
func (r *Registry) Register(c ipld.Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		r.m = make(map[Code]ipld.Codec)
	}
	r.m[Code(c.Code())] = c
}

// Lookup returns the codec registered for code, if any.
func (r *Registry) Lookup(code Code) (ipld.Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[code]
	return c, ok
}

// Decode looks up code and decodes data with it.
func (r *Registry) Decode(code Code, data []byte) (ipld.Node, error) {
	c, ok := r.Lookup(code)
	if !ok {
		return ipld.Node{}, fmt.Errorf("multicodec: no codec registered for %s", code)
	}
	return c.Decode(data)
}

// Encode looks up code and encodes n with it.
func (r *Registry) Encode(code Code, n ipld.Node) ([]byte, error) {
	c, ok := r.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("multicodec: no codec registered for %s", code)
	}
	return c.Encode(n)
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// pendingBuiltins collects the codecs that dagcbor/dagjson/dagpb/raw
// contribute from their init functions via RegisterBuiltin. Those
// packages import multicodec and register themselves here, so
// multicodec never imports them and no import cycle arises.
var pendingBuiltins []ipld.Codec

// RegisterBuiltin is called from dagcbor/dagjson/dagpb/raw's init
// functions to contribute themselves to Default's registry. Application
// code does not normally need to call this directly.
func RegisterBuiltin(c ipld.Codec) {
	pendingBuiltins = append(pendingBuiltins, c)
}

// Default returns the process-wide registry, built once on first use
// from every codec package that has been imported (blank-imported if
// necessary) for its RegisterBuiltin side effect.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		for _, c := range pendingBuiltins {
			defaultReg.Register(c)
		}
	})
	return defaultReg
}
