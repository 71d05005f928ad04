package molang

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Builder assembles the host-supplied query and global bindings of a
// Runtime. A Builder may be reused: every Build call snapshots the current
// bindings, so later changes do not reach Runtimes already built.
//
// Builder is NOT thread-safe. Invalid names, negative arities, nil callbacks,
// and duplicate bindings are programmer errors and panic.
//
// Example:
//
//	rt := molang.NewBuilder().
//	    QueryConstant("anim_time", 1.25).
//	    QueryFunction("distance", 2, molang.Pure(func(a ...float64) float64 {
//	        return math.Hypot(a[0], a[1])
//	    })).
//	    Build()
type Builder struct {
	query   *Storage
	global  *Storage
	this    float64
	hasThis bool
	rng     *rand.Rand
	id      string
}

// NewBuilder creates a builder with empty query and global namespaces.
func NewBuilder() *Builder {
	return &Builder{
		query:  NewStorage(NamespaceQuery),
		global: NewStorage(NamespaceGlobal),
	}
}

// QueryConstant binds query.name to v.
func (b *Builder) QueryConstant(name string, v float64) *Builder {
	bindConstant(b.query, name, v)
	return b
}

// QueryFunction binds query.name(...) with the given arity.
func (b *Builder) QueryFunction(name string, arity int, fn NativeFunc) *Builder {
	bindFunction(b.query, name, arity, fn)
	return b
}

// GlobalConstant binds global.name to v.
func (b *Builder) GlobalConstant(name string, v float64) *Builder {
	bindConstant(b.global, name, v)
	return b
}

// GlobalFunction binds global.name(...) with the given arity.
func (b *Builder) GlobalFunction(name string, arity int, fn NativeFunc) *Builder {
	bindFunction(b.global, name, arity, fn)
	return b
}

// This binds the value 'this' resolves to.
func (b *Builder) This(v float64) *Builder {
	b.this = v
	b.hasThis = true
	return b
}

// WithRand seeds the random sources of Runtimes built afterwards. Each
// Build draws a fresh seed from r, so built Runtimes never share a source
// and a fixed r yields the same sequence of Runtimes.
func (b *Builder) WithRand(r *rand.Rand) *Builder {
	b.rng = r
	return b
}

// WithID sets the identifier reported by Runtime.ID.
func (b *Builder) WithID(id string) *Builder {
	b.id = id
	return b
}

// Build returns a Runtime whose query and global namespaces are read-only
// snapshots of the builder, with fresh empty temp and variable storage.
func (b *Builder) Build() *Runtime {
	rt := newRuntime(b.query.Clone(), b.global.Clone())
	rt.id = b.id
	rt.this = b.this
	rt.hasThis = b.hasThis
	if b.rng != nil {
		rt.rng = rand.New(rand.NewPCG(b.rng.Uint64(), b.rng.Uint64()))
	}
	return rt
}

func bindConstant(ns *Storage, name string, v float64) {
	key := normalizeName(ns.Name(), name)
	if ns.Has(key) {
		panic(fmt.Sprintf("molang: duplicate binding %s.%s", ns.Name(), key))
	}
	_ = ns.Set(key, Constant{Value: v})
}

func bindFunction(ns *Storage, name string, arity int, fn NativeFunc) {
	key := normalizeName(ns.Name(), name)
	if arity < 0 {
		panic(fmt.Sprintf("molang: negative arity for %s.%s", ns.Name(), key))
	}
	if fn == nil {
		panic(fmt.Sprintf("molang: nil function for %s.%s", ns.Name(), key))
	}
	mangled := FunctionKey(key, arity)
	if ns.Has(mangled) {
		panic(fmt.Sprintf("molang: duplicate binding %s.%s", ns.Name(), mangled))
	}
	_ = ns.Set(mangled, &Function{Name: ns.Name() + "." + key, Arity: arity, Fn: fn})
}

// normalizeName lowercases name and panics unless it is a plain identifier.
func normalizeName(namespace, name string) string {
	if !isPlainIdentifier(name) {
		panic(fmt.Sprintf("molang: invalid binding name %q in %s", name, namespace))
	}
	return strings.ToLower(name)
}

// isPlainIdentifier reports whether s is a letter or underscore followed by
// letters, digits, or underscores.
func isPlainIdentifier(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}
