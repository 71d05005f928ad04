package molang

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Namespace names known to every Runtime.
const (
	NamespaceQuery    = "query"
	NamespaceGlobal   = "global"
	NamespaceMath     = "math"
	NamespaceTemp     = "temp"
	NamespaceVariable = "variable"
)

// namespaceAliases are the short forms accepted in source text.
var namespaceAliases = map[string]string{
	"q": NamespaceQuery,
	"t": NamespaceTemp,
	"v": NamespaceVariable,
}

// Namespace is one named category of bindings.
type Namespace interface {
	// Get returns the binding for name.
	Get(name string) (Expression, error)

	// Set binds name to value.
	Set(name string, value Expression) error

	// Has reports whether name is bound.
	Has(name string) bool
}

// FunctionKey returns the mangled key a function of the given arity is
// stored under. Overloads differ only by arity.
func FunctionKey(name string, arity int) string {
	return name + "$" + strconv.Itoa(arity)
}

// SplitFunctionKey reverses FunctionKey.
func SplitFunctionKey(key string) (name string, arity int, ok bool) {
	i := strings.LastIndexByte(key, '$')
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return key[:i], n, true
}

// Storage is a mutable map-backed namespace. It is not safe for concurrent
// use; a Runtime owns its scratch storage exclusively.
type Storage struct {
	name        string
	values      map[string]Expression
	zeroDefault bool
}

// Compile-time interface check.
var _ Namespace = (*Storage)(nil)

// NewStorage creates an empty namespace in which unset names are unknown.
func NewStorage(name string) *Storage {
	return &Storage{name: name, values: make(map[string]Expression)}
}

// NewScratch creates an empty namespace in which unset names read as 0.
func NewScratch(name string) *Storage {
	s := NewStorage(name)
	s.zeroDefault = true
	return s
}

// Name returns the namespace name.
func (s *Storage) Name() string {
	return s.name
}

// Get implements Namespace.
func (s *Storage) Get(name string) (Expression, error) {
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	if s.zeroDefault {
		return Constant{}, nil
	}
	return nil, &UnknownBindingError{Namespace: s.name, Name: name}
}

// Set implements Namespace.
func (s *Storage) Set(name string, value Expression) error {
	s.values[name] = value
	return nil
}

// Has implements Namespace.
func (s *Storage) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Len returns the number of bound names.
func (s *Storage) Len() int {
	return len(s.values)
}

// Names returns the bound names in sorted order.
func (s *Storage) Names() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Clone returns an independent copy. Bindings are shared, which is safe
// because expressions are immutable.
func (s *Storage) Clone() *Storage {
	return &Storage{
		name:        s.name,
		values:      maps.Clone(s.values),
		zeroDefault: s.zeroDefault,
	}
}

// Immutable is a read-only view of another namespace.
type Immutable struct {
	name  string
	inner Namespace
}

// Compile-time interface check.
var _ Namespace = Immutable{}

// NewImmutable wraps inner so that every Set fails.
func NewImmutable(name string, inner Namespace) Immutable {
	return Immutable{name: name, inner: inner}
}

// Get implements Namespace.
func (n Immutable) Get(name string) (Expression, error) {
	return n.inner.Get(name)
}

// Set always returns a ReadOnlyError.
func (n Immutable) Set(name string, _ Expression) error {
	return &ReadOnlyError{Namespace: n.name, Name: name}
}

// Has implements Namespace.
func (n Immutable) Has(name string) bool {
	return n.inner.Has(name)
}

// mathNamespace exposes the builtin table to runtime lookups: constants by
// name and functions under every arity they accept.
type mathNamespace struct{}

// Compile-time interface check.
var _ Namespace = mathNamespace{}

func (mathNamespace) Get(name string) (Expression, error) {
	if v, ok := mathConstants[name]; ok {
		return Constant{Value: v}, nil
	}
	fname, arity, ok := SplitFunctionKey(name)
	if ok {
		if f, found := mathFuncs[fname]; found && f.accepts(arity) {
			return f.native(arity), nil
		}
	}
	return nil, &UnknownBindingError{Namespace: NamespaceMath, Name: name}
}

func (mathNamespace) Set(name string, _ Expression) error {
	return &ReadOnlyError{Namespace: NamespaceMath, Name: name}
}

func (mathNamespace) Has(name string) bool {
	_, err := mathNamespace{}.Get(name)
	return err == nil
}
