package molang

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Runtime is the environment an Expression resolves against: the query,
// global, math, temp, and variable namespaces plus a stack of parameter
// frames used while a function call resolves.
//
// Runtime is NOT safe for concurrent use. Its scratch storage and frame
// stack belong to one evaluation; allocate one Runtime per goroutine.
type Runtime struct {
	id         string
	namespaces map[string]Namespace
	frames     [][]Expression
	this       float64
	hasThis    bool
	rng        *rand.Rand
}

// newRuntime seeds the builtin namespaces and allocates fresh scratch storage.
func newRuntime(query, global Namespace) *Runtime {
	return &Runtime{
		namespaces: map[string]Namespace{
			NamespaceQuery:    NewImmutable(NamespaceQuery, query),
			NamespaceGlobal:   NewImmutable(NamespaceGlobal, global),
			NamespaceMath:     mathNamespace{},
			NamespaceTemp:     NewScratch(NamespaceTemp),
			NamespaceVariable: NewScratch(NamespaceVariable),
		},
	}
}

// NewRuntime returns a Runtime with empty query and global namespaces.
// Use a Builder to bind host values.
func NewRuntime() *Runtime {
	return NewBuilder().Build()
}

// ID returns the runtime identifier used to correlate logs and traces.
// A random UUID is assigned on first use unless the Builder set one.
func (rt *Runtime) ID() string {
	if rt.id == "" {
		rt.id = uuid.NewString()
	}
	return rt.id
}

// Namespace returns the namespace registered under name.
func (rt *Runtime) Namespace(name string) (Namespace, error) {
	ns, ok := rt.namespaces[name]
	if !ok {
		return nil, &UnknownBindingError{Namespace: name}
	}
	return ns, nil
}

// This returns the bound 'this' value.
func (rt *Runtime) This() (float64, bool) {
	return rt.this, rt.hasThis
}

// Random returns the random source used by math.random and friends.
func (rt *Runtime) Random() *rand.Rand {
	if rt.rng == nil {
		rt.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rt.rng
}

// Get reads namespace.name the same way compiled code does.
func (rt *Runtime) Get(namespace, name string) (float64, error) {
	return (&GetVariable{Namespace: namespace, Name: name}).Resolve(rt)
}

// Set assigns namespace.name. Only temp and variable accept writes.
func (rt *Runtime) Set(namespace, name string, value float64) error {
	_, err := (&SetVariable{Namespace: namespace, Name: name, Value: Constant{Value: value}}).Resolve(rt)
	return err
}

// Call invokes namespace.name with constant arguments.
func (rt *Runtime) Call(namespace, name string, args ...float64) (float64, error) {
	exprs := make([]Expression, len(args))
	for i, a := range args {
		exprs[i] = Constant{Value: a}
	}
	return (&Invoke{Namespace: namespace, Name: name, Args: exprs}).Resolve(rt)
}

// PushFrame starts a call frame holding args.
func (rt *Runtime) PushFrame(args []Expression) {
	frame := make([]Expression, len(args))
	copy(frame, args)
	rt.frames = append(rt.frames, frame)
}

// PopFrame discards the innermost call frame.
func (rt *Runtime) PopFrame() {
	if n := len(rt.frames); n > 0 {
		rt.frames[n-1] = nil
		rt.frames = rt.frames[:n-1]
	}
}

// Depth returns the number of active call frames.
func (rt *Runtime) Depth() int {
	return len(rt.frames)
}

// LoadParameter stores expr at index in the innermost frame, starting a
// frame if none is active.
func (rt *Runtime) LoadParameter(index int, expr Expression) {
	if index < 0 {
		return
	}
	if len(rt.frames) == 0 {
		rt.frames = append(rt.frames, nil)
	}
	top := len(rt.frames) - 1
	for len(rt.frames[top]) <= index {
		rt.frames[top] = append(rt.frames[top], nil)
	}
	rt.frames[top][index] = expr
}

// ClearParameters empties the innermost frame without popping it.
func (rt *Runtime) ClearParameters() {
	if n := len(rt.frames); n > 0 {
		rt.frames[n-1] = rt.frames[n-1][:0]
	}
}

// HasParameter reports whether index is loaded in the innermost frame.
func (rt *Runtime) HasParameter(index int) bool {
	_, err := rt.Parameter(index)
	return err == nil
}

// Parameter returns the expression loaded at index in the innermost frame.
func (rt *Runtime) Parameter(index int) (Expression, error) {
	if len(rt.frames) == 0 {
		return nil, &ParameterError{Index: -1}
	}
	frame := rt.frames[len(rt.frames)-1]
	if index < 0 || index >= len(frame) || frame[index] == nil {
		return nil, &ParameterError{Index: index}
	}
	return frame[index], nil
}

// ResolveParameter resolves the expression loaded at index.
func (rt *Runtime) ResolveParameter(index int) (float64, error) {
	expr, err := rt.Parameter(index)
	if err != nil {
		return 0, err
	}
	return expr.Resolve(rt)
}

func (rt *Runtime) frameLen() int {
	if len(rt.frames) == 0 {
		return 0
	}
	return len(rt.frames[len(rt.frames)-1])
}

// invoke runs fn inside its own frame so nested calls cannot clobber the
// caller's parameters.
func (rt *Runtime) invoke(fn Expression, args []Expression) (float64, error) {
	rt.PushFrame(args)
	defer rt.PopFrame()
	return fn.Resolve(rt)
}
