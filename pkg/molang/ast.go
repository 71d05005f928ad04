package molang

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a compiled syntax tree node. Nodes are immutable after
// compilation and may be shared across goroutines; every observable effect
// happens through SetVariable writing into the Runtime.
type Expression interface {
	// Resolve evaluates the node against rt.
	Resolve(rt *Runtime) (float64, error)

	// String returns the canonical source form of the node.
	String() string
}

// Operator is a binary arithmetic operator.
type Operator byte

// Arithmetic operators.
const (
	OpAdd Operator = '+'
	OpSub Operator = '-'
	OpMul Operator = '*'
	OpDiv Operator = '/'
)

// Apply computes a op b. Division by zero yields 0.
func (op Operator) Apply(a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	default:
		return 0
	}
}

// String returns the operator symbol.
func (op Operator) String() string {
	return string(rune(op))
}

// Constant is a literal or folded value.
type Constant struct {
	Value float64
}

// Resolve returns the constant value.
func (c Constant) Resolve(*Runtime) (float64, error) {
	return c.Value, nil
}

func (c Constant) String() string {
	return formatFloat(c.Value)
}

// GetVariable reads namespace.name. When the name has no value binding but a
// zero-arity function is bound under it, the function is invoked.
type GetVariable struct {
	Namespace string
	Name      string
}

// Resolve looks the binding up and resolves it.
func (g *GetVariable) Resolve(rt *Runtime) (float64, error) {
	ns, err := rt.Namespace(g.Namespace)
	if err != nil {
		return 0, err
	}
	if !ns.Has(g.Name) && ns.Has(FunctionKey(g.Name, 0)) {
		fn, err := ns.Get(FunctionKey(g.Name, 0))
		if err != nil {
			return 0, err
		}
		return rt.invoke(fn, nil)
	}
	binding, err := ns.Get(g.Name)
	if err != nil {
		return 0, err
	}
	return binding.Resolve(rt)
}

func (g *GetVariable) String() string {
	return g.Namespace + "." + g.Name
}

// SetVariable resolves Value and stores the result under namespace.name.
// The stored binding is the resolved constant, never the expression itself.
type SetVariable struct {
	Namespace string
	Name      string
	Value     Expression
}

// Resolve assigns and returns the assigned value.
func (s *SetVariable) Resolve(rt *Runtime) (float64, error) {
	v, err := s.Value.Resolve(rt)
	if err != nil {
		return 0, err
	}
	ns, err := rt.Namespace(s.Namespace)
	if err != nil {
		return 0, err
	}
	if err := ns.Set(s.Name, Constant{Value: v}); err != nil {
		return 0, err
	}
	return v, nil
}

func (s *SetVariable) String() string {
	return s.Namespace + "." + s.Name + " = " + s.Value.String()
}

// Conditional picks Then when Cond resolves nonzero, Else otherwise.
// Only the taken branch is resolved.
type Conditional struct {
	Cond Expression
	Then Expression
	Else Expression
}

// Resolve evaluates the condition and the taken branch.
func (c *Conditional) Resolve(rt *Runtime) (float64, error) {
	cond, err := c.Cond.Resolve(rt)
	if err != nil {
		return 0, err
	}
	if cond != 0 {
		return c.Then.Resolve(rt)
	}
	return c.Else.Resolve(rt)
}

func (c *Conditional) String() string {
	return "(" + c.Cond.String() + " ? " + c.Then.String() + " : " + c.Else.String() + ")"
}

// BinaryOp applies an arithmetic operator. Left resolves before Right.
type BinaryOp struct {
	Op    Operator
	Left  Expression
	Right Expression
}

// Resolve evaluates both operands and applies the operator.
func (b *BinaryOp) Resolve(rt *Runtime) (float64, error) {
	l, err := b.Left.Resolve(rt)
	if err != nil {
		return 0, err
	}
	r, err := b.Right.Resolve(rt)
	if err != nil {
		return 0, err
	}
	return b.Op.Apply(l, r), nil
}

func (b *BinaryOp) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}

// Invoke calls the function bound under namespace.name$len(Args).
// Arguments are loaded into a fresh parameter frame and resolved lazily by
// the callee.
type Invoke struct {
	Namespace string
	Name      string
	Args      []Expression
}

// Resolve dispatches on argument count and runs the callee.
func (i *Invoke) Resolve(rt *Runtime) (float64, error) {
	ns, err := rt.Namespace(i.Namespace)
	if err != nil {
		return 0, err
	}
	fn, err := ns.Get(FunctionKey(i.Name, len(i.Args)))
	if err != nil {
		return 0, err
	}
	return rt.invoke(fn, i.Args)
}

func (i *Invoke) String() string {
	return i.Namespace + "." + i.Name + "(" + joinExpressions(i.Args, ", ") + ")"
}

// MathCall is a call into the builtin math table, bound at compile time.
// Arguments are resolved eagerly, left to right.
type MathCall struct {
	Name string
	Args []Expression
	fn   *mathFunc
}

// Resolve evaluates the arguments and applies the builtin.
func (m *MathCall) Resolve(rt *Runtime) (float64, error) {
	vals := make([]float64, len(m.Args))
	for i, arg := range m.Args {
		v, err := arg.Resolve(rt)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	return m.fn.call(rt, vals)
}

func (m *MathCall) String() string {
	return NamespaceMath + "." + m.Name + "(" + joinExpressions(m.Args, ", ") + ")"
}

// Compound runs Statements for their side effects, then resolves Return.
// A nil Return resolves to 0. Effects of statements that ran before a
// failing statement are kept.
type Compound struct {
	Statements []Expression
	Return     Expression
}

// Resolve runs every statement in order.
func (c *Compound) Resolve(rt *Runtime) (float64, error) {
	for _, stmt := range c.Statements {
		if _, err := stmt.Resolve(rt); err != nil {
			return 0, err
		}
	}
	if c.Return == nil {
		return 0, nil
	}
	return c.Return.Resolve(rt)
}

func (c *Compound) String() string {
	var sb strings.Builder
	for _, stmt := range c.Statements {
		sb.WriteString(stmt.String())
		sb.WriteString("; ")
	}
	if c.Return != nil {
		sb.WriteString("return ")
		sb.WriteString(c.Return.String())
		sb.WriteString(";")
	}
	return strings.TrimSpace(sb.String())
}

// ThisRef reads the Runtime's bound 'this' value.
type ThisRef struct{}

// Resolve returns the bound value or ErrNoThis.
func (ThisRef) Resolve(rt *Runtime) (float64, error) {
	v, ok := rt.This()
	if !ok {
		return 0, ErrNoThis
	}
	return v, nil
}

func (ThisRef) String() string {
	return "this"
}

// NativeFunc is a host callback bound as a function. It pulls the
// parameters it needs through args.
type NativeFunc func(args Args) (float64, error)

// Pure adapts a plain numeric function into a NativeFunc that resolves every
// parameter before calling fn.
func Pure(fn func(args ...float64) float64) NativeFunc {
	return func(args Args) (float64, error) {
		vals, err := args.All()
		if err != nil {
			return 0, err
		}
		return fn(vals...), nil
	}
}

// Args gives a NativeFunc access to the parameters of its call frame.
type Args struct {
	rt *Runtime
}

// Len returns the number of parameters in the active frame.
func (a Args) Len() int {
	return a.rt.frameLen()
}

// Float resolves parameter i.
func (a Args) Float(i int) (float64, error) {
	return a.rt.ResolveParameter(i)
}

// All resolves every parameter in order.
func (a Args) All() ([]float64, error) {
	vals := make([]float64, a.Len())
	for i := range vals {
		v, err := a.Float(i)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// Runtime returns the Runtime the call is resolving against.
func (a Args) Runtime() *Runtime {
	return a.rt
}

// Function is a native callback stored as a namespace binding.
type Function struct {
	Name  string
	Arity int
	Fn    NativeFunc
}

// Resolve runs the callback against the active call frame.
func (f *Function) Resolve(rt *Runtime) (float64, error) {
	return f.Fn(Args{rt: rt})
}

func (f *Function) String() string {
	return fmt.Sprintf("<native %s/%d>", f.Name, f.Arity)
}

// AsConstant reports whether e is a Constant and returns its value.
func AsConstant(e Expression) (float64, bool) {
	c, ok := e.(Constant)
	return c.Value, ok
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinExpressions(exprs []Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}
