package molang

// arithmetic is a precedence-climbing parser for one arithmetic expression:
//
//	expression := term (('+' | '-') term)*
//	term       := factor (('*' | '/') factor)*
//	factor     := '+' factor | '-' factor | '(' statement ')' | atom
//
// Operations on two constants fold while foldable is set. The first
// non-constant operand clears it for the rest of the expression, so constants
// are never regrouped around an operand that may have side effects.
type arithmetic struct {
	p        *parser
	foldable bool
}

func (p *parser) parseArithmetic() (Expression, error) {
	a := &arithmetic{p: p, foldable: true}
	return a.expression()
}

func (a *arithmetic) expression() (Expression, error) {
	left, err := a.term()
	if err != nil {
		return nil, err
	}
	for {
		a.p.s.SkipWhitespace()
		op := Operator(a.p.s.Peek())
		if op != OpAdd && op != OpSub {
			return left, nil
		}
		a.p.s.Advance()
		right, err := a.term()
		if err != nil {
			return nil, err
		}
		left = a.combine(op, left, right)
	}
}

func (a *arithmetic) term() (Expression, error) {
	left, err := a.factor()
	if err != nil {
		return nil, err
	}
	for {
		a.p.s.SkipWhitespace()
		op := Operator(a.p.s.Peek())
		if op != OpMul && op != OpDiv {
			return left, nil
		}
		a.p.s.Advance()
		right, err := a.factor()
		if err != nil {
			return nil, err
		}
		left = a.combine(op, left, right)
	}
}

func (a *arithmetic) factor() (Expression, error) {
	f, err := a.unary()
	if err != nil {
		return nil, err
	}
	if _, ok := f.(Constant); !ok {
		a.foldable = false
	}
	return f, nil
}

func (a *arithmetic) unary() (Expression, error) {
	s := a.p.s
	s.SkipWhitespace()
	switch c := s.Peek(); {
	case s.Done():
		return nil, a.p.errorf("unexpected end of expression")
	case c == '+':
		s.Advance()
		return a.factor()
	case c == '-':
		s.Advance()
		f, err := a.factor()
		if err != nil {
			return nil, err
		}
		return a.combine(OpMul, Constant{Value: -1}, f), nil
	case c == '(':
		return a.p.parseGroup()
	case isOperator(c), c == '?', c == ':', c == '=', c == ',':
		return nil, a.p.errorf("unexpected %q", string(c))
	default:
		return a.p.parseAtom()
	}
}

func (a *arithmetic) combine(op Operator, left, right Expression) Expression {
	if a.foldable {
		l, lok := AsConstant(left)
		r, rok := AsConstant(right)
		if lok && rok {
			return Constant{Value: op.Apply(l, r)}
		}
	}
	return &BinaryOp{Op: op, Left: left, Right: right}
}
