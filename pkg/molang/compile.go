package molang

import (
	"fmt"
	"strconv"
	"strings"
)

// Compile turns source into an Expression.
//
// A source without ';' is a simple expression whose value is the result.
// A source with ';' is a sequence of statements: all of them run for their
// side effects, and the value is that of the final statement if it is
// prefixed with 'return', or 0 otherwise.
//
// Compile folds constant arithmetic, pure math calls with constant
// arguments, and conditionals with a constant condition. It never returns a
// partial tree: on failure the error is a *ParseError or an *ArityError.
func Compile(source string) (Expression, error) {
	spans := splitTopLevel(source, 0, len(source), ';')
	if len(spans) == 1 {
		sp := trimSpan(source, spans[0])
		if sp.empty() {
			return nil, &ParseError{Source: source, Offset: sp.start, Message: "empty expression"}
		}
		body, _ := stripReturn(source, sp)
		return parseUnit(source, body)
	}
	return compileStatements(source, spans)
}

// MustCompile is like Compile but panics on error.
// It simplifies initialization of package-level expressions.
func MustCompile(source string) Expression {
	expr, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("molang: Compile(%q): %v", source, err))
	}
	return expr
}

func compileStatements(source string, spans []span) (Expression, error) {
	stmts := make([]span, 0, len(spans))
	for _, sp := range spans {
		if sp = trimSpan(source, sp); !sp.empty() {
			stmts = append(stmts, sp)
		}
	}
	if len(stmts) == 0 {
		return nil, &ParseError{Source: source, Offset: 0, Message: "empty expression"}
	}

	compound := &Compound{}
	for i, sp := range stmts {
		body, isReturn := stripReturn(source, sp)
		if isReturn && i != len(stmts)-1 {
			return nil, &ParseError{Source: source, Offset: sp.start, Message: "return must be the final statement"}
		}
		expr, err := parseUnit(source, body)
		if err != nil {
			return nil, err
		}
		if isReturn {
			compound.Return = expr
			continue
		}
		// Constants have no effects.
		if _, ok := expr.(Constant); !ok {
			compound.Statements = append(compound.Statements, expr)
		}
	}

	if len(compound.Statements) == 0 {
		if compound.Return == nil {
			return Constant{}, nil
		}
		return compound.Return, nil
	}
	return compound, nil
}

// span is a half-open byte range of the source being compiled.
type span struct {
	start, end int
}

func (s span) empty() bool {
	return s.start >= s.end
}

// splitTopLevel splits src[start:end] on sep outside parentheses.
func splitTopLevel(src string, start, end int, sep byte) []span {
	var spans []span
	depth, from := 0, start
	for i := start; i < end; i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				spans = append(spans, span{from, i})
				from = i + 1
			}
		}
	}
	return append(spans, span{from, end})
}

// findTopLevel returns the index of the first c in s outside parentheses, or -1.
func findTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func trimSpan(src string, sp span) span {
	for sp.start < sp.end && isSpace(src[sp.start]) {
		sp.start++
	}
	for sp.end > sp.start && isSpace(src[sp.end-1]) {
		sp.end--
	}
	return sp
}

// stripReturn removes a leading 'return' keyword from a trimmed statement.
func stripReturn(src string, sp span) (span, bool) {
	const kw = "return"
	text := src[sp.start:sp.end]
	if len(text) < len(kw) || !strings.EqualFold(text[:len(kw)], kw) {
		return sp, false
	}
	if len(text) > len(kw) && isIdentChar(text[len(kw)]) {
		return sp, false
	}
	return span{sp.start + len(kw), sp.end}, true
}

// parser compiles one unit: a statement, a call argument, a parenthesized
// group, or a conditional branch. Offsets reported in errors are relative to
// the whole source.
type parser struct {
	src  string
	base int
	s    *Scanner
}

// parseUnit compiles src[sp.start:sp.end] as a complete statement.
func parseUnit(src string, sp span) (Expression, error) {
	p := &parser{src: src, base: sp.start, s: NewScanner(src[sp.start:sp.end])}
	expr, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	p.s.SkipWhitespace()
	if !p.s.Done() {
		return nil, p.errorf("unexpected %q", p.s.Rest())
	}
	return expr, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return p.errorAt(p.s.Offset(), format, args...)
}

func (p *parser) errorAt(local int, format string, args ...any) error {
	return &ParseError{Source: p.src, Offset: p.base + local, Message: fmt.Sprintf(format, args...)}
}

// sub converts a local range into a span of the whole source.
func (p *parser) sub(start, end int) span {
	return span{p.base + start, p.base + end}
}

// parseStatement handles assignment, then falls through to a conditional.
func (p *parser) parseStatement() (Expression, error) {
	p.s.SkipWhitespace()
	mark := p.s.Mark()
	if isLetter(p.s.Peek()) {
		ident := p.s.ReadIdentifier()
		p.s.SkipWhitespace()
		if p.s.Peek() == '=' {
			ns, name, err := p.splitIdentifier(ident, mark)
			if err != nil {
				return nil, err
			}
			p.s.Advance()
			value, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			return &SetVariable{Namespace: ns, Name: name, Value: value}, nil
		}
		p.s.Seek(mark)
	}
	return p.parseConditional()
}

// parseConditional parses 'cond ? then : else'. The branches are split at the
// first ':' outside parentheses, so a nested conditional in the then-branch
// must be parenthesized.
func (p *parser) parseConditional() (Expression, error) {
	cond, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}
	p.s.SkipWhitespace()
	if p.s.Peek() != '?' {
		return cond, nil
	}
	p.s.Advance()

	start := p.s.Offset()
	rest := p.s.Rest()
	colon := findTopLevel(rest, ':')
	if colon < 0 {
		return nil, p.errorf("conditional is missing ':'")
	}
	end := start + len(rest)

	thenExpr, err := parseUnit(p.src, p.sub(start, start+colon))
	if err != nil {
		return nil, err
	}
	elseExpr, err := parseUnit(p.src, p.sub(start+colon+1, end))
	if err != nil {
		return nil, err
	}
	p.s.Seek(end)

	if v, ok := AsConstant(cond); ok {
		if v != 0 {
			return thenExpr, nil
		}
		return elseExpr, nil
	}
	return &Conditional{Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

// parseGroup compiles a parenthesized unit starting at the cursor.
func (p *parser) parseGroup() (Expression, error) {
	open := p.s.Offset()
	closing := p.matchParen(open)
	if closing < 0 {
		return nil, p.errorAt(open, "unbalanced parentheses")
	}
	inner, err := parseUnit(p.src, p.sub(open+1, closing))
	if err != nil {
		return nil, err
	}
	p.s.Seek(closing + 1)
	return inner, nil
}

// matchParen returns the local offset of the ')' closing the '(' at open.
func (p *parser) matchParen(open int) int {
	depth := 0
	src := p.s.src
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseAtom parses a number, 'this', a variable, or a call.
func (p *parser) parseAtom() (Expression, error) {
	c := p.s.Peek()
	if isDigit(c) || c == '.' {
		return p.parseNumber()
	}
	if !isLetter(c) {
		return nil, p.errorf("unexpected %q", string(c))
	}

	mark := p.s.Mark()
	ident := p.s.ReadIdentifier()
	if strings.EqualFold(ident, "this") {
		return ThisRef{}, nil
	}
	ns, name, err := p.splitIdentifier(ident, mark)
	if err != nil {
		return nil, err
	}

	p.s.SkipWhitespace()
	if p.s.Peek() == '(' {
		return p.parseCall(ns, name, mark)
	}
	if ns == NamespaceMath {
		if v, ok := mathConstants[name]; ok {
			return Constant{Value: v}, nil
		}
		return nil, p.errorAt(mark, "unknown math constant %q", name)
	}
	return &GetVariable{Namespace: ns, Name: name}, nil
}

func (p *parser) parseNumber() (Expression, error) {
	mark := p.s.Mark()
	for c := p.s.Peek(); isDigit(c) || c == '.'; c = p.s.Peek() {
		p.s.Advance()
	}
	text := p.s.Slice(mark)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorAt(mark, "invalid number %q", text)
	}
	return Constant{Value: v}, nil
}

// parseCall parses the argument list of namespace.name at the cursor.
func (p *parser) parseCall(ns, name string, mark int) (Expression, error) {
	open := p.s.Offset()
	closing := p.matchParen(open)
	if closing < 0 {
		return nil, p.errorAt(open, "unterminated call to %s.%s", ns, name)
	}
	args, err := p.parseArgs(open+1, closing)
	if err != nil {
		return nil, err
	}
	p.s.Seek(closing + 1)

	if ns == NamespaceMath {
		return p.mathCall(name, args, mark)
	}
	return &Invoke{Namespace: ns, Name: name, Args: args}, nil
}

// parseArgs compiles each comma-separated argument as its own unit.
// Commas inside nested calls do not split.
func (p *parser) parseArgs(start, end int) ([]Expression, error) {
	if strings.TrimSpace(p.s.src[start:end]) == "" {
		return nil, nil
	}
	spans := splitTopLevel(p.s.src, start, end, ',')
	args := make([]Expression, 0, len(spans))
	for _, sp := range spans {
		arg, err := parseUnit(p.src, p.sub(sp.start, sp.end))
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// mathCall validates a builtin call and folds it when every argument is
// constant and the function is pure.
func (p *parser) mathCall(name string, args []Expression, mark int) (Expression, error) {
	f, ok := mathFuncs[name]
	if !ok {
		return nil, p.errorAt(mark, "unknown math function %q", name)
	}
	if err := f.checkArity(len(args)); err != nil {
		return nil, err
	}
	call := &MathCall{Name: name, Args: args, fn: f}
	if !f.pure {
		return call, nil
	}
	vals := make([]float64, len(args))
	for i, arg := range args {
		v, ok := AsConstant(arg)
		if !ok {
			return call, nil
		}
		vals[i] = v
	}
	v, err := f.fn(nil, vals)
	if err != nil {
		return nil, err
	}
	return Constant{Value: v}, nil
}

// splitIdentifier validates a namespace.name pair and expands aliases.
func (p *parser) splitIdentifier(ident string, mark int) (string, string, error) {
	ident = strings.ToLower(ident)
	ns, name, dotted := strings.Cut(ident, ".")
	if !dotted {
		if ident == "return" {
			return "", "", p.errorAt(mark, "unexpected 'return'")
		}
		return "", "", p.errorAt(mark, "unknown keyword %q", ident)
	}
	if !isPlainIdentifier(ns) || !isPlainIdentifier(name) {
		return "", "", p.errorAt(mark, "invalid identifier %q", ident)
	}
	if full, ok := namespaceAliases[ns]; ok {
		ns = full
	}
	return ns, name, nil
}
