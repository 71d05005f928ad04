/*
Package molang compiles and evaluates small numeric formulas.

# Overview

molang lets data-driven content (animation curves, procedural transforms,
conditional logic) reference live numeric host state without recompiling
host code. Source text is compiled once into an immutable Expression tree,
which is then resolved any number of times against a Runtime holding the
current bindings.

# Basic Usage

	expr, err := molang.Compile("math.sin(query.anim_time * 360) * 0.5")
	if err != nil {
	    log.Fatal(err)
	}

	rt := molang.NewBuilder().
	    QueryConstant("anim_time", 0.25).
	    Build()

	v, err := expr.Resolve(rt) // 0.5

# Syntax

	<source>    := <statement> | <statement> (';' <statement>)* [';']
	<statement> := ['return'] (<name> '=' <statement> | <conditional>)
	<conditional> := <arith> ['?' <statement> ':' <statement>]
	<arith>     := <term> (('+' | '-') <term>)*
	<term>      := <factor> (('*' | '/') <factor>)*
	<factor>    := '+' <factor> | '-' <factor> | '(' <statement> ')' | <atom>
	<atom>      := number | 'this' | <name> | <name> '(' [<statement> (',' <statement>)*] ')'
	<name>      := namespace '.' identifier

A source without ';' is a simple expression and yields its value. A source
with ';' yields the value of its final statement when that statement starts
with 'return', and 0 otherwise.

Identifiers are case-insensitive. The aliases q, t, and v stand for query,
temp, and variable.

Conditionals split at the first ':' outside parentheses, so a conditional
nested in a then-branch must be parenthesized:

	query.a ? (query.b ? 1 : 2) : 3

Any nonzero value is true. Division by zero yields 0.

# Namespaces

  - query, global: bound by the host through a Builder; read-only
  - math: builtin functions and the constant math.pi; read-only
  - temp, variable: scratch storage owned by one Runtime; unset names read as 0

Functions are stored under name$arity, so overloads differ only in their
number of parameters:

	b.QueryFunction("foo", 1, fooOne)
	b.QueryFunction("foo", 2, fooTwo)

# Math

Trigonometric functions take and return degrees. Calls into math are checked
at compile time: an unknown function is a *ParseError and a wrong argument
count is an *ArityError. Pure calls with constant arguments are folded.

# Errors

Compile returns *ParseError or *ArityError; both mean the source will never
compile. Resolve returns *UnknownBindingError, *ArgumentRangeError,
*ParameterError, *ReadOnlyError, or ErrNoThis; these describe one failed
evaluation. Use IsCompileError or errors.Is with the Err* sentinels to tell
them apart. Side effects of statements that ran before a failure are kept.

# Thread Safety

Expressions are immutable and safe to share. A Runtime is not: give every
goroutine (or every evaluation frame) its own.
*/
package molang
