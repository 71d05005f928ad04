/*
Package template substitutes defines into script source before compilation.

# Overview

Script manifests often share tuning constants. Rather than binding them as
query values (looked up on every resolve), a define is pasted into the
source text, so the compiler can fold it:

	exp := template.NewExpander()
	src, _ := exp.Expand("math.sin(query.anim_time * ${speed})", map[string]any{"speed": 2.5})
	// src: "math.sin(query.anim_time * 2.5)"

# Patterns

Two placeholder styles are recognized:

	${name}  brace style, always unambiguous
	$name    dollar style, ends at the first non-word character

Names start with a letter or underscore followed by letters, digits, or
underscores.

# Values

Numbers are written in plain decimal notation, never with an exponent,
because the expression grammar has no exponent syntax. Negative numbers are
parenthesized so "a - ${x}" stays well formed. Strings are pasted verbatim,
which lets a define hold a subexpression.

# Missing Defines

	MissingKeep   leave the placeholder (default; the compiler then rejects it)
	MissingEmpty  remove the placeholder
	MissingError  return *UndefinedVariableError naming every missing define

# Thread Safety

An Expander is immutable after construction and safe for concurrent use.
*/
package template
