package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// bracePattern matches ${name}.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

	// dollarPattern matches $name up to a word boundary, so $speed does not
	// match inside $speedup.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// Expander substitutes defines into source text.
type Expander struct {
	missingAction MissingAction
	braceStyle    bool
	dollarStyle   bool
}

// NewExpander creates an Expander. By default both placeholder styles are
// enabled and missing defines are kept.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
		braceStyle:    true,
		dollarStyle:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand substitutes defines into s. An error is returned only under
// MissingError, together with the partially expanded text.
func (e *Expander) Expand(s string, defines map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	replace := func(name, match string) string {
		if val, ok := defines[name]; ok {
			return FormatValue(val)
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
		}
		return match
	}

	result := s
	if e.braceStyle {
		result = bracePattern.ReplaceAllStringFunc(result, func(match string) string {
			return replace(match[2:len(match)-1], match)
		})
	}
	if e.dollarStyle {
		result = dollarPattern.ReplaceAllStringFunc(result, func(match string) string {
			return replace(match[1:], match)
		})
	}

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand is like Expand but panics on error.
func (e *Expander) MustExpand(s string, defines map[string]any) string {
	result, err := e.Expand(s, defines)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// FormatValue renders a define as expression source.
func FormatValue(v any) string {
	var f float64
	switch val := v.(type) {
	case string:
		return val
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f < 0 {
		return "(" + s + ")"
	}
	return s
}

// Defines converts a numeric define table to the map Expand takes.
func Defines(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UndefinedVariableError is returned under MissingError when one or more
// defines are not found.
type UndefinedVariableError struct {
	// Names lists the missing defines in order of appearance.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = NewExpander()

// Expand substitutes defines into s with the default expander, keeping
// placeholders that have no define.
func Expand(s string, defines map[string]any) string {
	result, _ := defaultExpander.Expand(s, defines)
	return result
}
