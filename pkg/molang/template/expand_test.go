package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	defines := map[string]any{
		"speed":  2.5,
		"count":  3,
		"neg":    -0.5,
		"huge":   1e21,
		"expr":   "query.a + query.b",
		"on":     true,
		"off":    false,
		"speedy": 9,
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"brace", "query.t * ${speed}", "query.t * 2.5"},
		{"dollar", "query.t * $speed", "query.t * 2.5"},
		{"dollar word boundary", "$speedy + $speed", "9 + 2.5"},
		{"integer", "${count} * 2", "3 * 2"},
		{"negative is parenthesized", "1 - ${neg}", "1 - (-0.5)"},
		{"no exponent", "${huge}", "1000000000000000000000"},
		{"string is verbatim", "(${expr}) / 2", "(query.a + query.b) / 2"},
		{"bool", "${on} + ${off}", "1 + 0"},
		{"adjacent", "${count}${count}", "33"},
		{"missing kept", "${nope} + 1", "${nope} + 1"},
		{"empty", "", ""},
		{"no placeholders", "math.pi", "math.pi"},
	}

	exp := NewExpander()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exp.Expand(tt.input, defines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_MissingActions(t *testing.T) {
	defines := map[string]any{"a": 1}

	t.Run("empty", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingEmpty))
		got, err := exp.Expand("${a}+${b}", defines)
		require.NoError(t, err)
		assert.Equal(t, "1+", got)
	})

	t.Run("error names every missing define", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		got, err := exp.Expand("${x} + $y + ${a}", defines)

		var undef *UndefinedVariableError
		require.ErrorAs(t, err, &undef)
		assert.Equal(t, []string{"x", "y"}, undef.Names)
		assert.Equal(t, "undefined variables: x, y", err.Error())
		assert.Equal(t, "${x} + $y + 1", got)
	})

	t.Run("single missing message", func(t *testing.T) {
		err := (&UndefinedVariableError{Names: []string{"x"}}).Error()
		assert.Equal(t, "undefined variable: x", err)
	})
}

func TestExpand_Styles(t *testing.T) {
	defines := map[string]any{"a": 1}

	braceOnly := NewExpander(WithDollarStyle(false))
	assert.Equal(t, "1 $a", braceOnly.MustExpand("${a} $a", defines))

	dollarOnly := NewExpander(WithBraceStyle(false))
	assert.Equal(t, "${a} 1", dollarOnly.MustExpand("${a} $a", defines))
}

func TestMustExpand_Panics(t *testing.T) {
	exp := NewExpander(WithMissingAction(MissingError))
	assert.Panics(t, func() { exp.MustExpand("${x}", nil) })
}

func TestPackageExpand(t *testing.T) {
	assert.Equal(t, "2 * ${b}", Expand("${a} * ${b}", Defines(map[string]float64{"a": 2})))
}
