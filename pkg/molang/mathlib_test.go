package molang_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/randalmurphal/molang/pkg/molang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMath_Builtins(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"math.abs(-3)", 3},
		{"math.ceil(1.2)", 2},
		{"math.ceil(-1.2)", -1},
		{"math.floor(-1.5)", -2},
		{"math.floor(1.5)", 1},
		{"math.trunc(-1.5)", -1},
		{"math.trunc(1.5)", 1},
		{"math.round(2.5)", 3},
		{"math.round(-1.5)", -1},
		{"math.round(1.4)", 1},
		{"math.clamp(5, 0, 3)", 3},
		{"math.clamp(-1, 0, 3)", 0},
		{"math.clamp(2, 0, 3)", 2},
		{"math.lerp(0, 10, 0.5)", 5},
		{"math.lerp(10, 20, 0)", 10},
		{"math.lerp(10, 20, 2)", 30},
		{"math.lerp_rotate(0, 90, 0.5)", 45},
		{"math.lerp_rotate(170, -170, 0.5)", 180},
		{"math.lerp_rotate(10, 350, 0.5)", 0},
		{"math.lerp_rotate(-170, 170, 0.5)", -180},
		{"math.hermite_blend(0)", 0},
		{"math.hermite_blend(0.5)", 0.5},
		{"math.hermite_blend(1)", 1},
		{"math.min_angle(270)", -90},
		{"math.min_angle(-190)", 170},
		{"math.min_angle(45)", 45},
		{"math.sin(90)", 1},
		{"math.sin(0)", 0},
		{"math.cos(0)", 1},
		{"math.cos(180)", -1},
		{"math.asin(1)", 90},
		{"math.acos(1)", 0},
		{"math.atan(1)", 45},
		{"math.atan2(1, 1)", 45},
		{"math.exp(0)", 1},
		{"math.ln(1)", 0},
		{"math.pow(2, 10)", 1024},
		{"math.sqrt(16)", 4},
		{"math.mod(7, 3)", 1},
		{"math.mod(-7, 3)", -1},
		{"math.mod(7, 0)", 0},
		{"math.min(3, 1, 2)", 1},
		{"math.max(3, 1, 2)", 3},
		{"math.max(-1, -2)", -1},
		{"math.pi", math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			expr, err := molang.Compile(tt.source)
			require.NoError(t, err)

			// Pure calls on constants are folded at compile time.
			folded, ok := molang.AsConstant(expr)
			require.True(t, ok)
			assert.InDelta(t, tt.want, folded, 1e-9)
		})
	}
}

// TestMath_DynamicArguments exercises the resolve-time path of the same table.
func TestMath_DynamicArguments(t *testing.T) {
	rt := molang.NewBuilder().
		QueryConstant("neg", -1.5).
		QueryConstant("half", 0.5).
		Build()

	tests := []struct {
		source string
		want   float64
	}{
		{"math.floor(query.neg)", -2},
		{"math.trunc(query.neg)", -1},
		{"math.abs(query.neg)", 1.5},
		{"math.lerp(0, 10, query.half)", 5},
		{"math.min(query.neg, query.half, 0)", -1.5},
		{"math.lerp_rotate(350, 10, query.half)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			expr, err := molang.Compile(tt.source)
			require.NoError(t, err)
			assert.IsType(t, &molang.MathCall{}, expr)

			got, err := expr.Resolve(rt)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func seeded() *molang.Runtime {
	return molang.NewBuilder().WithRand(rand.New(rand.NewPCG(1, 2))).Build()
}

func TestMath_Random(t *testing.T) {
	rt := seeded()

	for range 50 {
		v, err := eval(t, "math.random(1, 2)", rt)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.Less(t, v, 2.0)

		v, err = eval(t, "math.random_integer(1, 6)", rt)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 6.0)
		assert.Equal(t, math.Trunc(v), v)

		v, err = eval(t, "math.die_roll_integer(3, 1, 6)", rt)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 3.0)
		assert.LessOrEqual(t, v, 18.0)

		v, err = eval(t, "math.die_roll(2, 0, 1)", rt)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 2.0)
	}

	v, err := eval(t, "math.random(3, 3)", rt)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestMath_RandomIsDeterministicWithSeed(t *testing.T) {
	expr := molang.MustCompile("math.random(0, 100)")

	a, err := expr.Resolve(seeded())
	require.NoError(t, err)
	b, err := expr.Resolve(seeded())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMath_ArgumentRange(t *testing.T) {
	rt := seeded()

	for _, source := range []string{
		"math.random(2, 1)",
		"math.random_integer(6, 1)",
		"math.die_roll(1, 5, 2)",
		"math.die_roll_integer(1, 5, 2)",
	} {
		t.Run(source, func(t *testing.T) {
			_, err := eval(t, source, rt)
			require.Error(t, err)
			assert.ErrorIs(t, err, molang.ErrArgumentRange)
			assert.False(t, molang.IsCompileError(err))
		})
	}
}

func TestMath_RandomExtremeArguments(t *testing.T) {
	rt := molang.NewBuilder().
		WithRand(rand.New(rand.NewPCG(3, 4))).
		QueryConstant("inf", math.Inf(1)).
		QueryConstant("nan", math.NaN()).
		QueryConstant("big", math.MaxFloat64).
		Build()

	t.Run("wide float range stays finite", func(t *testing.T) {
		v, err := eval(t, "math.random(-query.big, query.big)", rt)
		require.NoError(t, err)
		assert.False(t, math.IsInf(v, 0))
		assert.False(t, math.IsNaN(v))
	})

	t.Run("widest exact integer range", func(t *testing.T) {
		v, err := eval(t, "math.random_integer(-9007199254740992, 9007199254740992)", rt)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, -9007199254740992.0)
		assert.LessOrEqual(t, v, 9007199254740992.0)
	})

	for _, source := range []string{
		"math.random_integer(-9000000000000000000, 9000000000000000000)",
		"math.die_roll_integer(2, 0, 9000000000000000000)",
		"math.random(0, query.inf)",
		"math.random(query.nan, 1)",
		"math.random_integer(query.nan, 1)",
		"math.random_integer(0, query.inf)",
		"math.die_roll(query.nan, 0, 1)",
		"math.die_roll(1, 0, query.inf)",
		"math.die_roll_integer(query.inf, 0, 1)",
	} {
		t.Run(source, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = eval(t, source, rt) })
			assert.ErrorIs(t, err, molang.ErrArgumentRange)
		})
	}
}

func TestMath_DieRollCount(t *testing.T) {
	rt := seeded()

	v, err := eval(t, "math.die_roll_integer(65536, 1, 1)", rt)
	require.NoError(t, err)
	assert.Equal(t, float64(molang.MaxDieRolls), v)

	v, err = eval(t, "math.die_roll(-3, 0, 1)", rt)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	for _, source := range []string{
		"math.die_roll(65537, 0, 1)",
		"math.die_roll(1000000000000, 0, 1)",
		"math.die_roll_integer(1000000000000, 1, 6)",
	} {
		t.Run(source, func(t *testing.T) {
			_, err := eval(t, source, rt)
			assert.ErrorIs(t, err, molang.ErrArgumentRange)
		})
	}
}

func TestMath_Namespace(t *testing.T) {
	rt := molang.NewRuntime()

	v, err := rt.Call(molang.NamespaceMath, "abs", -3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = rt.Call(molang.NamespaceMath, "max", 1, 5, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	v, err = rt.Get(molang.NamespaceMath, "pi")
	require.NoError(t, err)
	assert.Equal(t, math.Pi, v)

	_, err = rt.Call(molang.NamespaceMath, "clamp", 1, 2)
	assert.ErrorIs(t, err, molang.ErrUnknownBinding)

	ns, err := rt.Namespace(molang.NamespaceMath)
	require.NoError(t, err)
	assert.True(t, ns.Has("sin$1"))
	assert.True(t, ns.Has("min$7"))
	assert.False(t, ns.Has("sin$2"))
	assert.False(t, ns.Has("nope$1"))
	assert.ErrorIs(t, ns.Set("pi", molang.Constant{Value: 3}), molang.ErrReadOnly)
}

func TestMathFunctions(t *testing.T) {
	names := molang.MathFunctions()
	assert.IsIncreasing(t, names)
	for _, want := range []string{"abs", "clamp", "lerp", "lerp_rotate", "random", "trunc"} {
		assert.Contains(t, names, want)
	}
}
