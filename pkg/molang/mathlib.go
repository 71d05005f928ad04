package molang

import (
	"math"
	"math/rand/v2"
	"slices"
)

// mathFunc is one entry of the builtin math table.
type mathFunc struct {
	name string
	min  int
	max  int // -1 for open-ended
	pure bool
	fn   func(rng *rand.Rand, args []float64) (float64, error)
}

func (f *mathFunc) accepts(n int) bool {
	return n >= f.min && (f.max < 0 || n <= f.max)
}

func (f *mathFunc) checkArity(n int) error {
	if f.accepts(n) {
		return nil
	}
	return &ArityError{Function: NamespaceMath + "." + f.name, Got: n, Min: f.min, Max: f.max}
}

// call applies the function. Only impure entries touch the random source.
func (f *mathFunc) call(rt *Runtime, args []float64) (float64, error) {
	if err := f.checkArity(len(args)); err != nil {
		return 0, err
	}
	var rng *rand.Rand
	if !f.pure {
		rng = rt.Random()
	}
	return f.fn(rng, args)
}

// native wraps the entry as a Function for lookups through the math namespace.
func (f *mathFunc) native(arity int) *Function {
	return &Function{
		Name:  NamespaceMath + "." + f.name,
		Arity: arity,
		Fn: func(args Args) (float64, error) {
			vals, err := args.All()
			if err != nil {
				return 0, err
			}
			return f.call(args.Runtime(), vals)
		},
	}
}

var mathConstants = map[string]float64{
	"pi": math.Pi,
}

var mathFuncs = indexMathFuncs([]*mathFunc{
	unary("abs", math.Abs),
	unary("acos", func(x float64) float64 { return toDegrees(math.Acos(x)) }),
	unary("asin", func(x float64) float64 { return toDegrees(math.Asin(x)) }),
	unary("atan", func(x float64) float64 { return toDegrees(math.Atan(x)) }),
	fixed("atan2", 2, func(a []float64) float64 { return toDegrees(math.Atan2(a[0], a[1])) }),
	unary("ceil", math.Ceil),
	fixed("clamp", 3, func(a []float64) float64 { return math.Max(a[1], math.Min(a[0], a[2])) }),
	unary("cos", func(x float64) float64 { return math.Cos(toRadians(x)) }),
	{name: "die_roll", min: 3, max: 3, fn: dieRoll},
	{name: "die_roll_integer", min: 3, max: 3, fn: dieRollInteger},
	unary("exp", math.Exp),
	unary("floor", math.Floor),
	unary("hermite_blend", func(t float64) float64 { return 3*t*t - 2*t*t*t }),
	fixed("lerp", 3, func(a []float64) float64 { return a[0] + (a[1]-a[0])*a[2] }),
	fixed("lerp_rotate", 3, func(a []float64) float64 { return lerpRotate(a[0], a[1], a[2]) }),
	unary("ln", math.Log),
	{name: "max", min: 2, max: -1, pure: true, fn: func(_ *rand.Rand, a []float64) (float64, error) {
		return slices.Max(a), nil
	}},
	{name: "min", min: 2, max: -1, pure: true, fn: func(_ *rand.Rand, a []float64) (float64, error) {
		return slices.Min(a), nil
	}},
	unary("min_angle", wrapAngle),
	fixed("mod", 2, func(a []float64) float64 {
		if a[1] == 0 {
			return 0
		}
		return math.Mod(a[0], a[1])
	}),
	fixed("pow", 2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }),
	{name: "random", min: 2, max: 2, fn: random},
	{name: "random_integer", min: 2, max: 2, fn: randomInteger},
	unary("round", func(x float64) float64 { return math.Floor(x + 0.5) }),
	unary("sin", func(x float64) float64 { return math.Sin(toRadians(x)) }),
	unary("sqrt", math.Sqrt),
	unary("trunc", math.Trunc),
})

// MathFunctions returns the names of the builtin math functions, sorted.
func MathFunctions() []string {
	names := make([]string, 0, len(mathFuncs))
	for name := range mathFuncs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func indexMathFuncs(funcs []*mathFunc) map[string]*mathFunc {
	m := make(map[string]*mathFunc, len(funcs))
	for _, f := range funcs {
		m[f.name] = f
	}
	return m
}

func unary(name string, fn func(float64) float64) *mathFunc {
	return fixed(name, 1, func(a []float64) float64 { return fn(a[0]) })
}

func fixed(name string, arity int, fn func([]float64) float64) *mathFunc {
	return &mathFunc{
		name: name,
		min:  arity,
		max:  arity,
		pure: true,
		fn: func(_ *rand.Rand, a []float64) (float64, error) {
			return fn(a), nil
		},
	}
}

// MaxDieRolls bounds the roll count of math.die_roll and
// math.die_roll_integer.
const MaxDieRolls = 1 << 16

// maxExactInteger is the largest magnitude at which every integer is a float64.
const maxExactInteger = 1 << 53

func finiteArgs(name string, a []float64) error {
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ArgumentRangeError{Function: name, Message: "argument is not finite"}
		}
	}
	return nil
}

// integerRange rounds bounds for the integer variants and rejects bounds that
// are not exact integers as float64.
func integerRange(name string, lo, hi float64) (int64, int64, error) {
	lo, hi = math.Round(lo), math.Round(hi)
	if math.Abs(lo) > maxExactInteger || math.Abs(hi) > maxExactInteger {
		return 0, 0, &ArgumentRangeError{Function: name, Message: "bound exceeds 2^53 in magnitude"}
	}
	if lo > hi {
		return 0, 0, &ArgumentRangeError{Function: name, Message: "min is greater than max"}
	}
	return int64(lo), int64(hi), nil
}

func rollCount(name string, v float64) (int, error) {
	n := math.Trunc(v)
	if n > MaxDieRolls {
		return 0, &ArgumentRangeError{Function: name, Message: "too many rolls"}
	}
	return int(max(n, 0)), nil
}

// uniform draws from [lo, hi) without forming hi-lo, which may overflow.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	f := rng.Float64()
	return lo*(1-f) + hi*f
}

func random(rng *rand.Rand, a []float64) (float64, error) {
	const name = "math.random"
	if err := finiteArgs(name, a); err != nil {
		return 0, err
	}
	lo, hi := a[0], a[1]
	if lo > hi {
		return 0, &ArgumentRangeError{Function: name, Message: "min is greater than max"}
	}
	return uniform(rng, lo, hi), nil
}

func randomInteger(rng *rand.Rand, a []float64) (float64, error) {
	const name = "math.random_integer"
	if err := finiteArgs(name, a); err != nil {
		return 0, err
	}
	lo, hi, err := integerRange(name, a[0], a[1])
	if err != nil {
		return 0, err
	}
	return float64(lo + rng.Int64N(hi-lo+1)), nil
}

func dieRoll(rng *rand.Rand, a []float64) (float64, error) {
	const name = "math.die_roll"
	if err := finiteArgs(name, a); err != nil {
		return 0, err
	}
	lo, hi := a[1], a[2]
	if lo > hi {
		return 0, &ArgumentRangeError{Function: name, Message: "low is greater than high"}
	}
	n, err := rollCount(name, a[0])
	if err != nil {
		return 0, err
	}
	var sum float64
	for range n {
		sum += uniform(rng, lo, hi)
	}
	return sum, nil
}

func dieRollInteger(rng *rand.Rand, a []float64) (float64, error) {
	const name = "math.die_roll_integer"
	if err := finiteArgs(name, a); err != nil {
		return 0, err
	}
	lo, hi, err := integerRange(name, a[1], a[2])
	if err != nil {
		return 0, err
	}
	n, err := rollCount(name, a[0])
	if err != nil {
		return 0, err
	}
	var sum float64
	for range n {
		sum += float64(lo + rng.Int64N(hi-lo+1))
	}
	return sum, nil
}

// wrapAngle maps degrees into [-180, 180).
func wrapAngle(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

// lerpRotate interpolates from start to end the short way around the circle.
func lerpRotate(start, end, t float64) float64 {
	start, end = wrapAngle(start), wrapAngle(end)
	switch {
	case end-start > 180:
		end -= 360
	case start-end > 180:
		end += 360
	}
	return start + (end-start)*t
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
