package benchmarks

import (
	"fmt"
	"strings"
	"testing"

	"github.com/randalmurphal/molang/pkg/molang"
)

// Sources of increasing size.
var (
	simpleSource    = "query.anim_time * 360"
	constantSource  = "math.sin(90) * 2 + (4 - 1) / 3"
	animationSource = "math.sin(query.anim_time * 2 * 360) * (query.is_moving ? 25 : 5) + math.lerp(0, 1, query.blend)"
	compoundSource  = "t.a = query.anim_time * 2; t.b = t.a + math.cos(t.a * 360); v.c = t.b * 0.5; return t.a + t.b;"
)

func BenchmarkCompile_Simple(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = molang.Compile(simpleSource)
	}
}

// BenchmarkCompile_Constant measures compile-time folding of a fully
// constant source.
func BenchmarkCompile_Constant(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = molang.Compile(constantSource)
	}
}

func BenchmarkCompile_Animation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = molang.Compile(animationSource)
	}
}

func BenchmarkCompile_Compound(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = molang.Compile(compoundSource)
	}
}

// BenchmarkCompile_Statements measures scaling with statement count.
func BenchmarkCompile_Statements(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			var sb strings.Builder
			for j := 0; j < n; j++ {
				fmt.Fprintf(&sb, "t.v%d = query.x * %d;", j, j)
			}
			sb.WriteString("return t.v0;")
			src := sb.String()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = molang.Compile(src)
			}
		})
	}
}
