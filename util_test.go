package mandel

import (
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func approxComplex(tol float64) cmp.Option {
	return cmp.Comparer(func(a, b complex128) bool {
		return cmplx.Abs(a-b) <= tol
	})
}
