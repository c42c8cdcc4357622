package helper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movlab/v2v-sim/pkg/v2v/helper"
)

func TestSmallestPositiveRoot_Quadratic(t *testing.T) {
	// t^2 - 3t + 2 = (t-1)(t-2), roots 1 and 2.
	root, ok := helper.SmallestPositiveRoot(1, -3, 2)
	require.True(t, ok)
	require.InDelta(t, 1.0, root, 1e-9)
}

func TestSmallestPositiveRoot_QuadraticNoRealRoot(t *testing.T) {
	// t^2 + 1 = 0 has no real roots.
	_, ok := helper.SmallestPositiveRoot(1, 0, 1)
	require.False(t, ok)
}

func TestSmallestPositiveRoot_QuadraticOnlyNegativeRoots(t *testing.T) {
	// t^2 + 3t + 2 = (t+1)(t+2), roots -1 and -2.
	_, ok := helper.SmallestPositiveRoot(1, 3, 2)
	require.False(t, ok)
}

func TestSmallestPositiveRoot_LinearFallback(t *testing.T) {
	// a == 0: -2t + 4 = 0, root t = 2.
	root, ok := helper.SmallestPositiveRoot(0, -2, 4)
	require.True(t, ok)
	require.InDelta(t, 2.0, root, 1e-9)
}

func TestSmallestPositiveRoot_DegenerateConstant(t *testing.T) {
	// a == 0, b == 0: no root regardless of c.
	_, ok := helper.SmallestPositiveRoot(0, 0, 5)
	require.False(t, ok)
}
