package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

func TestSupportedVersion_Accepts(t *testing.T) {
	sv, err := types.NewSupportedVersion("1.0.0")
	require.NoError(t, err)

	require.True(t, sv.Accepts("1.0.0"))
	require.True(t, sv.Accepts("0.9.0"))
	require.False(t, sv.Accepts("1.1.0"))
	require.False(t, sv.Accepts("garbage"))
}

func TestNewSupportedVersion_RejectsMalformed(t *testing.T) {
	_, err := types.NewSupportedVersion("not-a-version")
	require.Error(t, err)
}
