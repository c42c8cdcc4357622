package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

func TestComputeDigest_Deterministic(t *testing.T) {
	bsm := types.BasicSafetyMessage{
		Hdr:       types.Header{SenderID: "V001", Timestamp: 1.5, ProtocolVersion: "1.0.0"},
		PositionX: 10, PositionY: 2, Velocity: 20, Acceleration: -1,
	}

	require.Equal(t, types.ComputeDigest(bsm), types.ComputeDigest(bsm))
}

func TestComputeDigest_DiffersOnFieldChange(t *testing.T) {
	base := types.BasicSafetyMessage{
		Hdr:       types.Header{SenderID: "V001", Timestamp: 1.5, ProtocolVersion: "1.0.0"},
		PositionX: 10,
	}
	changed := base
	changed.PositionX = 11

	require.NotEqual(t, types.ComputeDigest(base), types.ComputeDigest(changed))
}

func TestComputeDigest_DiscriminatesVariants(t *testing.T) {
	hdr := types.Header{SenderID: "V001", Timestamp: 1, ProtocolVersion: "1.0.0"}
	bsm := types.BasicSafetyMessage{Hdr: hdr}
	cwm := types.CollisionWarningMessage{Hdr: hdr}

	require.NotEqual(t, types.ComputeDigest(bsm), types.ComputeDigest(cwm))
}
