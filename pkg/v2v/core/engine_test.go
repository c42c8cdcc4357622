package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

func TestNewEngine_RejectsBadProtocolVersion(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.ProtocolVersion = "not-a-version"

	_, err := NewEngine(cfg, rand.New(rand.NewSource(1)), definition.NoopLogger{}, nil)
	require.Error(t, err)
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.SimulationTimestep = -1

	_, err := NewEngine(cfg, rand.New(rand.NewSource(1)), definition.NoopLogger{}, nil)
	require.Error(t, err)

	cfg = types.DefaultConfig()
	cfg.PacketLossProbability = 1.5

	_, err = NewEngine(cfg, rand.New(rand.NewSource(1)), definition.NoopLogger{}, nil)
	require.Error(t, err)
}

func TestEngine_ObserverPanicDoesNotAbortTick(t *testing.T) {
	cfg := types.DefaultConfig()
	e := newTestEngine(t, cfg, 9)
	e.Spawn(0, 0, 20)

	ticks := 0
	e.OnTick(func(float64) {
		ticks++
		panic("boom")
	})

	require.NotPanics(t, func() {
		e.Run(0.05)
	})
	require.Equal(t, 5, ticks)
}

func TestEngine_RemoveObserverStopsDelivery(t *testing.T) {
	cfg := types.DefaultConfig()
	e := newTestEngine(t, cfg, 10)
	e.Spawn(0, 0, 20)

	count := 0
	handle := e.OnTick(func(float64) { count++ })
	e.Run(0.03)
	require.Equal(t, 3, count)

	e.RemoveObserver(handle)
	e.Run(0.06)
	require.Equal(t, 3, count, "removed observer must not fire again")
}

func TestEngine_SpawnAssignsSequentialIds(t *testing.T) {
	e := newTestEngine(t, types.DefaultConfig(), 11)

	first := e.Spawn(0, 0, 0)
	second := e.Spawn(0, 0, 0)

	require.Equal(t, types.VehicleId("V001"), first)
	require.Equal(t, types.VehicleId("V002"), second)
}
