// Command v2vsim runs a short fixed scenario through the simulation
// engine and reports the resulting statistics. It is a smoke-test
// harness, not a dashboard or a configurable CLI.
package main

import (
	"math/rand"
	"os"

	"github.com/movlab/v2v-sim/pkg/v2v/core"
	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

func main() {
	log := definition.NewDefaultLogger()

	cfg := types.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(1))
	engine, err := core.NewEngine(cfg, rng, log, nil)
	if err != nil {
		log.Errorf("failed to start engine: %v", err)
		os.Exit(1)
	}

	lead := engine.Spawn(0, 0, 20)
	follower := engine.Spawn(-40, 0, 28)
	log.Infof("spawned lead=%s follower=%s", lead, follower)

	engine.OnMessage(func(sender types.VehicleId, message types.Message) {
		if cwm, ok := message.(types.CollisionWarningMessage); ok {
			log.Infof("collision warning from %s targeting %s, ttc=%.3fs", sender, cwm.TargetVehicleID, cwm.TimeToCollision)
		}
	})

	engine.Run(10)

	stats := engine.Statistics()
	log.Infof("simulation complete: %+v", stats)
}
