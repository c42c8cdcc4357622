package core

import (
	"math"
	"math/rand"

	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// MessageObserver is invoked whenever the engine emits a BSM or CWM on a
// vehicle's behalf. sender is the emitting vehicle.
type MessageObserver func(sender types.VehicleId, message types.Message)

// TickObserver is invoked once per tick, after every vehicle has been
// processed, with the simulated time at the end of that tick.
type TickObserver func(simTime float64)

// Engine drives the discrete-event loop: per tick it advances physics,
// delivers the previous tick's frames, runs each vehicle's
// process/detect/send/manage sequence in stable order, then fires
// observer callbacks. It runs single-threaded, with no goroutines or
// channels in the loop itself.
type Engine struct {
	cfg     types.Config
	version types.SupportedVersion
	log     definition.Logger
	metrics *definition.MetricsCollector

	medium  *Medium
	manager *VehicleManager

	clock float64

	messageObservers map[int]MessageObserver
	tickObservers    map[int]TickObserver
	nextHandle       int

	totalBSMSent uint64
	totalCWMSent uint64

	reportedPackets uint64
	reportedLost    uint64
}

// NewEngine constructs an Engine, failing fast on a malformed cfg.
// metrics may be nil; when nil, emission counters are simply not
// exported. rng must be an explicitly-seeded source (never math/rand's
// global generator) so runs are reproducible.
func NewEngine(cfg types.Config, rng *rand.Rand, log definition.Logger, metrics *definition.MetricsCollector) (*Engine, error) {
	if log == nil {
		log = definition.NoopLogger{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	version, err := types.NewSupportedVersion(cfg.ProtocolVersion)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:              cfg,
		version:          version,
		log:              log,
		metrics:          metrics,
		medium:           NewMedium(cfg, rng, log),
		manager:          NewVehicleManager(cfg, version, log),
		messageObservers: make(map[int]MessageObserver),
		tickObservers:    make(map[int]TickObserver),
	}, nil
}

// Spawn adds a vehicle to the simulation and returns its id.
func (e *Engine) Spawn(x, y, velocity float64) types.VehicleId {
	return e.manager.Spawn(x, y, velocity)
}

// Remove deletes a vehicle from the simulation.
func (e *Engine) Remove(id types.VehicleId) {
	e.manager.Remove(id)
}

// Vehicle returns the vehicle with the given id, if present.
func (e *Engine) Vehicle(id types.VehicleId) (*Vehicle, bool) {
	return e.manager.Get(id)
}

// Now reports the engine's current simulated time.
func (e *Engine) Now() float64 {
	return e.clock
}

// OnMessage registers a message observer and returns a handle usable
// with RemoveObserver.
func (e *Engine) OnMessage(obs MessageObserver) int {
	e.nextHandle++
	e.messageObservers[e.nextHandle] = obs
	return e.nextHandle
}

// OnTick registers a tick observer and returns a handle usable with
// RemoveObserver.
func (e *Engine) OnTick(obs TickObserver) int {
	e.nextHandle++
	e.tickObservers[e.nextHandle] = obs
	return e.nextHandle
}

// RemoveObserver deregisters a previously registered observer, message
// or tick, identified by the handle OnMessage/OnTick returned.
func (e *Engine) RemoveObserver(handle int) {
	delete(e.messageObservers, handle)
	delete(e.tickObservers, handle)
}

// Run advances the simulated clock to durationSeconds in fixed
// SimulationTimestep steps, then stops. A durationSeconds at or before
// the current clock runs no ticks.
func (e *Engine) Run(durationSeconds float64) {
	dt := e.cfg.SimulationTimestep
	steps := int(math.Round((durationSeconds - e.clock) / dt))
	for i := 0; i < steps; i++ {
		e.tick(dt)
	}
}

// tick runs one full simulation step: physics, delivery, per-vehicle
// processing, clock advance, then observer notification.
func (e *Engine) tick(dt float64) {
	now := e.clock

	e.manager.UpdatePhysics(dt)
	e.medium.Deliver(now, e.manager.Receivers())

	for _, v := range e.manager.Vehicles() {
		// 3a: drain inbound, applying BSMs to the belief-map. Actionable
		// CWMs need no further handling here: per the protocol, the
		// sender has already reacted by the time its CWM is received.
		v.DrainInbound(now, e.medium)

		// 3b: ask the collision detector; a positive hit engages braking
		// and broadcasts a CWM immediately.
		if cwm, ok := e.manager.DetectCollision(v, now); ok {
			e.totalCWMSent++
			v.Send(now, cwm, e.medium)
			if e.metrics != nil {
				e.metrics.CWMSent.Inc()
			}
			e.notifyMessage(v.ID(), cwm)
		}

		// 3c: periodic BSM emission.
		if v.ShouldSendBSM(now, e.cfg.BSMInterval) {
			bsm := v.GenerateBSM(now)
			e.totalBSMSent++
			v.Send(now, bsm, e.medium)
			if e.metrics != nil {
				e.metrics.BSMSent.Inc()
			}
			e.notifyMessage(v.ID(), bsm)
		}

		// 3d: retransmission and idle reaping.
		v.Manage(now, e.medium, e.cfg.RetransmitTimeout, e.cfg.ConnectionIdleTTL)
	}

	e.clock += dt
	e.notifyTick(e.clock)

	if e.metrics != nil {
		stats := e.medium.Stats()
		e.metrics.PacketsTotal.Add(float64(stats.TotalPackets - e.reportedPackets))
		e.metrics.PacketsLost.Add(float64(stats.LostPackets - e.reportedLost))
		e.reportedPackets = stats.TotalPackets
		e.reportedLost = stats.LostPackets
		if stats.TotalPackets > 0 {
			e.metrics.PacketLossRate.Set(float64(stats.LostPackets) / float64(stats.TotalPackets))
		}
	}
}

// notifyMessage invokes every registered message observer, containing
// any panic to the offending observer so one misbehaving callback can't
// take down the simulation loop.
func (e *Engine) notifyMessage(sender types.VehicleId, message types.Message) {
	for _, obs := range e.messageObservers {
		e.safeInvokeMessage(obs, sender, message)
	}
}

func (e *Engine) safeInvokeMessage(obs MessageObserver, sender types.VehicleId, message types.Message) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("engine: message observer panicked: %v", r)
		}
	}()
	obs(sender, message)
}

// notifyTick invokes every registered tick observer, with the same
// panic-containment contract as notifyMessage.
func (e *Engine) notifyTick(simTime float64) {
	for _, obs := range e.tickObservers {
		e.safeInvokeTick(obs, simTime)
	}
}

func (e *Engine) safeInvokeTick(obs TickObserver, simTime float64) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("engine: tick observer panicked: %v", r)
		}
	}()
	obs(simTime)
}

// Statistics reports the engine's cumulative counters as of now.
func (e *Engine) Statistics() Statistics {
	mediumStats := e.medium.Stats()

	var bsmRate, packetLoss, avgLatency float64
	if denom := math.Max(e.clock, 1); denom > 0 {
		bsmRate = float64(e.totalBSMSent) / denom
	}
	if mediumStats.TotalPackets > 0 {
		packetLoss = float64(mediumStats.LostPackets) / float64(mediumStats.TotalPackets)
		avgLatency = mediumStats.TotalLatency / float64(mediumStats.TotalPackets)
	}

	return Statistics{
		SimulationTime:      e.clock,
		VehicleCount:        e.manager.Count(),
		TotalBSMSent:        e.totalBSMSent,
		BSMRate:             bsmRate,
		TotalCWMSent:        e.totalCWMSent,
		CollisionsPrevented: e.totalCWMSent,
		TotalPackets:        mediumStats.TotalPackets,
		LostPackets:         mediumStats.LostPackets,
		PacketLoss:          packetLoss,
		AverageLatency:      avgLatency,
	}
}
