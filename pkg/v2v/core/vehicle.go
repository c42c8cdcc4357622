package core

import (
	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/helper"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// Vehicle owns physics state, a single exclusively-owned Protocol
// instance, and a belief-map of neighbor states indexed by peer id.
type Vehicle struct {
	id types.VehicleId

	positionX, positionY float64
	velocity             float64
	acceleration         float64
	heading              float64 // radians; this core uses east-pointing straight-line motion
	length, width        float64
	targetVelocity       float64
	emergencyBraking     bool
	lastBSMTime          float64

	protocol  *Protocol
	beliefMap map[types.VehicleId]types.PeerState

	log definition.Logger
}

// NewVehicle spawns a vehicle at (x, y) with the given initial and
// target velocity, owning a fresh Protocol stamped with version.
func NewVehicle(id types.VehicleId, x, y, velocity float64, cfg types.Config, version types.SupportedVersion, log definition.Logger) *Vehicle {
	return &Vehicle{
		id:             id,
		positionX:      x,
		positionY:      y,
		velocity:       velocity,
		targetVelocity: velocity,
		length:         cfg.VehicleLength,
		width:          cfg.VehicleWidth,
		protocol:       NewProtocol(version, log),
		beliefMap:      make(map[types.VehicleId]types.PeerState),
		log:            log,
	}
}

// ID implements the medium's receiver interface.
func (v *Vehicle) ID() types.VehicleId { return v.id }

// PositionXY implements the medium's receiver interface.
func (v *Vehicle) PositionXY() (float64, float64) { return v.positionX, v.positionY }

// Velocity, Length and Width expose read-only kinematic state for the
// collision detector and for tests.
func (v *Vehicle) Velocity() float64         { return v.velocity }
func (v *Vehicle) Acceleration() float64     { return v.acceleration }
func (v *Vehicle) Length() float64           { return v.length }
func (v *Vehicle) Width() float64            { return v.width }
func (v *Vehicle) EmergencyBraking() bool    { return v.emergencyBraking }
func (v *Vehicle) BeliefCount() int          { return len(v.beliefMap) }
func (v *Vehicle) Belief(id types.VehicleId) (types.PeerState, bool) {
	p, ok := v.beliefMap[id]
	return p, ok
}

// UpdatePhysics advances velocity and position for one timestep:
// emergency braking always applies max deceleration; otherwise a proportional
// cruise controller targets targetVelocity, clamped to the configured
// acceleration envelope. Velocity never goes negative; this core models
// only east-pointing straight-line motion.
func (v *Vehicle) UpdatePhysics(dt float64, maxAccel, maxDecel float64) {
	if v.emergencyBraking {
		v.acceleration = -maxDecel
	} else {
		desired := 2.0 * (v.targetVelocity - v.velocity)
		v.acceleration = helper.Clamp(desired, -maxDecel, maxAccel)
	}

	v.velocity += v.acceleration * dt
	if v.velocity < 0 {
		v.velocity = 0
	}

	v.positionX += v.velocity * dt
}

// ShouldSendBSM reports whether enough simulated time has passed since
// the last emitted BSM to emit another.
func (v *Vehicle) ShouldSendBSM(now, bsmInterval float64) bool {
	return now-v.lastBSMTime >= bsmInterval
}

// GenerateBSM builds a BSM snapshot of current state and records now as
// the last emission time.
// Header fields beyond the variant-specific payload are finalized by
// Protocol.Send.
func (v *Vehicle) GenerateBSM(now float64) types.BasicSafetyMessage {
	v.lastBSMTime = now
	return types.BasicSafetyMessage{
		PositionX:    v.positionX,
		PositionY:    v.positionY,
		Velocity:     v.velocity,
		Heading:      v.heading,
		Acceleration: v.acceleration,
		Length:       v.length,
		Width:        v.width,
	}
}

// Receive hands an already range/loss-surviving frame to the protocol's
// target/digest checks and inbound queue.
func (v *Vehicle) Receive(message types.Message, digest types.Digest) {
	v.protocol.Receive(v.id, message, digest)
}

// DrainInbound repeatedly calls Protocol.Process until the inbound queue
// empties, applying each returned BSM to the belief-map and collecting
// every actionable CWM handed back by the protocol. CWMs need not
// change receiver state beyond this: the sender has already reacted.
// Draining unconditionally, rather than stopping at the first CWM,
// matters because EMERGENCY messages sort ahead of NORMAL ones in the
// inbound queue: a tick with an actionable CWM must not leave BSMs
// queued behind it undelivered to the belief-map.
func (v *Vehicle) DrainInbound(now float64, medium *Medium) []types.CollisionWarningMessage {
	var cwms []types.CollisionWarningMessage
	for {
		msg, ok := v.protocol.Process(v.id, now, medium)
		if !ok {
			return cwms
		}
		switch m := msg.(type) {
		case types.BasicSafetyMessage:
			v.beliefMap[m.Hdr.SenderID] = types.FromBSM(m)
		case types.CollisionWarningMessage:
			cwms = append(cwms, m)
		}
	}
}

// Send routes an outbound message through this vehicle's protocol.
func (v *Vehicle) Send(now float64, message types.Message, medium *Medium) {
	v.protocol.Send(v.id, now, message, medium)
}

// ActivateEmergencyBraking engages braking and commands a full stop.
func (v *Vehicle) ActivateEmergencyBraking() {
	v.emergencyBraking = true
	v.targetVelocity = 0
}

// SendSeqNum exposes the collision detector's view of the outbound CWM
// sequence number to use for a newly generated warning.
func (v *Vehicle) SendSeqNum(peer types.VehicleId) uint64 {
	return v.protocol.SendSeqNum(peer)
}

// Manage runs Protocol.Manage, then prunes belief-map entries older
// than idleTTL.
func (v *Vehicle) Manage(now float64, medium *Medium, retransmitTimeout, idleTTL float64) {
	v.protocol.Manage(v.id, now, medium, retransmitTimeout, idleTTL)

	for id, peer := range v.beliefMap {
		if peer.Expired(now, idleTTL) {
			delete(v.beliefMap, id)
		}
	}
}
