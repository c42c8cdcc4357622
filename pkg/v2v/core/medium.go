package core

import (
	"math"
	"math/rand"

	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// pendingFrame is an offered-and-not-yet-dropped message sitting in the
// medium for exactly one tick before delivery.
type pendingFrame struct {
	senderID types.VehicleId
	message  types.Message
	digest   types.Digest
}

// Medium models the shared wireless channel: range-gated broadcast,
// uniform random packet loss, and one-tick latency.
type Medium struct {
	config types.Config
	rng    *rand.Rand
	log    definition.Logger

	pending map[types.Digest]pendingFrame

	totalPackets uint64
	lostPackets  uint64
	totalLatency float64
}

// NewMedium builds a Medium whose loss sampler is driven by rng. Callers
// seed rng explicitly (never math/rand's global source) so that a fixed
// seed and spawn list reproduce identical runs.
func NewMedium(config types.Config, rng *rand.Rand, log definition.Logger) *Medium {
	return &Medium{
		config:  config,
		rng:     rng,
		log:     log,
		pending: make(map[types.Digest]pendingFrame),
	}
}

// Enqueue offers message for transport. With probability
// PacketLossProbability it is dropped silently and counted; otherwise it
// is buffered under its digest until the next Deliver call.
func (m *Medium) Enqueue(sender types.VehicleId, message types.Message, digest types.Digest) {
	m.totalPackets++
	if m.rng.Float64() < m.config.PacketLossProbability {
		m.lostPackets++
		m.log.Debugf("medium: dropped frame from %s (digest %x)", sender, digest[:4])
		return
	}
	m.pending[digest] = pendingFrame{senderID: sender, message: message, digest: digest}
}

// receiver is the minimal surface Deliver needs from a vehicle, kept as
// an interface so medium_test.go can exercise delivery without building
// a full Vehicle.
type receiver interface {
	ID() types.VehicleId
	PositionXY() (float64, float64)
	Receive(message types.Message, digest types.Digest)
}

// Deliver moves every pending frame to the inbound queue of every
// in-range receiver other than the sender, using the sender's position
// at delivery time (post-physics-update for this tick), then clears the
// pending set. now is the simulated clock at the start of the delivery
// tick, used only for latency accounting.
func (m *Medium) Deliver(now float64, vehicles []receiver) {
	if len(m.pending) == 0 {
		return
	}

	byID := make(map[types.VehicleId]receiver, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID()] = v
	}

	for digest, frame := range m.pending {
		m.totalLatency += now - frame.message.Header().Timestamp

		sender, ok := byID[frame.senderID]
		if !ok {
			// Sender left the simulation between enqueue and delivery;
			// nothing to compute range from, so nobody receives it.
			delete(m.pending, digest)
			continue
		}
		sx, sy := sender.PositionXY()

		for _, v := range vehicles {
			if v.ID() == frame.senderID {
				continue
			}
			vx, vy := v.PositionXY()
			if distance(sx, sy, vx, vy) > m.config.CommunicationRange {
				continue
			}
			v.Receive(frame.message, frame.digest)
		}
		delete(m.pending, digest)
	}
}

func distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// MediumStats is a read-only snapshot of the medium's accumulated counters,
// used to populate the engine's Statistics record.
type MediumStats struct {
	TotalPackets uint64
	LostPackets  uint64
	TotalLatency float64
}

func (m *Medium) Stats() MediumStats {
	return MediumStats{
		TotalPackets: m.totalPackets,
		LostPackets:  m.lostPackets,
		TotalLatency: m.totalLatency,
	}
}
