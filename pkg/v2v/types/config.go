package types

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// Config is the immutable record of simulation-wide constants handed to
// the engine at construction. There is no file or flag loading here by
// design: the caller assembles a Config value and owns it.
type Config struct {
	// CommunicationRange is the maximum Euclidean distance, in meters,
	// at which a broadcast frame can still be received.
	CommunicationRange float64

	// BSMInterval is the minimum number of simulated seconds between
	// two Basic Safety Messages emitted by the same vehicle.
	BSMInterval float64

	// CWMMaxDelay bounds how long a CWM may sit unacknowledged before
	// the application considers it stale. Carried from the source
	// configuration; the core never reads it and never drops an
	// unacknowledged CWM on any timer (RetransmitTimeout only
	// triggers retransmission, and ConnectionIdleTTL only reaps
	// connections with no unacked CWM), but the field is preserved
	// for callers building additional policy on top of the protocol.
	CWMMaxDelay float64

	// RetransmitTimeout is how long a connection waits for an ACK
	// before retransmitting the head of its unacked queue.
	RetransmitTimeout float64

	// ConnectionIdleTTL is how long a CWMConnection or belief-map
	// entry may go unused before it is reaped.
	ConnectionIdleTTL float64

	// PacketLossProbability is the probability, in [0, 1], that an
	// enqueued frame is dropped by the medium before buffering.
	PacketLossProbability float64

	// CollisionTimeThreshold is the TTC, in seconds, below which a
	// CWM is issued and emergency braking engages.
	CollisionTimeThreshold float64

	// MaxAcceleration and MaxDeceleration bound cruise-control
	// acceleration, in m/s^2. MaxDeceleration is stored as a
	// positive magnitude.
	MaxAcceleration float64
	MaxDeceleration float64

	// SimulationTimestep is the fixed tick size, in seconds.
	SimulationTimestep float64

	// VehicleLength and VehicleWidth are the default vehicle
	// dimensions, in meters, used for every spawned vehicle.
	VehicleLength float64
	VehicleWidth  float64

	// ProtocolVersion is the semver string this Config's engine
	// understands. Messages carrying a newer version are discarded
	// on receipt (see types/version.go).
	ProtocolVersion string
}

// DefaultConfig returns a Config matching the reference constants used
// throughout the test suite and scenario tests.
func DefaultConfig() Config {
	return Config{
		CommunicationRange:     300,
		BSMInterval:            0.1,
		CWMMaxDelay:            0.005,
		RetransmitTimeout:      0.0005,
		ConnectionIdleTTL:      0.5,
		PacketLossProbability:  0.05,
		CollisionTimeThreshold: 3.0,
		MaxAcceleration:        3.0,
		MaxDeceleration:        8.0,
		SimulationTimestep:     0.01,
		VehicleLength:          4.5,
		VehicleWidth:           2.0,
		ProtocolVersion:        "1.0.0",
	}
}

// Validate fails fast on programmer errors. Transient runtime faults
// (packet loss, digest mismatches, stale sequence numbers...) are never
// reported this way; only malformed configuration is, and only at
// construction time.
func (c Config) Validate() error {
	if c.SimulationTimestep <= 0 {
		return fmt.Errorf("v2v: simulation timestep must be positive, got %v", c.SimulationTimestep)
	}
	if c.CommunicationRange <= 0 {
		return fmt.Errorf("v2v: communication range must be positive, got %v", c.CommunicationRange)
	}
	if c.BSMInterval <= 0 {
		return fmt.Errorf("v2v: BSM interval must be positive, got %v", c.BSMInterval)
	}
	if c.RetransmitTimeout <= 0 {
		return fmt.Errorf("v2v: retransmit timeout must be positive, got %v", c.RetransmitTimeout)
	}
	if c.ConnectionIdleTTL <= 0 {
		return fmt.Errorf("v2v: connection idle TTL must be positive, got %v", c.ConnectionIdleTTL)
	}
	if c.PacketLossProbability < 0 || c.PacketLossProbability > 1 {
		return fmt.Errorf("v2v: packet loss probability must be in [0,1], got %v", c.PacketLossProbability)
	}
	if c.CollisionTimeThreshold <= 0 {
		return fmt.Errorf("v2v: collision time threshold must be positive, got %v", c.CollisionTimeThreshold)
	}
	if c.MaxAcceleration <= 0 || c.MaxDeceleration <= 0 {
		return fmt.Errorf("v2v: max acceleration/deceleration must be positive magnitudes")
	}
	if c.VehicleLength <= 0 || c.VehicleWidth <= 0 {
		return fmt.Errorf("v2v: vehicle dimensions must be positive")
	}
	if _, err := version.NewVersion(c.ProtocolVersion); err != nil {
		return fmt.Errorf("v2v: invalid protocol version %q: %w", c.ProtocolVersion, err)
	}
	return nil
}
