package types

// VehicleId is a short textual identifier assigned monotonically at
// spawn time, of the form "V001", "V002", ...
type VehicleId string

// Priority orders messages in a receiver's inbound priority queue; the
// medium itself delivers pending frames in no particular order.
// EMERGENCY sorts strictly ahead of
// NORMAL; the zero value is EMERGENCY so an accidentally zero-valued
// Priority fails safe toward "deliver promptly" rather than silently.
type Priority uint8

const (
	PriorityEmergency Priority = iota
	PriorityNormal
)

func (p Priority) String() string {
	if p == PriorityEmergency {
		return "EMERGENCY"
	}
	return "NORMAL"
}

// Kind tags which concrete Message variant a value holds. The canonical
// digest encoding includes it as one byte of the shared header.
type Kind uint8

const (
	KindBSM Kind = iota
	KindCWM
	KindACK
)

// Header carries the fields every message variant shares: sender
// identity, simulated-clock timestamp, priority class, wire-format
// version, and a type tag.
type Header struct {
	SenderID        VehicleId
	Timestamp       float64
	Priority        Priority
	Kind            Kind
	ProtocolVersion string
}

// Message is the closed tagged union of wire variants. It is
// deliberately a small interface rather than an exported type switch
// helper, so BSM/CWM/ACK remain ordinary structs a caller can construct
// directly; Header() is the one shared accessor every consumer needs for
// ordering and routing.
type Message interface {
	Header() Header
}

// BasicSafetyMessage (BSM) is the periodic broadcast of a vehicle's own
// kinematic state. Priority is always NORMAL.
type BasicSafetyMessage struct {
	Hdr          Header
	PositionX    float64
	PositionY    float64
	Velocity     float64
	Heading      float64 // radians, 0 = east
	Acceleration float64
	Length       float64
	Width        float64
}

func (m BasicSafetyMessage) Header() Header { return m.Hdr }

// CollisionWarningMessage (CWM) is the emergency, reliable, per-peer
// notice of a predicted collision. Priority is always EMERGENCY.
type CollisionWarningMessage struct {
	Hdr             Header
	SequenceNumber  uint64
	WarningType     string
	TargetVehicleID VehicleId
	TimeToCollision float64
}

func (m CollisionWarningMessage) Header() Header { return m.Hdr }

// AcknowledgementMessage (ACK) acknowledges a specific CWM sequence
// number. Priority is NORMAL: an ACK is not latency-critical compared
// with delivering a fresh CWM.
type AcknowledgementMessage struct {
	Hdr             Header
	SequenceNumber  uint64
	TargetVehicleID VehicleId
}

func (m AcknowledgementMessage) Header() Header { return m.Hdr }

// Less implements the total order of the inbound priority queue:
// priority ascending (EMERGENCY < NORMAL), then timestamp ascending.
func Less(a, b Message) bool {
	ha, hb := a.Header(), b.Header()
	if ha.Priority != hb.Priority {
		return ha.Priority < hb.Priority
	}
	return ha.Timestamp < hb.Timestamp
}
