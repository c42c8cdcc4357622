package types

// PeerState is a vehicle's belief about a neighbor, reconstructed from
// the most recently received BSM. It is present in a belief-map only
// while LastSeen is within ConnectionIdleTTL of the current simulated
// time; older entries are pruned at management time.
type PeerState struct {
	LastSeen     float64
	PositionX    float64
	PositionY    float64
	Velocity     float64
	Acceleration float64
	Heading      float64
	Length       float64
	Width        float64
}

// FromBSM builds the belief-map snapshot a receiver records for the
// sender of bsm. This overwrites any prior entry for the same sender.
func FromBSM(bsm BasicSafetyMessage) PeerState {
	return PeerState{
		LastSeen:     bsm.Hdr.Timestamp,
		PositionX:    bsm.PositionX,
		PositionY:    bsm.PositionY,
		Velocity:     bsm.Velocity,
		Acceleration: bsm.Acceleration,
		Heading:      bsm.Heading,
		Length:       bsm.Length,
		Width:        bsm.Width,
	}
}

// Expired reports whether this entry is older than ttl as of now.
func (p PeerState) Expired(now, ttl float64) bool {
	return now-p.LastSeen > ttl
}
