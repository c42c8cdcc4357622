package core

import (
	"container/list"

	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// CWMConnection is the per-pair state a sender keeps for a single peer's
// reliable, ordered CWM stream. Only the head of unacked is
// ever on air.
type CWMConnection struct {
	unacked      *list.List // of types.CollisionWarningMessage, head = on-air
	transmitTime float64
	lastUse      float64
	sendSeqNum   uint64
	recvSeqNum   uint64
}

// NewCWMConnection returns a freshly created connection with both
// sequence counters at zero, as created lazily on first outbound or
// first inbound CWM for a peer.
func NewCWMConnection() *CWMConnection {
	return &CWMConnection{unacked: list.New()}
}

// PushUnacked appends cwm to the unacked queue. Returns the queue depth
// after the append, so the caller can decide whether this CWM becomes
// the new head-of-line transmission or waits behind one already on air.
func (c *CWMConnection) PushUnacked(cwm types.CollisionWarningMessage) int {
	c.unacked.PushBack(cwm)
	return c.unacked.Len()
}

// Head returns the CWM currently on air, if any.
func (c *CWMConnection) Head() (types.CollisionWarningMessage, bool) {
	if c.unacked.Len() == 0 {
		return types.CollisionWarningMessage{}, false
	}
	return c.unacked.Front().Value.(types.CollisionWarningMessage), true
}

// PopHead removes the current head after it has been acknowledged.
func (c *CWMConnection) PopHead() {
	if front := c.unacked.Front(); front != nil {
		c.unacked.Remove(front)
	}
}

// Empty reports whether there is no CWM awaiting acknowledgement.
func (c *CWMConnection) Empty() bool {
	return c.unacked.Len() == 0
}

// Len reports how many CWMs (head-on-air plus queued) are unacknowledged.
func (c *CWMConnection) Len() int {
	return c.unacked.Len()
}
