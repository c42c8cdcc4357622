package core

import (
	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// Protocol multiplexes one-hop broadcast BSMs with reliable, ordered,
// per-peer CWM streams over the lossy Medium. One
// Protocol instance is owned exclusively by a single Vehicle; a
// CWMConnection references its peer only by id, never by object, so a
// peer's lifetime is independent of the connection's.
type Protocol struct {
	connections map[types.VehicleId]*CWMConnection
	inbound     *PriorityQueue
	version     types.SupportedVersion
	log         definition.Logger
}

// NewProtocol returns an empty Protocol stamping outbound messages with
// version and logging through log.
func NewProtocol(version types.SupportedVersion, log definition.Logger) *Protocol {
	return &Protocol{
		connections: make(map[types.VehicleId]*CWMConnection),
		inbound:     NewPriorityQueue(),
		version:     version,
		log:         log,
	}
}

// SendSeqNum returns the send_seq_num of the connection to peer, or 0 if
// no connection exists yet. Used by the collision detector to number a
// freshly generated CWM.
func (p *Protocol) SendSeqNum(peer types.VehicleId) uint64 {
	if c, ok := p.connections[peer]; ok {
		return c.sendSeqNum
	}
	return 0
}

func (p *Protocol) connectionFor(peer types.VehicleId) *CWMConnection {
	c, ok := p.connections[peer]
	if !ok {
		c = NewCWMConnection()
		p.connections[peer] = c
	}
	return c
}

// stampAndDigest finalizes message's Header (sender id, timestamp,
// protocol version) and returns the message value along with the digest
// computed over its final fields. Computing the digest over the final,
// about-to-be-transmitted fields (rather than an earlier snapshot before
// the timestamp is assigned) is what lets the receiver's recomputed
// digest ever match.
func stampAndDigest(ownerID types.VehicleId, now float64, version string, message types.Message) (types.Message, types.Digest) {
	switch m := message.(type) {
	case types.BasicSafetyMessage:
		m.Hdr.SenderID = ownerID
		m.Hdr.Timestamp = now
		m.Hdr.ProtocolVersion = version
		m.Hdr.Priority = types.PriorityNormal
		m.Hdr.Kind = types.KindBSM
		return m, types.ComputeDigest(m)
	case types.CollisionWarningMessage:
		m.Hdr.SenderID = ownerID
		m.Hdr.Timestamp = now
		m.Hdr.ProtocolVersion = version
		m.Hdr.Priority = types.PriorityEmergency
		m.Hdr.Kind = types.KindCWM
		return m, types.ComputeDigest(m)
	case types.AcknowledgementMessage:
		m.Hdr.SenderID = ownerID
		m.Hdr.Timestamp = now
		m.Hdr.ProtocolVersion = version
		m.Hdr.Priority = types.PriorityNormal
		m.Hdr.Kind = types.KindACK
		return m, types.ComputeDigest(m)
	default:
		return message, types.Digest{}
	}
}

// Send queues a CWM on its target's connection, only actually handing
// it to the medium if it becomes (or already is) the head of that
// connection's unacked queue; a BSM or ACK is handed to the medium
// immediately.
func (p *Protocol) Send(ownerID types.VehicleId, now float64, message types.Message, medium *Medium) {
	if cwm, ok := message.(types.CollisionWarningMessage); ok {
		conn := p.connectionFor(cwm.TargetVehicleID)
		conn.lastUse = now
		depth := conn.PushUnacked(cwm)
		if depth > 1 {
			// Head-of-line: wait for the current on-air CWM to be ACKed.
			return
		}
		conn.transmitTime = now
		final, digest := stampAndDigest(ownerID, now, p.version.String(), cwm)
		medium.Enqueue(ownerID, final, digest)
		return
	}

	final, digest := stampAndDigest(ownerID, now, p.version.String(), message)
	medium.Enqueue(ownerID, final, digest)
}

// targetOf extracts a message's TargetVehicleID, if it carries one.
func targetOf(message types.Message) (types.VehicleId, bool) {
	switch m := message.(type) {
	case types.CollisionWarningMessage:
		return m.TargetVehicleID, true
	case types.AcknowledgementMessage:
		return m.TargetVehicleID, true
	default:
		return "", false
	}
}

// Receive runs target and digest checks before anything is queued, so a
// tampered or misdelivered frame never occupies queue space.
func (p *Protocol) Receive(receiverID types.VehicleId, message types.Message, digest types.Digest) {
	if target, ok := targetOf(message); ok && target != receiverID {
		return
	}
	if !p.version.Accepts(message.Header().ProtocolVersion) {
		p.log.Warnf("protocol: dropping message from %s on unsupported version %q", message.Header().SenderID, message.Header().ProtocolVersion)
		return
	}
	if types.ComputeDigest(message) != digest {
		p.log.Warnf("protocol: digest mismatch for message from %s, discarding", message.Header().SenderID)
		return
	}
	p.inbound.Push(message)
}

// Process drains the inbound queue, handling CWM/ACK bookkeeping
// internally, until either the queue empties or a BSM or actionable CWM
// is ready to hand back to the caller (the owning Vehicle).
func (p *Protocol) Process(ownerID types.VehicleId, now float64, medium *Medium) (types.Message, bool) {
	for {
		msg, ok := p.inbound.Pop()
		if !ok {
			return nil, false
		}

		switch m := msg.(type) {
		case types.CollisionWarningMessage:
			if actionable, keep := p.processCWM(ownerID, now, medium, m); keep {
				return actionable, true
			}
			continue
		case types.AcknowledgementMessage:
			p.processACK(ownerID, now, medium, m)
			continue
		case types.BasicSafetyMessage:
			return m, true
		default:
			p.log.Warnf("protocol: discarding unknown message type from %s", msg.Header().SenderID)
			continue
		}
	}
}

// processCWM always (re)acknowledges sequence numbers at or below what's
// expected, which makes ACKs idempotent and tolerant of ACK loss; it
// discards future-sequence CWMs without buffering them.
func (p *Protocol) processCWM(ownerID types.VehicleId, now float64, medium *Medium, cwm types.CollisionWarningMessage) (types.Message, bool) {
	sender := cwm.Hdr.SenderID
	conn := p.connectionFor(sender)
	conn.lastUse = now

	if cwm.SequenceNumber > conn.recvSeqNum {
		// Arrived ahead of an earlier expected CWM; discarded, not
		// buffered.
		return nil, false
	}

	ack := types.AcknowledgementMessage{
		TargetVehicleID: sender,
		SequenceNumber:  cwm.SequenceNumber,
	}
	p.Send(ownerID, now, ack, medium)

	if cwm.SequenceNumber == conn.recvSeqNum {
		conn.recvSeqNum++
		return cwm, true
	}
	// Lower than expected: already delivered, ACK re-sent above.
	return nil, false
}

// processACK: only an ACK matching the expected send_seq_num advances
// state and dequeues the head CWM, immediately transmitting the next
// queued CWM if any.
func (p *Protocol) processACK(ownerID types.VehicleId, now float64, medium *Medium, ack types.AcknowledgementMessage) {
	conn, ok := p.connections[ack.Hdr.SenderID]
	if !ok {
		return
	}
	conn.lastUse = now

	if ack.SequenceNumber != conn.sendSeqNum {
		// Stale or duplicate ACK: ignored.
		return
	}

	conn.sendSeqNum++
	conn.PopHead()

	if next, ok := conn.Head(); ok {
		conn.transmitTime = now
		final, digest := stampAndDigest(ownerID, now, p.version.String(), next)
		medium.Enqueue(ownerID, final, digest)
	}
}

// Manage retransmits aged head CWMs and reaps connections that have
// been idle (no unacked CWM, no activity) for longer than
// ConnectionIdleTTL. Retransmission
// never refreshes last_use, so a connection to a peer that has truly
// gone silent still ages out even while being retransmitted to.
func (p *Protocol) Manage(ownerID types.VehicleId, now float64, medium *Medium, retransmitTimeout, idleTTL float64) {
	for peer, conn := range p.connections {
		if conn.Empty() {
			if now-conn.lastUse > idleTTL {
				delete(p.connections, peer)
			}
			continue
		}

		if now-conn.transmitTime > retransmitTimeout {
			head, ok := conn.Head()
			if !ok {
				continue
			}
			conn.transmitTime = now
			final, digest := stampAndDigest(ownerID, now, p.version.String(), head)
			medium.Enqueue(ownerID, final, digest)
		}
	}
}
