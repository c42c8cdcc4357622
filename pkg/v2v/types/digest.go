package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Digest is a SHA-256 over a message's canonicalized fields. It travels
// alongside the message through the medium and is also the medium's
// pending-set key.
type Digest [sha256.Size]byte

// ComputeDigest canonicalizes m's fields into a fixed, type-defined
// field order and hashes the result. "Field-order independent" is
// satisfied by always visiting fields in the same declared order
// regardless of how the struct literal was populated, not by sorting at
// runtime: there are no map keys here to sort. Floats are encoded as
// their full IEEE-754 binary representation (math.Float64bits) so two
// platforms that construct bit-identical float64 values always hash
// identically.
func ComputeDigest(m Message) Digest {
	var buf bytes.Buffer
	h := m.Header()
	writeString(&buf, string(h.SenderID))
	writeFloat64(&buf, h.Timestamp)
	buf.WriteByte(byte(h.Priority))
	buf.WriteByte(byte(h.Kind))
	writeString(&buf, h.ProtocolVersion)

	switch v := m.(type) {
	case BasicSafetyMessage:
		writeFloat64(&buf, v.PositionX)
		writeFloat64(&buf, v.PositionY)
		writeFloat64(&buf, v.Velocity)
		writeFloat64(&buf, v.Heading)
		writeFloat64(&buf, v.Acceleration)
		writeFloat64(&buf, v.Length)
		writeFloat64(&buf, v.Width)
	case CollisionWarningMessage:
		writeUint64(&buf, v.SequenceNumber)
		writeString(&buf, v.WarningType)
		writeString(&buf, string(v.TargetVehicleID))
		writeFloat64(&buf, v.TimeToCollision)
	case AcknowledgementMessage:
		writeUint64(&buf, v.SequenceNumber)
		writeString(&buf, string(v.TargetVehicleID))
	}

	return sha256.Sum256(buf.Bytes())
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint64(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeFloat64(buf *bytes.Buffer, f float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
