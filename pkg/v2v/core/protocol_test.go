package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

func newTestProtocol(t *testing.T) *Protocol {
	t.Helper()
	version, err := types.NewSupportedVersion("1.0.0")
	require.NoError(t, err)
	return NewProtocol(version, definition.NoopLogger{})
}

func newTestMedium() *Medium {
	return NewMedium(testConfig(), rand.New(rand.NewSource(7)), definition.NoopLogger{})
}

func TestProtocol_SendBSM_EnqueuesImmediately(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	p.Send("V001", 0, types.BasicSafetyMessage{}, m)

	require.Equal(t, uint64(1), m.Stats().TotalPackets)
}

func TestProtocol_SendCWM_HeadOfLineBlocksSecond(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	p.Send("V001", 0, types.CollisionWarningMessage{TargetVehicleID: "V002", SequenceNumber: 0}, m)
	require.Equal(t, uint64(1), m.Stats().TotalPackets)

	p.Send("V001", 0, types.CollisionWarningMessage{TargetVehicleID: "V002", SequenceNumber: 1}, m)
	require.Equal(t, uint64(1), m.Stats().TotalPackets, "second CWM must wait behind the unacked head")
}

func TestProtocol_Receive_DigestMismatchDiscarded(t *testing.T) {
	p := newTestProtocol(t)

	bsm := types.BasicSafetyMessage{Hdr: types.Header{SenderID: "V002", ProtocolVersion: "1.0.0"}}
	p.Receive("V001", bsm, types.Digest{0xFF})

	_, ok := p.Process("V001", 0, newTestMedium())
	require.False(t, ok)
}

func TestProtocol_Receive_WrongTargetDiscarded(t *testing.T) {
	p := newTestProtocol(t)

	ack := types.AcknowledgementMessage{
		Hdr:             types.Header{SenderID: "V002", ProtocolVersion: "1.0.0"},
		TargetVehicleID: "V999",
	}
	p.Receive("V001", ack, types.ComputeDigest(ack))

	_, ok := p.Process("V001", 0, newTestMedium())
	require.False(t, ok)
}

func TestProtocol_Receive_FutureVersionDiscarded(t *testing.T) {
	p := newTestProtocol(t)

	bsm := types.BasicSafetyMessage{Hdr: types.Header{SenderID: "V002", ProtocolVersion: "9.9.9"}}
	p.Receive("V001", bsm, types.ComputeDigest(bsm))

	_, ok := p.Process("V001", 0, newTestMedium())
	require.False(t, ok)
}

func TestProtocol_ProcessCWM_AcksAndReturnsActionable(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	cwm := types.CollisionWarningMessage{
		Hdr:             types.Header{SenderID: "V002", ProtocolVersion: "1.0.0"},
		SequenceNumber:  0,
		TargetVehicleID: "V001",
	}
	p.Receive("V001", cwm, types.ComputeDigest(cwm))

	msg, ok := p.Process("V001", 0, m)
	require.True(t, ok)
	require.Equal(t, cwm, msg)
	require.Equal(t, uint64(1), m.Stats().TotalPackets, "processing a CWM always emits exactly one ACK")
}

func TestProtocol_ProcessCWM_FutureSequenceDiscardedNotBuffered(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	ahead := types.CollisionWarningMessage{
		Hdr:             types.Header{SenderID: "V002", ProtocolVersion: "1.0.0"},
		SequenceNumber:  5,
		TargetVehicleID: "V001",
	}
	p.Receive("V001", ahead, types.ComputeDigest(ahead))

	_, ok := p.Process("V001", 0, m)
	require.False(t, ok, "a future-sequence CWM is discarded, not buffered, per the documented open question")
}

func TestProtocol_ProcessACK_AdvancesAndRetransmitsNext(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	first := types.CollisionWarningMessage{TargetVehicleID: "V002", SequenceNumber: 0}
	second := types.CollisionWarningMessage{TargetVehicleID: "V002", SequenceNumber: 1}
	p.Send("V001", 0, first, m)
	p.Send("V001", 0, second, m)
	require.Equal(t, uint64(1), m.Stats().TotalPackets)

	ack := types.AcknowledgementMessage{
		Hdr:             types.Header{SenderID: "V002", ProtocolVersion: "1.0.0"},
		TargetVehicleID: "V001",
		SequenceNumber:  0,
	}
	p.Receive("V001", ack, types.ComputeDigest(ack))
	_, ok := p.Process("V001", 1, m)
	require.False(t, ok)

	require.Equal(t, uint64(2), m.Stats().TotalPackets, "acking the head must immediately transmit the queued second CWM")
}

func TestProtocol_ProcessACK_StaleIgnored(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	cwm := types.CollisionWarningMessage{TargetVehicleID: "V002", SequenceNumber: 0}
	p.Send("V001", 0, cwm, m)

	stale := types.AcknowledgementMessage{
		Hdr:             types.Header{SenderID: "V002", ProtocolVersion: "1.0.0"},
		TargetVehicleID: "V001",
		SequenceNumber:  7,
	}
	p.Receive("V001", stale, types.ComputeDigest(stale))
	_, ok := p.Process("V001", 1, m)
	require.False(t, ok)

	require.Equal(t, uint64(1), m.Stats().TotalPackets, "a stale ACK must not dequeue or retransmit anything")
}

func TestProtocol_Manage_RetransmitsAgedHead(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	cwm := types.CollisionWarningMessage{TargetVehicleID: "V002", SequenceNumber: 0}
	p.Send("V001", 0, cwm, m)
	require.Equal(t, uint64(1), m.Stats().TotalPackets)

	p.Manage("V001", 10, m, 0.001, 0.5)
	require.Equal(t, uint64(2), m.Stats().TotalPackets, "an aged unacked head must be retransmitted")
}

func TestProtocol_Manage_ReapsIdleConnection(t *testing.T) {
	p := newTestProtocol(t)
	m := newTestMedium()

	cwm := types.CollisionWarningMessage{TargetVehicleID: "V002", SequenceNumber: 0}
	p.Send("V001", 0, cwm, m)

	ack := types.AcknowledgementMessage{
		Hdr:             types.Header{SenderID: "V002", ProtocolVersion: "1.0.0"},
		TargetVehicleID: "V001",
		SequenceNumber:  0,
	}
	p.Receive("V001", ack, types.ComputeDigest(ack))
	p.Process("V001", 0, m)

	require.Len(t, p.connections, 1)
	p.Manage("V001", 10, m, 0.001, 0.5)
	require.Empty(t, p.connections, "an empty, long-idle connection must be reaped")
}
