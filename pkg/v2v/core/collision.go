package core

import (
	"sort"

	"github.com/movlab/v2v-sim/pkg/v2v/helper"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// candidatePeer is a belief-map entry paired with its id, used only to
// sort peers by ascending x before scanning.
type candidatePeer struct {
	id    types.VehicleId
	state types.PeerState
}

// DetectCollision scans v's believed neighbors ordered by ascending x,
// considering only peers strictly ahead and laterally overlapping, and
// returns the first CWM-worthy prediction found. Engaging emergency
// braking and stopping scanning further peers are both side effects of
// this call, once the first hit is found.
func DetectCollision(v *Vehicle, now float64, threshold float64) (types.CollisionWarningMessage, bool) {
	candidates := make([]candidatePeer, 0, v.BeliefCount())
	for id, state := range v.beliefMapSnapshot() {
		candidates = append(candidates, candidatePeer{id: id, state: state})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].state.PositionX < candidates[j].state.PositionX
	})

	vx, vy := v.PositionXY()

	for _, c := range candidates {
		peer := c.state
		if peer.PositionX <= vx {
			continue
		}

		rearRight := vy - v.Width()/2
		rearLeft := vy + v.Width()/2
		frontRight := peer.PositionY - peer.Width/2
		frontLeft := peer.PositionY + peer.Width/2
		if rearRight > frontLeft || rearLeft < frontRight {
			continue
		}

		gap := (peer.PositionX - peer.Length/2) - (vx + v.Length()/2)
		a := (peer.Acceleration - v.Acceleration()) / 2
		b := peer.Velocity - v.Velocity()
		ttc, found := helper.SmallestPositiveRoot(a, b, gap)
		if !found {
			continue
		}

		if ttc < threshold {
			v.ActivateEmergencyBraking()
			return types.CollisionWarningMessage{
				SequenceNumber:  v.SendSeqNum(c.id),
				WarningType:     "rear_end_risk",
				TargetVehicleID: c.id,
				TimeToCollision: ttc,
				Hdr:             types.Header{Timestamp: now},
			}, true
		}
	}

	return types.CollisionWarningMessage{}, false
}

// beliefMapSnapshot exposes a read view of the belief-map for the
// detector without letting it mutate vehicle state directly.
func (v *Vehicle) beliefMapSnapshot() map[types.VehicleId]types.PeerState {
	return v.beliefMap
}
