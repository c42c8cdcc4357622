package core

import (
	"fmt"

	"github.com/movlab/v2v-sim/pkg/v2v/definition"
	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// VehicleManager owns the vehicle set: spawn/remove, per-tick physics,
// and running the collision detector on each vehicle's behalf.
type VehicleManager struct {
	order   []types.VehicleId // stable insertion order
	byID    map[types.VehicleId]*Vehicle
	nextSeq int

	cfg     types.Config
	version types.SupportedVersion
	log     definition.Logger
}

// NewVehicleManager returns an empty manager using cfg and version to
// construct every spawned vehicle's Protocol.
func NewVehicleManager(cfg types.Config, version types.SupportedVersion, log definition.Logger) *VehicleManager {
	return &VehicleManager{
		byID: make(map[types.VehicleId]*Vehicle),
		cfg:  cfg, version: version, log: log,
	}
}

// Spawn creates a new vehicle at (x, y) with the given velocity and
// returns its assigned VehicleId, of the form "V001", "V002", ...
func (m *VehicleManager) Spawn(x, y, velocity float64) types.VehicleId {
	m.nextSeq++
	id := types.VehicleId(fmt.Sprintf("V%03d", m.nextSeq))
	m.byID[id] = NewVehicle(id, x, y, velocity, m.cfg, m.version, m.log)
	m.order = append(m.order, id)
	return id
}

// Remove deletes a vehicle from the registry.
func (m *VehicleManager) Remove(id types.VehicleId) {
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Get returns the vehicle with the given id, if present.
func (m *VehicleManager) Get(id types.VehicleId) (*Vehicle, bool) {
	v, ok := m.byID[id]
	return v, ok
}

// Vehicles returns every vehicle in stable insertion order.
func (m *VehicleManager) Vehicles() []*Vehicle {
	out := make([]*Vehicle, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Receivers adapts Vehicles() to the medium's receiver interface.
func (m *VehicleManager) Receivers() []receiver {
	out := make([]receiver, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Count reports how many vehicles are currently registered.
func (m *VehicleManager) Count() int {
	return len(m.order)
}

// UpdatePhysics advances every vehicle's velocity and position under
// its current acceleration.
func (m *VehicleManager) UpdatePhysics(dt float64) {
	for _, id := range m.order {
		m.byID[id].UpdatePhysics(dt, m.cfg.MaxAcceleration, m.cfg.MaxDeceleration)
	}
}

// DetectCollision runs the collision detector on v's behalf, returning
// a CWM if one is warranted.
func (m *VehicleManager) DetectCollision(v *Vehicle, now float64) (types.CollisionWarningMessage, bool) {
	return DetectCollision(v, now, m.cfg.CollisionTimeThreshold)
}
