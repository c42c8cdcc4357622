package core

// Statistics is the authoritative post-run (or mid-run) report exposed
// by the engine. No partial state beyond this record is
// exposed to callers.
type Statistics struct {
	SimulationTime      float64
	VehicleCount        int
	TotalBSMSent        uint64
	BSMRate             float64
	TotalCWMSent        uint64
	CollisionsPrevented uint64
	TotalPackets        uint64
	LostPackets         uint64
	PacketLoss          float64
	AverageLatency      float64
}
