package definition

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector mirrors the Statistics record as prometheus
// instruments, so a caller embedding the engine in a larger service can
// register it against its own prometheus.Registry. The core never
// starts an HTTP listener for these: exporting /metrics is strictly the
// caller's concern (the dashboard/display Non-goal excludes the core
// from owning any such surface).
type MetricsCollector struct {
	BSMSent        prometheus.Counter
	CWMSent        prometheus.Counter
	PacketsLost    prometheus.Counter
	PacketsTotal   prometheus.Counter
	PacketLossRate prometheus.Gauge
}

// NewMetricsCollector builds a MetricsCollector and registers every
// instrument with reg. Call with a fresh prometheus.NewRegistry() in
// tests to avoid collisions with the global default registry.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	m := &MetricsCollector{
		BSMSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "v2v_bsm_sent_total",
			Help: "Total number of Basic Safety Messages emitted.",
		}),
		CWMSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "v2v_cwm_sent_total",
			Help: "Total number of Collision Warning Messages issued by the detector.",
		}),
		PacketsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "v2v_packets_lost_total",
			Help: "Total number of frames dropped by the medium's loss sampler.",
		}),
		PacketsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "v2v_packets_total",
			Help: "Total number of frames offered to the medium.",
		}),
		PacketLossRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "v2v_packet_loss_ratio",
			Help: "Fraction of offered frames dropped so far.",
		}),
	}
	reg.MustRegister(m.BSMSent, m.CWMSent, m.PacketsLost, m.PacketsTotal, m.PacketLossRate)
	return m
}
