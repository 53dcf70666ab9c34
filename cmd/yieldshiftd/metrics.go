package main

import (
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/app"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics exported by the daemon on /metrics.
type metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	heartbeats  *prometheus.CounterVec
	allocation  prometheus.Gauge
	target      prometheus.Gauge
	generated   prometheus.Gauge
	distributed prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yieldshift",
			Name:      "requests_total",
			Help:      "Number of API requests by operation and result.",
		}, []string{"op", "code"}),
		heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yieldshift",
			Name:      "heartbeats_total",
			Help:      "Number of heartbeats by outcome.",
		}, []string{"outcome"}),
		allocation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "yieldshift",
			Name:      "allocation_bps",
			Help:      "Share of new yield going to the user pool, in basis points.",
		}),
		target: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "yieldshift",
			Name:      "target_allocation_bps",
			Help:      "Allocation the controller converges to, in basis points.",
		}),
		generated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "yieldshift",
			Name:      "yield_generated",
			Help:      "Total yield credited.",
		}),
		distributed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "yieldshift",
			Name:      "yield_distributed",
			Help:      "Total yield paid out.",
		}),
	}
	m.registry.MustRegister(m.requests, m.heartbeats, m.allocation, m.target, m.generated, m.distributed)
	return m
}

// observe refreshes the state gauges. Failures are ignored, the gauges
// keep their previous values.
func (m *metrics) observe(e *app.Engine) {
	if st, err := e.ControllerState(); err == nil {
		m.allocation.Set(float64(st.AllocationBps))
		m.target.Set(float64(st.TargetBps))
	}
	if ls, err := e.LedgerState(); err == nil {
		m.generated.Set(amountFloat(ls.TotalGenerated))
		m.distributed.Set(amountFloat(ls.TotalDistributed))
	}
}

func amountFloat(a yieldshift.Amount) float64 {
	f, _ := yieldshift.NormAmount(a).BigInt().Float64()
	return f
}
