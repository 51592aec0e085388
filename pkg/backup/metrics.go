package backup

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts backup and export outcomes. A nil *Metrics records nothing.
type Metrics struct {
	backups     *prometheus.CounterVec
	exports     *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

// NewMetrics registers the backup metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		backups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "backup",
			Name:      "snapshots_total",
			Help:      "Database snapshots by result.",
		}, []string{"result"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "backup",
			Name:      "exports_total",
			Help:      "SQL exports by result.",
		}, []string{"result"}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "portfolio",
			Subsystem: "backup",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful snapshot.",
		}),
	}
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (m *Metrics) observeBackup(err error, at time.Time) {
	if m == nil {
		return
	}
	m.backups.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.lastSuccess.Set(float64(at.Unix()))
	}
}

func (m *Metrics) observeExport(err error) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(result(err)).Inc()
}
