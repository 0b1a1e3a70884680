package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the asset cache.
type Metrics struct {
	// Requests by source: "cache", "network" or "unavailable"
	Requests *prometheus.CounterVec

	// Install attempts by result: "success" or "failure"
	Installs *prometheus.CounterVec

	// Versions deleted on activation
	VersionsDeleted prometheus.Counter

	// Currently active version, as an info-style gauge set to 1
	ActiveVersion *prometheus.GaugeVec
}

// New creates the asset metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contractguide_asset_requests_total",
			Help: "Total asset requests by the source that answered them",
		}, []string{"source"}),

		Installs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contractguide_asset_installs_total",
			Help: "Total asset version installs by result",
		}, []string{"result"}),

		VersionsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "contractguide_asset_versions_deleted_total",
			Help: "Total stale asset versions deleted on activation",
		}),

		ActiveVersion: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "contractguide_asset_active_version",
			Help: "Active asset cache version (value is always 1)",
		}, []string{"version"}),
	}
}

// IncrementRequest records which source answered an asset request.
func (m *Metrics) IncrementRequest(source string) {
	if m != nil {
		m.Requests.WithLabelValues(source).Inc()
	}
}

// IncrementInstall records an install attempt.
func (m *Metrics) IncrementInstall(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.Installs.WithLabelValues(result).Inc()
}

// AddVersionsDeleted records stale versions removed on activation.
func (m *Metrics) AddVersionsDeleted(n int) {
	if m != nil {
		m.VersionsDeleted.Add(float64(n))
	}
}

// SetActiveVersion replaces the active version label.
func (m *Metrics) SetActiveVersion(version string) {
	if m != nil {
		m.ActiveVersion.Reset()
		m.ActiveVersion.WithLabelValues(version).Set(1)
	}
}
