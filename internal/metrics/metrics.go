package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
)

var (
	Calculations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_calculations_total",
		Help: "Solubility curves assembled, by system.",
	}, []string{"system"})

	Adjustments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_bounds_adjustments_total",
		Help: "Queries clamped to the system bounds, by system.",
	}, []string{"system"})

	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_exports_total",
		Help: "Result downloads, by format.",
	}, []string{"format"})

	GridAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gateway_grid_available",
		Help: "Value is 1 if the system's lookup table loaded, 0 otherwise.",
	}, []string{"system"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_logins_total",
		Help: "Login attempts, by result.",
	}, []string{"result"})
)

// Register adds the gateway collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(Calculations, Adjustments, Exports, GridAvailable, Logins)
	reg.MustRegister(versioncollector.NewCollector("gateway"))
}
