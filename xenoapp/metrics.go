package xenoapp

import (
	"net/http"
	"strings"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates the app's Prometheus registry with the Go runtime and process collectors registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// NewMetrics registers the request metrics under a namespace derived from the service name.
func NewMetrics(env Environment, reg *prometheus.Registry) (*middleware.Metrics[xeno.Ctx], error) {
	return middleware.NewMetrics[xeno.Ctx](reg, metricsNamespace(env.base().ServiceName))
}

// metricsNamespace turns a service name into a valid metric name prefix.
func metricsNamespace(name string) string {
	ns := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if ns == "" || (ns[0] >= '0' && ns[0] <= '9') {
		ns = "xeno_" + ns
	}

	return ns
}

func newMetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
