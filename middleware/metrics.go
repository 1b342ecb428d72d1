package middleware

import (
	"strconv"
	"time"

	"github.com/advdv/xeno"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records a request counter and a duration histogram, labeled by method and status. Responses rendered
// from failures are counted too.
type Metrics[C any] struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. Metric names are prefixed with namespace.
func NewMetrics[C any](reg prometheus.Registerer, namespace string) (*Metrics[C], error) {
	m := &Metrics[C]{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total requests",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	return m, nil
}

func (m *Metrics[C]) Before(_ C, r *xeno.Request) error {
	markStart(r)
	return nil
}

func (m *Metrics[C]) After(C, *xeno.Request, *xeno.Response) error { return nil }

func (m *Metrics[C]) Finish(_ C, r *xeno.Request, res *xeno.Response) {
	m.requests.WithLabelValues(r.Method.String(), strconv.Itoa(res.Status)).Inc()
	m.duration.WithLabelValues(r.Method.String()).Observe(time.Since(startOf(r.Context())).Seconds())
}

var (
	_ xeno.Middleware[struct{}] = &Metrics[struct{}]{}
	_ xeno.Finisher[struct{}]   = &Metrics[struct{}]{}
)
