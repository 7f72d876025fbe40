package resilience

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BreakerState reports 0=closed, 1=open, 2=half-open per target.
	BreakerState *prometheus.GaugeVec
	// BreakerTransitions counts state changes per target.
	BreakerTransitions *prometheus.CounterVec
)

// MustRegisterMetrics registers the breaker collectors. A nil registerer uses
// the default one.
func MustRegisterMetrics(namespace string, reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	state := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "breaker_state",
		Help:      "Current breaker state: 0=closed,1=open,2=half-open",
	}, []string{"target"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "breaker_transition_total",
		Help:      "Count of breaker state transitions",
	}, []string{"target", "from", "to"})
	BreakerState = registerOrReuse(reg, state)
	BreakerTransitions = registerOrReuse(reg, transitions)
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
