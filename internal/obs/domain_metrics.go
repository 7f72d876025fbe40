package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentURLTotal counts payment URL creation outcomes.
	PaymentURLTotal *prometheus.CounterVec
	// PaymentNotifyTotal counts server-to-server payment notifications by gateway response code.
	PaymentNotifyTotal *prometheus.CounterVec
	// PaymentReturnTotal counts browser returns from the gateway.
	PaymentReturnTotal *prometheus.CounterVec
	// CheckoutOrdersTotal counts order snapshot attempts.
	CheckoutOrdersTotal *prometheus.CounterVec
	// CartClearTotal counts post-payment cart clears, including deferred retries.
	CartClearTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentURLTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_url_total",
			Help:      "Count of payment URL creation outcomes.",
		}, "result")
		PaymentNotifyTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_notify_total",
			Help:      "Count of processed payment notifications by response code.",
		}, "code")
		PaymentReturnTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_return_total",
			Help:      "Count of payment return redirects by status.",
		}, "status")
		CheckoutOrdersTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_orders_total",
			Help:      "Count of checkout attempts by result.",
		}, "result")
		CartClearTotal = registerCounterVec(reg, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_clear_total",
			Help:      "Count of cart clears after payment by result.",
		}, "result")
	})
}

// Inc increments vec for the given label values when the collector is registered.
func Inc(vec *prometheus.CounterVec, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Inc()
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register domain metric %s: %w", opts.Name, err))
	}
	return vec
}
