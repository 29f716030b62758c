package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "camrental",
			Name:      "booking_transition_total",
			Help:      "Count of booking transitions by resulting status.",
		},
		[]string{"status"},
	)

	bookingFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "camrental",
			Name:      "booking_operation_failed_total",
			Help:      "Count of failed booking operations by operation and error code.",
		},
		[]string{"op", "code"},
	)

	settlementAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "camrental",
			Name:      "settlement_amount_total",
			Help:      "Money moved by settlements, split by component.",
		},
		[]string{"component"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "camrental",
			Name:      "http_rate_limited_total",
			Help:      "Requests denied by the rate limiter.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingTransition, bookingFailed, settlementAmount, rateLimited)
	})
}

func IncTransition(status string) {
	bookingTransition.WithLabelValues(status).Inc()
}

func IncFailure(op, code string) {
	if code == "" {
		code = "internal"
	}
	bookingFailed.WithLabelValues(op, code).Inc()
}

func AddSettlement(subtotal, fee, tax float64) {
	settlementAmount.WithLabelValues("subtotal").Add(subtotal)
	settlementAmount.WithLabelValues("platform_fee").Add(fee)
	settlementAmount.WithLabelValues("tax").Add(tax)
}

func IncRateLimited() {
	rateLimited.Inc()
}
