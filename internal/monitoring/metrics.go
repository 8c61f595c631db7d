package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase workflow outcomes by final status",
		},
		[]string{"status"},
	)

	ticketsReservedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_reserved_total",
			Help: "Tickets successfully reserved",
		},
	)

	chargeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_charge_duration_seconds",
			Help:    "Duration of payment gateway charge calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"outcome"},
	)

	holdsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_holds_expired_total",
			Help: "Pending purchases canceled by the hold-expiry sweeper",
		},
	)
)

// TrackPurchase records a purchase workflow outcome.
func TrackPurchase(status string) {
	purchasesTotal.WithLabelValues(status).Inc()
}

// TrackReservation records successfully reserved tickets.
func TrackReservation(count int) {
	ticketsReservedTotal.Add(float64(count))
}

// ObserveCharge records the latency of a gateway charge call.
func ObserveCharge(outcome string, d time.Duration) {
	chargeDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// TrackHoldExpired records sweeper cancellations.
func TrackHoldExpired(count int) {
	holdsExpiredTotal.Add(float64(count))
}
