// Package metrics declares the Prometheus collectors of the booking front-end.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kinobilet"

// Screen kinds
const (
	ScreenBooking = "booking"
	ScreenTickets = "tickets"
)

var (
	BookingSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_submissions_total",
		Help:      "Booking submissions by outcome.",
	}, []string{"outcome"})

	EnrichmentFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_enrichment_fallbacks_total",
		Help:      "Reservations shown with placeholder details because their session could not be loaded.",
	})

	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Payment attempts by result.",
	}, []string{"result"})

	CountdownExpirations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_countdown_expirations_total",
		Help:      "Unpaid reservations dropped because their payment window elapsed.",
	})

	ConsumedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consumed_events_total",
		Help:      "Reservation events handled by the consumers service.",
	}, []string{"subject"})

	OpenScreens = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_screens",
		Help:      "Screens currently mounted, by kind.",
	}, []string{"kind"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "BFF request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
