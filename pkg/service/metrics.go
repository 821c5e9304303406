package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var bookingTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "shareit",
		Name:      "booking_transitions_total",
		Help:      "Bookings entering each status",
	},
	[]string{"status"},
)
