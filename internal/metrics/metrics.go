package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gourmet_table"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	bookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Bookings persisted.",
	})

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking writes refused because a seat was taken, by stage.",
		},
		[]string{"stage"},
	)

	bookingStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	cartMergeLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_merge_lines_total",
			Help:      "Anonymous cart lines processed by merge, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingConflicts, bookingStatusChanges, cartMergeLines)
	})
}

// IncHTTP counts one served request.
func IncHTTP(method, route string, status int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func IncBookingCreated() { bookingsCreated.Inc() }

// IncBookingConflict counts a refused booking.  stage is "precheck" when
// the seats were seen taken before writing and "commit" when the unique
// key refused the write.
func IncBookingConflict(stage string) { bookingConflicts.WithLabelValues(stage).Inc() }

func IncBookingStatus(status string) { bookingStatusChanges.WithLabelValues(status).Inc() }

// AddCartMerge counts merged and skipped lines of one merge.
func AddCartMerge(merged, skipped int) {
	cartMergeLines.WithLabelValues("merged").Add(float64(merged))
	cartMergeLines.WithLabelValues("skipped").Add(float64(skipped))
}
