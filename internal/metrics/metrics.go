// Package metrics registers the scanner's Prometheus instruments.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScanCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scan_cycles_total", Help: "Completed scan cycles by loop"},
		[]string{"loop"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Entry signals fired"},
		[]string{"rule"},
	)
	PositionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "positions_opened_total", Help: "Positions opened"},
	)
	PositionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "positions_closed_total", Help: "Positions closed by exit reason"},
		[]string{"reason"},
	)
	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "open_positions", Help: "Currently open positions"},
	)
	FeedErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feed_errors_total", Help: "Collaborator call failures"},
		[]string{"source"},
	)
	AnnounceFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "announce_failures_total", Help: "Notification deliveries that failed"},
	)
)

func init() {
	prometheus.MustRegister(
		ScanCyclesTotal, SignalsTotal, PositionsOpened, PositionsClosed,
		OpenPositions, FeedErrorsTotal, AnnounceFailures,
	)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
