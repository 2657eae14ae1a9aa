package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuriiter/freccia/pkg/models"
	"github.com/yuriiter/freccia/pkg/providers"
)

// Collector owns the application metrics and the registry they live on.
type Collector struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	scannedDays      *prometheus.CounterVec
	chatTurns        *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freccia_provider_requests_total",
				Help: "Provider calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "freccia_provider_request_duration_seconds",
				Help:    "Duration of provider calls, pagination included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		scannedDays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freccia_scanned_days_total",
				Help: "Searched travel days by whether matching fares were found",
			},
			[]string{"outcome"},
		),
		chatTurns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freccia_chat_turns_total",
				Help: "Chat-bot turns by conversation step and outcome",
			},
			[]string{"step", "outcome"},
		),
	}
	c.registry.MustRegister(c.providerRequests, c.providerDuration, c.scannedDays, c.chatTurns)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveDay is a search.DayObserver.
func (c *Collector) ObserveDay(day models.DayResult) {
	outcome := "found"
	if day.Empty() {
		outcome = "empty"
	}
	c.scannedDays.WithLabelValues(outcome).Inc()
}

func (c *Collector) ChatTurn(step string, failed bool) {
	c.chatTurns.WithLabelValues(step, outcome(failed)).Inc()
}

func (c *Collector) observe(operation string, start time.Time, err error) {
	c.providerRequests.WithLabelValues(operation, outcome(err != nil)).Inc()
	c.providerDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func outcome(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}

// Provider wraps p so every call is counted and timed.
func (c *Collector) Provider(p providers.Provider) providers.Provider {
	return &instrumented{next: p, c: c}
}

type instrumented struct {
	next providers.Provider
	c    *Collector
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) FindStations(ctx context.Context, name string) (stations []models.Station, err error) {
	defer func(start time.Time) { i.c.observe("find_stations", start, err) }(time.Now())
	return i.next.FindStations(ctx, name)
}

func (i *instrumented) FindSolutions(ctx context.Context, departureID, arrivalID int64, departure time.Time) (solutions []models.Solution, err error) {
	defer func(start time.Time) { i.c.observe("find_solutions", start, err) }(time.Now())
	return i.next.FindSolutions(ctx, departureID, arrivalID, departure)
}
