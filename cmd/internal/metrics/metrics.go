package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wemakedo",
		Name:      "lifecycle_transitions_total",
		Help:      "Successful gathering lifecycle transitions by kind.",
	}, []string{"transition"})

	rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wemakedo",
		Name:      "lifecycle_rejections_total",
		Help:      "Lifecycle operations refused with a domain error, by kind.",
	}, []string{"operation", "reason"})

	droppedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wemakedo",
		Name:      "realtime_dropped_events_total",
		Help:      "Change events dropped because a subscriber could not keep up.",
	})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{transitions, rejections, droppedEvents} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func Transition(name string) {
	transitions.WithLabelValues(name).Inc()
}

func Rejection(operation, reason string) {
	rejections.WithLabelValues(operation, reason).Inc()
}

func DroppedEvent() {
	droppedEvents.Inc()
}

// Handler serves the metrics collected by gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
