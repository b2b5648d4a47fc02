package metrics

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/events"
)

// Collector exports federation progress as Prometheus metrics. It observes
// the engine purely through round events, never calling back into the
// coordinator.
type Collector struct {
	logger   hclog.Logger
	registry *prometheus.Registry

	roundsTotal          prometheus.Counter
	samplesTotal         prometheus.Counter
	globalAccuracy       prometheus.Gauge
	participatingClients prometheus.Gauge
}

func NewCollector(logger hclog.Logger) *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		logger:   logger,
		registry: registry,
		roundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "agisfl_rounds_total",
			Help: "Completed federated training rounds.",
		}),
		samplesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "agisfl_training_samples_total",
			Help: "Samples contributed across all completed rounds.",
		}),
		globalAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "agisfl_global_accuracy",
			Help: "Accuracy of the aggregated global model.",
		}),
		participatingClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "agisfl_participating_clients",
			Help: "Participants that contributed to the last round.",
		}),
	}
}

// Handler serves the collector's registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Listen subscribes the collector to round events. The subscription channel
// is buffered; the engine never blocks on metric delivery.
func (c *Collector) Listen(eventBus *events.EventBus) {
	roundChan := make(chan events.Event, 64)
	eventBus.Subscribe(common.ROUND_COMPLETED_EVENT_TYPE, roundChan)
	go c.roundEventHandler(roundChan)
}

func (c *Collector) roundEventHandler(eventChan <-chan events.Event) {
	for event := range eventChan {
		roundCompleted, ok := event.Data.(events.RoundCompletedEvent)
		if !ok {
			c.logger.Info("Invalid event data")
			continue
		}

		c.roundsTotal.Inc()
		c.samplesTotal.Add(float64(roundCompleted.Round.TotalSamples))
		c.globalAccuracy.Set(roundCompleted.GlobalAccuracy)
		c.participatingClients.Set(float64(roundCompleted.ParticipantCount))
	}
}
