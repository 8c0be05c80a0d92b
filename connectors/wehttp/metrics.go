package wehttp

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weegigs/wee-counter-go/we"
)

type Metrics struct {
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the command metrics with registry under namespace.
func NewMetrics(registry prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command name and HTTP status",
		}, []string{"command", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time taken to execute a command",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

func (m *Metrics) Observe(command we.CommandName, status int, elapsed time.Duration) {
	m.commands.WithLabelValues(command.String(), strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(command.String()).Observe(elapsed.Seconds())
}
