package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts play activity on the websocket transport.
type Metrics struct {
	Connections      prometheus.Gauge
	Messages         *prometheus.CounterVec
	Answers          *prometheus.CounterVec
	QuizzesCompleted *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geoquiz_ws_connections",
			Help: "Number of open quiz websocket connections",
		}),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoquiz_ws_messages_total",
				Help: "Total number of inbound websocket messages",
			},
			[]string{"type"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoquiz_answers_total",
				Help: "Total number of graded answers",
			},
			[]string{"outcome"},
		),
		QuizzesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoquiz_quizzes_completed_total",
				Help: "Total number of completed quizzes by grade",
			},
			[]string{"grade"},
		),
	}
	reg.MustRegister(m.Connections, m.Messages, m.Answers, m.QuizzesCompleted)
	return m
}

// MetricsHandler exposes the metrics gathered by g.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
