// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"veritas/internal/domain"
)

type Metrics struct {
	stageTotal    *prometheus.CounterVec
	pipelineTotal *prometheus.CounterVec
	mockedTotal   *prometheus.CounterVec
	queueDepth    prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veritas",
			Name:      "pipeline_stage_total",
			Help:      "Stage executions by stage and terminal state.",
		}, []string{"stage", "state"}),
		pipelineTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veritas",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by status and failure code.",
		}, []string{"status", "failure_code"}),
		mockedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veritas",
			Name:      "pipeline_mocked_results_total",
			Help:      "Capability results served by degraded synthesis.",
		}, []string{"stage"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "veritas",
			Name:      "offline_queue_depth",
			Help:      "Submissions waiting in the offline queue.",
		}),
	}
	reg.MustRegister(m.stageTotal, m.pipelineTotal, m.mockedTotal, m.queueDepth)
	return m
}

func (m *Metrics) StageObserved(stage domain.Stage, state domain.StageState, origin domain.Origin) {
	m.stageTotal.WithLabelValues(string(stage), string(state)).Inc()
	if origin == domain.OriginMocked {
		m.mockedTotal.WithLabelValues(string(stage)).Inc()
	}
}

func (m *Metrics) PipelineFinished(status domain.PipelineStatus, failureCode string) {
	m.pipelineTotal.WithLabelValues(string(status), failureCode).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}
