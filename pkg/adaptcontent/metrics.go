package adaptcontent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/taylortom/adapt-authoring-content/pkg/content"
	"github.com/taylortom/adapt-authoring-content/pkg/models"
)

// PrometheusMetrics implements content.Metrics on a Prometheus registry.
type PrometheusMetrics struct {
	mutations  *prometheus.CounterVec
	clones     prometheus.Counter
	reconciles *prometheus.CounterVec
}

var _ content.Metrics = (*PrometheusMetrics)(nil)

func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adapt_content_mutations_total",
			Help: "Content mutations by operation and content type.",
		}, []string{"op", "type"}),
		clones: factory.NewCounter(prometheus.CounterOpts{
			Name: "adapt_content_clones_total",
			Help: "Completed clone operations.",
		}),
		reconciles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adapt_content_plugin_reconciles_total",
			Help: "Enabled-plugin reconciliation runs by outcome.",
		}, []string{"changed"}),
	}
}

func (p *PrometheusMetrics) MutationObserved(op string, contentType models.ContentType) {
	p.mutations.WithLabelValues(op, string(contentType)).Inc()
}

func (p *PrometheusMetrics) CloneObserved() {
	p.clones.Inc()
}

func (p *PrometheusMetrics) ReconcileObserved(changed bool) {
	outcome := "false"
	if changed {
		outcome = "true"
	}
	p.reconciles.WithLabelValues(outcome).Inc()
}
