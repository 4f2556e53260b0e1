package content

import "github.com/taylortom/adapt-authoring-content/pkg/models"

// Metrics receives counters from the content manager. Implementations must
// be safe for concurrent use.
type Metrics interface {
	MutationObserved(op string, contentType models.ContentType)
	CloneObserved()
	ReconcileObserved(changed bool)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

var _ Metrics = NoopMetrics{}

func (NoopMetrics) MutationObserved(string, models.ContentType) {}
func (NoopMetrics) CloneObserved()                              {}
func (NoopMetrics) ReconcileObserved(bool)                      {}
