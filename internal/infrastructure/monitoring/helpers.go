package monitoring

import "time"

// Timer measures fill computation time for a product
type Timer struct {
	start   time.Time
	metrics *Metrics
	product string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, product string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		product: product,
	}
}

// Stop records the elapsed time
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	t.metrics.FillDuration.WithLabelValues(t.product).Observe(d.Seconds())
	return d
}
