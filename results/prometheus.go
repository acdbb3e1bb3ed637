package results

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"solveragent/types"
)

// PromSink exports control-loop observations as Prometheus gauges, one
// per metric name, labeled with the run id.
type PromSink struct {
	runID string
	reg   prometheus.Registerer

	mu     sync.Mutex
	gauges map[string]prometheus.Gauge
}

func NewPromSink(runID string, reg prometheus.Registerer) *PromSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PromSink{
		runID:  runID,
		reg:    reg,
		gauges: make(map[string]prometheus.Gauge),
	}
}

var _ types.MetricsSink = (*PromSink)(nil)

func (p *PromSink) Observe(values map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, value := range values {
		g, ok := p.gauges[name]
		if !ok {
			g = prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace:   "solveragent",
				Name:        sanitizeMetricName(name),
				ConstLabels: prometheus.Labels{"run": p.runID},
			})
			if err := p.reg.Register(g); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					g = are.ExistingCollector.(prometheus.Gauge)
				} else {
					continue
				}
			}
			p.gauges[name] = g
		}
		g.Set(value)
	}
}

func sanitizeMetricName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
