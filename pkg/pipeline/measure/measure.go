package measure

import "sync"

type DefaultMeasure struct {
	mu     sync.Mutex
	stages map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		stages: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(key string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &DefaultMetric{}
	m.stages[key] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(key string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stages[key]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(map[string]Metric, len(m.stages))
	for key, mt := range m.stages {
		all[key] = mt
	}

	return all
}

var _ Measure = (*DefaultMeasure)(nil)
