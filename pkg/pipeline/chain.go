package pipeline

import (
	"time"

	"github.com/pkg/errors"
)

// buildChain registers the validated stage chain with the configured drawer
// and measure. Called once, from New, after validation has passed.
func (p *Pipeline) buildChain() error {
	if p.hooks.measure != nil {
		p.metrics = make([]metricRecorder, len(p.cfg.Stages))
		for i, key := range p.keys {
			p.metrics[i] = p.hooks.measure.AddMetric(key)
		}
	}

	if p.hooks.drawer == nil {
		return nil
	}

	for i, stage := range p.cfg.Stages {
		err := p.hooks.drawer.AddStage(p.keys[i], stage.Name())
		if err != nil {
			return errors.Wrapf(err, "unable to add stage %s", p.keys[i])
		}
	}

	for i := 1; i < len(p.cfg.Stages); i++ {
		kind := p.cfg.Stages[i].InputKind()

		err := p.hooks.drawer.AddLink(p.keys[i-1], p.keys[i], kind.String())
		if err != nil {
			return errors.Wrapf(err, "unable to link %s to %s", p.keys[i-1], p.keys[i])
		}
	}

	return nil
}

type metricRecorder interface {
	AddDuration(elapsed time.Duration)
}

func (p *Pipeline) record(i int, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}

	p.metrics[i].AddDuration(elapsed)
}

// Draw renders the stage chain with the configured drawer, annotated with the
// timings collected so far when a measure is configured. It is a no-op when
// no drawer was registered.
func (p *Pipeline) Draw() error {
	if p.hooks.drawer == nil {
		return nil
	}

	if p.hooks.measure != nil {
		err := p.hooks.drawer.AddMeasure(p.hooks.measure)
		if err != nil {
			return errors.Wrap(err, "unable to add measure to drawer")
		}
	}

	err := p.hooks.drawer.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}
