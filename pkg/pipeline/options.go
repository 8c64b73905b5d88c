package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/askiada/go-phenotype/pkg/pipeline/drawer"
	"github.com/askiada/go-phenotype/pkg/pipeline/measure"
)

type options struct {
	drawer  drawer.Drawer
	measure measure.Measure
}

// Option configures optional pipeline behaviour.
type Option func(p *Pipeline)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithDrawer registers a drawer to render the validated stage chain.
func WithDrawer(d drawer.Drawer) Option {
	return func(p *Pipeline) {
		p.hooks.drawer = d
	}
}

// WithMeasure collects per-stage invocation timings into m.
func WithMeasure(m measure.Measure) Option {
	return func(p *Pipeline) {
		p.hooks.measure = m
	}
}
