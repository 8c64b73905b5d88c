// Package drawer renders a validated stage chain as a DOT graph file, with
// optional timing annotations from a measure.
package drawer

import "github.com/askiada/go-phenotype/pkg/pipeline/measure"

// Drawer is an interface that defines the methods for drawing a stage chain.
type Drawer interface {
	// AddStage adds a stage vertex to the chain graph.
	AddStage(key, name string) error
	// AddLink adds a link between two consecutive stages, labelled with the
	// channel kind flowing between them.
	AddLink(parentKey, childKey, channelKind string) error
	// AddMeasure annotates the chain with per-stage timings.
	AddMeasure(measure measure.Measure) error
	// Draw writes the chain graph file.
	Draw() error
}
