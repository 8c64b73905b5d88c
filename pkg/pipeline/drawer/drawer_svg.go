package drawer

import (
	"os"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-phenotype/internal/store"
	"github.com/askiada/go-phenotype/pkg/pipeline/measure"
)

// SVGDrawer is a drawer that creates a graph file of the stage chain.
type SVGDrawer struct {
	graph    graph.Graph[string, string]
	store    store.ChainStore
	links    [][2]string
	fileName string
}

// NewSVGDrawer creates a new SVG drawer writing to fileName.
func NewSVGDrawer(fileName string) *SVGDrawer {
	st := store.NewMemoryStore()

	return &SVGDrawer{
		fileName: fileName,
		store:    st,
		graph:    graph.NewWithStore(graph.StringHash, graph.Store[string, string](st), graph.Directed()),
	}
}

// AddStage adds a stage vertex to the chain graph.
func (d *SVGDrawer) AddStage(key, name string) error {
	err := d.graph.AddVertex(key, graph.VertexAttribute("label", name))
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", key)
	}

	return nil
}

// AddLink adds a link between two consecutive stages.
func (d *SVGDrawer) AddLink(parentKey, childKey, channelKind string) error {
	err := d.graph.AddEdge(parentKey, childKey, graph.EdgeAttribute("label", channelKind))
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentKey, childKey)
	}

	d.links = append(d.links, [2]string{parentKey, childKey})

	return nil
}

// Draw writes the chain graph file.
func (d *SVGDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to render dot graph to %s", d.fileName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure annotates every stage vertex with its average invocation
// duration and colours the incoming edges from cold blue to hot red.
func (d *SVGDrawer) AddMeasure(msr measure.Measure) error {
	all := msr.AllMetrics()

	elapsed := make(map[string]time.Duration, len(all))
	sortedElapsed := make([]time.Duration, 0, len(all))

	for key, metric := range all {
		avg := metric.AVGDuration()
		if avg == 0 {
			continue
		}

		elapsed[key] = avg
		sortedElapsed = append(sortedElapsed, avg)
	}

	if len(sortedElapsed) == 0 {
		return nil
	}

	sort.Slice(sortedElapsed, func(i, j int) bool {
		return sortedElapsed[i] > sortedElapsed[j]
	})

	maxValue := sortedElapsed[0]
	minValue := sortedElapsed[len(sortedElapsed)-1]

	hex := make(map[string]string, len(elapsed))

	for key, avg := range elapsed {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(avg-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := -maxRGB*fraction + maxRGB

		edgeColor, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		hex[key] = edgeColor.ToHEX().String()
	}

	return d.updateMetrics(elapsed, hex)
}

func (d *SVGDrawer) updateMetrics(elapsed map[string]time.Duration, hex map[string]string) error {
	for key, avg := range elapsed {
		d.store.UpdateVertex(key, func(props *graph.VertexProperties) {
			props.Attributes["xlabel"] = avg.String()
		})
	}

	for _, link := range d.links {
		avg, ok := elapsed[link[1]]
		if !ok {
			continue
		}

		err := d.graph.UpdateEdge(link[0], link[1],
			graph.EdgeAttribute("xlabel", avg.String()),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", hex[link[1]]),
		)
		if err != nil {
			return errors.Wrapf(err, "unable to update edge from %s to %s", link[0], link[1])
		}
	}

	return nil
}

var _ Drawer = (*SVGDrawer)(nil)
