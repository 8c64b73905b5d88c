package cluster

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/kdtree"
)

var color255 = color.Gray{Y: 255}

// pixel is one active mask coordinate, carrying its index into the point set
// so neighbourhood queries can be mapped back to labels.
type pixel struct {
	x, y int
	idx  int
}

func (p pixel) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(pixel)
	switch d {
	case 0:
		return float64(p.x - q.x)
	default:
		return float64(p.y - q.y)
	}
}

func (p pixel) Dims() int { return 2 }

func (p pixel) Distance(c kdtree.Comparable) float64 {
	q := c.(pixel)
	dx := float64(p.x - q.x)
	dy := float64(p.y - q.y)

	return dx*dx + dy*dy
}

// pixels implements kdtree.Interface the same way kdtree.Points does.
type pixels []pixel

func (p pixels) Index(i int) kdtree.Comparable { return p[i] }
func (p pixels) Len() int                      { return len(p) }
func (p pixels) Pivot(d kdtree.Dim) int        { return plane{pixels: p, Dim: d}.Pivot() }
func (p pixels) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

type plane struct {
	kdtree.Dim
	pixels
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.pixels[i].x < p.pixels[j].x
	default:
		return p.pixels[i].y < p.pixels[j].y
	}
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.pixels = p.pixels[start:end]

	return p
}

func (p plane) Swap(i, j int) {
	p.pixels[i], p.pixels[j] = p.pixels[j], p.pixels[i]
}
