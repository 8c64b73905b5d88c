// Package cluster implements density-based spatial clustering of binary mask
// pixels. It is the spatial-clustering collaborator behind the
// density-segmentation stage.
package cluster

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// DBSCAN groups the active pixels of a mask into density-connected regions.
// Epsilon is the neighbourhood radius: an absolute pixel distance when >= 1,
// otherwise a fraction of the image diagonal. Regions with fewer than
// MinClusterSize pixels are discarded as noise.
type DBSCAN struct {
	MinClusterSize int
	Epsilon        float64
}

// New returns a DBSCAN clusterer with the given parameters.
func New(minClusterSize int, epsilon float64) *DBSCAN {
	return &DBSCAN{MinClusterSize: minClusterSize, Epsilon: epsilon}
}

// Cluster implements imaging.Clusterer. Each returned mask has the same
// bounds as the input and contains exactly one density-connected region.
// Neither the count nor the order of the returned masks is stable.
func (d *DBSCAN) Cluster(mask *image.Gray) ([]*image.Gray, error) {
	bounds := mask.Bounds()

	pts := activePixels(mask)
	if len(pts) == 0 {
		return nil, nil
	}

	eps := d.Epsilon
	if eps < 1 {
		eps *= math.Hypot(float64(bounds.Dx()), float64(bounds.Dy()))
	}

	labels := d.label(pts, eps)

	byLabel := make(map[int][]pixel)
	for i, lbl := range labels {
		if lbl < 0 {
			continue
		}
		byLabel[lbl] = append(byLabel[lbl], pts[i])
	}

	var out []*image.Gray

	for lbl := 0; lbl < len(byLabel); lbl++ {
		members := byLabel[lbl]
		if len(members) < d.MinClusterSize {
			continue
		}

		region := image.NewGray(bounds)
		for _, px := range members {
			region.SetGray(px.x, px.y, color255)
		}

		out = append(out, region)
	}

	return out, nil
}

const noise = -1

// label runs the DBSCAN expansion over pts, returning a cluster label per
// point (noise for unclustered points). Neighbourhood queries go through a
// kd-tree; kdtree distances are squared Euclidean, hence eps*eps.
//
// kdtree.New partitions its input slice in place, which would desynchronize
// the stored idx values from the positions labels is indexed by, so the tree
// is built from a copy and pts keeps its scan order.
func (d *DBSCAN) label(pts []pixel, eps float64) []int {
	tree := kdtree.New(pixels(append([]pixel(nil), pts...)), false)
	epsSq := eps * eps

	labels := make([]int, len(pts))
	for i := range labels {
		labels[i] = noise
	}

	next := 0

	for i := range pts {
		if labels[i] != noise {
			continue
		}

		neighbours := regionQuery(tree, pts[i], epsSq)
		if len(neighbours) < d.MinClusterSize {
			continue
		}

		labels[i] = next
		queue := neighbours

		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] != noise {
				continue
			}

			labels[j] = next

			reachable := regionQuery(tree, pts[j], epsSq)
			if len(reachable) >= d.MinClusterSize {
				queue = append(queue, reachable...)
			}
		}

		next++
	}

	return labels
}

func regionQuery(tree *kdtree.Tree, from pixel, epsSq float64) []int {
	keep := kdtree.NewDistKeeper(epsSq)
	tree.NearestSet(keep, from)

	idx := make([]int, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		idx = append(idx, c.Comparable.(pixel).idx)
	}

	return idx
}

func activePixels(mask *image.Gray) []pixel {
	bounds := mask.Bounds()

	var pts []pixel

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				continue
			}
			pts = append(pts, pixel{x: x, y: y, idx: len(pts)})
		}
	}

	return pts
}
