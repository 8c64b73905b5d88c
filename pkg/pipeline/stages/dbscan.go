package stages

import (
	"image"

	"github.com/pkg/errors"

	"github.com/askiada/go-phenotype/pkg/imaging"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// DBSCANSegmentationName is the history name of the density segmentation stage.
const DBSCANSegmentationName = "DBSCANSegmentation"

// DefaultMaxRefineDepth bounds the recursive refinement of candidate masks.
// Sub-clustering has no natural floor: a mask that keeps splitting under the
// configured parameters would otherwise recurse forever.
const DefaultMaxRefineDepth = 8

// DBSCANSegmentationConfig wraps the refinement parameters; the clustering
// parameters themselves (minimum cluster size, epsilon) belong to the
// Clusterer.
type DBSCANSegmentationConfig struct {
	// MaxRefineDepth caps the recursive refinement. Zero means
	// DefaultMaxRefineDepth. A branch that reaches the cap accepts its
	// current mask as final.
	MaxRefineDepth int
}

// DBSCANSegmentation isolates plants by density-based clustering of the mask,
// refining every candidate until it is stable under re-clustering.
//
// Unlike RigidSegmentation, cluster count and order are not positionally
// stable: no fixed plant count is known in advance and index i of one run has
// no relation to index i of another. Callers must not track identity by index
// here.
type DBSCANSegmentation struct {
	ops       imaging.Ops
	clusterer imaging.Clusterer
	maxDepth  int
}

func NewDBSCANSegmentation(ops imaging.Ops, clusterer imaging.Clusterer, cfg DBSCANSegmentationConfig) *DBSCANSegmentation {
	maxDepth := cfg.MaxRefineDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRefineDepth
	}

	return &DBSCANSegmentation{ops: ops, clusterer: clusterer, maxDepth: maxDepth}
}

func (s *DBSCANSegmentation) Name() string                  { return DBSCANSegmentationName }
func (s *DBSCANSegmentation) InputKind() model.ChannelKind  { return model.KindDoubleImage }
func (s *DBSCANSegmentation) OutputKind() model.ChannelKind { return model.KindSegmentation }

func (s *DBSCANSegmentation) Invoke(in model.Channel) (model.Channel, error) {
	double, ok := in.(model.DoubleImage)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants %s, got %s", s.Name(), s.InputKind(), in.Kind())
	}

	mask, ok := double.Secondary.(*image.Gray)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants a binary mask as secondary image", s.Name())
	}

	candidates, err := s.clusterer.Cluster(mask)
	if err != nil {
		return nil, errors.Wrap(err, "cluster mask")
	}

	var masks []*image.Gray

	for i, candidate := range candidates {
		refined, err := s.refine(candidate, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "refine candidate %d", i)
		}

		masks = append(masks, refined...)
	}

	contours := make([]imaging.Contour, len(masks))

	for i, plantMask := range masks {
		contour, err := s.ops.ContourFromMask(double.Primary, plantMask)
		if err != nil {
			return nil, errors.Wrapf(err, "contour for mask %d", i)
		}

		contours[i] = contour
	}

	return model.Segmentation{
		Contours:       contours,
		Masks:          masks,
		Image:          double.Primary,
		Tag:            double.Tag,
		PositionStable: false,
	}, nil
}

// refine re-clusters mask until it is stable. A mask whose re-clustering
// yields at most one cluster will not split further under the current
// parameters and is accepted as final; otherwise every sub-cluster is refined
// in turn and the stable leaves are flattened into the result.
func (s *DBSCANSegmentation) refine(mask *image.Gray, depth int) ([]*image.Gray, error) {
	if depth >= s.maxDepth {
		return []*image.Gray{mask}, nil
	}

	subs, err := s.clusterer.Cluster(mask)
	if err != nil {
		return nil, errors.Wrap(err, "recluster")
	}

	if len(subs) <= 1 {
		// Best one can get with these parameters.
		return []*image.Gray{mask}, nil
	}

	var leaves []*image.Gray

	for _, sub := range subs {
		stable, err := s.refine(sub, depth+1)
		if err != nil {
			return nil, err
		}

		leaves = append(leaves, stable...)
	}

	return leaves, nil
}
