package stages

import (
	"image"

	"github.com/pkg/errors"

	"github.com/askiada/go-phenotype/pkg/imaging"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// RigidSegmentationName is the history name of the rigid segmentation stage.
const RigidSegmentationName = "RigidSegmentation"

// Layout produces the fixed set of circular ROIs a rigid segmentation scans.
// The slice order is the per-plant identity: position i of the layout is
// position i of every segmentation produced with it, on every run.
type Layout interface {
	Circles() []imaging.Circle
}

// GridLayout lays ROIs out as a regularly spaced rows x cols grid of circles
// anchored at Start.
type GridLayout struct {
	// Start is the centre of the top-left ROI; all others are linear
	// combinations of Start and Spacing.
	Start image.Point
	// Radius of every ROI circle.
	Radius int
	// Spacing holds the column and row deltas in pixels.
	Spacing image.Point
	Rows    int
	Cols    int
}

// Circles returns the grid circles in row-major order.
func (l GridLayout) Circles() []imaging.Circle {
	circles := make([]imaging.Circle, 0, l.Rows*l.Cols)

	for row := 0; row < l.Rows; row++ {
		for col := 0; col < l.Cols; col++ {
			circles = append(circles, imaging.Circle{
				Center: image.Pt(l.Start.X+col*l.Spacing.X, l.Start.Y+row*l.Spacing.Y),
				Radius: l.Radius,
			})
		}
	}

	return circles
}

// CustomLayout lists explicit plant positions with a shared ROI radius.
type CustomLayout struct {
	Centers []image.Point
	Radius  int
}

func (l CustomLayout) Circles() []imaging.Circle {
	circles := make([]imaging.Circle, len(l.Centers))
	for i, center := range l.Centers {
		circles[i] = imaging.Circle{Center: center, Radius: l.Radius}
	}

	return circles
}

// RigidSegmentation isolates one plant per configured ROI position.
//
// The output is positionally stable: segmentation index i always corresponds
// to layout position i, across all runs of the same configuration, so that
// per-plant identity tracking over time survives a plant being temporarily
// undetected. An undetected position yields an empty placeholder, never a
// shorter result list.
type RigidSegmentation struct {
	ops    imaging.Ops
	layout Layout
}

func NewRigidSegmentation(ops imaging.Ops, layout Layout) *RigidSegmentation {
	return &RigidSegmentation{ops: ops, layout: layout}
}

func (s *RigidSegmentation) Name() string                  { return RigidSegmentationName }
func (s *RigidSegmentation) InputKind() model.ChannelKind  { return model.KindDoubleImage }
func (s *RigidSegmentation) OutputKind() model.ChannelKind { return model.KindSegmentation }

func (s *RigidSegmentation) Invoke(in model.Channel) (model.Channel, error) {
	double, ok := in.(model.DoubleImage)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants %s, got %s", s.Name(), s.InputKind(), in.Kind())
	}

	mask, ok := double.Secondary.(*image.Gray)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants a binary mask as secondary image", s.Name())
	}

	objects, err := s.ops.FindObjects(double.Primary, mask)
	if err != nil {
		return nil, errors.Wrap(err, "find objects")
	}

	circles := s.layout.Circles()

	contours := make([]imaging.Contour, len(circles))
	masks := make([]*image.Gray, len(circles))

	for i, roi := range circles {
		inside, area, err := s.ops.ObjectsInROI(roi, objects)
		if err != nil {
			return nil, errors.Wrapf(err, "roi %d", i)
		}

		if area <= 0 {
			// No reading at this position; keep the slot so index
			// correspondence survives.
			contours[i] = imaging.Contour{}
			masks[i] = nil

			continue
		}

		contour, plantMask, err := s.ops.Compose(double.Primary, inside)
		if err != nil {
			return nil, errors.Wrapf(err, "compose roi %d", i)
		}

		contours[i] = contour
		masks[i] = plantMask
	}

	return model.Segmentation{
		Contours:       contours,
		Masks:          masks,
		Image:          double.Primary,
		Tag:            double.Tag,
		PositionStable: true,
	}, nil
}
