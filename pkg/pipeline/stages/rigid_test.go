package stages_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-phenotype/pkg/imaging"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
	"github.com/askiada/go-phenotype/pkg/pipeline/stages"
)

func TestGridLayoutCircles(t *testing.T) {
	t.Parallel()

	layout := stages.GridLayout{
		Start:   image.Pt(100, 200),
		Radius:  40,
		Spacing: image.Pt(120, 150),
		Rows:    2,
		Cols:    3,
	}

	circles := layout.Circles()
	require.Len(t, circles, 6)

	// Row-major: all of row one before row two.
	assert.Equal(t, imaging.Circle{Center: image.Pt(100, 200), Radius: 40}, circles[0])
	assert.Equal(t, imaging.Circle{Center: image.Pt(220, 200), Radius: 40}, circles[1])
	assert.Equal(t, imaging.Circle{Center: image.Pt(340, 200), Radius: 40}, circles[2])
	assert.Equal(t, imaging.Circle{Center: image.Pt(100, 350), Radius: 40}, circles[3])
	assert.Equal(t, imaging.Circle{Center: image.Pt(340, 350), Radius: 40}, circles[5])
}

func TestCustomLayoutCircles(t *testing.T) {
	t.Parallel()

	layout := stages.CustomLayout{
		Centers: []image.Point{image.Pt(10, 20), image.Pt(30, 40)},
		Radius:  15,
	}

	circles := layout.Circles()
	require.Len(t, circles, 2)
	assert.Equal(t, imaging.Circle{Center: image.Pt(10, 20), Radius: 15}, circles[0])
	assert.Equal(t, imaging.Circle{Center: image.Pt(30, 40), Radius: 15}, circles[1])
}

func TestRigidSegmentation(t *testing.T) {
	t.Parallel()

	img := rgba(16, 16)
	mask := grayMask(16, 16)
	objects := []imaging.Contour{
		{image.Pt(1, 1)},
		{image.Pt(9, 1)},
		{image.Pt(1, 9)},
	}

	layout := stages.GridLayout{
		Start:   image.Pt(2, 2),
		Radius:  3,
		Spacing: image.Pt(8, 8),
		Rows:    2,
		Cols:    2,
	}

	ops := &fakeOps{
		findObjects: func(gotImg image.Image, gotMask *image.Gray) ([]imaging.Contour, error) {
			assert.Equal(t, img, gotImg)
			assert.Equal(t, mask, gotMask)

			return objects, nil
		},
		objectsInROI: func(roi imaging.Circle, got []imaging.Contour) ([]imaging.Contour, float64, error) {
			assert.Equal(t, objects, got)

			for _, object := range objects {
				d := object[0].Sub(roi.Center)
				if d.X*d.X+d.Y*d.Y <= roi.Radius*roi.Radius {
					return []imaging.Contour{object}, 12, nil
				}
			}

			return nil, 0, nil
		},
		compose: func(gotImg image.Image, inside []imaging.Contour) (imaging.Contour, *image.Gray, error) {
			require.Len(t, inside, 1)

			return inside[0], grayMask(16, 16), nil
		},
	}

	stage := stages.NewRigidSegmentation(ops, layout)
	assert.Equal(t, model.KindDoubleImage, stage.InputKind())
	assert.Equal(t, model.KindSegmentation, stage.OutputKind())

	got, err := stage.Invoke(model.DoubleImage{Primary: img, Secondary: mask, Tag: "sample.jpg"})
	require.NoError(t, err)

	seg, ok := got.(model.Segmentation)
	require.True(t, ok)
	assert.True(t, seg.PositionStable)
	assert.Equal(t, "sample.jpg", seg.Tag)

	// Four grid positions, three occupied. The empty position keeps its
	// slot so the index identity survives.
	require.Len(t, seg.Contours, 4)
	require.Len(t, seg.Masks, 4)

	assert.Equal(t, objects[0], seg.Contours[0])
	assert.Equal(t, objects[1], seg.Contours[1])
	assert.Equal(t, objects[2], seg.Contours[2])
	assert.Empty(t, seg.Contours[3])
	assert.Nil(t, seg.Masks[3])
	assert.NotNil(t, seg.Masks[0])
}

func TestRigidSegmentationWantsMask(t *testing.T) {
	t.Parallel()

	stage := stages.NewRigidSegmentation(&fakeOps{}, stages.CustomLayout{})

	_, err := stage.Invoke(model.DoubleImage{Primary: rgba(4, 4), Secondary: rgba(4, 4)})
	require.ErrorIs(t, err, stages.ErrUnexpectedChannel)

	_, err = stage.Invoke(model.SingleImage{})
	require.ErrorIs(t, err, stages.ErrUnexpectedChannel)
}
