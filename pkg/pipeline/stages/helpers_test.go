package stages_test

import (
	"image"

	"github.com/pkg/errors"

	"github.com/askiada/go-phenotype/pkg/imaging"
)

// fakeOps implements imaging.Ops with pluggable bodies; unset operations fail
// loudly so a test only handles the primitives its stage is expected to call.
type fakeOps struct {
	readImage       func(path string) (image.Image, error)
	meanIntensity   func(img image.Image) (float64, error)
	whiteBalance    func(img image.Image, roi image.Rectangle) (image.Image, error)
	rotateShift     func(img image.Image, degrees float64, shift int, side imaging.Side) (image.Image, error)
	extractChannel  func(img image.Image, ch imaging.ColorChannel) (*image.Gray, error)
	threshold       func(gray *image.Gray, cutoff, value uint8, polarity imaging.Polarity) (*image.Gray, error)
	fill            func(mask *image.Gray, minSize int) (*image.Gray, error)
	findObjects     func(img image.Image, mask *image.Gray) ([]imaging.Contour, error)
	objectsInROI    func(roi imaging.Circle, objects []imaging.Contour) ([]imaging.Contour, float64, error)
	compose         func(img image.Image, objects []imaging.Contour) (imaging.Contour, *image.Gray, error)
	contourFromMask func(img image.Image, mask *image.Gray) (imaging.Contour, error)
	analyze         func(img image.Image, contour imaging.Contour, mask *image.Gray, label int) (imaging.Features, error)
}

var errNotExpected = errors.New("unexpected ops call")

func (f *fakeOps) ReadImage(path string) (image.Image, error) {
	if f.readImage == nil {
		return nil, errors.Wrap(errNotExpected, "ReadImage")
	}

	return f.readImage(path)
}

func (f *fakeOps) MeanIntensity(img image.Image) (float64, error) {
	if f.meanIntensity == nil {
		return 0, errors.Wrap(errNotExpected, "MeanIntensity")
	}

	return f.meanIntensity(img)
}

func (f *fakeOps) WhiteBalance(img image.Image, roi image.Rectangle) (image.Image, error) {
	if f.whiteBalance == nil {
		return nil, errors.Wrap(errNotExpected, "WhiteBalance")
	}

	return f.whiteBalance(img, roi)
}

func (f *fakeOps) RotateShift(img image.Image, degrees float64, shift int, side imaging.Side) (image.Image, error) {
	if f.rotateShift == nil {
		return nil, errors.Wrap(errNotExpected, "RotateShift")
	}

	return f.rotateShift(img, degrees, shift, side)
}

func (f *fakeOps) ExtractChannel(img image.Image, ch imaging.ColorChannel) (*image.Gray, error) {
	if f.extractChannel == nil {
		return nil, errors.Wrap(errNotExpected, "ExtractChannel")
	}

	return f.extractChannel(img, ch)
}

func (f *fakeOps) Threshold(gray *image.Gray, cutoff, value uint8, polarity imaging.Polarity) (*image.Gray, error) {
	if f.threshold == nil {
		return nil, errors.Wrap(errNotExpected, "Threshold")
	}

	return f.threshold(gray, cutoff, value, polarity)
}

func (f *fakeOps) Fill(mask *image.Gray, minSize int) (*image.Gray, error) {
	if f.fill == nil {
		return nil, errors.Wrap(errNotExpected, "Fill")
	}

	return f.fill(mask, minSize)
}

func (f *fakeOps) FindObjects(img image.Image, mask *image.Gray) ([]imaging.Contour, error) {
	if f.findObjects == nil {
		return nil, errors.Wrap(errNotExpected, "FindObjects")
	}

	return f.findObjects(img, mask)
}

func (f *fakeOps) ObjectsInROI(roi imaging.Circle, objects []imaging.Contour) ([]imaging.Contour, float64, error) {
	if f.objectsInROI == nil {
		return nil, 0, errors.Wrap(errNotExpected, "ObjectsInROI")
	}

	return f.objectsInROI(roi, objects)
}

func (f *fakeOps) Compose(img image.Image, objects []imaging.Contour) (imaging.Contour, *image.Gray, error) {
	if f.compose == nil {
		return nil, nil, errors.Wrap(errNotExpected, "Compose")
	}

	return f.compose(img, objects)
}

func (f *fakeOps) ContourFromMask(img image.Image, mask *image.Gray) (imaging.Contour, error) {
	if f.contourFromMask == nil {
		return nil, errors.Wrap(errNotExpected, "ContourFromMask")
	}

	return f.contourFromMask(img, mask)
}

func (f *fakeOps) Analyze(img image.Image, contour imaging.Contour, mask *image.Gray, label int) (imaging.Features, error) {
	if f.analyze == nil {
		return imaging.Features{}, errors.Wrap(errNotExpected, "Analyze")
	}

	return f.analyze(img, contour, mask, label)
}

// fakeClusterer splits a mask according to a scripted sequence of responses.
type fakeClusterer struct {
	fn func(mask *image.Gray) ([]*image.Gray, error)
}

func (f *fakeClusterer) Cluster(mask *image.Gray) ([]*image.Gray, error) {
	return f.fn(mask)
}

func grayMask(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

func rgba(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
