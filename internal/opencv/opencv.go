// Package opencv implements the imaging.Ops collaborator on top of OpenCV
// via gocv. Numerical behaviour here is not normative for the pipeline: the
// stages only rely on the contracts declared in pkg/imaging.
package opencv

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/askiada/go-phenotype/pkg/imaging"
)

// Ops is the OpenCV-backed implementation of imaging.Ops. It is stateless and
// safe for concurrent use.
type Ops struct{}

func New() *Ops { return &Ops{} }

var _ imaging.Ops = (*Ops)(nil)

func (o *Ops) ReadImage(path string) (image.Image, error) {
	m := gocv.IMRead(path, gocv.IMReadColor)
	if m.Empty() {
		return nil, errors.Errorf("unable to read image %s", path)
	}
	defer m.Close()

	return matToImage(m)
}

func (o *Ops) MeanIntensity(img image.Image) (float64, error) {
	m, err := toMatBGR(img)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	mean := m.Mean()

	return (mean.Val1 + mean.Val2 + mean.Val3) / 3, nil
}

func (o *Ops) WhiteBalance(img image.Image, roi image.Rectangle) (image.Image, error) {
	m, err := toMatBGR(img)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if !roi.In(image.Rect(0, 0, m.Cols(), m.Rows())) {
		return nil, errors.Errorf("white balance roi %v outside image %dx%d", roi, m.Cols(), m.Rows())
	}

	region := m.Region(roi)
	refMean := region.Mean()
	region.Close()

	channels := gocv.Split(m)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	for i, ref := range []float64{refMean.Val1, refMean.Val2, refMean.Val3} {
		if ref <= 0 {
			return nil, errors.Errorf("white balance reference channel %d is black", i)
		}

		channels[i].MultiplyFloat(float32(255.0 / ref))
	}

	balanced := gocv.NewMat()
	defer balanced.Close()
	gocv.Merge(channels, &balanced)

	return matToImage(balanced)
}

func (o *Ops) RotateShift(img image.Image, degrees float64, shift int, side imaging.Side) (image.Image, error) {
	m, err := toMatBGR(img)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	size := image.Pt(m.Cols(), m.Rows())
	center := image.Pt(m.Cols()/2, m.Rows()/2)

	// GetRotationMatrix2D rotates counter-clockwise for positive angles;
	// the stage contract is clockwise degrees.
	rot := gocv.GetRotationMatrix2D(center, -degrees, 1.0)
	defer rot.Close()

	rotated := gocv.NewMat()
	defer rotated.Close()
	gocv.WarpAffine(m, &rotated, rot, size)

	var dx, dy float64

	switch side {
	case imaging.SideTop:
		dy = float64(shift)
	case imaging.SideBottom:
		dy = -float64(shift)
	case imaging.SideLeft:
		dx = float64(shift)
	case imaging.SideRight:
		dx = -float64(shift)
	default:
		return nil, errors.Errorf("unknown shift side %q", side)
	}

	trans := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64FC1)
	defer trans.Close()
	trans.SetDoubleAt(0, 0, 1)
	trans.SetDoubleAt(0, 1, 0)
	trans.SetDoubleAt(0, 2, dx)
	trans.SetDoubleAt(1, 0, 0)
	trans.SetDoubleAt(1, 1, 1)
	trans.SetDoubleAt(1, 2, dy)

	shifted := gocv.NewMat()
	defer shifted.Close()
	gocv.WarpAffine(rotated, &shifted, trans, size)

	return matToImage(shifted)
}

var labChannelIndex = map[imaging.ColorChannel]int{
	imaging.ChannelLightness: 0,
	imaging.ChannelGreenRed:  1,
	imaging.ChannelBlueYell:  2,
}

func (o *Ops) ExtractChannel(img image.Image, ch imaging.ColorChannel) (*image.Gray, error) {
	idx, ok := labChannelIndex[ch]
	if !ok {
		return nil, errors.Errorf("unknown colour channel %q", ch)
	}

	m, err := toMatBGR(img)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(m, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	return matToGray(channels[idx])
}

func (o *Ops) Threshold(gray *image.Gray, cutoff, value uint8, polarity imaging.Polarity) (*image.Gray, error) {
	m, err := toMatGray(gray)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	typ := gocv.ThresholdBinary
	if polarity == imaging.ObjectDark {
		typ = gocv.ThresholdBinaryInv
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(m, &dst, float32(cutoff), float32(value), typ)

	return matToGray(dst)
}

func (o *Ops) Fill(mask *image.Gray, minSize int) (*image.Gray, error) {
	m, err := toMatGray(mask)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	contours := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		if gocv.ContourArea(contours.At(i)) >= float64(minSize) {
			continue
		}

		gocv.DrawContours(&m, contours, i, color.RGBA{}, -1)
	}

	return matToGray(m)
}
