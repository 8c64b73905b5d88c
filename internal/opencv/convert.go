package opencv

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// toMatBGR converts an image to a 3-channel BGR Mat, the layout the OpenCV
// primitives expect. The caller owns the returned Mat.
func toMatBGR(img image.Image) (gocv.Mat, error) {
	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "unable to convert image to mat")
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	return bgr, nil
}

func toMatGray(gray *image.Gray) (gocv.Mat, error) {
	m, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "unable to convert mask to mat")
	}

	return m, nil
}

func matToImage(m gocv.Mat) (image.Image, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert mat to image")
	}

	return img, nil
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert mat to image")
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, errors.Errorf("expected single-channel mat, got %d channels", m.Channels())
	}

	return gray, nil
}
