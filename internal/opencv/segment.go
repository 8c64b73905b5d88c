package opencv

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/askiada/go-phenotype/pkg/imaging"
)

func (o *Ops) FindObjects(img image.Image, mask *image.Gray) ([]imaging.Contour, error) {
	m, err := toMatGray(mask)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	found := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	objects := make([]imaging.Contour, found.Size())
	for i := 0; i < found.Size(); i++ {
		objects[i] = imaging.Contour(found.At(i).ToPoints())
	}

	return objects, nil
}

// ObjectsInROI keeps the objects that at least partially overlap the circle.
func (o *Ops) ObjectsInROI(roi imaging.Circle, objects []imaging.Contour) ([]imaging.Contour, float64, error) {
	var (
		inside  []imaging.Contour
		covered float64
	)

	for _, object := range objects {
		if !touchesCircle(object, roi) {
			continue
		}

		pv := gocv.NewPointVectorFromPoints(object)
		covered += gocv.ContourArea(pv)
		pv.Close()

		inside = append(inside, object)
	}

	return inside, covered, nil
}

func touchesCircle(contour imaging.Contour, roi imaging.Circle) bool {
	rr := roi.Radius * roi.Radius

	for _, pt := range contour {
		dx := pt.X - roi.Center.X
		dy := pt.Y - roi.Center.Y
		if dx*dx+dy*dy <= rr {
			return true
		}
	}

	return false
}

func (o *Ops) Compose(img image.Image, objects []imaging.Contour) (imaging.Contour, *image.Gray, error) {
	bounds := img.Bounds()

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC1)
	defer canvas.Close()

	pts := make([][]image.Point, len(objects))
	var grouped imaging.Contour

	for i, object := range objects {
		pts[i] = object
		grouped = append(grouped, object...)
	}

	ppv := gocv.NewPointsVectorFromPoints(pts)
	defer ppv.Close()
	gocv.FillPoly(&canvas, ppv, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	mask, err := matToGray(canvas)
	if err != nil {
		return nil, nil, err
	}

	return grouped, mask, nil
}

func (o *Ops) ContourFromMask(img image.Image, mask *image.Gray) (imaging.Contour, error) {
	m, err := toMatGray(mask)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	found := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	if found.Size() == 0 {
		return imaging.Contour{}, nil
	}

	best := 0
	bestArea := gocv.ContourArea(found.At(0))

	for i := 1; i < found.Size(); i++ {
		if area := gocv.ContourArea(found.At(i)); area > bestArea {
			best, bestArea = i, area
		}
	}

	return imaging.Contour(found.At(best).ToPoints()), nil
}

func (o *Ops) Analyze(img image.Image, contour imaging.Contour, mask *image.Gray, label int) (imaging.Features, error) {
	if len(contour) == 0 {
		return imaging.Features{Label: label}, nil
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	area := gocv.ContourArea(pv)
	perimeter := gocv.ArcLength(pv, true)
	rect := gocv.BoundingRect(pv)

	hullMat := gocv.NewMat()
	defer hullMat.Close()
	gocv.ConvexHull(pv, &hullMat, true, true)

	hullPV := gocv.NewPointVectorFromMat(hullMat)
	hullArea := gocv.ContourArea(hullPV)
	hullPV.Close()

	solidity := 0.0
	if hullArea > 0 {
		solidity = area / hullArea
	}

	centerX, centerY, err := maskCentroid(mask)
	if err != nil {
		return imaging.Features{}, errors.Wrapf(err, "plant %d", label)
	}

	mean, std := maskIntensity(img, mask)

	return imaging.Features{
		Label:         label,
		Area:          area,
		Perimeter:     perimeter,
		Width:         rect.Dx(),
		Height:        rect.Dy(),
		Solidity:      solidity,
		CenterX:       centerX,
		CenterY:       centerY,
		MeanIntensity: mean,
		StdIntensity:  std,
	}, nil
}

func maskCentroid(mask *image.Gray) (float64, float64, error) {
	m, err := toMatGray(mask)
	if err != nil {
		return 0, 0, err
	}
	defer m.Close()

	moments := gocv.Moments(m, true)
	if moments["m00"] == 0 {
		return 0, 0, nil
	}

	return moments["m10"] / moments["m00"], moments["m01"] / moments["m00"], nil
}

// maskIntensity summarises the luminance of the plant pixels.
func maskIntensity(img image.Image, mask *image.Gray) (float64, float64) {
	bounds := mask.Bounds()

	var samples []float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				continue
			}

			lum := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			samples = append(samples, float64(lum.Y))
		}
	}

	if len(samples) == 0 {
		return 0, 0
	}

	return stat.Mean(samples, nil), stat.StdDev(samples, nil)
}
