// Package imaging declares the image-analysis primitives the pipeline stages
// delegate to. The stages own the control flow (what gets segmented, in what
// order, under which layout), the Ops implementation owns the pixels.
package imaging

import "image"

// Contour is the closed outline of one detected object, in pixel coordinates.
type Contour []image.Point

// Circle is a circular region of interest.
type Circle struct {
	Center image.Point
	Radius int
}

// Side names the image border a shift is applied from.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Polarity states whether objects are brighter or darker than the background.
type Polarity string

const (
	ObjectLight Polarity = "light"
	ObjectDark  Polarity = "dark"
)

// ColorChannel selects one channel of the CIELAB representation of an image.
type ColorChannel string

const (
	ChannelLightness ColorChannel = "l"
	ChannelGreenRed  ColorChannel = "a"
	ChannelBlueYell  ColorChannel = "b"
)

// Features holds the per-plant measurements produced by Analyze.
type Features struct {
	Label         int
	Area          float64
	Perimeter     float64
	Width         int
	Height        int
	Solidity      float64
	CenterX       float64
	CenterY       float64
	MeanIntensity float64
	StdIntensity  float64
}

// Ops is the collaborator contract for all pixel-level work. Implementations
// must be safe for concurrent use: the pipeline may process units in parallel.
type Ops interface {
	// ReadImage loads the image stored at path.
	ReadImage(path string) (image.Image, error)

	// MeanIntensity returns the average pixel intensity of img, in [0, 255].
	MeanIntensity(img image.Image) (float64, error)

	// WhiteBalance corrects the colour cast of img relative to the pixels
	// inside roi, which is assumed to show a neutral reference surface.
	WhiteBalance(img image.Image, roi image.Rectangle) (image.Image, error)

	// RotateShift rotates img clockwise by degrees, then translates it by
	// shift pixels away from the given side.
	RotateShift(img image.Image, degrees float64, shift int, side Side) (image.Image, error)

	// ExtractChannel converts img to CIELAB and returns the selected channel
	// as a grayscale image.
	ExtractChannel(img image.Image, ch ColorChannel) (*image.Gray, error)

	// Threshold produces a binary mask from gray: pixels on the object side
	// of cutoff become value, all others zero.
	Threshold(gray *image.Gray, cutoff, value uint8, polarity Polarity) (*image.Gray, error)

	// Fill removes connected components of mask smaller than minSize pixels.
	Fill(mask *image.Gray, minSize int) (*image.Gray, error)

	// FindObjects detects the object contours of img restricted to mask.
	FindObjects(img image.Image, mask *image.Gray) ([]Contour, error)

	// ObjectsInROI returns the subset of objects that intersect roi and the
	// total object area covered inside it. A zero area means the ROI is
	// empty under the current detection parameters.
	ObjectsInROI(roi Circle, objects []Contour) ([]Contour, float64, error)

	// Compose merges objects into a single grouped contour and a binary mask
	// with the same bounds as img.
	Compose(img image.Image, objects []Contour) (Contour, *image.Gray, error)

	// ContourFromMask derives the bounding contour of the active region of
	// mask, sized against img.
	ContourFromMask(img image.Image, mask *image.Gray) (Contour, error)

	// Analyze measures the plant delimited by contour and mask on img.
	Analyze(img image.Image, contour Contour, mask *image.Gray, label int) (Features, error)
}

// Clusterer groups the active pixels of a binary mask into spatially dense
// regions, one mask per region. The number and order of returned masks is not
// stable between runs or parameter sets.
type Clusterer interface {
	Cluster(mask *image.Gray) ([]*image.Gray, error)
}
