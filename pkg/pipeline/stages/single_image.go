package stages

import (
	"image"

	"github.com/pkg/errors"

	"github.com/askiada/go-phenotype/pkg/imaging"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// Stage names, as they appear in run histories and consolidation lookups.
const (
	WhiteBalanceName   = "WhiteBalance"
	ViewportAdjustName = "ViewportAdjust"
	BinaryMaskName     = "BinaryMask"
)

// WhiteBalanceConfig wraps the parameters of the white-balance primitive.
type WhiteBalanceConfig struct {
	// ROI is a rectangle over a neutral reference surface; the rest of the
	// image is corrected relative to its pixels.
	ROI image.Rectangle
}

// WhiteBalance colour-corrects the incoming image against a reference region.
type WhiteBalance struct {
	ops imaging.Ops
	cfg WhiteBalanceConfig
}

func NewWhiteBalance(ops imaging.Ops, cfg WhiteBalanceConfig) *WhiteBalance {
	return &WhiteBalance{ops: ops, cfg: cfg}
}

func (s *WhiteBalance) Name() string                 { return WhiteBalanceName }
func (s *WhiteBalance) InputKind() model.ChannelKind { return model.KindSingleImage }
func (s *WhiteBalance) OutputKind() model.ChannelKind {
	return model.KindSingleImage
}

func (s *WhiteBalance) Invoke(in model.Channel) (model.Channel, error) {
	single, ok := in.(model.SingleImage)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants %s, got %s", s.Name(), s.InputKind(), in.Kind())
	}

	out, err := s.ops.WhiteBalance(single.Image, s.cfg.ROI)
	if err != nil {
		return nil, errors.Wrap(err, "white balance")
	}

	return model.SingleImage{Image: out}, nil
}

// ViewportAdjustConfig wraps the parameters of the rotate and shift
// primitives that move the scene origin to a consistent corner.
type ViewportAdjustConfig struct {
	// Side is the border the shift is applied from.
	Side imaging.Side
	// Rotate is the clockwise rotation in degrees.
	Rotate float64
	// Shift is the translation in pixels.
	Shift int
}

// ViewportAdjust rotates and shifts the incoming image.
type ViewportAdjust struct {
	ops imaging.Ops
	cfg ViewportAdjustConfig
}

func NewViewportAdjust(ops imaging.Ops, cfg ViewportAdjustConfig) *ViewportAdjust {
	return &ViewportAdjust{ops: ops, cfg: cfg}
}

func (s *ViewportAdjust) Name() string                  { return ViewportAdjustName }
func (s *ViewportAdjust) InputKind() model.ChannelKind  { return model.KindSingleImage }
func (s *ViewportAdjust) OutputKind() model.ChannelKind { return model.KindSingleImage }

func (s *ViewportAdjust) Invoke(in model.Channel) (model.Channel, error) {
	single, ok := in.(model.SingleImage)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants %s, got %s", s.Name(), s.InputKind(), in.Kind())
	}

	out, err := s.ops.RotateShift(single.Image, s.cfg.Rotate, s.cfg.Shift, s.cfg.Side)
	if err != nil {
		return nil, errors.Wrap(err, "viewport adjust")
	}

	return model.SingleImage{Image: out}, nil
}

// BinaryMaskConfig wraps the parameters of the channel-extraction, threshold
// and fill primitives.
type BinaryMaskConfig struct {
	// Channel is the CIELAB channel the threshold is applied to.
	Channel imaging.ColorChannel
	// Threshold is the cutoff for hot pixels, in [0, 255].
	Threshold uint8
	// MaxValue is the value assigned to pixels that make the cutoff.
	MaxValue uint8
	// Polarity states whether objects are lighter or darker than background.
	Polarity imaging.Polarity
	// Fill removes mask components smaller than this many pixels.
	Fill int
}

// BinaryMask turns the incoming image into a filled binary mask.
type BinaryMask struct {
	ops imaging.Ops
	cfg BinaryMaskConfig
}

func NewBinaryMask(ops imaging.Ops, cfg BinaryMaskConfig) *BinaryMask {
	return &BinaryMask{ops: ops, cfg: cfg}
}

func (s *BinaryMask) Name() string                  { return BinaryMaskName }
func (s *BinaryMask) InputKind() model.ChannelKind  { return model.KindSingleImage }
func (s *BinaryMask) OutputKind() model.ChannelKind { return model.KindSingleImage }

func (s *BinaryMask) Invoke(in model.Channel) (model.Channel, error) {
	single, ok := in.(model.SingleImage)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants %s, got %s", s.Name(), s.InputKind(), in.Kind())
	}

	gray, err := s.ops.ExtractChannel(single.Image, s.cfg.Channel)
	if err != nil {
		return nil, errors.Wrap(err, "extract channel")
	}

	mask, err := s.ops.Threshold(gray, s.cfg.Threshold, s.cfg.MaxValue, s.cfg.Polarity)
	if err != nil {
		return nil, errors.Wrap(err, "threshold")
	}

	filled, err := s.ops.Fill(mask, s.cfg.Fill)
	if err != nil {
		return nil, errors.Wrap(err, "fill")
	}

	return model.SingleImage{Image: filled}, nil
}
