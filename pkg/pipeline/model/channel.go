package model

import (
	"image"

	"github.com/askiada/go-phenotype/pkg/imaging"
)

// ChannelKind identifies a channel variant. The values are fixed enumerated
// discriminants so that stage compatibility is stable across process runs.
type ChannelKind uint8

const (
	KindInvalid ChannelKind = iota
	// KindSingleImage carries one image.
	KindSingleImage
	// KindDoubleImage carries a primary/secondary image pair.
	KindDoubleImage
	// KindSegmentation carries per-plant contour and mask lists.
	KindSegmentation
	// KindSnapshot carries the run history accumulated so far. A stage that
	// declares KindSnapshot input is fed the live history regardless of what
	// its predecessor produced; this is the only exception to strict kind
	// matching between consecutive stages.
	KindSnapshot
)

func (k ChannelKind) String() string {
	switch k {
	case KindSingleImage:
		return "single-image"
	case KindDoubleImage:
		return "double-image"
	case KindSegmentation:
		return "segmentation"
	case KindSnapshot:
		return "snapshot"
	default:
		return "invalid"
	}
}

// Channel is the typed value passed between pipeline stages.
type Channel interface {
	Kind() ChannelKind
}

// SingleImage is a channel carrying one image.
type SingleImage struct {
	Image image.Image
}

func (SingleImage) Kind() ChannelKind { return KindSingleImage }

// DoubleImage is a channel carrying two images. The tag is the originating
// sample's source path and must be propagated unchanged by any stage that does
// not itself change the active sample.
type DoubleImage struct {
	Primary   image.Image
	Secondary image.Image
	Tag       string
}

func (DoubleImage) Kind() ChannelKind { return KindDoubleImage }

// Segmentation is a channel carrying the per-plant contours and masks found in
// an image. Contours and Masks always have equal length.
//
// PositionStable reports whether index i corresponds to the same configured
// position on every run. Rigid segmentation guarantees it; density-based
// segmentation does not, and callers must not assume stable indices there.
type Segmentation struct {
	Contours       []imaging.Contour
	Masks          []*image.Gray
	Image          image.Image
	Tag            string
	PositionStable bool
}

func (Segmentation) Kind() ChannelKind { return KindSegmentation }

// Snapshot is a channel exposing the full stage-output history of the current
// run, letting a stage reach back to arbitrary earlier outputs instead of only
// its immediate predecessor.
type Snapshot struct {
	History []StageEntry
}

func (Snapshot) Kind() ChannelKind { return KindSnapshot }
