// Package loader turns a directory of timestamped camera frames into pipeline
// data units. File names follow the acquisition convention
// "<prefix>image_<YYYY-MM-DD HH_MM_SS>.jpg"; the token after "image_" is kept
// as the collection timestamp.
package loader

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/askiada/go-phenotype/pkg/imaging"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// DefaultNightThreshold is the mean intensity below which a frame is treated
// as shot in the dark and marked invalid.
const DefaultNightThreshold = 50.0

// Loader reads acquisition frames from disk and decides their validity.
type Loader struct {
	ops            imaging.Ops
	nightThreshold float64
	log            zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithNightThreshold overrides the mean intensity below which frames are
// marked invalid.
func WithNightThreshold(threshold float64) Option {
	return func(l *Loader) {
		l.nightThreshold = threshold
	}
}

// WithLogger sets the loader logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

func New(ops imaging.Ops, opts ...Option) *Loader {
	l := &Loader{
		ops:            ops,
		nightThreshold: DefaultNightThreshold,
		log:            zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadDir loads every jpg frame under dir, in lexical (chronological) order.
// Frames that cannot be decoded or that fail the night check are returned as
// invalid units rather than dropped, so callers keep the full event sequence.
func (l *Loader) LoadDir(dir string) ([]model.DataUnit, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, errors.Wrapf(err, "list frames in %s", dir)
	}
	sort.Strings(paths)

	units := make([]model.DataUnit, 0, len(paths))
	for _, path := range paths {
		units = append(units, l.load(path))
	}

	l.log.Info().Int("frames", len(units)).Str("dir", dir).Msg("frames loaded")

	return units, nil
}

func (l *Loader) load(path string) model.DataUnit {
	unit := model.DataUnit{
		Meta: model.Metadata{
			Timestamp:  TimestampFromPath(path),
			SourcePath: path,
		},
	}

	img, err := l.ops.ReadImage(path)
	if err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("unreadable frame")
		return unit
	}

	mean, err := l.ops.MeanIntensity(img)
	if err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("intensity check failed")
		return unit
	}

	if mean < l.nightThreshold {
		l.log.Debug().Float64("mean", mean).Str("path", path).Msg("night frame")
		unit.Raw = model.RawData{Valid: false, Image: img}
		return unit
	}

	unit.Raw = model.RawData{Valid: true, Image: img}

	return unit
}

// TimestampFromPath extracts the collection timestamp token from a frame path.
// It returns the base name without extension when the acquisition marker is
// absent.
func TimestampFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	if idx := strings.Index(name, "image_"); idx >= 0 {
		return name[idx+len("image_"):]
	}

	return name
}
