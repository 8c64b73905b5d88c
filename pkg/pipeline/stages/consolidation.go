package stages

import (
	"image"

	"github.com/pkg/errors"

	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// ConsolidationName is the history name of every consolidation stage.
const ConsolidationName = "Consolidation"

// ConsolidationConfig selects which prior stage outputs to repackage and into
// which channel variant.
type ConsolidationConfig struct {
	// StageNames are the history names to look up, in output order. One name
	// for a single-image output, two for a double-image output. The name
	// model.DiskEntryName resolves to the untouched on-disk image.
	StageNames []string
	// Output is the channel variant to produce: model.KindSingleImage or
	// model.KindDoubleImage.
	Output model.ChannelKind
}

// Consolidation reaches back into the run history and repackages one or two
// named prior outputs as a plain image channel for the next stage.
type Consolidation struct {
	cfg ConsolidationConfig
}

// NewConsolidation builds a consolidation stage, rejecting configurations
// whose output kind and name count do not line up.
func NewConsolidation(cfg ConsolidationConfig) (*Consolidation, error) {
	switch cfg.Output {
	case model.KindSingleImage:
		if len(cfg.StageNames) != 1 {
			return nil, errors.Wrapf(ErrBadConfig, "single-image consolidation wants 1 stage name, got %d", len(cfg.StageNames))
		}
	case model.KindDoubleImage:
		if len(cfg.StageNames) != 2 {
			return nil, errors.Wrapf(ErrBadConfig, "double-image consolidation wants 2 stage names, got %d", len(cfg.StageNames))
		}
	default:
		return nil, errors.Wrapf(ErrBadConfig, "consolidation cannot output %s", cfg.Output)
	}

	return &Consolidation{cfg: cfg}, nil
}

func (s *Consolidation) Name() string                  { return ConsolidationName }
func (s *Consolidation) InputKind() model.ChannelKind  { return model.KindSnapshot }
func (s *Consolidation) OutputKind() model.ChannelKind { return s.cfg.Output }

func (s *Consolidation) Invoke(in model.Channel) (model.Channel, error) {
	snap, ok := in.(model.Snapshot)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedChannel, "%s wants %s, got %s", s.Name(), s.InputKind(), in.Kind())
	}

	if s.cfg.Output == model.KindSingleImage {
		img, err := findOutput(s.cfg.StageNames[0], snap.History)
		if err != nil {
			return nil, err
		}

		return model.SingleImage{Image: img}, nil
	}

	primary, err := findOutput(s.cfg.StageNames[0], snap.History)
	if err != nil {
		return nil, err
	}

	secondary, err := findOutput(s.cfg.StageNames[1], snap.History)
	if err != nil {
		return nil, err
	}

	tag, err := sourceTag(snap.History)
	if err != nil {
		return nil, err
	}

	return model.DoubleImage{Primary: primary, Secondary: secondary, Tag: tag}, nil
}

// findOutput returns the image of the first history entry named name. The
// disk entry resolves to the original raw image; for stage entries the
// primary image is taken. A missing name is an error, never a placeholder.
func findOutput(name string, history []model.StageEntry) (image.Image, error) {
	for _, entry := range history {
		if entry.Name != name {
			continue
		}

		if entry.Unit != nil {
			return entry.Unit.Raw.Image, nil
		}

		switch ch := entry.Channel.(type) {
		case model.SingleImage:
			return ch.Image, nil
		case model.DoubleImage:
			return ch.Primary, nil
		default:
			return nil, errors.Wrapf(ErrStageNotFound, "%s output carries no image", name)
		}
	}

	return nil, errors.Wrap(ErrStageNotFound, name)
}

// sourceTag recovers the active sample's source path from the disk entry.
func sourceTag(history []model.StageEntry) (string, error) {
	if len(history) == 0 || history[0].Unit == nil {
		return "", errors.Wrap(ErrStageNotFound, model.DiskEntryName)
	}

	return history[0].Unit.Meta.SourcePath, nil
}
