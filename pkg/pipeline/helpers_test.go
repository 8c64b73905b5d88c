package pipeline_test

import (
	"image"

	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// fakeStage is a configurable stage: declared kinds for compatibility checks
// and a pluggable body for formatting tests.
type fakeStage struct {
	name string
	in   model.ChannelKind
	out  model.ChannelKind
	fn   func(model.Channel) (model.Channel, error)
}

func (s *fakeStage) Name() string                  { return s.name }
func (s *fakeStage) InputKind() model.ChannelKind  { return s.in }
func (s *fakeStage) OutputKind() model.ChannelKind { return s.out }

func (s *fakeStage) Invoke(in model.Channel) (model.Channel, error) {
	if s.fn != nil {
		return s.fn(in)
	}

	switch s.out {
	case model.KindSingleImage:
		return model.SingleImage{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}, nil
	case model.KindDoubleImage:
		return model.DoubleImage{}, nil
	case model.KindSegmentation:
		return model.Segmentation{}, nil
	default:
		return model.Snapshot{}, nil
	}
}

func passthrough(name string) *fakeStage {
	return &fakeStage{
		name: name,
		in:   model.KindSingleImage,
		out:  model.KindSingleImage,
		fn: func(in model.Channel) (model.Channel, error) {
			return in, nil
		},
	}
}

func validUnit(path string) model.DataUnit {
	return model.DataUnit{
		Raw:  model.RawData{Valid: true, Image: image.NewRGBA(image.Rect(0, 0, 4, 4))},
		Meta: model.Metadata{SourcePath: path},
	}
}

func invalidUnit(path string) model.DataUnit {
	return model.DataUnit{
		Raw:  model.RawData{Valid: false},
		Meta: model.Metadata{SourcePath: path},
	}
}
