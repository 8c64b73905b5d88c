package pipeline_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-phenotype/pkg/pipeline"
	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

func TestNewEmpty(t *testing.T) {
	t.Parallel()

	_, err := pipeline.New(pipeline.Config{})
	require.ErrorIs(t, err, pipeline.ErrEmptyPipeline)
}

func TestNewIncompatiblePair(t *testing.T) {
	t.Parallel()

	_, err := pipeline.New(pipeline.Config{Stages: []model.Stage{
		passthrough("first"),
		&fakeStage{name: "second", in: model.KindDoubleImage, out: model.KindSegmentation},
	}})
	require.ErrorIs(t, err, pipeline.ErrIncompatibleStages)
}

func TestIsCompatible(t *testing.T) {
	t.Parallel()

	single := passthrough("single")
	segmenter := &fakeStage{name: "segmenter", in: model.KindDoubleImage, out: model.KindSegmentation}
	snapshotter := &fakeStage{name: "snapshotter", in: model.KindSnapshot, out: model.KindDoubleImage}

	assert.False(t, pipeline.IsCompatible(nil))
	assert.True(t, pipeline.IsCompatible([]model.Stage{single}))
	assert.True(t, pipeline.IsCompatible([]model.Stage{single, single}))
	assert.False(t, pipeline.IsCompatible([]model.Stage{single, segmenter}))

	// A snapshot consumer accepts any upstream.
	assert.True(t, pipeline.IsCompatible([]model.Stage{single, snapshotter}))
	assert.True(t, pipeline.IsCompatible([]model.Stage{segmenter, snapshotter}))
	assert.True(t, pipeline.IsCompatible([]model.Stage{single, snapshotter, segmenter}))
}

func TestFormatInvalidInput(t *testing.T) {
	t.Parallel()

	invoked := false
	stage := passthrough("first")
	stage.fn = func(in model.Channel) (model.Channel, error) {
		invoked = true
		return in, nil
	}

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{stage}})
	require.NoError(t, err)

	_, err = pipe.Format(invalidUnit("night.jpg"))
	require.ErrorIs(t, err, pipeline.ErrInvalidInput)
	assert.Contains(t, err.Error(), "night.jpg")
	assert.False(t, invoked)
}

func TestFormatHistory(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{
		passthrough("first"),
		passthrough("second"),
	}})
	require.NoError(t, err)

	unit := validUnit("sample.jpg")

	formatted, err := pipe.Format(unit)
	require.NoError(t, err)

	require.Len(t, formatted.Proc, 3)
	assert.Equal(t, model.DiskEntryName, formatted.Proc[0].Name)
	require.NotNil(t, formatted.Proc[0].Unit)
	assert.Equal(t, unit.Raw.Image, formatted.Proc[0].Unit.Raw.Image)
	assert.Equal(t, "first", formatted.Proc[1].Name)
	assert.Equal(t, "second", formatted.Proc[2].Name)
	assert.Equal(t, unit.Raw, formatted.Base)
}

func TestFormatSnapshotExposesHistory(t *testing.T) {
	t.Parallel()

	var sawNames []string

	snapshotter := &fakeStage{
		name: "snapshotter",
		in:   model.KindSnapshot,
		out:  model.KindSingleImage,
		fn: func(in model.Channel) (model.Channel, error) {
			snap, ok := in.(model.Snapshot)
			if !ok {
				return nil, errors.New("expected snapshot")
			}

			for _, entry := range snap.History {
				sawNames = append(sawNames, entry.Name)
			}

			return model.SingleImage{}, nil
		},
	}

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{
		passthrough("first"),
		snapshotter,
	}})
	require.NoError(t, err)

	_, err = pipe.Format(validUnit("sample.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []string{model.DiskEntryName, "first"}, sawNames)
}

func TestFormatKindMismatch(t *testing.T) {
	t.Parallel()

	liar := passthrough("liar")
	liar.fn = func(model.Channel) (model.Channel, error) {
		return model.Segmentation{}, nil
	}

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{liar}})
	require.NoError(t, err)

	_, err = pipe.Format(validUnit("sample.jpg"))
	require.ErrorIs(t, err, pipeline.ErrKindMismatch)
}

func TestFormatStageError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	broken := passthrough("broken")
	broken.fn = func(model.Channel) (model.Channel, error) {
		return nil, errBoom
	}

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{broken}})
	require.NoError(t, err)

	_, err = pipe.Format(validUnit("sample.jpg"))
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "sample.jpg")
}

func TestFormatSetSkipsInvalid(t *testing.T) {
	t.Parallel()

	tagger := &fakeStage{
		name: "tagger",
		in:   model.KindSnapshot,
		out:  model.KindDoubleImage,
		fn: func(in model.Channel) (model.Channel, error) {
			snap := in.(model.Snapshot)

			return model.DoubleImage{Tag: snap.History[0].Unit.Meta.SourcePath}, nil
		},
	}

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{tagger}})
	require.NoError(t, err)

	done, err := pipe.FormatSet([]model.DataUnit{
		validUnit("a.jpg"),
		invalidUnit("night.jpg"),
		validUnit("b.jpg"),
		invalidUnit("dusk.jpg"),
		validUnit("c.jpg"),
	})
	require.NoError(t, err)

	tags := make([]string, len(done))
	for i, formatted := range done {
		tags[i] = formatted.Proc[1].Channel.(model.DoubleImage).Tag
	}

	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, tags)
}

func TestFormatSetAbortsOnStageError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	broken := passthrough("broken")
	broken.fn = func(model.Channel) (model.Channel, error) {
		return nil, errBoom
	}

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{broken}})
	require.NoError(t, err)

	_, err = pipe.FormatSet([]model.DataUnit{validUnit("a.jpg")})
	require.ErrorIs(t, err, errBoom)
}

func TestFormatSetConcurrent(t *testing.T) {
	t.Parallel()

	tagger := &fakeStage{
		name: "tagger",
		in:   model.KindSnapshot,
		out:  model.KindDoubleImage,
		fn: func(in model.Channel) (model.Channel, error) {
			snap := in.(model.Snapshot)

			return model.DoubleImage{Tag: snap.History[0].Unit.Meta.SourcePath}, nil
		},
	}

	pipe, err := pipeline.New(pipeline.Config{Stages: []model.Stage{tagger}})
	require.NoError(t, err)

	units := []model.DataUnit{
		validUnit("a.jpg"),
		invalidUnit("night.jpg"),
		validUnit("b.jpg"),
		validUnit("c.jpg"),
		validUnit("d.jpg"),
	}

	done, err := pipe.FormatSetConcurrent(context.Background(), units, 2)
	require.NoError(t, err)

	tags := make([]string, len(done))
	for i, formatted := range done {
		tags[i] = formatted.Proc[1].Channel.(model.DoubleImage).Tag
	}

	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}, tags)
}
