package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-phenotype/pkg/pipeline/model"
)

// Config is the immutable description of a pipeline: its ordered stage list.
// It is validated once, by New; a config that fails validation cannot be run.
type Config struct {
	Stages []model.Stage
}

// Pipeline formats collection-event data units according to a validated
// configuration. All fields are read-only after New, so a single pipeline may
// format many units concurrently.
type Pipeline struct {
	cfg     Config
	keys    []string
	metrics []metricRecorder
	log     zerolog.Logger
	hooks   options
}

// New creates a pipeline from cfg, or fails with a construction error when
// the stage sequence is empty or a consecutive pair is incompatible.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	pipe := &Pipeline{
		cfg: cfg,
		log: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(pipe)
	}

	if len(cfg.Stages) == 0 {
		return nil, ErrEmptyPipeline
	}

	for i := 1; i < len(cfg.Stages); i++ {
		prev, curr := cfg.Stages[i-1], cfg.Stages[i]
		if !compatible(prev, curr) {
			return nil, errors.Wrapf(ErrIncompatibleStages,
				"%s produces %s but %s consumes %s",
				prev.Name(), prev.OutputKind(), curr.Name(), curr.InputKind())
		}
	}

	pipe.keys = stageKeys(cfg.Stages)

	err := pipe.buildChain()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build stage chain graph")
	}

	return pipe, nil
}

// IsCompatible reports whether the stage sequence forms a valid pipeline:
// non-empty, and every consecutive pair compatible. A pair is compatible when
// the downstream stage declares snapshot input or consumes exactly the kind
// the upstream stage produces. A single stage is trivially compatible.
func IsCompatible(stages []model.Stage) bool {
	if len(stages) == 0 {
		return false
	}

	for i := 1; i < len(stages); i++ {
		if !compatible(stages[i-1], stages[i]) {
			return false
		}
	}

	return true
}

func compatible(prev, curr model.Stage) bool {
	return curr.InputKind() == model.KindSnapshot || prev.OutputKind() == curr.InputKind()
}

// stageKeys assigns each stage a unique graph key. Stage names may repeat
// within one pipeline (two consolidations, say), so repeats get an index
// suffix.
func stageKeys(stages []model.Stage) []string {
	keys := make([]string, len(stages))
	seen := make(map[string]int, len(stages))

	for i, stage := range stages {
		name := stage.Name()
		seen[name]++
		if seen[name] > 1 {
			keys[i] = fmt.Sprintf("%s#%d", name, seen[name])
		} else {
			keys[i] = name
		}
	}

	return keys
}

// Format passes one data unit through the pipeline and returns the formatted
// result. Units whose raw data is invalid are skipped before any stage runs;
// the returned error wraps ErrInvalidInput and names the unit's source path.
func (p *Pipeline) Format(unit model.DataUnit) (model.FormattedData, error) {
	log := p.log.With().Str("source", unit.Meta.SourcePath).Logger()
	log.Info().Msg("processing unit")

	if !unit.Raw.Valid {
		log.Warn().Msg("skipping invalid input")

		return model.FormattedData{}, errors.Wrap(ErrInvalidInput, unit.Meta.SourcePath)
	}

	var running model.Channel = model.SingleImage{Image: unit.Raw.Image}

	history := make([]model.StageEntry, 0, len(p.cfg.Stages)+1)
	history = append(history, model.StageEntry{Name: model.DiskEntryName, Unit: &unit})

	for i, stage := range p.cfg.Stages {
		if stage.InputKind() == model.KindSnapshot {
			running = model.Snapshot{History: history}
		}

		start := time.Now()

		out, err := stage.Invoke(running)
		if err != nil {
			return model.FormattedData{}, errors.Wrapf(err, "stage %s failed for %s", p.keys[i], unit.Meta.SourcePath)
		}

		if out == nil || out.Kind() != stage.OutputKind() {
			return model.FormattedData{}, errors.Wrapf(ErrKindMismatch,
				"stage %s declared %s", p.keys[i], stage.OutputKind())
		}

		p.record(i, time.Since(start))
		log.Debug().Str("stage", p.keys[i]).Dur("elapsed", time.Since(start)).Msg("stage done")

		history = append(history, model.StageEntry{Name: stage.Name(), Channel: out})
		running = out
	}

	return model.FormattedData{Base: unit.Raw, Proc: history}, nil
}

// FormatSet applies Format to each unit in input order and collects the
// results. Invalid units are dropped; the relative order of the remaining
// results matches the input. Any other stage failure aborts the set, since it
// points at a broken configuration rather than a bad sample.
func (p *Pipeline) FormatSet(units []model.DataUnit) ([]model.FormattedData, error) {
	log := p.log.With().Str("run_id", uuid.NewString()).Logger()

	done := make([]model.FormattedData, 0, len(units))

	for i, unit := range units {
		log.Info().Int("unit", i).Int("total", len(units)).Msg("formatting unit")

		formatted, err := p.Format(unit)
		if errors.Is(err, ErrInvalidInput) {
			continue
		}
		if err != nil {
			return nil, err
		}

		done = append(done, formatted)
	}

	return done, nil
}

// FormatSetConcurrent is FormatSet as a parallel map. Each unit is formatted
// against an independent history buffer, so units only share the read-only
// configuration; limit bounds the number of workers (0 means unbounded).
// Results keep the relative order of their units.
func (p *Pipeline) FormatSetConcurrent(ctx context.Context, units []model.DataUnit, limit int) ([]model.FormattedData, error) {
	log := p.log.With().Str("run_id", uuid.NewString()).Logger()
	log.Info().Int("total", len(units)).Int("limit", limit).Msg("formatting unit set")

	grp, _ := errgroup.WithContext(ctx)
	if limit > 0 {
		grp.SetLimit(limit)
	}

	results := make([]*model.FormattedData, len(units))

	for i := range units {
		i := i

		grp.Go(func() error {
			formatted, err := p.Format(units[i])
			if errors.Is(err, ErrInvalidInput) {
				return nil
			}
			if err != nil {
				return err
			}

			results[i] = &formatted

			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return nil, err
	}

	done := make([]model.FormattedData, 0, len(units))
	for _, res := range results {
		if res != nil {
			done = append(done, *res)
		}
	}

	return done, nil
}
