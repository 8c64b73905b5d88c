package pipeline

import "github.com/pkg/errors"

var (
	// ErrEmptyPipeline rejects a configuration with no stages.
	ErrEmptyPipeline = errors.New("pipeline must have at least one stage")
	// ErrIncompatibleStages rejects a configuration in which a stage cannot
	// consume what its predecessor produces.
	ErrIncompatibleStages = errors.New("incompatible consecutive stages")
	// ErrInvalidInput marks a data unit whose raw data failed to load; the
	// unit is skipped, no stage runs for it.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrKindMismatch reports a stage returning a channel of a different
	// kind than the one it declares.
	ErrKindMismatch = errors.New("stage output does not match declared channel kind")
)
