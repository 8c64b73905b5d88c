package stages

import "github.com/pkg/errors"

var (
	// ErrUnexpectedChannel reports a stage invoked with a channel variant it
	// does not declare. A validated pipeline never triggers it; it guards
	// direct stage use.
	ErrUnexpectedChannel = errors.New("unexpected input channel")
	// ErrStageNotFound reports a consolidation lookup for a stage name that
	// never produced output in the current run.
	ErrStageNotFound = errors.New("no output found for stage")
	// ErrBadConfig rejects a stage configuration at construction time.
	ErrBadConfig = errors.New("bad stage configuration")
)
