package model

// Stage is a configured processing unit. It declares the channel kind it
// consumes and the kind it produces; the pipeline validates consecutive
// declarations once, at construction time, before any stage runs.
//
// Invoke must either return a channel of exactly OutputKind or an error. A
// stage holds configuration only, no per-run state: the same instance may be
// invoked for many units, possibly concurrently.
type Stage interface {
	Name() string
	InputKind() ChannelKind
	OutputKind() ChannelKind
	Invoke(in Channel) (Channel, error)
}
