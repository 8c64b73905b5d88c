// Package pipeline provides a linear pipeline of image-processing stages.
//
// A pipeline is built once from an ordered stage list. Construction validates
// every consecutive stage pair against the channel kinds the stages declare:
// a pair is compatible when the downstream stage consumes exactly what the
// upstream one produces, or when the downstream stage asks for a snapshot of
// the run history. A configuration that fails this check is rejected outright
// and never runs.
//
// Formatting a data unit threads a channel value through the stages in order,
// strictly sequentially, while appending every stage's named output to a
// per-run history buffer. Stages that declare snapshot input are handed the
// live history, which lets them consolidate arbitrary earlier outputs instead
// of only their immediate predecessor's.
//
// Units are independent of each other: FormatSet maps Format over a unit set
// in input order, and FormatSetConcurrent does the same map in parallel with
// a bounded number of workers, since no unit's outcome depends on another's.
package pipeline
