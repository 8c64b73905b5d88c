// Package stages provides the concrete processing stages wired into plant
// phenotyping pipelines: colour correction, viewport adjustment, binary
// masking, history consolidation, the two per-plant segmentation stages, and
// the terminal analysis sink.
//
// Every stage delegates pixel-level work to an imaging.Ops collaborator and
// keeps only the control logic: which inputs feed which primitives, how the
// per-plant results are ordered, and what the edge-case policy is when a
// plant is not detected.
package stages
