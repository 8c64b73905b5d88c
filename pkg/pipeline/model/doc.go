// Package model provides the data structures shared across the pipeline
// packages. It defines the channel variants exchanged between stages, the
// stage contract itself, and the records that tie one collection event's raw
// data to the outputs accumulated while formatting it.
package model
