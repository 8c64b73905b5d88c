package model

import "image"

// DiskEntryName is the name of the synthetic first history entry that exposes
// the untouched on-disk image to consolidation lookups.
const DiskEntryName = "Disk"

// Metadata identifies one collection event's raw file on disk. It is created
// by the loader and never mutated.
type Metadata struct {
	// Timestamp is the collection time token, YYYY-MM-DD HH_MM_SS.
	Timestamp string
	// SourcePath is the path of the image file the event was loaded from.
	SourcePath string
}

// RawData is the loaded pixel data for one collection event.
type RawData struct {
	// Valid is false when the sample could not be loaded or failed the
	// loader's validity heuristics. Invalid samples are skipped by the
	// pipeline, never formatted.
	Valid bool
	Image image.Image
}

// DataUnit pairs the loaded data of a collection event with its metadata.
// Each unit is consumed by exactly one Format call.
type DataUnit struct {
	Raw  RawData
	Meta Metadata
}

// StageEntry is one named output in a run's history. The history is an
// ordered, append-only log; name lookups return the first match, so an entry
// can only shadow an earlier one of the same name by position in the log.
//
// The first entry of every run is named DiskEntryName and carries the
// originating DataUnit in Unit instead of a stage channel.
type StageEntry struct {
	Name    string
	Channel Channel
	Unit    *DataUnit
}

// FormattedData is the result of formatting one DataUnit: the raw data the run
// started from and every stage's output in execution order, beginning with the
// synthetic disk entry. Base shares the original image, it is never copied.
type FormattedData struct {
	Base RawData
	Proc []StageEntry
}
