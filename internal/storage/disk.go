package storage

import (
	"fmt"
	"os"
)

// sqliteSidecars are the files SQLite keeps next to a WAL-mode database.
var sqliteSidecars = []string{"-wal", "-shm", "-journal"}

// Footprint is the on-disk size of a loaded dataset and its exported snapshot.
type Footprint struct {
	SourceBytes   int64
	SnapshotBytes int64
}

// Total returns the combined size of source and snapshot.
func (f Footprint) Total() int64 { return f.SourceBytes + f.SnapshotBytes }

// MeasureFootprint sizes the dataset file at source and the snapshot database at
// snapshot, including its WAL sidecar files. Missing files count as zero so a
// server that has never exported still reports its source.
func MeasureFootprint(source, snapshot string) (Footprint, error) {
	var fp Footprint
	n, err := fileSize(source)
	if err != nil {
		return Footprint{}, fmt.Errorf("source %s: %w", source, err)
	}
	fp.SourceBytes = n
	if snapshot == "" {
		return fp, nil
	}
	for _, suffix := range append([]string{""}, sqliteSidecars...) {
		n, err := fileSize(snapshot + suffix)
		if err != nil {
			return Footprint{}, fmt.Errorf("snapshot %s: %w", snapshot+suffix, err)
		}
		fp.SnapshotBytes += n
	}
	return fp, nil
}

func fileSize(path string) (int64, error) {
	if path == "" {
		return 0, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	return info.Size(), nil
}
