package dataset

import "errors"

var (
	// ErrNoData is returned when the source holds no school rows.
	ErrNoData = errors.New("no school data")

	// ErrUnknownSchema is returned when no schema adapter recognises the source header.
	ErrUnknownSchema = errors.New("unrecognised source schema")

	// ErrUnsupportedSource is returned for file types without a reader.
	ErrUnsupportedSource = errors.New("unsupported data source")
)
