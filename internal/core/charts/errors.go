package charts

import "errors"

var (
	// ErrChartNotFound is returned when no chart exists for the requested id
	ErrChartNotFound = errors.New("chart not found")

	// ErrInvalidMetadata is returned when the stored metadata document does not match the expected shape
	ErrInvalidMetadata = errors.New("invalid chart metadata")
)
