package pipeline

import "fmt"

// InvalidInputError reports a request that fails validation before any
// remote work starts.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// NoImageryError means the catalog returned zero qualifying items for the
// criteria. The caller can widen the date range or raise the cloud-cover
// threshold.
type NoImageryError struct {
	MaxCloudCover float64
}

func (e *NoImageryError) Error() string {
	return fmt.Sprintf("no imagery found below %.0f%% cloud cover; widen the date range or raise the threshold", e.MaxCloudCover)
}
