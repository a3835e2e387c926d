// telemetry/model.go
package telemetry

import "time"

// ReconstructionFailure records one cache entry that could not be turned
// into a domain view. Failures are skipped, not fatal, so this trail is the
// only place they remain visible.
type ReconstructionFailure struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Namespace string    `json:"namespace"`
	Key       string    `json:"key"`
	Reason    string    `json:"reason"`
}
