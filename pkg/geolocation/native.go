package geolocation

import "time"

// Native is the platform location provider. Both calls return immediately
// and answer later through exactly one of their callbacks. Outstanding calls
// cannot be cancelled.
type Native interface {
	// RequestPermission checks (and if needed asks for) location permission.
	RequestPermission(onGranted func(), onDenied func())
	// FetchLocation obtains a fix. The provider may answer with its last
	// known fix when useLastLocation is set or the fix is younger than maximumAge.
	FetchLocation(maximumAge time.Duration, useLastLocation bool, onSuccess func(RawPosition), onFailure func(RawError))
}

// SuccessFunc receives the resolved position.
type SuccessFunc func(Position)

// ErrorFunc receives the terminal error of a request.
type ErrorFunc func(*PositionError)

// Request outcomes, as recorded by a Recorder and on trace spans.
const (
	OutcomeCacheHit         = "cache_hit"
	OutcomeSuccess          = "success"
	OutcomeTimeout          = "timeout"
	OutcomePermissionDenied = "permission_denied"
	OutcomeError            = "error"
	OutcomeCancelled        = "cancelled"
)

// Recorder receives request metrics. telemetry.Metrics implements it.
type Recorder interface {
	// ObserveRequest records a resolved request and how long it took.
	ObserveRequest(outcome string, elapsed time.Duration)
	// ObserveDiscarded records a completion that arrived after the request
	// had already resolved. source is the outcome the completion would have had.
	ObserveDiscarded(source string)
}
