package specs

import (
	"errors"
	"fmt"
)

// Error kinds reported by RateSession.
//
// Every kind is determined purely by the input: retrying with the same
// session and tariffs fails the same way. Match with errors.Is.
var (
	// Fewer than two metering samples could be established.
	ErrMissingMeteringData = errors.New("missing metering data")

	// The metering series does not start at session Start and end at session
	// End, or a sample lies outside [Start, End].
	ErrOutOfBoundsSample = errors.New("metering sample out of session bounds")

	// No candidate tariff was supplied and none is attached to the session.
	ErrNoTariffAvailable = errors.New("no tariff available")

	// A boundary reading could not be interpolated for lack of a following
	// anchor.
	ErrImputationImpossible = errors.New("metering value imputation impossible")

	// The session span is missing or empty.
	ErrInvalidSession = errors.New("invalid session")

	// The authoritative tariff is malformed.
	ErrInvalidTariff = errors.New("invalid tariff")

	// Cumulative readings decrease over time, or disagree at one instant.
	ErrNonMonotonicMetering = errors.New("non-monotonic metering data")

	// Rating of ongoing sessions was requested.
	ErrExtrapolationUnsupported = errors.New("extrapolation of ongoing sessions is not implemented")
)

// RatingFailedError is the single error type returned by RateSession.
//
// Cause carries the triggering error, which wraps one of the Err* kinds.
type RatingFailedError struct {
	Cause error
}

func (e *RatingFailedError) Error() string {
	return fmt.Sprintf("rating failed: %v", e.Cause)
}

func (e *RatingFailedError) Unwrap() error {
	return e.Cause
}
