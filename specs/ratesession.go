package specs

// RateSession partitions a completed charging session into charging periods
// and prices each period under the authoritative tariff.
//
// Process:
//  1. Source metering samples (argument, session samples, signed data, or
//     last charging period energy) and select the authoritative tariff
//     (first of the candidates, or of the session's own tariffs)
//  2. Collect time markers: sample timestamps plus Start+MinDuration and
//     Start+MaxDuration of every tariff element
//  3. Build one charging period per consecutive marker pair, the last one
//     ending at End
//  4. Resolve boundary readings, imputing missing ones by linear
//     interpolation in time
//  5. Match each period to the first tariff element whose restrictions hold
//  6. Accumulate billed quantities into step-size-rounded tiers and total them
//
// Returns a fully populated RatedSessionSpec, or a *RatingFailedError whose
// cause is one of the Err* kinds in this package. Never both.
//
// extrapolateOngoing is reserved for rating sessions still in progress and
// is not implemented: passing true fails with ErrExtrapolationUnsupported.
//
// This is the spec-level interface using only primitive types.
// See internal.RateSession for the reference implementation.
type RateSession func(
	session SessionSpec,
	samples []MeteringSampleSpec,
	tariffs []TariffSpec,
	extrapolateOngoing bool,
) (RatedSessionSpec, error)
