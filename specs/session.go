package specs

import "time"

// SessionSpec represents a completed charging session submitted for rating.
//
// A session is the input boundary of the rating engine. It carries the time
// span the vehicle was connected, whatever energy readings the charge point
// reported, and the tariffs the CPO associated with the session. The rating
// engine partitions the span into charging periods and prices each one.
type SessionSpec struct {
	// Identifier of the session as assigned by the CPO.
	//
	// Used to derive the deterministic identifier of the rated session, so the
	// same session rated twice under the same tariff yields the same ID.
	ID string `json:"id"`

	// Instant the session started (vehicle connected / authorized).
	//
	// Inclusive lower bound of the rated interval. Must be before End.
	Start time.Time `json:"start"`

	// Instant the session ended.
	//
	// Exclusive upper bound of the last charging period. Never becomes a
	// period boundary itself; it only terminates the final period.
	End time.Time `json:"end"`

	// IANA time zone of the charging location, e.g. "Europe/Berlin".
	//
	// Time-of-day, date and day-of-week tariff restrictions are evaluated in
	// this location. When empty, the location carried by Start is used.
	TimeZone string `json:"timeZone,omitempty"`

	// Energy meter readings reported during the session.
	//
	// Cumulative readings in Wh, not deltas. Need not be sorted; the engine
	// orders them by timestamp. The series must contain readings at both
	// Start and End.
	MeteringSamples []MeteringSampleSpec `json:"meteringSamples,omitempty"`

	// Two-point signed meter data (start and stop readings).
	//
	// Used to source metering samples when none are supplied explicitly.
	SignedData *SignedMeterDataSpec `json:"signedData,omitempty"`

	// Charging periods already attached to the session by the CPO.
	//
	// When neither samples nor signed data exist, the ENERGY dimension of the
	// last period is used as the total session energy, paired with a zero
	// reading at Start.
	ChargingPeriods []ChargingPeriodSpec `json:"chargingPeriods,omitempty"`

	// Tariffs associated with the session.
	//
	// Used when the caller does not supply candidate tariffs explicitly. Only
	// the first tariff is authoritative.
	Tariffs []TariffSpec `json:"tariffs,omitempty"`
}

// MeteringSampleSpec represents a single cumulative energy meter reading.
type MeteringSampleSpec struct {
	// Instant the reading was taken.
	Timestamp time.Time `json:"timestamp"`

	// Cumulative energy in Wh as a decimal string.
	//
	// Examples: "0", "1250", "5000.5".
	EnergyWh string `json:"energyWh"`
}

// SignedMeterDataSpec carries the plain-text start and stop readings of a
// session's signed meter data.
//
// The readings are cumulative Wh decimal strings taken at session Start and
// End respectively. Signature verification is the caller's concern.
type SignedMeterDataSpec struct {
	StartValue string `json:"startValue"`
	StopValue  string `json:"stopValue"`
}

// NewMeteringSample creates a metering sample at the given instant.
func NewMeteringSample(energyWh string, timestamp time.Time) MeteringSampleSpec {
	return MeteringSampleSpec{
		Timestamp: timestamp,
		EnergyWh:  energyWh,
	}
}
