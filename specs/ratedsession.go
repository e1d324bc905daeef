package specs

import "time"

// RatedSessionSpec represents the priced outcome of rating a charging session.
//
// It is the output boundary of the rating engine and the raw material of a
// Charge Detail Record. Serialization, hashing and persistence are handled by
// the consumer; the engine only guarantees that every field is populated and
// consistent.
type RatedSessionSpec struct {
	// Deterministic identifier of this rating.
	//
	// Name-based UUID over the session ID, the tariff ID and the period
	// boundaries. Rating the same session under the same tariff always
	// produces the same ID.
	ID string `json:"id"`

	// Identifier of the rated session.
	SessionID string `json:"sessionID"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Currency of every monetary total, taken from the authoritative tariff.
	Currency string `json:"currency"`

	// The single tariff actually used for rating.
	//
	// Always exactly one element, even when several candidates were supplied.
	Tariffs []TariffSpec `json:"tariffs"`

	// Contiguous partition of [Start, End) in chronological order.
	ChargingPeriods []ChargingPeriodSpec `json:"chargingPeriods"`

	// Raw energy delivered over the session in Wh (sum of period energies).
	TotalEnergyWh string `json:"totalEnergyWh"`

	// Energy billed after step-size rounding, in kWh.
	BilledEnergyKWh string `json:"billedEnergyKWh"`

	// Raw session duration (sum of period durations).
	TotalTime time.Duration `json:"totalTime"`

	// Time billed after step-size rounding.
	BilledTime time.Duration `json:"billedTime"`

	// Duration of the periods in which no energy was delivered.
	TotalParkingTime time.Duration `json:"totalParkingTime"`

	TotalEnergyCost PriceSpec `json:"totalEnergyCost"`
	TotalTimeCost   PriceSpec `json:"totalTimeCost"`
	TotalFlatCost   PriceSpec `json:"totalFlatCost"`

	// Sum of energy, time and flat costs.
	TotalCost PriceSpec `json:"totalCost"`

	// Placeholders populated by downstream invoicing logic. Always zero here.
	TotalFixedCost       PriceSpec `json:"totalFixedCost"`
	TotalParkingCost     PriceSpec `json:"totalParkingCost"`
	TotalReservationCost PriceSpec `json:"totalReservationCost"`
}

// ChargingPeriodSpec represents a sub-interval of a session priced under a
// single tariff element.
type ChargingPeriodSpec struct {
	// Position in the session, starting at 1.
	Index int `json:"index"`

	StartTimestamp time.Time `json:"startTimestamp"`
	StopTimestamp  time.Time `json:"stopTimestamp"`

	// Meter readings at the period boundaries.
	//
	// Nil only on periods supplied as input; rated periods always carry both.
	StartMeteringValue *MeteringValueSpec `json:"startMeteringValue,omitempty"`
	StopMeteringValue  *MeteringValueSpec `json:"stopMeteringValue,omitempty"`

	// Energy delivered within the period in Wh.
	EnergyWh string `json:"energyWh,omitempty"`

	// Average power over the period in kW.
	PowerAverageKW string `json:"powerAverageKW,omitempty"`

	// Zero-based index of the matched tariff element, nil when none matched.
	TariffElement *int `json:"tariffElement,omitempty"`

	// Price components of the matched element, one per kind, in kind order
	// ENERGY, TIME, FLAT, PARKING_TIME.
	PriceComponents []PriceComponentSpec `json:"priceComponents,omitempty"`

	// Billable quantities recorded for this period.
	Dimensions []CdrDimensionSpec `json:"dimensions,omitempty"`
}

// MeteringValueSpec represents a meter reading at a period boundary.
type MeteringValueSpec struct {
	Timestamp time.Time `json:"timestamp"`

	// Cumulative energy in Wh as a decimal string.
	EnergyWh string `json:"energyWh"`

	// Provenance of the reading.
	//
	// "MEASURED" when taken from a supplied sample, "IMPUTED" when linearly
	// interpolated between neighboring readings.
	Kind string `json:"kind"`
}

// CdrDimensionSpec represents one billable quantity of a charging period.
type CdrDimensionSpec struct {
	// Dimension kind: "ENERGY" (volume in kWh) or "TIME" (volume in hours).
	Type string `json:"type"`

	// Quantity as a decimal string.
	Volume string `json:"volume"`
}

// PriceSpec represents a monetary amount excluding VAT.
type PriceSpec struct {
	// Amount as a decimal string, e.g. "1.50".
	ExclVAT string `json:"exclVAT"`

	// ISO 4217 currency code.
	Currency string `json:"currency"`
}
