package specs

// TariffSpec represents a CPO tariff.
//
// A tariff is an ordered list of alternative pricing rules (elements). For
// each charging period the rating engine walks the elements in declaration
// order and applies the first one whose restrictions hold. Order therefore
// carries meaning: a narrower element must be declared before a broader one
// for it to ever win.
type TariffSpec struct {
	// Identifier of the tariff as assigned by the CPO.
	ID string `json:"id"`

	// ISO 4217 currency code all prices in this tariff are expressed in.
	//
	// Examples: "EUR", "USD", "SEK".
	Currency string `json:"currency"`

	// Pricing rules, in priority order. Must not be empty.
	Elements []TariffElementSpec `json:"elements"`
}

// TariffElementSpec represents one pricing rule within a tariff.
type TariffElementSpec struct {
	// Priced dimensions of this rule.
	//
	// Only the first component of each kind is meaningful; later duplicates
	// are ignored.
	PriceComponents []PriceComponentSpec `json:"priceComponents"`

	// Conditions under which this rule is active.
	//
	// A nil value means the element always matches.
	Restrictions *TariffRestrictionsSpec `json:"restrictions,omitempty"`
}

// PriceComponentSpec represents a priced dimension of a tariff element.
type PriceComponentSpec struct {
	// Kind of dimension being priced.
	//
	// One of "ENERGY", "TIME", "FLAT", "PARKING_TIME".
	Type string `json:"type"`

	// Unit price excluding VAT, as a decimal string.
	//
	// ENERGY is priced per kWh, TIME per hour, FLAT once per charging period in
	// which it applies. PARKING_TIME is accepted but not billed.
	Price string `json:"price"`

	// Rounding granularity of billed quantities.
	//
	// Billed quantities are rounded up to the next whole multiple. ENERGY step
	// sizes are in kWh, TIME step sizes in seconds. Zero disables rounding.
	StepSize int `json:"stepSize"`
}

// TariffRestrictionsSpec represents the activation conditions of a tariff
// element.
//
// All declared conditions must hold for the element to match. Time-of-day,
// date and weekday conditions are evaluated at the start of each charging
// period in the session's time zone. Duration conditions are measured from
// the session start. Energy and power conditions are evaluated against the
// charging period's own energy and average power.
//
// Only MinDuration and MaxDuration influence where charging periods are cut;
// every other field only influences which element a period matches.
type TariffRestrictionsSpec struct {
	// Time of day from which the element is active, "HH:MM", inclusive.
	StartTime string `json:"startTime,omitempty"`

	// Time of day until which the element is active, "HH:MM", exclusive.
	//
	// An EndTime before StartTime wraps past midnight, e.g. 22:00-06:00.
	EndTime string `json:"endTime,omitempty"`

	// First day the element is active, "YYYY-MM-DD", inclusive.
	StartDate string `json:"startDate,omitempty"`

	// Day the element stops being active, "YYYY-MM-DD", exclusive.
	EndDate string `json:"endDate,omitempty"`

	// Minimum period energy in kWh (inclusive), as a decimal string.
	MinKWh string `json:"minKWh,omitempty"`

	// Maximum period energy in kWh (exclusive), as a decimal string.
	MaxKWh string `json:"maxKWh,omitempty"`

	// Minimum and maximum charging current in A.
	//
	// Current cannot be derived from energy samples, so an element declaring
	// either bound never matches.
	MinCurrent string `json:"minCurrent,omitempty"`
	MaxCurrent string `json:"maxCurrent,omitempty"`

	// Minimum average period power in kW (inclusive), as a decimal string.
	MinPower string `json:"minPower,omitempty"`

	// Maximum average period power in kW (exclusive), as a decimal string.
	MaxPower string `json:"maxPower,omitempty"`

	// Minimum elapsed session time in seconds before the element applies.
	//
	// Also introduces a charging period boundary at Start + MinDuration.
	MinDuration *int `json:"minDuration,omitempty"`

	// Elapsed session time in seconds after which the element stops applying.
	//
	// Also introduces a charging period boundary at Start + MaxDuration.
	MaxDuration *int `json:"maxDuration,omitempty"`

	// Weekdays on which the element is active.
	//
	// Values: "MONDAY" through "SUNDAY". Empty means every day.
	DayOfWeek []string `json:"dayOfWeek,omitempty"`
}
