package internal

import (
	"fmt"
	"strings"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
	"github.com/google/uuid"
)

// ratedSessionNamespace scopes the name-based UUIDs of rated sessions.
var ratedSessionNamespace = uuid.MustParse("8f3c2b1e-6a4d-5e7f-9b0a-1c2d3e4f5a6b")

// RateSession implements specs.RateSession.
// Converts specs to domain objects, rates, and converts back to specs.
func RateSession(
	sessionSpec specs.SessionSpec,
	sampleSpecs []specs.MeteringSampleSpec,
	tariffSpecs []specs.TariffSpec,
	extrapolateOngoing bool,
) (specs.RatedSessionSpec, error) {
	if extrapolateOngoing {
		return specs.RatedSessionSpec{}, &specs.RatingFailedError{Cause: specs.ErrExtrapolationUnsupported}
	}

	tariff, err := selectTariff(sessionSpec, tariffSpecs)
	if err != nil {
		return specs.RatedSessionSpec{}, &specs.RatingFailedError{Cause: err}
	}

	session, err := NewSession(sessionSpec, sampleSpecs)
	if err != nil {
		return specs.RatedSessionSpec{}, &specs.RatingFailedError{Cause: err}
	}

	rated, err := rate(session, tariff)
	if err != nil {
		return specs.RatedSessionSpec{}, &specs.RatingFailedError{Cause: err}
	}

	return rated.ToSpec(), nil
}

// selectTariff returns the authoritative tariff: the first candidate if any
// were supplied, otherwise the first tariff attached to the session.
func selectTariff(session specs.SessionSpec, candidates []specs.TariffSpec) (Tariff, error) {
	if len(candidates) == 0 {
		candidates = session.Tariffs
	}
	if len(candidates) == 0 {
		return Tariff{}, specs.ErrNoTariffAvailable
	}
	return NewTariff(candidates[0])
}

// rate partitions the session into charging periods and prices them.
// This is the private domain-level function that operates on domain objects.
//
//  1. Collect markers and build the period sequence
//  2. Resolve start/stop readings, imputing where none was measured
//  3. Derive energy and average power per period
//  4. Match each period to the first applicable tariff element
//  5. Accumulate billable quantities and compute rounded totals
func rate(session Session, tariff Tariff) (RatedSession, error) {
	markers := collectMarkers(session.Span, session.Samples, tariff)
	periods := buildPeriods(markers, session.Span.End())

	if err := resolveMetering(periods, session.Samples); err != nil {
		return RatedSession{}, err
	}

	accumulator := newCostAccumulator()
	for i := range periods {
		p := &periods[i]

		p.energyWh = p.stopValue.EnergyWh().Sub(p.startValue.EnergyWh())
		hours := NewDecimalFromDuration(p.duration()).Div(secondsPerHour)
		p.powerAverageKW = p.energyWh.Div(wattHoursPerKWh).Div(hours)

		facts := PeriodFacts{
			Start:          p.start.In(session.Location),
			Elapsed:        p.start.Sub(session.Span.Start()),
			EnergyKWh:      p.energyWh.Div(wattHoursPerKWh),
			PowerAverageKW: p.powerAverageKW,
		}
		if idx, ok := tariff.Match(facts); ok {
			element := idx
			p.element = &element
			p.components = tariff.Elements()[idx].Components()
		}

		accumulator.addPeriod(p)
	}

	totals, err := accumulator.totals()
	if err != nil {
		return RatedSession{}, err
	}
	return assemble(session, tariff, periods, totals), nil
}

// RatedSession is the immutable outcome of a rating run.
type RatedSession struct {
	ID       string
	Session  Session
	Tariff   Tariff
	Periods  []ChargingPeriod
	Totals   CostTotals
	Currency Currency
}

// ChargingPeriod is a finished period, with its working links dropped.
type ChargingPeriod struct {
	Index          int
	Start          time.Time
	Stop           time.Time
	StartValue     MeteringValue
	StopValue      MeteringValue
	EnergyWh       Decimal
	PowerAverageKW Decimal
	TariffElement  *int
	Components     []PriceComponent
	Dimensions     []CdrDimension
}

func (p ChargingPeriod) Duration() time.Duration {
	return p.Stop.Sub(p.Start)
}

func assemble(session Session, tariff Tariff, working []chargingPeriod, totals CostTotals) RatedSession {
	periods := make([]ChargingPeriod, len(working))
	for i, p := range working {
		periods[i] = ChargingPeriod{
			Index:          p.index,
			Start:          p.start,
			Stop:           p.stop,
			StartValue:     *p.startValue,
			StopValue:      *p.stopValue,
			EnergyWh:       p.energyWh,
			PowerAverageKW: p.powerAverageKW,
			TariffElement:  p.element,
			Components:     p.components,
			Dimensions:     p.dimensions,
		}
	}

	return RatedSession{
		ID:       computeRatedSessionID(session.ID, tariff.ID(), periods),
		Session:  session,
		Tariff:   tariff,
		Periods:  periods,
		Totals:   totals,
		Currency: tariff.Currency(),
	}
}

// computeRatedSessionID generates a deterministic ID from the rating's key fields.
func computeRatedSessionID(sessionID SessionID, tariffID TariffID, periods []ChargingPeriod) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s", sessionID.ToString(), tariffID.ToString())
	for _, p := range periods {
		fmt.Fprintf(&b, "|%s", p.Start.UTC().Format(time.RFC3339Nano))
	}
	if n := len(periods); n > 0 {
		fmt.Fprintf(&b, "|%s", periods[n-1].Stop.UTC().Format(time.RFC3339Nano))
	}
	return uuid.NewSHA1(ratedSessionNamespace, []byte(b.String())).String()
}

func (r RatedSession) ToSpec() specs.RatedSessionSpec {
	currency := r.Currency.ToString()
	price := func(d Decimal) specs.PriceSpec {
		return specs.PriceSpec{ExclVAT: d.String(), Currency: currency}
	}

	periods := make([]specs.ChargingPeriodSpec, len(r.Periods))
	for i, p := range r.Periods {
		periods[i] = p.ToSpec()
	}

	return specs.RatedSessionSpec{
		ID:                   r.ID,
		SessionID:            r.Session.ID.ToString(),
		Start:                r.Session.Span.Start(),
		End:                  r.Session.Span.End(),
		Currency:             currency,
		Tariffs:              []specs.TariffSpec{r.Tariff.ToSpec()},
		ChargingPeriods:      periods,
		TotalEnergyWh:        r.Totals.TotalEnergyWh.String(),
		BilledEnergyKWh:      r.Totals.BilledEnergyKWh.String(),
		TotalTime:            r.Totals.TotalTime,
		BilledTime:           r.Totals.BilledTime,
		TotalParkingTime:     r.Totals.TotalParkingTime,
		TotalEnergyCost:      price(r.Totals.TotalEnergyCost),
		TotalTimeCost:        price(r.Totals.TotalTimeCost),
		TotalFlatCost:        price(r.Totals.TotalFlatCost),
		TotalCost:            price(r.Totals.TotalCost),
		TotalFixedCost:       price(Decimal{}),
		TotalParkingCost:     price(Decimal{}),
		TotalReservationCost: price(Decimal{}),
	}
}

func (p ChargingPeriod) ToSpec() specs.ChargingPeriodSpec {
	var components []specs.PriceComponentSpec
	for _, c := range p.Components {
		components = append(components, c.ToSpec())
	}

	var dimensions []specs.CdrDimensionSpec
	for _, d := range p.Dimensions {
		dimensions = append(dimensions, d.ToSpec())
	}

	var element *int
	if p.TariffElement != nil {
		idx := *p.TariffElement
		element = &idx
	}

	return specs.ChargingPeriodSpec{
		Index:              p.Index,
		StartTimestamp:     p.Start,
		StopTimestamp:      p.Stop,
		StartMeteringValue: meteringValueSpec(p.StartValue),
		StopMeteringValue:  meteringValueSpec(p.StopValue),
		EnergyWh:           p.EnergyWh.String(),
		PowerAverageKW:     p.PowerAverageKW.String(),
		TariffElement:      element,
		PriceComponents:    components,
		Dimensions:         dimensions,
	}
}

func meteringValueSpec(v MeteringValue) *specs.MeteringValueSpec {
	return &specs.MeteringValueSpec{
		Timestamp: v.Timestamp(),
		EnergyWh:  v.EnergyWh().String(),
		Kind:      v.Kind().ToString(),
	}
}
