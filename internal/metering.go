package internal

import (
	"fmt"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
)

// resolveMetering assigns a start and stop reading to every period.
//
// Boundaries that coincide with a sample are Measured. Every other start is
// Imputed by linear interpolation between the nearest preceding reading and
// the first measured boundary after it. Stops are then copied from the
// following period's start so consecutive periods share their boundary
// reading exactly.
func resolveMetering(periods []chargingPeriod, samples []MeteringSample) error {
	if len(periods) == 0 {
		return fmt.Errorf("%w: no charging periods", specs.ErrImputationImpossible)
	}

	measured := make(map[int64]MeteringSample, len(samples))
	for _, s := range samples {
		measured[s.Timestamp().UnixNano()] = s
	}

	for i := range periods {
		p := &periods[i]
		if s, ok := measured[p.start.UnixNano()]; ok {
			p.startValue = measuredValue(s)
		}
		if s, ok := measured[p.stop.UnixNano()]; ok {
			p.stopValue = measuredValue(s)
		}
	}

	// Forward pass: by the time period i is visited every earlier start is
	// resolved, so the previous period's start is the nearest preceding anchor.
	for i := range periods {
		p := &periods[i]
		if p.startValue != nil {
			continue
		}
		if p.prev == noPeriod {
			return fmt.Errorf("%w: no reading at period %d start %v", specs.ErrImputationImpossible, p.index, p.start)
		}
		previous := periods[p.prev].startValue

		// Only measured stops are set at this point.
		var following *MeteringValue
		for j := i; j != noPeriod; j = periods[j].next {
			if periods[j].stopValue != nil {
				following = periods[j].stopValue
				break
			}
		}
		if following == nil {
			return fmt.Errorf("%w: no following reading for period %d start %v", specs.ErrImputationImpossible, p.index, p.start)
		}

		imputed := interpolate(*previous, *following, p.start)
		p.startValue = &imputed
	}

	for i := range periods {
		p := &periods[i]
		if p.next != noPeriod {
			v := *periods[p.next].startValue
			p.stopValue = &v
			continue
		}
		if p.stopValue == nil {
			return fmt.Errorf("%w: no reading at session end %v", specs.ErrImputationImpossible, p.stop)
		}
	}

	return nil
}

func measuredValue(s MeteringSample) *MeteringValue {
	return &MeteringValue{
		timestamp: s.Timestamp(),
		energyWh:  s.EnergyWh(),
		kind:      MeteringValueMeasured,
	}
}

// interpolate returns the reading at t on the straight line between from and to.
func interpolate(from, to MeteringValue, t time.Time) MeteringValue {
	span := NewDecimalFromDuration(to.timestamp.Sub(from.timestamp))
	elapsed := NewDecimalFromDuration(t.Sub(from.timestamp))
	delta := to.energyWh.Sub(from.energyWh)

	energy := from.energyWh
	if !span.IsZero() {
		energy = from.energyWh.Add(delta.Mul(elapsed).Div(span))
	}

	return MeteringValue{
		timestamp: t,
		energyWh:  energy,
		kind:      MeteringValueImputed,
	}
}
