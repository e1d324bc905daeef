package internal

import (
	"sort"
	"time"
)

// noPeriod marks a missing neighbor link.
const noPeriod = -1

type MeteringValueKind int

const (
	MeteringValueMeasured MeteringValueKind = iota + 1
	MeteringValueImputed
)

func (k MeteringValueKind) ToString() string {
	switch k {
	case MeteringValueMeasured:
		return "MEASURED"
	case MeteringValueImputed:
		return "IMPUTED"
	default:
		return "UNKNOWN"
	}
}

// MeteringValue is a cumulative reading at a period boundary.
type MeteringValue struct {
	timestamp time.Time
	energyWh  Decimal
	kind      MeteringValueKind
}

func (v MeteringValue) Timestamp() time.Time {
	return v.timestamp
}

func (v MeteringValue) EnergyWh() Decimal {
	return v.energyWh
}

func (v MeteringValue) Kind() MeteringValueKind {
	return v.kind
}

// chargingPeriod is the working record of one period during a rating run.
// Periods live in a slice and refer to their neighbors by index.
type chargingPeriod struct {
	index int
	start time.Time
	stop  time.Time
	prev  int
	next  int

	startValue *MeteringValue
	stopValue  *MeteringValue

	energyWh       Decimal
	powerAverageKW Decimal

	element    *int
	components []PriceComponent
	dimensions []CdrDimension
}

func (p *chargingPeriod) duration() time.Duration {
	return p.stop.Sub(p.start)
}

// collectMarkers returns the strictly increasing instants at which a new
// charging period begins. Start is always the first marker; End is never a
// marker.
func collectMarkers(span SessionSpan, samples []MeteringSample, tariff Tariff) []time.Time {
	candidates := make([]time.Time, 0, len(samples)+2*len(tariff.Elements())+1)
	candidates = append(candidates, span.Start())
	for _, s := range samples {
		candidates = append(candidates, s.Timestamp())
	}
	candidates = append(candidates, tariff.DurationMarkers(span.Start())...)

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Before(candidates[j])
	})

	markers := make([]time.Time, 0, len(candidates))
	for _, c := range candidates {
		if c.Before(span.Start()) || !c.Before(span.End()) {
			continue
		}
		if n := len(markers); n > 0 && markers[n-1].Equal(c) {
			continue
		}
		markers = append(markers, c)
	}
	return markers
}

// buildPeriods creates one period per consecutive marker pair, numbered from
// 1, the last one stopping at end.
func buildPeriods(markers []time.Time, end time.Time) []chargingPeriod {
	periods := make([]chargingPeriod, len(markers))
	for i, start := range markers {
		stop := end
		next := noPeriod
		if i+1 < len(markers) {
			stop = markers[i+1]
			next = i + 1
		}
		prev := noPeriod
		if i > 0 {
			prev = i - 1
		}
		periods[i] = chargingPeriod{
			index: i + 1,
			start: start,
			stop:  stop,
			prev:  prev,
			next:  next,
		}
	}
	return periods
}
