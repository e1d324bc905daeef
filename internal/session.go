package internal

import (
	"fmt"
	"sort"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
)

// Session is the validated, immutable input of one rating run.
type Session struct {
	ID       SessionID
	Span     SessionSpan
	Location *time.Location
	Samples  []MeteringSample
}

// NewSession validates the session span and establishes its metering series.
//
// Samples are sourced in order of preference:
//  1. the explicit samples argument
//  2. the session's own metering samples
//  3. the session's signed meter data (readings at Start and End)
//  4. the ENERGY dimension of the session's last charging period, paired
//     with a zero reading at Start
func NewSession(spec specs.SessionSpec, samples []specs.MeteringSampleSpec) (Session, error) {
	span, err := NewSessionSpan(spec.Start, spec.End)
	if err != nil {
		return Session{}, err
	}

	location := spec.Start.Location()
	if spec.TimeZone != "" {
		location, err = time.LoadLocation(spec.TimeZone)
		if err != nil {
			return Session{}, fmt.Errorf("%w: time zone %q: %v", specs.ErrInvalidSession, spec.TimeZone, err)
		}
	}

	sourced, err := sourceMeteringSamples(spec, samples)
	if err != nil {
		return Session{}, err
	}

	series, err := newMeteringSeries(sourced, span)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:       NewSessionID(spec.ID),
		Span:     span,
		Location: location,
		Samples:  series,
	}, nil
}

type SessionID struct {
	value string
}

// NewSessionID accepts an empty ID; sessions rated ad hoc may not have one yet.
func NewSessionID(value string) SessionID {
	return SessionID{value: value}
}

func (id SessionID) ToString() string {
	return id.value
}

// SessionSpan is the half-open interval [Start, End) a session covers.
type SessionSpan struct {
	start time.Time
	end   time.Time
}

func NewSessionSpan(start, end time.Time) (SessionSpan, error) {
	if start.IsZero() {
		return SessionSpan{}, fmt.Errorf("%w: start is required", specs.ErrInvalidSession)
	}
	if end.IsZero() {
		return SessionSpan{}, fmt.Errorf("%w: end is required", specs.ErrInvalidSession)
	}
	if !start.Before(end) {
		return SessionSpan{}, fmt.Errorf("%w: start must be before end (start=%v, end=%v)", specs.ErrInvalidSession, start, end)
	}
	return SessionSpan{start: start, end: end}, nil
}

func (s SessionSpan) Start() time.Time {
	return s.start
}

func (s SessionSpan) End() time.Time {
	return s.end
}

func (s SessionSpan) Duration() time.Duration {
	return s.end.Sub(s.start)
}

// MeteringSample is a cumulative energy reading in Wh.
type MeteringSample struct {
	timestamp time.Time
	energyWh  Decimal
}

func NewMeteringSample(spec specs.MeteringSampleSpec) (MeteringSample, error) {
	if spec.Timestamp.IsZero() {
		return MeteringSample{}, fmt.Errorf("timestamp is required")
	}
	energy, err := NewDecimal(spec.EnergyWh)
	if err != nil {
		return MeteringSample{}, fmt.Errorf("invalid energy: %w", err)
	}
	if energy.IsNegative() {
		return MeteringSample{}, fmt.Errorf("energy cannot be negative: %s", spec.EnergyWh)
	}
	return MeteringSample{timestamp: spec.Timestamp, energyWh: energy}, nil
}

func (s MeteringSample) Timestamp() time.Time {
	return s.timestamp
}

func (s MeteringSample) EnergyWh() Decimal {
	return s.energyWh
}

func sourceMeteringSamples(spec specs.SessionSpec, samples []specs.MeteringSampleSpec) ([]specs.MeteringSampleSpec, error) {
	if len(samples) > 0 {
		return samples, nil
	}
	if len(spec.MeteringSamples) > 0 {
		return spec.MeteringSamples, nil
	}
	if spec.SignedData != nil && spec.SignedData.StartValue != "" && spec.SignedData.StopValue != "" {
		return []specs.MeteringSampleSpec{
			specs.NewMeteringSample(spec.SignedData.StartValue, spec.Start),
			specs.NewMeteringSample(spec.SignedData.StopValue, spec.End),
		}, nil
	}
	if n := len(spec.ChargingPeriods); n > 0 {
		for _, dimension := range spec.ChargingPeriods[n-1].Dimensions {
			if dimension.Type != DimensionEnergy.ToString() {
				continue
			}
			kWh, err := NewDecimal(dimension.Volume)
			if err != nil {
				return nil, fmt.Errorf("%w: last charging period energy: %v", specs.ErrMissingMeteringData, err)
			}
			return []specs.MeteringSampleSpec{
				specs.NewMeteringSample("0", spec.Start),
				specs.NewMeteringSample(kWh.Mul(wattHoursPerKWh).String(), spec.End),
			}, nil
		}
	}
	return nil, nil
}

// newMeteringSeries orders the samples and checks that they form a
// non-decreasing series anchored at both ends of the span.
func newMeteringSeries(sampleSpecs []specs.MeteringSampleSpec, span SessionSpan) ([]MeteringSample, error) {
	samples := make([]MeteringSample, 0, len(sampleSpecs))
	for i, s := range sampleSpecs {
		sample, err := NewMeteringSample(s)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", specs.ErrMissingMeteringData, i, err)
		}
		samples = append(samples, sample)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].timestamp.Before(samples[j].timestamp)
	})

	series := make([]MeteringSample, 0, len(samples))
	for _, sample := range samples {
		if n := len(series); n > 0 {
			last := series[n-1]
			if sample.timestamp.Equal(last.timestamp) {
				if sample.energyWh.Cmp(last.energyWh) != 0 {
					return nil, fmt.Errorf("%w: conflicting readings %s and %s at %v",
						specs.ErrNonMonotonicMetering, last.energyWh, sample.energyWh, sample.timestamp)
				}
				continue
			}
			if sample.energyWh.Cmp(last.energyWh) < 0 {
				return nil, fmt.Errorf("%w: reading %s at %v is below %s at %v",
					specs.ErrNonMonotonicMetering, sample.energyWh, sample.timestamp, last.energyWh, last.timestamp)
			}
		}
		series = append(series, sample)
	}

	if len(series) < 2 {
		return nil, fmt.Errorf("%w: need at least two distinct samples, got %d", specs.ErrMissingMeteringData, len(series))
	}

	first, last := series[0].timestamp, series[len(series)-1].timestamp
	if first.Before(span.Start()) || last.After(span.End()) {
		return nil, fmt.Errorf("%w: samples span [%v, %v] exceeds session [%v, %v]",
			specs.ErrOutOfBoundsSample, first, last, span.Start(), span.End())
	}
	if !first.Equal(span.Start()) {
		return nil, fmt.Errorf("%w: first sample at %v, session starts at %v", specs.ErrOutOfBoundsSample, first, span.Start())
	}
	if !last.Equal(span.End()) {
		return nil, fmt.Errorf("%w: last sample at %v, session ends at %v", specs.ErrOutOfBoundsSample, last, span.End())
	}

	return series, nil
}
