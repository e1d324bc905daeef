package internal

import (
	"fmt"
	"math"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
)

// PeriodFacts is what a tariff element's restrictions are evaluated against.
type PeriodFacts struct {
	// Period start in the session's location.
	Start time.Time

	// Elapsed time from the session start to the period start.
	Elapsed time.Duration

	EnergyKWh      Decimal
	PowerAverageKW Decimal
}

type TariffRestrictions struct {
	startTime   *clockTime
	endTime     *clockTime
	startDate   *civilDate
	endDate     *civilDate
	minKWh      *Decimal
	maxKWh      *Decimal
	minPower    *Decimal
	maxPower    *Decimal
	hasCurrent  bool
	minDuration *time.Duration
	maxDuration *time.Duration
	daysOfWeek  map[time.Weekday]bool
}

func NewTariffRestrictions(spec specs.TariffRestrictionsSpec) (TariffRestrictions, error) {
	var r TariffRestrictions
	var err error

	if r.startTime, err = parseOptionalClockTime(spec.StartTime); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid start time: %w", err)
	}
	if r.endTime, err = parseOptionalClockTime(spec.EndTime); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid end time: %w", err)
	}
	if r.startDate, err = parseOptionalCivilDate(spec.StartDate); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid start date: %w", err)
	}
	if r.endDate, err = parseOptionalCivilDate(spec.EndDate); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid end date: %w", err)
	}
	if r.minKWh, err = parseOptionalQuantity(spec.MinKWh); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid min kWh: %w", err)
	}
	if r.maxKWh, err = parseOptionalQuantity(spec.MaxKWh); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid max kWh: %w", err)
	}
	if r.minPower, err = parseOptionalQuantity(spec.MinPower); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid min power: %w", err)
	}
	if r.maxPower, err = parseOptionalQuantity(spec.MaxPower); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid max power: %w", err)
	}
	if _, err = parseOptionalQuantity(spec.MinCurrent); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid min current: %w", err)
	}
	if _, err = parseOptionalQuantity(spec.MaxCurrent); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid max current: %w", err)
	}
	r.hasCurrent = spec.MinCurrent != "" || spec.MaxCurrent != ""

	if r.minDuration, err = parseOptionalSeconds(spec.MinDuration); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid min duration: %w", err)
	}
	if r.maxDuration, err = parseOptionalSeconds(spec.MaxDuration); err != nil {
		return TariffRestrictions{}, fmt.Errorf("invalid max duration: %w", err)
	}

	if len(spec.DayOfWeek) > 0 {
		r.daysOfWeek = make(map[time.Weekday]bool, len(spec.DayOfWeek))
		for _, name := range spec.DayOfWeek {
			day, err := parseWeekday(name)
			if err != nil {
				return TariffRestrictions{}, err
			}
			r.daysOfWeek[day] = true
		}
	}

	return r, nil
}

func (r TariffRestrictions) MinDuration() (time.Duration, bool) {
	if r.minDuration == nil {
		return 0, false
	}
	return *r.minDuration, true
}

func (r TariffRestrictions) MaxDuration() (time.Duration, bool) {
	if r.maxDuration == nil {
		return 0, false
	}
	return *r.maxDuration, true
}

// Matches returns true if every declared restriction holds for the period.
func (r TariffRestrictions) Matches(facts PeriodFacts) bool {
	if r.hasCurrent {
		return false
	}
	if !r.matchesTimeOfDay(facts.Start) {
		return false
	}

	date := civilDateOf(facts.Start)
	if r.startDate != nil && date.before(*r.startDate) {
		return false
	}
	if r.endDate != nil && !date.before(*r.endDate) {
		return false
	}

	if r.daysOfWeek != nil && !r.daysOfWeek[facts.Start.Weekday()] {
		return false
	}

	if r.minDuration != nil && facts.Elapsed < *r.minDuration {
		return false
	}
	// The period starting exactly at Start+MaxDuration still belongs to the
	// element; a successor must be declared earlier with a MinDuration to win.
	if r.maxDuration != nil && facts.Elapsed > *r.maxDuration {
		return false
	}

	if r.minKWh != nil && facts.EnergyKWh.Cmp(*r.minKWh) < 0 {
		return false
	}
	if r.maxKWh != nil && facts.EnergyKWh.Cmp(*r.maxKWh) >= 0 {
		return false
	}

	if r.minPower != nil && facts.PowerAverageKW.Cmp(*r.minPower) < 0 {
		return false
	}
	if r.maxPower != nil && facts.PowerAverageKW.Cmp(*r.maxPower) >= 0 {
		return false
	}

	return true
}

func (r TariffRestrictions) matchesTimeOfDay(t time.Time) bool {
	if r.startTime == nil && r.endTime == nil {
		return true
	}
	now := clockTimeOf(t)
	switch {
	case r.startTime != nil && r.endTime != nil:
		if r.endTime.minutes < r.startTime.minutes {
			// wraps midnight
			return now.minutes >= r.startTime.minutes || now.minutes < r.endTime.minutes
		}
		return now.minutes >= r.startTime.minutes && now.minutes < r.endTime.minutes
	case r.startTime != nil:
		return now.minutes >= r.startTime.minutes
	default:
		return now.minutes < r.endTime.minutes
	}
}

// clockTime is a time of day with minute resolution.
type clockTime struct {
	minutes int
}

func clockTimeOf(t time.Time) clockTime {
	return clockTime{minutes: t.Hour()*60 + t.Minute()}
}

func parseOptionalClockTime(value string) (*clockTime, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return nil, fmt.Errorf("expected HH:MM, got %q", value)
	}
	return &clockTime{minutes: t.Hour()*60 + t.Minute()}, nil
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civilDateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

func (d civilDate) before(other civilDate) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

func parseOptionalCivilDate(value string) (*civilDate, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}
	d := civilDateOf(t)
	return &d, nil
}

func parseOptionalQuantity(value string) (*Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := NewDecimal(value)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("cannot be negative: %s", value)
	}
	return &d, nil
}

// maxDurationSeconds is the largest whole number of seconds a time.Duration holds.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

func parseOptionalSeconds(value *int) (*time.Duration, error) {
	if value == nil {
		return nil, nil
	}
	if *value < 0 {
		return nil, fmt.Errorf("cannot be negative: %d", *value)
	}
	if int64(*value) > maxDurationSeconds {
		return nil, fmt.Errorf("exceeds %d seconds: %d", maxDurationSeconds, *value)
	}
	d := time.Duration(*value) * time.Second
	return &d, nil
}

func parseWeekday(value string) (time.Weekday, error) {
	switch value {
	case "MONDAY":
		return time.Monday, nil
	case "TUESDAY":
		return time.Tuesday, nil
	case "WEDNESDAY":
		return time.Wednesday, nil
	case "THURSDAY":
		return time.Thursday, nil
	case "FRIDAY":
		return time.Friday, nil
	case "SATURDAY":
		return time.Saturday, nil
	case "SUNDAY":
		return time.Sunday, nil
	default:
		return 0, fmt.Errorf("invalid day of week: %q", value)
	}
}
