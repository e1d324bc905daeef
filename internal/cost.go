package internal

import (
	"fmt"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
)

var (
	wattHoursPerKWh = NewDecimalFromInt64(1000)
	secondsPerHour  = NewDecimalFromInt64(3600)
)

type DimensionType int

const (
	DimensionEnergy DimensionType = iota + 1
	DimensionTime
)

func (t DimensionType) ToString() string {
	switch t {
	case DimensionEnergy:
		return "ENERGY"
	case DimensionTime:
		return "TIME"
	default:
		return "UNKNOWN"
	}
}

// CdrDimension is a billable quantity recorded on a period: ENERGY in kWh,
// TIME in hours.
type CdrDimension struct {
	dimensionType DimensionType
	volume        Decimal
}

func NewCdrDimension(dimensionType DimensionType, volume Decimal) CdrDimension {
	return CdrDimension{dimensionType: dimensionType, volume: volume}
}

func (d CdrDimension) Type() DimensionType {
	return d.dimensionType
}

func (d CdrDimension) Volume() Decimal {
	return d.volume
}

func (d CdrDimension) ToSpec() specs.CdrDimensionSpec {
	return specs.CdrDimensionSpec{
		Type:   d.dimensionType.ToString(),
		Volume: d.volume.String(),
	}
}

// tierKey identifies a billing tier. Quantities sharing a step size and unit
// price are rounded together.
type tierKey struct {
	stepSize int
	price    string
}

type tier struct {
	key      tierKey
	price    Decimal
	quantity Decimal
}

// tierSet keeps tiers in first-seen order so totals are summed in a stable
// sequence.
type tierSet struct {
	order []tierKey
	tiers map[tierKey]*tier
}

func newTierSet() tierSet {
	return tierSet{tiers: make(map[tierKey]*tier)}
}

func (s *tierSet) add(component PriceComponent, quantity Decimal) {
	key := tierKey{stepSize: component.StepSize(), price: component.Price().String()}
	t, ok := s.tiers[key]
	if !ok {
		t = &tier{key: key, price: component.Price()}
		s.tiers[key] = t
		s.order = append(s.order, key)
	}
	t.quantity = t.quantity.Add(quantity)
}

func (s *tierSet) each(fn func(t *tier)) {
	for _, key := range s.order {
		fn(s.tiers[key])
	}
}

// CostTotals are the reconciled figures of one rating run.
type CostTotals struct {
	TotalEnergyWh    Decimal
	TotalTime        time.Duration
	TotalParkingTime time.Duration
	BilledEnergyKWh  Decimal
	BilledTime       time.Duration
	TotalEnergyCost  Decimal
	TotalTimeCost    Decimal
	TotalFlatCost    Decimal
	TotalCost        Decimal
}

// costAccumulator collects billable quantities of one rating run. It is not
// safe to share between runs.
type costAccumulator struct {
	energyTiers tierSet
	timeTiers   tierSet
	flatTiers   tierSet

	totalEnergyWh    Decimal
	totalTime        time.Duration
	totalParkingTime time.Duration
}

func newCostAccumulator() *costAccumulator {
	return &costAccumulator{
		energyTiers: newTierSet(),
		timeTiers:   newTierSet(),
		flatTiers:   newTierSet(),
	}
}

// addPeriod records the period's raw totals and feeds every billable
// component it matched into the tiers, recording the corresponding dimension
// on the period.
func (a *costAccumulator) addPeriod(p *chargingPeriod) {
	duration := p.duration()

	a.totalEnergyWh = a.totalEnergyWh.Add(p.energyWh)
	a.totalTime += duration
	if p.energyWh.IsZero() {
		a.totalParkingTime += duration
	}

	for _, component := range p.components {
		if !component.Billable() {
			continue
		}
		switch component.Kind() {
		case PriceComponentEnergy:
			kWh := p.energyWh.Div(wattHoursPerKWh)
			p.dimensions = append(p.dimensions, NewCdrDimension(DimensionEnergy, kWh))
			a.energyTiers.add(component, kWh)
		case PriceComponentTime:
			seconds := NewDecimalFromDuration(duration)
			p.dimensions = append(p.dimensions, NewCdrDimension(DimensionTime, seconds.Div(secondsPerHour)))
			a.timeTiers.add(component, seconds)
		case PriceComponentFlat:
			a.flatTiers.add(component, NewDecimalFromInt64(1))
		case PriceComponentParkingTime:
			// not billed yet
		}
	}
}

// totals rounds every tier up to its step size and prices it. Billed time
// that does not fit a time.Duration is reported as an invalid tariff, since
// only an oversized step size can produce it.
func (a *costAccumulator) totals() (CostTotals, error) {
	t := CostTotals{
		TotalEnergyWh:    a.totalEnergyWh,
		TotalTime:        a.totalTime,
		TotalParkingTime: a.totalParkingTime,
	}

	a.energyTiers.each(func(tr *tier) {
		billed := tr.quantity.CeilToMultiple(NewDecimalFromInt64(int64(tr.key.stepSize)))
		cost := billed.Mul(tr.price)
		t.BilledEnergyKWh = t.BilledEnergyKWh.Add(billed)
		t.TotalEnergyCost = t.TotalEnergyCost.Add(cost)
	})

	var billedSeconds Decimal
	a.timeTiers.each(func(tr *tier) {
		billed := tr.quantity.CeilToMultiple(NewDecimalFromInt64(int64(tr.key.stepSize)))
		cost := billed.Div(secondsPerHour).Mul(tr.price)
		billedSeconds = billedSeconds.Add(billed)
		t.TotalTimeCost = t.TotalTimeCost.Add(cost)
	})
	billedTime, err := billedSeconds.ToDuration()
	if err != nil {
		return CostTotals{}, fmt.Errorf("%w: billed time: %v", specs.ErrInvalidTariff, err)
	}
	t.BilledTime = billedTime

	a.flatTiers.each(func(tr *tier) {
		t.TotalFlatCost = t.TotalFlatCost.Add(tr.quantity.Mul(tr.price))
	})

	t.TotalCost = t.TotalEnergyCost.Add(t.TotalTimeCost).Add(t.TotalFlatCost)
	return t, nil
}
