package internal

import (
	"fmt"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
)

type Tariff struct {
	id       TariffID
	currency Currency
	elements []TariffElement
	spec     specs.TariffSpec
}

func NewTariff(spec specs.TariffSpec) (Tariff, error) {
	id, err := NewTariffID(spec.ID)
	if err != nil {
		return Tariff{}, fmt.Errorf("%w: %v", specs.ErrInvalidTariff, err)
	}

	currency, err := NewCurrency(spec.Currency)
	if err != nil {
		return Tariff{}, fmt.Errorf("%w: tariff %s: %v", specs.ErrInvalidTariff, spec.ID, err)
	}

	if len(spec.Elements) == 0 {
		return Tariff{}, fmt.Errorf("%w: tariff %s: at least one element is required", specs.ErrInvalidTariff, spec.ID)
	}

	elements := make([]TariffElement, 0, len(spec.Elements))
	for i, e := range spec.Elements {
		element, err := NewTariffElement(e)
		if err != nil {
			return Tariff{}, fmt.Errorf("%w: tariff %s: element %d: %v", specs.ErrInvalidTariff, spec.ID, i, err)
		}
		elements = append(elements, element)
	}

	return Tariff{
		id:       id,
		currency: currency,
		elements: elements,
		spec:     cloneTariffSpec(spec),
	}, nil
}

func (t Tariff) ID() TariffID {
	return t.id
}

func (t Tariff) Currency() Currency {
	return t.currency
}

func (t Tariff) Elements() []TariffElement {
	return t.elements
}

// ToSpec returns a copy of the spec the tariff was built from.
func (t Tariff) ToSpec() specs.TariffSpec {
	return cloneTariffSpec(t.spec)
}

func cloneTariffSpec(spec specs.TariffSpec) specs.TariffSpec {
	clone := spec
	clone.Elements = make([]specs.TariffElementSpec, len(spec.Elements))
	for i, e := range spec.Elements {
		clone.Elements[i].PriceComponents = append([]specs.PriceComponentSpec(nil), e.PriceComponents...)
		if e.Restrictions != nil {
			r := *e.Restrictions
			r.DayOfWeek = append([]string(nil), e.Restrictions.DayOfWeek...)
			if r.MinDuration != nil {
				v := *r.MinDuration
				r.MinDuration = &v
			}
			if r.MaxDuration != nil {
				v := *r.MaxDuration
				r.MaxDuration = &v
			}
			clone.Elements[i].Restrictions = &r
		}
	}
	return clone
}

// Match returns the index of the first element whose restrictions hold for
// the period, or false if none does. Declaration order decides; a later,
// more specific element never overrides an earlier match.
func (t Tariff) Match(facts PeriodFacts) (int, bool) {
	for i, element := range t.elements {
		if element.Matches(facts) {
			return i, true
		}
	}
	return 0, false
}

// DurationMarkers returns Start+MinDuration and Start+MaxDuration for every
// element declaring them.
func (t Tariff) DurationMarkers(start time.Time) []time.Time {
	var markers []time.Time
	for _, element := range t.elements {
		if element.restrictions == nil {
			continue
		}
		if d, ok := element.restrictions.MinDuration(); ok {
			markers = append(markers, start.Add(d))
		}
		if d, ok := element.restrictions.MaxDuration(); ok {
			markers = append(markers, start.Add(d))
		}
	}
	return markers
}

type TariffID struct {
	value string
}

func NewTariffID(value string) (TariffID, error) {
	if value == "" {
		return TariffID{}, fmt.Errorf("tariff ID is required")
	}
	return TariffID{value: value}, nil
}

func (id TariffID) ToString() string {
	return id.value
}

type Currency struct {
	value string
}

func NewCurrency(value string) (Currency, error) {
	if len(value) != 3 {
		return Currency{}, fmt.Errorf("currency must be a 3-letter ISO 4217 code, got %q", value)
	}
	for _, r := range value {
		if r < 'A' || r > 'Z' {
			return Currency{}, fmt.Errorf("currency must be upper-case letters, got %q", value)
		}
	}
	return Currency{value: value}, nil
}

func (c Currency) ToString() string {
	return c.value
}

// TariffElement is one pricing rule: its restrictions and at most one price
// component per kind.
type TariffElement struct {
	components   [priceComponentKindCount]*PriceComponent
	restrictions *TariffRestrictions
}

func NewTariffElement(spec specs.TariffElementSpec) (TariffElement, error) {
	if len(spec.PriceComponents) == 0 {
		return TariffElement{}, fmt.Errorf("at least one price component is required")
	}

	var element TariffElement
	for i, c := range spec.PriceComponents {
		component, err := NewPriceComponent(c)
		if err != nil {
			return TariffElement{}, fmt.Errorf("price component %d: %w", i, err)
		}
		// first one of each kind wins
		if element.components[component.kind] == nil {
			element.components[component.kind] = &component
		}
	}

	if spec.Restrictions != nil {
		restrictions, err := NewTariffRestrictions(*spec.Restrictions)
		if err != nil {
			return TariffElement{}, fmt.Errorf("invalid restrictions: %w", err)
		}
		element.restrictions = &restrictions
	}

	return element, nil
}

// Component returns the element's price component of the given kind.
func (e TariffElement) Component(kind PriceComponentKind) (PriceComponent, bool) {
	c := e.components[kind]
	if c == nil {
		return PriceComponent{}, false
	}
	return *c, true
}

// Components returns the element's price components in kind order.
func (e TariffElement) Components() []PriceComponent {
	components := make([]PriceComponent, 0, priceComponentKindCount)
	for _, c := range e.components {
		if c != nil {
			components = append(components, *c)
		}
	}
	return components
}

func (e TariffElement) Restrictions() *TariffRestrictions {
	return e.restrictions
}

// Matches returns true if the restrictions hold (or if there are none).
func (e TariffElement) Matches(facts PeriodFacts) bool {
	if e.restrictions == nil {
		return true
	}
	return e.restrictions.Matches(facts)
}

type PriceComponentKind int

const (
	PriceComponentEnergy PriceComponentKind = iota
	PriceComponentTime
	PriceComponentFlat
	PriceComponentParkingTime

	priceComponentKindCount = 4
)

func NewPriceComponentKind(value string) (PriceComponentKind, error) {
	switch value {
	case "ENERGY":
		return PriceComponentEnergy, nil
	case "TIME":
		return PriceComponentTime, nil
	case "FLAT":
		return PriceComponentFlat, nil
	case "PARKING_TIME":
		return PriceComponentParkingTime, nil
	case "":
		return 0, fmt.Errorf("price component type is required")
	default:
		return 0, fmt.Errorf("invalid price component type: %q", value)
	}
}

func (k PriceComponentKind) ToString() string {
	switch k {
	case PriceComponentEnergy:
		return "ENERGY"
	case PriceComponentTime:
		return "TIME"
	case PriceComponentFlat:
		return "FLAT"
	case PriceComponentParkingTime:
		return "PARKING_TIME"
	default:
		return "UNKNOWN"
	}
}

type PriceComponent struct {
	kind     PriceComponentKind
	price    Decimal
	stepSize int
}

func NewPriceComponent(spec specs.PriceComponentSpec) (PriceComponent, error) {
	kind, err := NewPriceComponentKind(spec.Type)
	if err != nil {
		return PriceComponent{}, err
	}

	price, err := NewDecimal(spec.Price)
	if err != nil {
		return PriceComponent{}, fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return PriceComponent{}, fmt.Errorf("price cannot be negative: %s", spec.Price)
	}

	if spec.StepSize < 0 {
		return PriceComponent{}, fmt.Errorf("step size cannot be negative: %d", spec.StepSize)
	}

	return PriceComponent{
		kind:     kind,
		price:    price,
		stepSize: spec.StepSize,
	}, nil
}

func (c PriceComponent) Kind() PriceComponentKind {
	return c.kind
}

func (c PriceComponent) Price() Decimal {
	return c.price
}

func (c PriceComponent) StepSize() int {
	return c.stepSize
}

// Billable reports whether the component contributes to cost. Zero-priced
// components are carried on the period but neither billed nor dimensioned.
func (c PriceComponent) Billable() bool {
	return c.price.IsPositive()
}

func (c PriceComponent) ToSpec() specs.PriceComponentSpec {
	return specs.PriceComponentSpec{
		Type:     c.kind.ToString(),
		Price:    c.price.String(),
		StepSize: c.stepSize,
	}
}
