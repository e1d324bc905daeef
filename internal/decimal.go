package internal

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
)

var decimalContext = apd.BaseContext.WithPrecision(34)

type Decimal struct {
	value apd.Decimal
}

func NewDecimal(s string) (Decimal, error) {
	var d apd.Decimal
	_, _, err := d.SetString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal: %w", err)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("invalid decimal: %q is not finite", s)
	}
	return Decimal{value: d}, nil
}

func NewDecimalFromInt64(i int64) Decimal {
	var d apd.Decimal
	d.SetInt64(i)
	return Decimal{value: d}
}

// NewDecimalFromDuration returns the duration in seconds, exact to the nanosecond.
func NewDecimalFromDuration(d time.Duration) Decimal {
	return Decimal{value: *apd.New(d.Nanoseconds(), -9)}
}

// String renders the value in plain notation, never scientific, with
// trailing zeros removed.
func (d Decimal) String() string {
	var reduced apd.Decimal
	reduced.Reduce(&d.value)
	return reduced.Text('f')
}

func (d Decimal) IsZero() bool {
	return d.value.IsZero()
}

func (d Decimal) IsNegative() bool {
	return d.value.Sign() < 0
}

func (d Decimal) IsPositive() bool {
	return d.value.Sign() > 0
}

func (d Decimal) Cmp(other Decimal) int {
	return d.value.Cmp(&other.value)
}

// Add returns the sum of d and other.
func (d Decimal) Add(other Decimal) Decimal {
	var result apd.Decimal
	decimalContext.Add(&result, &d.value, &other.value)
	return Decimal{value: result}
}

// Sub returns the difference of d and other.
func (d Decimal) Sub(other Decimal) Decimal {
	var result apd.Decimal
	decimalContext.Sub(&result, &d.value, &other.value)
	return Decimal{value: result}
}

// Mul returns the product of d and other.
func (d Decimal) Mul(other Decimal) Decimal {
	var result apd.Decimal
	decimalContext.Mul(&result, &d.value, &other.value)
	return Decimal{value: result}
}

// Div returns the quotient of d divided by other.
// Division by zero yields zero; callers guard the divisor where it matters.
func (d Decimal) Div(other Decimal) Decimal {
	if other.IsZero() {
		return Decimal{}
	}
	var result apd.Decimal
	decimalContext.Quo(&result, &d.value, &other.value)
	return Decimal{value: result}
}

// Ceil returns the smallest integer not less than d.
func (d Decimal) Ceil() Decimal {
	var result apd.Decimal
	decimalContext.Ceil(&result, &d.value)
	return Decimal{value: result}
}

// CeilToMultiple rounds d up to the next whole multiple of step.
// A zero step returns d unchanged.
func (d Decimal) CeilToMultiple(step Decimal) Decimal {
	if step.IsZero() {
		return d
	}
	return d.Div(step).Ceil().Mul(step)
}

// ToDuration interprets d as seconds, rounded to the nearest nanosecond.
// Values outside the time.Duration range are an error.
func (d Decimal) ToDuration() (time.Duration, error) {
	var ns apd.Decimal
	decimalContext.Mul(&ns, &d.value, apd.New(1, 9))
	decimalContext.RoundToIntegralValue(&ns, &ns)
	i, err := ns.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s seconds is out of duration range: %w", d.String(), err)
	}
	return time.Duration(i), nil
}
