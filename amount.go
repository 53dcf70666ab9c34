package yieldshift

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/iov-one/yieldshift/errors"
)

// Amount is a money value expressed in the smallest unit of the settlement
// asset (for example micro units of a 6 decimals stable coin). It is an
// arbitrary precision unsigned integer.
type Amount = sdkmath.Uint

// Bps is a fixed point value expressed in basis points. BpsScale (10000 bps)
// represents 100%.
type Bps uint32

// BpsScale is the basis point scale.
const BpsScale Bps = 10000

// Validate returns an error if the value exceeds 100%.
func (b Bps) Validate() error {
	if b > BpsScale {
		return errors.Wrapf(errors.ErrInvalidParameter, "%d bps exceeds %d", b, BpsScale)
	}
	return nil
}

// String returns a percentage representation, for example "51.25%".
func (b Bps) String() string {
	return fmt.Sprintf("%d.%02d%%", b/100, b%100)
}

// ZeroAmount returns an amount of value zero.
func ZeroAmount() Amount {
	return sdkmath.ZeroUint()
}

// NewAmount returns an amount of given value.
func NewAmount(n uint64) Amount {
	return sdkmath.NewUint(n)
}

// ParseAmount decodes a base 10 representation of an amount.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return ZeroAmount(), nil
	}
	a, err := sdkmath.ParseUint(s)
	if err != nil {
		return ZeroAmount(), errors.Wrapf(errors.ErrAmount, "cannot parse %q", s)
	}
	return a, nil
}

// NormAmount returns zero for the zero value of Amount and the amount itself
// otherwise. The zero value of Amount is not safe to use with any arithmetic.
func NormAmount(a Amount) Amount {
	if a == (Amount{}) {
		return ZeroAmount()
	}
	return a
}

// MulBps returns a * bps / 10000, rounded down.
func MulBps(a Amount, bps Bps) Amount {
	return NormAmount(a).MulUint64(uint64(bps)).QuoUint64(uint64(BpsScale))
}

// MulDiv returns a * num / den, rounded down. Division by zero and results
// that do not fit into the amount type are returned as errors.
func MulDiv(a, num, den Amount) (res Amount, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = ZeroAmount()
			err = errors.Wrapf(errors.ErrOverflow, "%s * %s / %s", a, num, den)
		}
	}()
	if NormAmount(den).IsZero() {
		return ZeroAmount(), errors.Wrap(errors.ErrAmount, "division by zero")
	}
	return NormAmount(a).Mul(NormAmount(num)).Quo(den), nil
}

// SafeAdd returns a + b or an error if the result overflows.
func SafeAdd(a, b Amount) (res Amount, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = ZeroAmount()
			err = errors.Wrapf(errors.ErrOverflow, "%s + %s", a, b)
		}
	}()
	return NormAmount(a).Add(NormAmount(b)), nil
}

// SafeSub returns a - b or an error if b is greater than a.
func SafeSub(a, b Amount) (Amount, error) {
	a, b = NormAmount(a), NormAmount(b)
	if b.GT(a) {
		return ZeroAmount(), errors.Wrapf(errors.ErrAmount, "%s - %s is negative", a, b)
	}
	return a.Sub(b), nil
}

// AbsDiff returns |a - b|.
func AbsDiff(a, b Amount) Amount {
	a, b = NormAmount(a), NormAmount(b)
	if a.GT(b) {
		return a.Sub(b)
	}
	return b.Sub(a)
}
