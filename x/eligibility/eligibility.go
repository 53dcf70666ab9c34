/*
Package eligibility discounts recently reported pool sizes.

Only a fraction of a reported pool size counts toward the pool ratio that
drives the allocation. The fraction is lowered for a week after the last
update, which blunts deposits made right before an allocation update only to
bias it.
*/
package eligibility

import (
	"github.com/iov-one/yieldshift"
)

const (
	// BaseFraction is the share of a pool that is eligible when no discount
	// applies.
	BaseFraction yieldshift.Bps = 8000
	// MaxDiscount is the largest reduction of the base fraction.
	MaxDiscount yieldshift.Bps = 2000
	// MinFraction is the lowest eligible share of a pool.
	MinFraction yieldshift.Bps = 5000
)

// Fraction returns the eligible share of a pool at time now, given the time
// of the last update. The result is always within [MinFraction, BaseFraction].
func Fraction(now, lastUpdate yieldshift.UnixTime) yieldshift.Bps {
	elapsed := now.Sub(lastUpdate)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= yieldshift.MinHoldingPeriod {
		return BaseFraction
	}
	discount := yieldshift.Bps(int64(elapsed) * int64(MaxDiscount) / int64(yieldshift.MinHoldingPeriod))
	if discount > BaseFraction-MinFraction {
		return MinFraction
	}
	return BaseFraction - discount
}

// Size returns the eligible part of the raw pool size. It never exceeds the
// raw size.
func Size(raw yieldshift.Amount, fraction yieldshift.Bps) yieldshift.Amount {
	raw = yieldshift.NormAmount(raw)
	eligible := yieldshift.MulBps(raw, fraction)
	if eligible.GT(raw) {
		return raw
	}
	return eligible
}
