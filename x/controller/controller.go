package controller

import (
	"math"

	"github.com/iov-one/yieldshift"
)

// InfiniteRatio is the pool ratio reported when the hedger pool is empty.
// Ratios too large to be represented saturate to it as well.
const InfiniteRatio uint64 = math.MaxUint64

// PoolRatio returns user * 10000 / hedger.
func PoolRatio(user, hedger yieldshift.Amount) uint64 {
	user, hedger = yieldshift.NormAmount(user), yieldshift.NormAmount(hedger)
	if hedger.IsZero() {
		return InfiniteRatio
	}
	ratio := user.MulUint64(uint64(yieldshift.BpsScale)).Quo(hedger)
	if ratio.GTE(yieldshift.NewAmount(InfiniteRatio)) {
		return InfiniteRatio
	}
	return ratio.Uint64()
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// withinBand returns true if the ratio deviates from the target by no more
// than target * tolerance / 10000.
func withinBand(ratio uint64, target, tolerance yieldshift.Bps) bool {
	band := uint64(target) * uint64(tolerance) / uint64(yieldshift.BpsScale)
	return absDiff(ratio, uint64(target)) <= band
}

// OptimalShift returns the allocation that the pool ratio calls for.
//
// Within the tolerance band the base allocation is used. An oversized user
// pool raises the allocation up to the maximum, an oversized hedger pool
// lowers it down to zero. The distance from the base is proportional to the
// relative deviation of the ratio from the target.
func OptimalShift(p Params, ratio uint64) yieldshift.Bps {
	if p.TargetRatioBps == 0 || withinBand(ratio, p.TargetRatioBps, p.ToleranceBps) {
		return p.BaseBps
	}
	span := p.MaxBps - p.BaseBps
	deviation := absDiff(ratio, uint64(p.TargetRatioBps))
	adjustment := yieldshift.NewAmount(deviation).
		MulUint64(uint64(span)).
		QuoUint64(uint64(p.TargetRatioBps))

	if ratio > uint64(p.TargetRatioBps) {
		if adjustment.GTE(yieldshift.NewAmount(uint64(span))) {
			return p.MaxBps
		}
		return p.BaseBps + yieldshift.Bps(adjustment.Uint64())
	}
	if adjustment.GTE(yieldshift.NewAmount(uint64(p.BaseBps))) {
		return 0
	}
	return p.BaseBps - yieldshift.Bps(adjustment.Uint64())
}

// Step moves the current allocation toward the optimal one by at most step,
// never overshooting.
func Step(current, optimal, step yieldshift.Bps) yieldshift.Bps {
	switch {
	case current < optimal:
		if optimal-current <= step {
			return optimal
		}
		return current + step
	case current > optimal:
		if current-optimal <= step {
			return optimal
		}
		return current - step
	default:
		return current
	}
}

// Decision describes the outcome of a single controller invocation.
type Decision struct {
	RatioBps      uint64
	OptimalBps    yieldshift.Bps
	PreviousBps   yieldshift.Bps
	AllocationBps yieldshift.Bps
}

// Phase returns the controller phase after this decision.
func (d Decision) Phase() Phase {
	if d.AllocationBps == d.OptimalBps {
		return Stable
	}
	return Adjusting
}

// Decide computes the next allocation from the eligible pool sizes.
func Decide(p Params, current yieldshift.Bps, userEligible, hedgerEligible yieldshift.Amount) Decision {
	ratio := PoolRatio(userEligible, hedgerEligible)
	optimal := OptimalShift(p, ratio)
	return Decision{
		RatioBps:      ratio,
		OptimalBps:    optimal,
		PreviousBps:   current,
		AllocationBps: Step(current, optimal, p.StepBps),
	}
}

// ShouldRebalance is the heartbeat rule. A rebalance is due when the last
// update is older than the TWAP period, or when the time weighted ratio has
// left the trigger band around the target.
func ShouldRebalance(p Params, lastUpdate, now yieldshift.UnixTime, twapRatio uint64) bool {
	if now.Sub(lastUpdate) > p.TWAPPeriod.Duration() {
		return true
	}
	return !withinBand(twapRatio, p.TargetRatioBps, p.TriggerToleranceBps)
}
