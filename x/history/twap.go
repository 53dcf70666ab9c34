package history

import (
	"time"

	"github.com/iov-one/yieldshift"
)

// TWAP returns the time weighted average size of the pool on given side over
// the period that ends at now.
//
// Every sample not older than the cutoff (now - period) is weighted by its
// distance from the cutoff. If no sample carries any weight the most recent
// value is returned as it is. An empty history averages to zero.
func TWAP(h *PoolHistory, side Side, now yieldshift.UnixTime, period time.Duration) yieldshift.Amount {
	latest, ok := h.Latest()
	if !ok {
		return yieldshift.ZeroAmount()
	}

	cutoff := now.Add(-period)
	if cutoff < 0 {
		cutoff = 0
	}

	totalWeight := yieldshift.ZeroAmount()
	totalValue := yieldshift.ZeroAmount()
	for _, snap := range h.s.items {
		if snap.Timestamp < cutoff {
			continue
		}
		w := uint64(snap.Timestamp - cutoff)
		totalWeight = totalWeight.AddUint64(w)
		totalValue = totalValue.Add(snap.Size(side).MulUint64(w))
	}
	if totalWeight.IsZero() {
		return latest.Size(side)
	}
	return totalValue.Quo(totalWeight)
}

// AllocationStats summarizes allocation samples of a window.
type AllocationStats struct {
	Samples int
	Average yieldshift.Bps
	Min     yieldshift.Bps
	Max     yieldshift.Bps
	// Volatility is the spread between the highest and the lowest
	// allocation of the window.
	Volatility yieldshift.Bps
}

// Stats returns statistics of all allocation samples taken within the window
// that ends at now. A zero window selects the whole history.
func Stats(h *AllocationHistory, now yieldshift.UnixTime, window time.Duration) AllocationStats {
	var cutoff yieldshift.UnixTime
	if window > 0 {
		cutoff = now.Add(-window)
	}

	var (
		st  AllocationStats
		sum uint64
	)
	for _, snap := range h.s.items {
		if snap.Timestamp < cutoff {
			continue
		}
		if st.Samples == 0 || snap.AllocationBps < st.Min {
			st.Min = snap.AllocationBps
		}
		if snap.AllocationBps > st.Max {
			st.Max = snap.AllocationBps
		}
		sum += uint64(snap.AllocationBps)
		st.Samples++
	}
	if st.Samples == 0 {
		return st
	}
	st.Average = yieldshift.Bps(sum / uint64(st.Samples))
	st.Volatility = st.Max - st.Min
	return st
}
