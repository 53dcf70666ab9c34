package controller

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/yieldtest/assert"
)

func TestPoolRatio(t *testing.T) {
	assert.Equal(t, uint64(100000), PoolRatio(yieldshift.NewAmount(1000), yieldshift.NewAmount(100)))
	assert.Equal(t, uint64(10000), PoolRatio(yieldshift.NewAmount(5), yieldshift.NewAmount(5)))
	assert.Equal(t, uint64(0), PoolRatio(yieldshift.ZeroAmount(), yieldshift.NewAmount(5)))
	assert.Equal(t, InfiniteRatio, PoolRatio(yieldshift.NewAmount(1), yieldshift.ZeroAmount()))
	assert.Equal(t, InfiniteRatio, PoolRatio(yieldshift.Amount{}, yieldshift.Amount{}))

	huge, err := yieldshift.ParseAmount("100000000000000000000000000000")
	assert.Nil(t, err)
	assert.Equal(t, InfiniteRatio, PoolRatio(huge, yieldshift.NewAmount(1)))
}

func TestOptimalShift(t *testing.T) {
	p := DefaultParams()

	cases := map[string]struct {
		params Params
		ratio  uint64
		want   yieldshift.Bps
	}{
		"at target": {
			params: p, ratio: 10000, want: 5000,
		},
		"upper edge of tolerance band": {
			params: p, ratio: 11000, want: 5000,
		},
		"lower edge of tolerance band": {
			params: p, ratio: 9000, want: 5000,
		},
		"just above the band": {
			// 1001 * 4000 / 10000 = 400
			params: p, ratio: 11001, want: 5400,
		},
		"user pool ten times the hedger pool is pinned at max": {
			params: p, ratio: 100000, want: 9000,
		},
		"empty hedger pool is pinned at max": {
			params: p, ratio: InfiniteRatio, want: 9000,
		},
		"hedger pool oversized": {
			// 5000 * 4000 / 10000 = 2000
			params: p, ratio: 5000, want: 3000,
		},
		"empty user pool": {
			params: p, ratio: 0, want: 1000,
		},
		"decrease clamps at zero": {
			params: Params{BaseBps: 2000, MaxBps: 9000, StepBps: 100, TargetRatioBps: 10000, ToleranceBps: 1000},
			ratio:  0,
			want:   0,
		},
		"decrease with a non default target": {
			params: Params{BaseBps: 3500, MaxBps: 10000, StepBps: 100, TargetRatioBps: 20000, ToleranceBps: 0},
			// 10000 * 6500 / 20000 = 3250
			ratio: 10000,
			want:  250,
		},
		"zero tolerance leaves no band": {
			params: Params{BaseBps: 5000, MaxBps: 9000, StepBps: 100, TargetRatioBps: 10000},
			ratio:  10001,
			want:   5000,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, OptimalShift(tc.params, tc.ratio))
		})
	}
}

func TestToleranceStability(t *testing.T) {
	p := DefaultParams()
	band := uint64(p.TargetRatioBps) * uint64(p.ToleranceBps) / 10000
	for ratio := uint64(p.TargetRatioBps) - band; ratio <= uint64(p.TargetRatioBps)+band; ratio += 7 {
		if got := OptimalShift(p, ratio); got != p.BaseBps {
			t.Fatalf("ratio %d: want base %d, got %d", ratio, p.BaseBps, got)
		}
	}
}

func TestScenarioConvergesToMax(t *testing.T) {
	p := DefaultParams()
	user, hedger := yieldshift.NewAmount(1000), yieldshift.NewAmount(100)

	current := p.BaseBps
	d := Decide(p, current, user, hedger)
	assert.Equal(t, yieldshift.Bps(9000), d.OptimalBps)
	assert.Equal(t, yieldshift.Bps(5100), d.AllocationBps)
	assert.Equal(t, Adjusting, d.Phase())

	d = Decide(p, d.AllocationBps, user, hedger)
	assert.Equal(t, yieldshift.Bps(5200), d.AllocationBps)

	current = p.BaseBps
	calls := 0
	for current != 9000 {
		d := Decide(p, current, user, hedger)
		if diff := absDiff(uint64(d.AllocationBps), uint64(current)); diff > uint64(p.StepBps) {
			t.Fatalf("step of %d exceeds %d", diff, p.StepBps)
		}
		current = d.AllocationBps
		calls++
		if calls > 1000 {
			t.Fatal("controller does not converge")
		}
	}
	assert.Equal(t, 40, calls)
	assert.Equal(t, Stable, Decide(p, current, user, hedger).Phase())
}

func TestStepIsBounded(t *testing.T) {
	steps := []yieldshift.Bps{0, 1, 7, 100, 1000}
	allocs := []yieldshift.Bps{0, 1, 4999, 5000, 5001, 9000, 10000}
	for _, step := range steps {
		for _, current := range allocs {
			for _, optimal := range allocs {
				next := Step(current, optimal, step)
				if absDiff(uint64(next), uint64(current)) > uint64(step) {
					t.Fatalf("step %d from %d toward %d moved to %d", step, current, optimal, next)
				}
				// Never overshoot.
				if (current <= optimal && next > optimal) || (current >= optimal && next < optimal) {
					t.Fatalf("step %d from %d overshoots %d: %d", step, current, optimal, next)
				}
			}
		}
	}
}

func TestShouldRebalance(t *testing.T) {
	p := DefaultParams()
	last := yieldshift.UnixTime(1000)

	assert.Equal(t, false, ShouldRebalance(p, last, last.Add(time.Hour), 10000))
	assert.Equal(t, false, ShouldRebalance(p, last, last.Add(24*time.Hour), 12000))
	assert.Equal(t, true, ShouldRebalance(p, last, last.Add(24*time.Hour+time.Second), 10000))
	assert.Equal(t, true, ShouldRebalance(p, last, last.Add(time.Hour), 12001))
	assert.Equal(t, true, ShouldRebalance(p, last, last.Add(time.Hour), InfiniteRatio))
}

func TestParamsValidate(t *testing.T) {
	cases := map[string]struct {
		params Params
		field  string
		want   *errors.Error
	}{
		"defaults": {
			params: DefaultParams(),
			field:  "MaxBps",
			want:   nil,
		},
		"base above scale": {
			params: func() Params { p := DefaultParams(); p.BaseBps = 10001; p.MaxBps = 10001; return p }(),
			field:  "BaseBps",
			want:   errors.ErrInvalidParameter,
		},
		"max below base": {
			params: func() Params { p := DefaultParams(); p.MaxBps = 4000; return p }(),
			field:  "MaxBps",
			want:   errors.ErrInvalidShiftRange,
		},
		"step too large": {
			params: func() Params { p := DefaultParams(); p.StepBps = 1001; return p }(),
			field:  "StepBps",
			want:   errors.ErrInvalidParameter,
		},
		"zero target": {
			params: func() Params { p := DefaultParams(); p.TargetRatioBps = 0; return p }(),
			field:  "TargetRatioBps",
			want:   errors.ErrInvalidParameter,
		},
		"target above limit": {
			params: func() Params { p := DefaultParams(); p.TargetRatioBps = 50001; return p }(),
			field:  "TargetRatioBps",
			want:   errors.ErrInvalidParameter,
		},
		"target at limit": {
			params: func() Params { p := DefaultParams(); p.TargetRatioBps = 50000; return p }(),
			field:  "TargetRatioBps",
			want:   nil,
		},
		"no twap period": {
			params: func() Params { p := DefaultParams(); p.TWAPPeriod = 0; return p }(),
			field:  "TWAPPeriod",
			want:   errors.ErrInvalidParameter,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.params.Validate()
			assert.FieldError(t, err, tc.field, tc.want)
		})
	}
}

func TestParamsPersistence(t *testing.T) {
	db := store.MemStore()
	_, err := LoadParams(db)
	assert.IsErr(t, errors.ErrNotFound, err)

	p := DefaultParams()
	p.TargetRatioBps = 20000
	assert.Nil(t, SaveParams(db, p))
	got, err := LoadParams(db)
	assert.Nil(t, err)
	assert.Equal(t, p, got)

	p.MaxBps = 1
	assert.IsErr(t, errors.ErrInvalidShiftRange, SaveParams(db, p))
}

func TestParamsJSON(t *testing.T) {
	var p Params
	raw := `{"base_bps": 4000, "max_bps": 8000, "step_bps": 50, "target_ratio_bps": 15000,
		"tolerance_bps": 500, "trigger_tolerance_bps": 1500, "twap_period": "12h"}`
	assert.Nil(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, 12*time.Hour, p.TWAPPeriod.Duration())
	assert.Nil(t, p.Validate())
}

func TestStateKeeper(t *testing.T) {
	db := store.MemStore()
	k := NewKeeper()

	_, err := k.State(db)
	assert.IsErr(t, errors.ErrNotFound, err)

	s := &State{AllocationBps: 5100, TargetBps: 9000, LastUpdate: 77}
	assert.Nil(t, k.Save(db, s))
	got, err := k.State(db)
	assert.Nil(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, Adjusting, got.Phase())

	assert.IsErr(t, errors.ErrInvalidParameter, k.Save(db, &State{AllocationBps: 10001}))
}
