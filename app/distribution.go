package app

import (
	"context"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/x/controller"
	"github.com/iov-one/yieldshift/x/eligibility"
	"github.com/iov-one/yieldshift/x/history"
)

// UpdateYieldDistribution runs the controller once. The allocation moves one
// bounded step toward the optimal shift for the current eligible pool sizes.
// Anyone may call it.
func (e *Engine) UpdateYieldDistribution(ctx context.Context) (controller.Decision, error) {
	var d controller.Decision
	err := e.transact(ctx, "update_yield_distribution", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		var err error
		d, err = e.updateDistribution(ctx, db, now)
		return err
	})
	return d, err
}

// CheckAndUpdateYieldDistribution is the heartbeat. It runs the controller
// only when the last update is older than the TWAP period or when the time
// weighted pool ratio left the trigger band. It returns true if the
// controller ran.
func (e *Engine) CheckAndUpdateYieldDistribution(ctx context.Context) (bool, error) {
	var updated bool
	err := e.transact(ctx, "check_and_update_yield_distribution", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		p, err := controller.LoadParams(db)
		if err != nil {
			return err
		}
		st, err := e.controller.State(db)
		if err != nil {
			return err
		}
		ratio, err := e.twapRatio(db, now, p)
		if err != nil {
			return err
		}
		if !controller.ShouldRebalance(p, st.LastUpdate, now, ratio) {
			return nil
		}
		if _, err := e.updateDistribution(ctx, db, now); err != nil {
			return err
		}
		updated = true
		return nil
	})
	return updated, err
}

// twapRatio returns the pool ratio of the time weighted pool sizes.
func (e *Engine) twapRatio(db yieldshift.ReadOnlyKVStore, now yieldshift.UnixTime, p controller.Params) (uint64, error) {
	period := p.TWAPPeriod.Duration()
	uh, err := e.history.PoolHistory(db, history.UserSide)
	if err != nil {
		return 0, err
	}
	hh, err := e.history.PoolHistory(db, history.HedgerSide)
	if err != nil {
		return 0, err
	}
	user := history.TWAP(uh, history.UserSide, now, period)
	hedger := history.TWAP(hh, history.HedgerSide, now, period)
	return controller.PoolRatio(user, hedger), nil
}

// eligiblePools returns the eligible sizes of both pools at time now.
func (e *Engine) eligiblePools(ctx context.Context, db yieldshift.ReadOnlyKVStore, now, lastUpdate yieldshift.UnixTime) (user, hedger yieldshift.Amount, err error) {
	userRaw, err := e.pools.UserPoolSize(ctx, db)
	if err != nil {
		return user, hedger, errors.Wrap(err, "user pool size")
	}
	hedgerRaw, err := e.pools.HedgerPoolSize(ctx, db)
	if err != nil {
		return user, hedger, errors.Wrap(err, "hedger pool size")
	}
	fraction := eligibility.Fraction(now, lastUpdate)
	return eligibility.Size(userRaw, fraction), eligibility.Size(hedgerRaw, fraction), nil
}

func (e *Engine) updateDistribution(ctx context.Context, db yieldshift.KVStore, now yieldshift.UnixTime) (controller.Decision, error) {
	p, err := controller.LoadParams(db)
	if err != nil {
		return controller.Decision{}, err
	}
	st, err := e.controller.State(db)
	if err != nil {
		return controller.Decision{}, err
	}
	user, hedger, err := e.eligiblePools(ctx, db, now, st.LastUpdate)
	if err != nil {
		return controller.Decision{}, err
	}

	d := controller.Decide(p, st.AllocationBps, user, hedger)
	st.AllocationBps = d.AllocationBps
	st.TargetBps = d.OptimalBps
	st.LastUpdate = now
	if err := e.controller.Save(db, st); err != nil {
		return d, errors.Wrap(err, "save controller state")
	}

	pools := history.PoolSnapshot{UserPoolSize: user, HedgerPoolSize: hedger, Timestamp: now}
	alloc := history.AllocationSnapshot{AllocationBps: d.AllocationBps, Timestamp: now}
	if err := e.history.Record(db, pools, alloc); err != nil {
		return d, err
	}

	yieldshift.GetLogger(ctx).Debug("allocation updated",
		"ratio", d.RatioBps,
		"optimal", d.OptimalBps,
		"previous", d.PreviousBps,
		"allocation", d.AllocationBps,
		"phase", d.Phase())
	return d, nil
}
