package app

import (
	"context"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/x/controller"
)

// SetControllerParameters changes the base and the maximum allocation and
// the adjustment step. The change applies from the next controller run.
func (e *Engine) SetControllerParameters(ctx context.Context, caller yieldshift.Address, base, max, step yieldshift.Bps) error {
	return e.updateParams(ctx, "set_controller_parameters", caller, func(p *controller.Params) {
		p.BaseBps = base
		p.MaxBps = max
		p.StepBps = step
	})
}

// SetTargetRatio changes the pool ratio the controller aims at.
func (e *Engine) SetTargetRatio(ctx context.Context, caller yieldshift.Address, ratio yieldshift.Bps) error {
	return e.updateParams(ctx, "set_target_ratio", caller, func(p *controller.Params) {
		p.TargetRatioBps = ratio
	})
}

// SetTolerances changes the band within which the base allocation is used
// and the wider band watched by the heartbeat.
func (e *Engine) SetTolerances(ctx context.Context, caller yieldshift.Address, tolerance, trigger yieldshift.Bps) error {
	return e.updateParams(ctx, "set_tolerances", caller, func(p *controller.Params) {
		p.ToleranceBps = tolerance
		p.TriggerToleranceBps = trigger
	})
}

// SetTWAPPeriod changes the lookback period of the heartbeat.
func (e *Engine) SetTWAPPeriod(ctx context.Context, caller yieldshift.Address, period time.Duration) error {
	return e.updateParams(ctx, "set_twap_period", caller, func(p *controller.Params) {
		p.TWAPPeriod = controller.Duration(period)
	})
}

func (e *Engine) updateParams(ctx context.Context, op string, caller yieldshift.Address, change func(*controller.Params)) error {
	return e.govern(ctx, op, func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := yieldshift.RequireRole(e.auth, caller, yieldshift.RoleGovernance); err != nil {
			return err
		}
		p, err := controller.LoadParams(db)
		if err != nil {
			return err
		}
		change(&p)
		return controller.SaveParams(db, p)
	})
}

// AuthorizeYieldSource allows the source to add yield of given category.
func (e *Engine) AuthorizeYieldSource(ctx context.Context, caller, source yieldshift.Address, category string) error {
	return e.govern(ctx, "authorize_yield_source", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := yieldshift.RequireRole(e.auth, caller, yieldshift.RoleGovernance); err != nil {
			return err
		}
		return e.sources.Authorize(db, source, category)
	})
}

// RevokeYieldSource removes the authorization of the source. Further yield
// from it is rejected.
func (e *Engine) RevokeYieldSource(ctx context.Context, caller, source yieldshift.Address) error {
	return e.govern(ctx, "revoke_yield_source", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := yieldshift.RequireRole(e.auth, caller, yieldshift.RoleGovernance); err != nil {
			return err
		}
		return e.sources.Revoke(db, source)
	})
}

// ReportPoolSize stores the raw size of the pool of the caller. Sizes are
// served by StoredPools.
func (e *Engine) ReportPoolSize(ctx context.Context, caller yieldshift.Address, size yieldshift.Amount) error {
	return e.transact(ctx, "report_pool_size", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		p, err := e.callerPool(caller)
		if err != nil {
			return err
		}
		return NewStoredPools().save(db, p, size)
	})
}
