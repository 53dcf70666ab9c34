package app

import (
	"context"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/x/controller"
	"github.com/iov-one/yieldshift/x/eligibility"
	"github.com/iov-one/yieldshift/x/history"
	"github.com/iov-one/yieldshift/x/ledger"
	"github.com/iov-one/yieldshift/x/sources"
)

// Queries read committed state only. They are allowed while the engine is
// paused and from inside of a running operation.

// CurrentAllocation returns the share of new yield, in basis points, that
// goes to the user pool.
func (e *Engine) CurrentAllocation() (yieldshift.Bps, error) {
	st, err := e.controller.State(e.db)
	if err != nil {
		return 0, err
	}
	return st.AllocationBps, nil
}

// ControllerState returns the persisted controller state.
func (e *Engine) ControllerState() (*controller.State, error) {
	return e.controller.State(e.db)
}

// Params returns the current controller parameters.
func (e *Engine) Params() (controller.Params, error) {
	return controller.LoadParams(e.db)
}

// PendingYield returns the unclaimed yield of a participant.
func (e *Engine) PendingYield(participant yieldshift.Address, isUser bool) (yieldshift.Amount, error) {
	a, err := e.Account(participant, isUser)
	if err != nil {
		return yieldshift.ZeroAmount(), err
	}
	return yieldshift.NormAmount(a.PendingYield), nil
}

// Account returns the ledger account of a participant.
func (e *Engine) Account(participant yieldshift.Address, isUser bool) (*ledger.Account, error) {
	return e.ledger.Account(e.db, poolOf(isUser), participant)
}

// LedgerState returns the ledger counters.
func (e *Engine) LedgerState() (*ledger.State, error) {
	return e.ledger.State(e.db)
}

// PoolMetrics describes both pools at a point in time.
type PoolMetrics struct {
	UserPoolSize           yieldshift.Amount `json:"user_pool_size"`
	HedgerPoolSize         yieldshift.Amount `json:"hedger_pool_size"`
	EligibleUserPoolSize   yieldshift.Amount `json:"eligible_user_pool_size"`
	EligibleHedgerPoolSize yieldshift.Amount `json:"eligible_hedger_pool_size"`
	EligibleFraction       yieldshift.Bps    `json:"eligible_fraction"`
	PoolRatioBps           uint64            `json:"pool_ratio_bps"`
	TargetRatioBps         yieldshift.Bps    `json:"target_ratio_bps"`
}

// PoolMetrics returns the current raw and eligible pool sizes and their
// ratio, as the controller would see them at the block time of ctx.
func (e *Engine) PoolMetrics(ctx context.Context) (*PoolMetrics, error) {
	now, err := yieldshift.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	p, err := controller.LoadParams(e.db)
	if err != nil {
		return nil, err
	}
	st, err := e.controller.State(e.db)
	if err != nil {
		return nil, err
	}
	user, err := e.pools.UserPoolSize(ctx, e.db)
	if err != nil {
		return nil, err
	}
	hedger, err := e.pools.HedgerPoolSize(ctx, e.db)
	if err != nil {
		return nil, err
	}
	fraction := eligibility.Fraction(now, st.LastUpdate)
	m := PoolMetrics{
		UserPoolSize:           yieldshift.NormAmount(user),
		HedgerPoolSize:         yieldshift.NormAmount(hedger),
		EligibleUserPoolSize:   eligibility.Size(user, fraction),
		EligibleHedgerPoolSize: eligibility.Size(hedger, fraction),
		EligibleFraction:       fraction,
		TargetRatioBps:         p.TargetRatioBps,
	}
	m.PoolRatioBps = controller.PoolRatio(m.EligibleUserPoolSize, m.EligibleHedgerPoolSize)
	return &m, nil
}

// PoolTWAP returns the time weighted average eligible size of both pools
// over the period ending at the block time of ctx. A zero period uses the
// configured TWAP period.
func (e *Engine) PoolTWAP(ctx context.Context, period time.Duration) (user, hedger yieldshift.Amount, err error) {
	now, err := yieldshift.BlockUnixTime(ctx)
	if err != nil {
		return user, hedger, err
	}
	if period == 0 {
		p, err := controller.LoadParams(e.db)
		if err != nil {
			return user, hedger, err
		}
		period = p.TWAPPeriod.Duration()
	}
	uh, err := e.history.PoolHistory(e.db, history.UserSide)
	if err != nil {
		return user, hedger, err
	}
	hh, err := e.history.PoolHistory(e.db, history.HedgerSide)
	if err != nil {
		return user, hedger, err
	}
	return history.TWAP(uh, history.UserSide, now, period), history.TWAP(hh, history.HedgerSide, now, period), nil
}

// AllocationStats returns statistics of the allocations committed within
// the window ending at the block time of ctx. A zero window covers the whole
// history.
func (e *Engine) AllocationStats(ctx context.Context, window time.Duration) (history.AllocationStats, error) {
	now, err := yieldshift.BlockUnixTime(ctx)
	if err != nil {
		return history.AllocationStats{}, err
	}
	h, err := e.history.AllocationHistory(e.db)
	if err != nil {
		return history.AllocationStats{}, err
	}
	return history.Stats(h, now, window), nil
}

// PoolHistory returns the recorded snapshots of one side, oldest first.
func (e *Engine) PoolHistory(side history.Side) ([]history.PoolSnapshot, error) {
	h, err := e.history.PoolHistory(e.db, side)
	if err != nil {
		return nil, err
	}
	return h.Snapshots(), nil
}

// AllocationHistory returns the committed allocations, oldest first.
func (e *Engine) AllocationHistory() ([]history.AllocationSnapshot, error) {
	h, err := e.history.AllocationHistory(e.db)
	if err != nil {
		return nil, err
	}
	return h.Snapshots(), nil
}

// SourceAuthorization returns the authorization of a yield source.
// ErrNotFound is returned for unknown sources.
func (e *Engine) SourceAuthorization(source yieldshift.Address) (*sources.Authorization, error) {
	return e.sources.Source(e.db, source)
}

// Sources returns all authorized yield sources.
func (e *Engine) Sources() ([]sources.Authorization, error) {
	return e.sources.All(e.db)
}

// Breakdown shows how an amount of new yield would be split right now.
type Breakdown struct {
	AllocationBps yieldshift.Bps    `json:"allocation_bps"`
	UserShare     yieldshift.Amount `json:"user_share"`
	HedgerShare   yieldshift.Amount `json:"hedger_share"`
}

// YieldDistributionBreakdown splits the amount with the current allocation
// without changing any state.
func (e *Engine) YieldDistributionBreakdown(amount yieldshift.Amount) (Breakdown, error) {
	alloc, err := e.CurrentAllocation()
	if err != nil {
		return Breakdown{}, err
	}
	user, hedger := ledger.Split(amount, alloc)
	return Breakdown{AllocationBps: alloc, UserShare: user, HedgerShare: hedger}, nil
}
