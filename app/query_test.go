package app

import (
	"testing"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/yieldtest"
	"github.com/iov-one/yieldshift/yieldtest/assert"
)

func TestPoolMetrics(t *testing.T) {
	f := newFixture(t)
	f.pools.Set(2000, 1000)

	m, err := f.engine.PoolMetrics(at(yieldshift.MinHoldingPeriod))
	assert.Nil(t, err)
	assert.Amount(t, 2000, m.UserPoolSize)
	assert.Amount(t, 1600, m.EligibleUserPoolSize)
	assert.Amount(t, 800, m.EligibleHedgerPoolSize)
	assert.Equal(t, yieldshift.Bps(8000), m.EligibleFraction)
	assert.Equal(t, uint64(20000), m.PoolRatioBps)
	assert.Equal(t, yieldshift.Bps(10000), m.TargetRatioBps)

	// The discount grows with the time passed since the last update.
	_, err = f.engine.UpdateYieldDistribution(at(time.Hour))
	assert.Nil(t, err)
	m, err = f.engine.PoolMetrics(at(time.Hour))
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(8000), m.EligibleFraction)
	m, err = f.engine.PoolMetrics(at(time.Hour + 7*time.Hour*12))
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(7000), m.EligibleFraction)
}

func TestYieldDistributionBreakdown(t *testing.T) {
	f := newFixture(t)
	f.setAllocation(t, 6667)

	b, err := f.engine.YieldDistributionBreakdown(amt(1001))
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(6667), b.AllocationBps)
	assert.Amount(t, 667, b.UserShare)
	assert.Amount(t, 334, b.HedgerShare)

	// Nothing was credited.
	st, err := f.engine.LedgerState()
	assert.Nil(t, err)
	assert.Amount(t, 0, st.TotalGenerated)
}

func TestGovernance(t *testing.T) {
	f := newFixture(t)
	ctx := at(time.Hour)

	err := f.engine.SetControllerParameters(ctx, alice, 4000, 8000, 200)
	assert.IsErr(t, errors.ErrNotAuthorized, err)
	err = f.engine.SetControllerParameters(ctx, govAddr, 6000, 5000, 100)
	assert.IsErr(t, errors.ErrInvalidShiftRange, err)
	err = f.engine.SetControllerParameters(ctx, govAddr, 4000, 8000, 1001)
	assert.FieldError(t, err, "StepBps", errors.ErrInvalidParameter)
	err = f.engine.SetControllerParameters(ctx, govAddr, 4000, 10001, 100)
	assert.FieldError(t, err, "MaxBps", errors.ErrInvalidParameter)
	assert.Nil(t, f.engine.SetControllerParameters(ctx, govAddr, 4000, 8000, 200))

	err = f.engine.SetTargetRatio(ctx, govAddr, 0)
	assert.FieldError(t, err, "TargetRatioBps", errors.ErrInvalidParameter)
	err = f.engine.SetTargetRatio(ctx, govAddr, 50001)
	assert.FieldError(t, err, "TargetRatioBps", errors.ErrInvalidParameter)
	assert.Nil(t, f.engine.SetTargetRatio(ctx, govAddr, 50000))

	err = f.engine.SetTolerances(ctx, govAddr, 10001, 2000)
	assert.FieldError(t, err, "ToleranceBps", errors.ErrInvalidParameter)
	assert.Nil(t, f.engine.SetTolerances(ctx, govAddr, 500, 1500))

	err = f.engine.SetTWAPPeriod(ctx, govAddr, 0)
	assert.FieldError(t, err, "TWAPPeriod", errors.ErrInvalidParameter)
	assert.Nil(t, f.engine.SetTWAPPeriod(ctx, govAddr, time.Hour))

	p, err := f.engine.Params()
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(4000), p.BaseBps)
	assert.Equal(t, yieldshift.Bps(8000), p.MaxBps)
	assert.Equal(t, yieldshift.Bps(200), p.StepBps)
	assert.Equal(t, yieldshift.Bps(50000), p.TargetRatioBps)
	assert.Equal(t, yieldshift.Bps(500), p.ToleranceBps)
	assert.Equal(t, yieldshift.Bps(1500), p.TriggerToleranceBps)
	assert.Equal(t, time.Hour, p.TWAPPeriod.Duration())

	// Parameters do not change the committed allocation until the next
	// controller run.
	alloc, err := f.engine.CurrentAllocation()
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(5000), alloc)

	f.pools.Set(1000, 1000)
	d, err := f.engine.UpdateYieldDistribution(ctx)
	assert.Nil(t, err)
	// The ratio is far below the new target, the adjustment of 3200
	// is taken from the base.
	assert.Equal(t, yieldshift.Bps(800), d.OptimalBps)
	assert.Equal(t, yieldshift.Bps(4800), d.AllocationBps)
}

func TestReportPoolSize(t *testing.T) {
	db := store.MemStore()
	assert.Nil(t, InitGenesis(db, newGenesis(t)))
	auth := (&yieldtest.Auth{}).
		Grant(yieldshift.RoleUserPool, userPoolAddr).
		Grant(yieldshift.RoleHedgerPool, hedgerPoolAdr)
	e, err := NewEngine(Config{Store: db, Auth: auth, Pools: NewStoredPools(), Funds: &yieldtest.Funds{}})
	assert.Nil(t, err)

	m, err := e.PoolMetrics(at(time.Hour))
	assert.Nil(t, err)
	assert.Amount(t, 0, m.UserPoolSize)

	err = e.ReportPoolSize(at(time.Hour), alice, amt(10))
	assert.IsErr(t, errors.ErrNotAuthorized, err)
	assert.Nil(t, e.ReportPoolSize(at(time.Hour), userPoolAddr, amt(3000)))
	assert.Nil(t, e.ReportPoolSize(at(time.Hour), hedgerPoolAdr, amt(1000)))

	m, err = e.PoolMetrics(at(time.Hour))
	assert.Nil(t, err)
	assert.Amount(t, 3000, m.UserPoolSize)
	assert.Amount(t, 1000, m.HedgerPoolSize)
}
