package app

import (
	"context"
	"sync/atomic"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/orm"
	"github.com/iov-one/yieldshift/x/ledger"
)

// PoolReporter is the collaborator reporting raw pool sizes. The engine
// applies the eligibility filter itself.
type PoolReporter interface {
	UserPoolSize(ctx context.Context, db yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error)
	HedgerPoolSize(ctx context.Context, db yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error)
}

// Pauser is the pause collaborator. State changing operations fail with
// ErrPaused while it reports a pause.
type Pauser interface {
	IsPaused(ctx context.Context) bool
}

// Switch is a Pauser that is flipped by hand.
type Switch struct {
	paused int32
}

var _ Pauser = (*Switch)(nil)

func (s *Switch) Pause()  { atomic.StoreInt32(&s.paused, 1) }
func (s *Switch) Resume() { atomic.StoreInt32(&s.paused, 0) }

func (s *Switch) IsPaused(context.Context) bool {
	return atomic.LoadInt32(&s.paused) == 1
}

// StoredPools is a PoolReporter that serves the sizes last reported through
// Engine.ReportPoolSize. Sizes are kept in the engine store.
type StoredPools struct {
	b orm.ModelBucket
}

var _ PoolReporter = StoredPools{}

func NewStoredPools() StoredPools {
	return StoredPools{b: orm.NewModelBucket("pools")}
}

func poolSizeKey(p ledger.Pool) []byte {
	return []byte(p.String())
}

func (s StoredPools) size(db yieldshift.ReadOnlyKVStore, p ledger.Pool) (yieldshift.Amount, error) {
	var w poolSize
	switch err := s.b.One(db, poolSizeKey(p), &w); {
	case errors.ErrNotFound.Is(err):
		return yieldshift.ZeroAmount(), nil
	case err != nil:
		return yieldshift.ZeroAmount(), err
	}
	return w.amount, nil
}

func (s StoredPools) UserPoolSize(_ context.Context, db yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error) {
	return s.size(db, ledger.UserPool)
}

func (s StoredPools) HedgerPoolSize(_ context.Context, db yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error) {
	return s.size(db, ledger.HedgerPool)
}

func (s StoredPools) save(db yieldshift.KVStore, p ledger.Pool, size yieldshift.Amount) error {
	return s.b.Put(db, poolSizeKey(p), &poolSize{amount: yieldshift.NormAmount(size)})
}

// poolSize is a pool size stored by StoredPools.
type poolSize struct {
	amount yieldshift.Amount
}

func (c *poolSize) Validate() error { return nil }

func (c *poolSize) Marshal() ([]byte, error) {
	return []byte(yieldshift.NormAmount(c.amount).String()), nil
}

func (c *poolSize) Unmarshal(raw []byte) error {
	a, err := yieldshift.ParseAmount(string(raw))
	if err != nil {
		return err
	}
	c.amount = a
	return nil
}

// LogSink is a user yield sink that only logs forwarded amounts. Use it when
// the user share stays in the custody of the engine.
type LogSink struct{}

var _ ledger.UserYieldSink = LogSink{}

func (LogSink) CreditUserYield(ctx context.Context, _ yieldshift.KVStore, amount yieldshift.Amount) error {
	yieldshift.GetLogger(ctx).Info("user yield forwarded", "amount", amount.String())
	return nil
}
