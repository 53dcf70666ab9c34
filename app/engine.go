package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/x/controller"
	"github.com/iov-one/yieldshift/x/history"
	"github.com/iov-one/yieldshift/x/ledger"
	"github.com/iov-one/yieldshift/x/sources"
)

// Config holds the store and the collaborators of an engine. Pauser and Sink
// are optional.
type Config struct {
	Store  yieldshift.CacheableKVStore
	Auth   yieldshift.Authorizer
	Pools  PoolReporter
	Funds  ledger.Funds
	Sink   ledger.UserYieldSink
	Pauser Pauser
}

// Engine is the yield distribution engine.
type Engine struct {
	db     yieldshift.CacheableKVStore
	auth   yieldshift.Authorizer
	pools  PoolReporter
	funds  ledger.Funds
	sink   ledger.UserYieldSink
	pauser Pauser

	history    history.Keeper
	controller controller.Keeper
	ledger     ledger.Keeper
	sources    sources.Registry

	// running is set for the duration of a state changing operation.
	running int32
}

// NewEngine returns an engine operating on the configured store. The store
// must be initialized with InitGenesis before any operation is called.
func NewEngine(conf Config) (*Engine, error) {
	var errs error
	if conf.Store == nil {
		errs = errors.AppendField(errs, "Store", errors.ErrEmpty)
	}
	if conf.Auth == nil {
		errs = errors.AppendField(errs, "Auth", errors.ErrEmpty)
	}
	if conf.Pools == nil {
		errs = errors.AppendField(errs, "Pools", errors.ErrEmpty)
	}
	if conf.Funds == nil {
		errs = errors.AppendField(errs, "Funds", errors.ErrEmpty)
	}
	if errs != nil {
		return nil, errs
	}
	if conf.Sink == nil {
		conf.Sink = LogSink{}
	}
	if conf.Pauser == nil {
		conf.Pauser = &Switch{}
	}
	return &Engine{
		db:         conf.Store,
		auth:       conf.Auth,
		pools:      conf.Pools,
		funds:      conf.Funds,
		sink:       conf.Sink,
		pauser:     conf.Pauser,
		history:    history.NewKeeper(),
		controller: controller.NewKeeper(),
		ledger:     ledger.NewKeeper(),
		sources:    sources.NewRegistry(),
	}, nil
}

// txFn is the body of a state changing operation. It is given a cache wrap
// of the engine store and the block time of the operation.
type txFn func(db yieldshift.KVStore, now yieldshift.UnixTime) error

// transact runs fn as a single unit of work. Pausing rejects it.
func (e *Engine) transact(ctx context.Context, op string, fn txFn) error {
	return e.run(ctx, op, true, fn)
}

// govern is transact for privileged operations that stay available while
// the engine is paused.
func (e *Engine) govern(ctx context.Context, op string, fn txFn) error {
	return e.run(ctx, op, false, fn)
}

func (e *Engine) run(ctx context.Context, op string, pausable bool, fn txFn) (err error) {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		return errors.Wrap(errors.ErrReentrant, op)
	}
	defer atomic.StoreInt32(&e.running, 0)

	start := time.Now()
	defer func() { logDuration(ctx, op, start, err) }()

	if pausable && e.pauser.IsPaused(ctx) {
		return errors.Wrap(errors.ErrPaused, op)
	}
	now, err := yieldshift.BlockUnixTime(ctx)
	if err != nil {
		return err
	}

	cache := e.db.CacheWrap()
	defer func() {
		if err != nil {
			cache.Discard()
		}
	}()
	defer errors.Recover(&err)

	if err = fn(cache, now); err != nil {
		return errors.Wrap(err, op)
	}
	if err = cache.Write(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// logDuration writes information about the time and result to the logger.
func logDuration(ctx context.Context, op string, start time.Time, err error) {
	delta := time.Since(start)
	logger := yieldshift.GetLogger(ctx).With("op", op, "duration", delta/time.Microsecond)
	if err != nil {
		logger.Error("rejected", "err", err)
		return
	}
	logger.Info("committed")
}
