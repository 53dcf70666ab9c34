package app

import (
	"context"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/x/ledger"
)

// transferTolerance is the largest accepted difference between the declared
// and the received yield amount.
var transferTolerance = yieldshift.NewAmount(1)

// AddYield credits yield of given category sent by an authorized source. The
// funds are pulled from the caller, split according to the current
// allocation and the user share is forwarded to the user yield sink.
func (e *Engine) AddYield(ctx context.Context, caller yieldshift.Address, amount yieldshift.Amount, category string) (userShare, hedgerShare yieldshift.Amount, err error) {
	err = e.transact(ctx, "add_yield", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := e.sources.Check(db, caller, category); err != nil {
			return err
		}
		amount = yieldshift.NormAmount(amount)
		if amount.IsZero() {
			return errors.Field("Amount", errors.ErrInvalidParameter, "must be positive")
		}
		received, err := e.funds.TransferIn(ctx, db, caller, amount)
		if err != nil {
			return errors.Wrap(err, "transfer in")
		}
		if diff := yieldshift.AbsDiff(received, amount); diff.GT(transferTolerance) {
			return errors.Wrapf(errors.ErrYieldAmountMismatch, "declared %s, received %s", amount, received)
		}

		st, err := e.controller.State(db)
		if err != nil {
			return err
		}
		userShare, hedgerShare, err = e.ledger.Credit(db, amount, st.AllocationBps)
		if err != nil {
			return err
		}
		if !userShare.IsZero() {
			if err := e.sink.CreditUserYield(ctx, db, userShare); err != nil {
				return errors.Wrap(err, "user yield sink")
			}
		}
		return nil
	})
	if err != nil {
		return yieldshift.ZeroAmount(), yieldshift.ZeroAmount(), err
	}
	return userShare, hedgerShare, nil
}

// ClaimUserYield pays out the pending yield of a user pool participant. Only
// the participant or the user pool may claim. The claim is rejected with
// ErrHoldingPeriodNotMet until MinHoldingPeriod passed since the last deposit.
func (e *Engine) ClaimUserYield(ctx context.Context, caller, participant yieldshift.Address) (yieldshift.Amount, error) {
	return e.claim(ctx, "claim_user_yield", ledger.UserPool, caller, participant)
}

// ClaimHedgerYield pays out the pending yield of a hedger pool participant.
// Hedger claims are not gated by the holding period.
func (e *Engine) ClaimHedgerYield(ctx context.Context, caller, participant yieldshift.Address) (yieldshift.Amount, error) {
	return e.claim(ctx, "claim_hedger_yield", ledger.HedgerPool, caller, participant)
}

func (e *Engine) claim(ctx context.Context, op string, p ledger.Pool, caller, participant yieldshift.Address) (yieldshift.Amount, error) {
	claimed := yieldshift.ZeroAmount()
	err := e.transact(ctx, op, func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := e.requireParticipantOr(caller, participant, poolRole(p)); err != nil {
			return err
		}
		amount, err := e.ledger.Claim(db, p, participant, now)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			return nil
		}
		if err := e.funds.TransferOut(ctx, db, participant, amount); err != nil {
			return errors.Wrap(err, "transfer out")
		}
		claimed = amount
		return nil
	})
	return claimed, err
}

// UpdateYieldAllocation credits pending yield of a participant. No funds
// move until the participant claims. Only the pool owning the participant
// may call it.
func (e *Engine) UpdateYieldAllocation(ctx context.Context, caller, participant yieldshift.Address, amount yieldshift.Amount, isUser bool) error {
	p := poolOf(isUser)
	return e.transact(ctx, "update_yield_allocation", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := yieldshift.RequireRole(e.auth, caller, poolRole(p)); err != nil {
			return err
		}
		return e.ledger.Allocate(db, p, participant, amount)
	})
}

// BatchUpdateYieldAllocation is UpdateYieldAllocation for up to MaxBatchSize
// participants at once. Either all allocations are applied or none.
func (e *Engine) BatchUpdateYieldAllocation(ctx context.Context, caller yieldshift.Address, participants []yieldshift.Address, amounts []yieldshift.Amount, isUser bool) error {
	p := poolOf(isUser)
	return e.transact(ctx, "batch_update_yield_allocation", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := yieldshift.RequireRole(e.auth, caller, poolRole(p)); err != nil {
			return err
		}
		if len(participants) != len(amounts) {
			return errors.Wrapf(errors.ErrArrayLengthMismatch, "%d participants, %d amounts", len(participants), len(amounts))
		}
		if len(participants) > ledger.MaxBatchSize {
			return errors.Wrapf(errors.ErrBatchSizeTooLarge, "%d > %d", len(participants), ledger.MaxBatchSize)
		}
		for i, participant := range participants {
			if err := e.ledger.Allocate(db, p, participant, amounts[i]); err != nil {
				return errors.Wrapf(err, "participant %d", i)
			}
		}
		return nil
	})
}

// UpdateLastDepositTime records a deposit of the participant at the block
// time. The calling pool decides which account is updated.
func (e *Engine) UpdateLastDepositTime(ctx context.Context, caller, participant yieldshift.Address) error {
	return e.transact(ctx, "update_last_deposit_time", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		p, err := e.callerPool(caller)
		if err != nil {
			return err
		}
		return e.ledger.TouchDeposit(db, p, participant, now)
	})
}

// EmergencyYieldDistribution debits both pool accumulators and pays the
// amounts to the configured pool addresses. Claim rules do not apply. It
// stays available while the engine is paused.
func (e *Engine) EmergencyYieldDistribution(ctx context.Context, caller yieldshift.Address, userAmount, hedgerAmount yieldshift.Amount) error {
	return e.govern(ctx, "emergency_yield_distribution", func(db yieldshift.KVStore, now yieldshift.UnixTime) error {
		if err := yieldshift.RequireRole(e.auth, caller, yieldshift.RoleEmergency); err != nil {
			return err
		}
		if err := e.ledger.Drain(db, userAmount, hedgerAmount); err != nil {
			return err
		}
		conf, err := ledger.LoadConfig(db)
		if err != nil {
			return err
		}
		if a := yieldshift.NormAmount(userAmount); !a.IsZero() {
			if err := e.funds.TransferOut(ctx, db, conf.UserPool, a); err != nil {
				return errors.Wrap(err, "user pool transfer")
			}
		}
		if a := yieldshift.NormAmount(hedgerAmount); !a.IsZero() {
			if err := e.funds.TransferOut(ctx, db, conf.HedgerPool, a); err != nil {
				return errors.Wrap(err, "hedger pool transfer")
			}
		}
		return nil
	})
}

func (e *Engine) requireParticipantOr(caller, participant yieldshift.Address, role yieldshift.Role) error {
	if len(caller) != 0 && caller.Equals(participant) {
		return nil
	}
	return yieldshift.RequireRole(e.auth, caller, role)
}

// callerPool returns the pool the caller acts for.
func (e *Engine) callerPool(caller yieldshift.Address) (ledger.Pool, error) {
	switch {
	case len(caller) == 0:
		return 0, errors.Wrap(errors.ErrNotAuthorized, "no caller")
	case e.auth.HasRole(caller, yieldshift.RoleUserPool):
		return ledger.UserPool, nil
	case e.auth.HasRole(caller, yieldshift.RoleHedgerPool):
		return ledger.HedgerPool, nil
	default:
		return 0, errors.Wrapf(errors.ErrNotAuthorized, "%s is not a pool", caller)
	}
}

func poolOf(isUser bool) ledger.Pool {
	if isUser {
		return ledger.UserPool
	}
	return ledger.HedgerPool
}

func poolRole(p ledger.Pool) yieldshift.Role {
	if p == ledger.HedgerPool {
		return yieldshift.RoleHedgerPool
	}
	return yieldshift.RoleUserPool
}
