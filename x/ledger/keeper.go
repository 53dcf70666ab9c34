package ledger

import (
	"context"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/orm"
)

// MaxBatchSize is the largest number of participants a single batch
// allocation may credit.
const MaxBatchSize = 100

// Funds is the custody collaborator. TransferIn returns the amount that was
// actually received, which may differ from the requested one.
type Funds interface {
	TransferIn(ctx context.Context, db yieldshift.KVStore, from yieldshift.Address, amount yieldshift.Amount) (yieldshift.Amount, error)
	TransferOut(ctx context.Context, db yieldshift.KVStore, to yieldshift.Address, amount yieldshift.Amount) error
}

// UserYieldSink receives the user share of every yield credit.
type UserYieldSink interface {
	CreditUserYield(ctx context.Context, db yieldshift.KVStore, amount yieldshift.Amount) error
}

var stateKey = []byte("state")

// Keeper reads and writes ledger state. It moves no funds.
type Keeper struct {
	state    orm.ModelBucket
	accounts orm.ModelBucket
}

func NewKeeper() Keeper {
	return Keeper{
		state:    orm.NewModelBucket("ledger"),
		accounts: orm.NewModelBucket("account"),
	}
}

func accountKey(p Pool, participant yieldshift.Address) []byte {
	prefix := byte('u')
	if p == HedgerPool {
		prefix = 'h'
	}
	return append([]byte{prefix}, participant...)
}

// Init writes zeroed counters.
func (k Keeper) Init(db yieldshift.KVStore) error {
	return k.SaveState(db, NewState())
}

// State returns the ledger counters. ErrNotFound is returned before the
// ledger was initialized.
func (k Keeper) State(db yieldshift.ReadOnlyKVStore) (*State, error) {
	var s State
	if err := k.state.One(db, stateKey, &s); err != nil {
		return nil, errors.Wrap(err, "ledger state")
	}
	return &s, nil
}

// SaveState validates and writes the ledger counters.
func (k Keeper) SaveState(db yieldshift.KVStore, s *State) error {
	return k.state.Put(db, stateKey, s)
}

// Account returns the account of the participant. Unknown participants have
// an empty account.
func (k Keeper) Account(db yieldshift.ReadOnlyKVStore, p Pool, participant yieldshift.Address) (*Account, error) {
	if err := participant.Validate(); err != nil {
		return nil, errors.Field("Participant", err, "invalid participant")
	}
	a := Account{PendingYield: yieldshift.ZeroAmount()}
	switch err := k.accounts.One(db, accountKey(p, participant), &a); {
	case errors.ErrNotFound.Is(err):
		return &a, nil
	case err != nil:
		return nil, err
	}
	return &a, nil
}

// SaveAccount writes the account of the participant.
func (k Keeper) SaveAccount(db yieldshift.KVStore, p Pool, participant yieldshift.Address, a *Account) error {
	return k.accounts.Put(db, accountKey(p, participant), a)
}

// Split divides the amount according to the allocation. The hedger share is
// the remainder, so both shares always add up to the amount.
func Split(amount yieldshift.Amount, allocation yieldshift.Bps) (userShare, hedgerShare yieldshift.Amount) {
	amount = yieldshift.NormAmount(amount)
	userShare = yieldshift.MulBps(amount, allocation)
	return userShare, amount.Sub(userShare)
}

// Credit records an inflow of yield and splits it between the pool
// accumulators.
func (k Keeper) Credit(db yieldshift.KVStore, amount yieldshift.Amount, allocation yieldshift.Bps) (userShare, hedgerShare yieldshift.Amount, err error) {
	if yieldshift.NormAmount(amount).IsZero() {
		return userShare, hedgerShare, errors.Field("Amount", errors.ErrInvalidParameter, "must be positive")
	}
	if err := allocation.Validate(); err != nil {
		return userShare, hedgerShare, errors.Field("Allocation", err, "invalid allocation")
	}
	s, err := k.State(db)
	if err != nil {
		return userShare, hedgerShare, err
	}
	userShare, hedgerShare = Split(amount, allocation)
	if s.TotalGenerated, err = yieldshift.SafeAdd(s.TotalGenerated, amount); err != nil {
		return userShare, hedgerShare, errors.Wrap(err, "total generated")
	}
	if s.UserPoolYield, err = yieldshift.SafeAdd(s.UserPoolYield, userShare); err != nil {
		return userShare, hedgerShare, errors.Wrap(err, "user pool yield")
	}
	if s.HedgerPoolYield, err = yieldshift.SafeAdd(s.HedgerPoolYield, hedgerShare); err != nil {
		return userShare, hedgerShare, errors.Wrap(err, "hedger pool yield")
	}
	return userShare, hedgerShare, k.SaveState(db, s)
}

// Allocate increases the pending yield of the participant. No funds move.
func (k Keeper) Allocate(db yieldshift.KVStore, p Pool, participant yieldshift.Address, amount yieldshift.Amount) error {
	a, err := k.Account(db, p, participant)
	if err != nil {
		return err
	}
	if a.PendingYield, err = yieldshift.SafeAdd(a.PendingYield, amount); err != nil {
		return errors.Wrap(err, "pending yield")
	}
	return k.SaveAccount(db, p, participant, a)
}

// TouchDeposit sets the last deposit time of the participant.
func (k Keeper) TouchDeposit(db yieldshift.KVStore, p Pool, participant yieldshift.Address, now yieldshift.UnixTime) error {
	a, err := k.Account(db, p, participant)
	if err != nil {
		return err
	}
	a.LastDepositTime = now
	return k.SaveAccount(db, p, participant, a)
}

// Claim clears the pending yield of the participant and debits the pool
// accumulator. The claimed amount is returned. Claiming nothing is a no-op.
//
// User claims fail with ErrHoldingPeriodNotMet until MinHoldingPeriod has
// passed since the last deposit. A claim larger than the accumulator fails
// with ErrInsufficientYield.
func (k Keeper) Claim(db yieldshift.KVStore, p Pool, participant yieldshift.Address, now yieldshift.UnixTime) (yieldshift.Amount, error) {
	a, err := k.Account(db, p, participant)
	if err != nil {
		return yieldshift.ZeroAmount(), err
	}
	pending := yieldshift.NormAmount(a.PendingYield)
	if pending.IsZero() {
		return pending, nil
	}
	if p == UserPool {
		if unlock := a.LastDepositTime.Add(yieldshift.MinHoldingPeriod); now < unlock {
			return yieldshift.ZeroAmount(), errors.Wrapf(errors.ErrHoldingPeriodNotMet, "claimable from %s", unlock)
		}
	}

	s, err := k.State(db)
	if err != nil {
		return yieldshift.ZeroAmount(), err
	}
	if err := s.debit(p, pending); err != nil {
		return yieldshift.ZeroAmount(), err
	}
	if err := k.SaveState(db, s); err != nil {
		return yieldshift.ZeroAmount(), err
	}

	a.PendingYield = yieldshift.ZeroAmount()
	a.LastClaimTime = now
	if err := k.SaveAccount(db, p, participant, a); err != nil {
		return yieldshift.ZeroAmount(), err
	}
	return pending, nil
}

// Drain debits both accumulators directly, bypassing claim rules.
func (k Keeper) Drain(db yieldshift.KVStore, userAmount, hedgerAmount yieldshift.Amount) error {
	s, err := k.State(db)
	if err != nil {
		return err
	}
	if err := s.debit(UserPool, yieldshift.NormAmount(userAmount)); err != nil {
		return err
	}
	if err := s.debit(HedgerPool, yieldshift.NormAmount(hedgerAmount)); err != nil {
		return err
	}
	return k.SaveState(db, s)
}

// debit takes the amount out of the pool accumulator and counts it as
// distributed.
func (s *State) debit(p Pool, amount yieldshift.Amount) error {
	if amount.IsZero() {
		return nil
	}
	acc := s.Accumulator(p)
	if amount.GT(acc) {
		return errors.Wrapf(errors.ErrInsufficientYield, "%s pool holds %s, %s requested", p, acc, amount)
	}
	var err error
	if p == HedgerPool {
		s.HedgerPoolYield = acc.Sub(amount)
	} else {
		s.UserPoolYield = acc.Sub(amount)
	}
	if s.TotalDistributed, err = yieldshift.SafeAdd(s.TotalDistributed, amount); err != nil {
		return errors.Wrap(err, "total distributed")
	}
	return nil
}
