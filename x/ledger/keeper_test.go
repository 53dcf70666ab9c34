package ledger

import (
	"testing"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/yieldtest"
	"github.com/iov-one/yieldshift/yieldtest/assert"
)

func amt(n uint64) yieldshift.Amount {
	return yieldshift.NewAmount(n)
}

func TestSplitIsExact(t *testing.T) {
	amounts := []uint64{1, 2, 3, 7, 999, 1000, 1001, 123456789, 18446744073709551615}
	allocations := []yieldshift.Bps{0, 1, 3333, 5000, 6000, 6667, 9999, 10000}
	for _, a := range amounts {
		for _, alloc := range allocations {
			user, hedger := Split(amt(a), alloc)
			if !user.Add(hedger).Equal(amt(a)) {
				t.Fatalf("%d at %d: %s + %s", a, alloc, user, hedger)
			}
		}
	}

	user, hedger := Split(amt(1000), 6000)
	assert.Amount(t, 600, user)
	assert.Amount(t, 400, hedger)
}

func newLedger(t testing.TB) (yieldshift.CacheableKVStore, Keeper) {
	t.Helper()
	db := store.MemStore()
	k := NewKeeper()
	assert.Nil(t, k.Init(db))
	return db, k
}

func TestCredit(t *testing.T) {
	db, k := newLedger(t)

	user, hedger, err := k.Credit(db, amt(1000), 6000)
	assert.Nil(t, err)
	assert.Amount(t, 600, user)
	assert.Amount(t, 400, hedger)

	s, err := k.State(db)
	assert.Nil(t, err)
	assert.Amount(t, 1000, s.TotalGenerated)
	assert.Amount(t, 0, s.TotalDistributed)
	assert.Amount(t, 600, s.UserPoolYield)
	assert.Amount(t, 400, s.HedgerPoolYield)

	_, _, err = k.Credit(db, amt(0), 6000)
	assert.FieldError(t, err, "Amount", errors.ErrInvalidParameter)
	_, _, err = k.Credit(db, amt(10), 10001)
	assert.FieldError(t, err, "Allocation", errors.ErrInvalidParameter)
}

func TestUserClaimHoldingPeriod(t *testing.T) {
	db, k := newLedger(t)
	alice := yieldtest.SequenceAddr(1)
	deposit := yieldshift.UnixTime(1000000)

	_, _, err := k.Credit(db, amt(1000), 5000)
	assert.Nil(t, err)
	assert.Nil(t, k.TouchDeposit(db, UserPool, alice, deposit))
	assert.Nil(t, k.Allocate(db, UserPool, alice, amt(300)))

	unlock := deposit.Add(yieldshift.MinHoldingPeriod)
	_, err = k.Claim(db, UserPool, alice, unlock-1)
	assert.IsErr(t, errors.ErrHoldingPeriodNotMet, err)

	got, err := k.Claim(db, UserPool, alice, unlock)
	assert.Nil(t, err)
	assert.Amount(t, 300, got)

	a, err := k.Account(db, UserPool, alice)
	assert.Nil(t, err)
	assert.Amount(t, 0, a.PendingYield)
	assert.Equal(t, unlock, a.LastClaimTime)

	s, err := k.State(db)
	assert.Nil(t, err)
	assert.Amount(t, 200, s.UserPoolYield)
	assert.Amount(t, 300, s.TotalDistributed)
	assert.Nil(t, s.Validate())

	// Nothing left, claiming again is a no-op.
	got, err = k.Claim(db, UserPool, alice, unlock+10)
	assert.Nil(t, err)
	assert.Amount(t, 0, got)
	a, err = k.Account(db, UserPool, alice)
	assert.Nil(t, err)
	assert.Equal(t, unlock, a.LastClaimTime)
}

func TestClaimErrorsAreDistinct(t *testing.T) {
	db, k := newLedger(t)
	alice := yieldtest.SequenceAddr(1)
	now := yieldshift.UnixTime(5000000)

	_, _, err := k.Credit(db, amt(100), 5000)
	assert.Nil(t, err)
	assert.Nil(t, k.Allocate(db, UserPool, alice, amt(80)))

	// Holding period satisfied, but the accumulator holds only 50.
	_, err = k.Claim(db, UserPool, alice, now)
	assert.IsErr(t, errors.ErrInsufficientYield, err)
	if errors.ErrHoldingPeriodNotMet.Is(err) {
		t.Fatal("insufficient yield must not look like a holding period failure")
	}

	assert.Nil(t, k.TouchDeposit(db, UserPool, alice, now))
	_, err = k.Claim(db, UserPool, alice, now)
	assert.IsErr(t, errors.ErrHoldingPeriodNotMet, err)
	if errors.ErrInsufficientYield.Is(err) {
		t.Fatal("holding period failure must not look like insufficient yield")
	}
}

func TestHedgerClaimIsNotGated(t *testing.T) {
	db, k := newLedger(t)
	bob := yieldtest.SequenceAddr(2)
	now := yieldshift.UnixTime(1000)

	_, _, err := k.Credit(db, amt(1000), 6000)
	assert.Nil(t, err)
	assert.Nil(t, k.TouchDeposit(db, HedgerPool, bob, now))
	assert.Nil(t, k.Allocate(db, HedgerPool, bob, amt(400)))

	got, err := k.Claim(db, HedgerPool, bob, now)
	assert.Nil(t, err)
	assert.Amount(t, 400, got)

	s, err := k.State(db)
	assert.Nil(t, err)
	assert.Amount(t, 0, s.HedgerPoolYield)
	assert.Amount(t, 600, s.UserPoolYield)
}

func TestPoolsAreSeparate(t *testing.T) {
	db, k := newLedger(t)
	alice := yieldtest.SequenceAddr(1)

	assert.Nil(t, k.Allocate(db, UserPool, alice, amt(10)))
	a, err := k.Account(db, HedgerPool, alice)
	assert.Nil(t, err)
	assert.Amount(t, 0, a.PendingYield)

	_, err = k.Account(db, UserPool, nil)
	assert.FieldError(t, err, "Participant", errors.ErrZeroAddress)
}

func TestDrain(t *testing.T) {
	db, k := newLedger(t)
	_, _, err := k.Credit(db, amt(1000), 6000)
	assert.Nil(t, err)

	assert.IsErr(t, errors.ErrInsufficientYield, k.Drain(db, amt(601), amt(0)))
	assert.IsErr(t, errors.ErrInsufficientYield, k.Drain(db, amt(0), amt(401)))

	assert.Nil(t, k.Drain(db, amt(600), amt(100)))
	s, err := k.State(db)
	assert.Nil(t, err)
	assert.Amount(t, 0, s.UserPoolYield)
	assert.Amount(t, 300, s.HedgerPoolYield)
	assert.Amount(t, 700, s.TotalDistributed)
}

func TestStateInvariant(t *testing.T) {
	s := NewState()
	s.TotalGenerated = amt(100)
	s.UserPoolYield = amt(60)
	s.HedgerPoolYield = amt(40)
	assert.Nil(t, s.Validate())

	s.TotalDistributed = amt(1)
	assert.IsErr(t, errors.ErrModel, s.Validate())

	s.TotalDistributed = amt(101)
	assert.FieldError(t, s.Validate(), "TotalDistributed", errors.ErrModel)
}

func TestStateRoundTrip(t *testing.T) {
	s := NewState()
	s.TotalGenerated, _ = yieldshift.ParseAmount("340282366920938463463374607431768211456")
	s.UserPoolYield = amt(7)
	raw, err := s.Marshal()
	assert.Nil(t, err)

	var got State
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, s.TotalGenerated.String(), got.TotalGenerated.String())
	assert.Amount(t, 7, got.UserPoolYield)
	assert.Amount(t, 0, got.HedgerPoolYield)
}
