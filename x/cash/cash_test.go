package cash

import (
	"context"
	"testing"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/yieldtest"
	"github.com/iov-one/yieldshift/yieldtest/assert"
)

func TestMoveCoins(t *testing.T) {
	db := store.MemStore()
	c := NewController()
	alice, bob := yieldtest.SequenceAddr(1), yieldtest.SequenceAddr(2)

	assert.Nil(t, c.IssueCoins(db, alice, yieldshift.NewAmount(100)))

	cases := map[string]struct {
		src, dest yieldshift.Address
		amount    uint64
		wantErr   *errors.Error
		wantAlice uint64
		wantBob   uint64
	}{
		"regular transfer": {
			src: alice, dest: bob, amount: 30,
			wantAlice: 70, wantBob: 30,
		},
		"insufficient funds": {
			src: bob, dest: alice, amount: 31,
			wantErr:   errors.ErrAmount,
			wantAlice: 70, wantBob: 30,
		},
		"zero amount": {
			src: alice, dest: bob, amount: 0,
			wantErr:   errors.ErrAmount,
			wantAlice: 70, wantBob: 30,
		},
		"to self": {
			src: alice, dest: alice, amount: 70,
			wantAlice: 70, wantBob: 30,
		},
		"invalid recipient": {
			src: alice, dest: yieldshift.Address("x"), amount: 1,
			wantErr:   errors.ErrInput,
			wantAlice: 70, wantBob: 30,
		},
	}

	// Cases run in order as each one builds on the previous balances.
	for _, name := range []string{"regular transfer", "insufficient funds", "zero amount", "to self", "invalid recipient"} {
		tc := cases[name]
		t.Run(name, func(t *testing.T) {
			cache := db.CacheWrap()
			err := c.MoveCoins(cache, tc.src, tc.dest, yieldshift.NewAmount(tc.amount))
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				cache.Discard()
			} else {
				assert.Nil(t, err)
				assert.Nil(t, cache.Write())
			}
			a, err := c.Balance(db, alice)
			assert.Nil(t, err)
			assert.Amount(t, tc.wantAlice, a)
			b, err := c.Balance(db, bob)
			assert.Nil(t, err)
			assert.Amount(t, tc.wantBob, b)
		})
	}
}

func TestCustody(t *testing.T) {
	db := store.MemStore()
	ctx := context.Background()
	c := NewController()
	vault := yieldtest.SequenceAddr(100)
	source, user := yieldtest.SequenceAddr(1), yieldtest.SequenceAddr(2)
	custody := NewCustody(c, vault)

	assert.Nil(t, c.IssueCoins(db, source, yieldshift.NewAmount(1000)))

	got, err := custody.TransferIn(ctx, db, source, yieldshift.NewAmount(600))
	assert.Nil(t, err)
	assert.Amount(t, 600, got)

	_, err = custody.TransferIn(ctx, db, source, yieldshift.NewAmount(401))
	assert.IsErr(t, errors.ErrAmount, err)

	assert.Nil(t, custody.TransferOut(ctx, db, user, yieldshift.NewAmount(250)))
	assert.IsErr(t, errors.ErrAmount, custody.TransferOut(ctx, db, user, yieldshift.NewAmount(351)))

	bal, err := c.Balance(db, vault)
	assert.Nil(t, err)
	assert.Amount(t, 350, bal)
	bal, err = c.Balance(db, user)
	assert.Nil(t, err)
	assert.Amount(t, 250, bal)
}
