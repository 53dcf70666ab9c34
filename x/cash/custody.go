package cash

import (
	"context"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/x/ledger"
)

// Custody holds the funds of the engine on a single account.
type Custody struct {
	ctrl    Controller
	account yieldshift.Address
}

var _ ledger.Funds = (*Custody)(nil)

// NewCustody returns a funds collaborator that keeps all received yield on
// the account.
func NewCustody(ctrl Controller, account yieldshift.Address) *Custody {
	return &Custody{ctrl: ctrl, account: account}
}

// Account returns the custody account address.
func (c *Custody) Account() yieldshift.Address {
	return c.account
}

// TransferIn moves funds from the sender into custody and returns the
// amount received, measured as the change of the custody balance.
func (c *Custody) TransferIn(ctx context.Context, db yieldshift.KVStore, from yieldshift.Address, amount yieldshift.Amount) (yieldshift.Amount, error) {
	before, err := c.ctrl.Balance(db, c.account)
	if err != nil {
		return yieldshift.ZeroAmount(), err
	}
	if err := c.ctrl.MoveCoins(db, from, c.account, amount); err != nil {
		return yieldshift.ZeroAmount(), errors.Wrap(err, "transfer in")
	}
	after, err := c.ctrl.Balance(db, c.account)
	if err != nil {
		return yieldshift.ZeroAmount(), err
	}
	return yieldshift.SafeSub(after, before)
}

// TransferOut pays the amount from custody.
func (c *Custody) TransferOut(ctx context.Context, db yieldshift.KVStore, to yieldshift.Address, amount yieldshift.Amount) error {
	if err := c.ctrl.MoveCoins(db, c.account, to, amount); err != nil {
		return errors.Wrap(err, "transfer out")
	}
	return nil
}
