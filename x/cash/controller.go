package cash

import (
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/orm"
)

// Controller is the functionality needed by the engine and the daemon to
// manage balances.
type Controller interface {
	Balance(db yieldshift.ReadOnlyKVStore, addr yieldshift.Address) (yieldshift.Amount, error)
	IssueCoins(db yieldshift.KVStore, dest yieldshift.Address, amount yieldshift.Amount) error
	MoveCoins(db yieldshift.KVStore, src, dest yieldshift.Address, amount yieldshift.Amount) error
}

// BaseController is a simple implementation of the controller. Wallets are
// stored in the "cash" bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

func NewController() BaseController {
	return BaseController{bucket: orm.NewModelBucket("cash")}
}

func (c BaseController) wallet(db yieldshift.ReadOnlyKVStore, addr yieldshift.Address) (*Wallet, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet address")
	}
	w := Wallet{Balance: yieldshift.ZeroAmount()}
	switch err := c.bucket.One(db, addr, &w); {
	case errors.ErrNotFound.Is(err):
		return &w, nil
	case err != nil:
		return nil, err
	}
	return &w, nil
}

// Balance returns the balance of the address. Unknown addresses hold nothing.
func (c BaseController) Balance(db yieldshift.ReadOnlyKVStore, addr yieldshift.Address) (yieldshift.Amount, error) {
	w, err := c.wallet(db, addr)
	if err != nil {
		return yieldshift.ZeroAmount(), err
	}
	return yieldshift.NormAmount(w.Balance), nil
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db yieldshift.KVStore, dest yieldshift.Address, amount yieldshift.Amount) error {
	w, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if w.Balance, err = yieldshift.SafeAdd(w.Balance, amount); err != nil {
		return err
	}
	return c.bucket.Put(db, dest, w)
}

// MoveCoins moves the given amount from src to dest. If src doesn't have
// sufficient coins, it fails.
func (c BaseController) MoveCoins(db yieldshift.KVStore, src, dest yieldshift.Address, amount yieldshift.Amount) error {
	if yieldshift.NormAmount(amount).IsZero() {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}
	sender, err := c.wallet(db, src)
	if err != nil {
		return errors.Wrap(err, "sender")
	}
	if sender.Balance, err = yieldshift.SafeSub(sender.Balance, amount); err != nil {
		return errors.Wrapf(err, "insufficient funds of %s", src)
	}
	if err := c.bucket.Put(db, src, sender); err != nil {
		return err
	}

	// Read the recipient after the sender was saved, so that a transfer
	// to self is not counted twice.
	recipient, err := c.wallet(db, dest)
	if err != nil {
		return errors.Wrap(err, "recipient")
	}
	if recipient.Balance, err = yieldshift.SafeAdd(recipient.Balance, amount); err != nil {
		return err
	}
	return c.bucket.Put(db, dest, recipient)
}
