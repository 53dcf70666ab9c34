package yieldtest

import (
	"context"

	"github.com/iov-one/yieldshift"
)

// Auth is a mock implementing yieldshift.Authorizer interface.
//
// Roles maps a role to the addresses that hold it. A nil map grants nothing.
type Auth struct {
	Roles map[yieldshift.Role][]yieldshift.Address
}

var _ yieldshift.Authorizer = (*Auth)(nil)

// Grant gives the role to all addresses.
func (a *Auth) Grant(role yieldshift.Role, addrs ...yieldshift.Address) *Auth {
	if a.Roles == nil {
		a.Roles = make(map[yieldshift.Role][]yieldshift.Address)
	}
	a.Roles[role] = append(a.Roles[role], addrs...)
	return a
}

func (a *Auth) HasRole(caller yieldshift.Address, role yieldshift.Role) bool {
	for _, addr := range a.Roles[role] {
		if addr.Equals(caller) {
			return true
		}
	}
	return false
}

// Pools is a mock pool size reporter. Sizes are returned as they are, unless
// Err is set.
type Pools struct {
	User   yieldshift.Amount
	Hedger yieldshift.Amount
	Err    error
}

func (p *Pools) UserPoolSize(context.Context, yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error) {
	if p.Err != nil {
		return yieldshift.ZeroAmount(), p.Err
	}
	return yieldshift.NormAmount(p.User), nil
}

func (p *Pools) HedgerPoolSize(context.Context, yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error) {
	if p.Err != nil {
		return yieldshift.ZeroAmount(), p.Err
	}
	return yieldshift.NormAmount(p.Hedger), nil
}

// Set replaces both pool sizes.
func (p *Pools) Set(user, hedger uint64) {
	p.User = yieldshift.NewAmount(user)
	p.Hedger = yieldshift.NewAmount(hedger)
}

// Transfer is a single funds movement recorded by Funds.
type Transfer struct {
	In      bool
	Account yieldshift.Address
	Amount  yieldshift.Amount
}

// Funds is a mock funds collaborator that only records transfers.
//
// Fee is subtracted from every incoming transfer, to simulate fee on
// transfer assets. Err fails every transfer.
type Funds struct {
	Fee       yieldshift.Amount
	Err       error
	Transfers []Transfer
}

func (f *Funds) TransferIn(_ context.Context, _ yieldshift.KVStore, from yieldshift.Address, amount yieldshift.Amount) (yieldshift.Amount, error) {
	if f.Err != nil {
		return yieldshift.ZeroAmount(), f.Err
	}
	received, err := yieldshift.SafeSub(amount, yieldshift.NormAmount(f.Fee))
	if err != nil {
		return yieldshift.ZeroAmount(), err
	}
	f.Transfers = append(f.Transfers, Transfer{In: true, Account: from, Amount: received})
	return received, nil
}

func (f *Funds) TransferOut(_ context.Context, _ yieldshift.KVStore, to yieldshift.Address, amount yieldshift.Amount) error {
	if f.Err != nil {
		return f.Err
	}
	f.Transfers = append(f.Transfers, Transfer{Account: to, Amount: amount})
	return nil
}

// Sink is a mock user yield sink recording every credit.
type Sink struct {
	Err     error
	Credits []yieldshift.Amount
}

func (s *Sink) CreditUserYield(_ context.Context, _ yieldshift.KVStore, amount yieldshift.Amount) error {
	if s.Err != nil {
		return s.Err
	}
	s.Credits = append(s.Credits, amount)
	return nil
}
