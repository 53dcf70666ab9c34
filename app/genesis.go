package app

import (
	"encoding/json"
	"os"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/gconf"
	"github.com/iov-one/yieldshift/x/cash"
	"github.com/iov-one/yieldshift/x/controller"
	"github.com/iov-one/yieldshift/x/ledger"
	"github.com/iov-one/yieldshift/x/sources"
)

// Genesis is the initial state of an engine.
//
// Conf holds package configurations keyed by the package name ("controller",
// "ledger"). Controller parameters default to controller.DefaultParams.
type Genesis struct {
	Time    yieldshift.UnixTime        `json:"time"`
	Conf    map[string]json.RawMessage `json:"conf"`
	Sources []sources.Authorization    `json:"sources,omitempty"`
	Wallets []GenesisWallet            `json:"wallets,omitempty"`
}

// GenesisWallet is an initial balance.
type GenesisWallet struct {
	Address yieldshift.Address `json:"address"`
	Balance yieldshift.Amount  `json:"balance"`
}

// DefaultGenesis returns a genesis with default controller parameters that
// pays emergency distributions to given pools.
func DefaultGenesis(t yieldshift.UnixTime, userPool, hedgerPool yieldshift.Address) (Genesis, error) {
	params, err := json.Marshal(controller.DefaultParams())
	if err != nil {
		return Genesis{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	pools, err := json.Marshal(ledger.Config{UserPool: userPool, HedgerPool: hedgerPool})
	if err != nil {
		return Genesis{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return Genesis{
		Time: t,
		Conf: map[string]json.RawMessage{
			controller.ConfigName: params,
			ledger.ConfigName:     pools,
		},
	}, nil
}

// LoadGenesis reads a genesis file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// InitGenesis writes the initial state. The allocation starts at the base
// allocation and the genesis time counts as the last controller update.
// Nothing is written if any part of the genesis is invalid.
func InitGenesis(db yieldshift.CacheableKVStore, gen Genesis) (err error) {
	if gen.Time <= 0 {
		return errors.Field("Time", errors.ErrInput, "genesis time required")
	}
	ctrl := controller.NewKeeper()
	switch _, err := ctrl.State(db); {
	case err == nil:
		return errors.Wrap(errors.ErrState, "already initialized")
	case !errors.ErrNotFound.Is(err):
		return err
	}

	cache := db.CacheWrap()
	defer func() {
		if err != nil {
			cache.Discard()
		}
	}()

	params := controller.DefaultParams()
	switch err := gconf.InitConfig(cache, gen.Conf, controller.ConfigName, &params); {
	case errors.ErrNotFound.Is(err):
		if err := controller.SaveParams(cache, params); err != nil {
			return err
		}
	case err != nil:
		return err
	}
	if err := gconf.InitConfig(cache, gen.Conf, ledger.ConfigName, &ledger.Config{}); err != nil {
		return err
	}

	st := controller.State{
		AllocationBps: params.BaseBps,
		TargetBps:     params.BaseBps,
		LastUpdate:    gen.Time,
	}
	if err := ctrl.Save(cache, &st); err != nil {
		return errors.Wrap(err, "controller state")
	}
	if err := ledger.NewKeeper().Init(cache); err != nil {
		return errors.Wrap(err, "ledger state")
	}

	reg := sources.NewRegistry()
	for i, s := range gen.Sources {
		if err := reg.Authorize(cache, s.Source, s.Category); err != nil {
			return errors.Wrapf(err, "source %d", i)
		}
	}
	bank := cash.NewController()
	for i, w := range gen.Wallets {
		if err := bank.IssueCoins(cache, w.Address, w.Balance); err != nil {
			return errors.Wrapf(err, "wallet %d", i)
		}
	}
	return cache.Write()
}
