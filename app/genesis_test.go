package app

import (
	"testing"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/x/cash"
	"github.com/iov-one/yieldshift/x/controller"
	"github.com/iov-one/yieldshift/x/ledger"
	"github.com/iov-one/yieldshift/yieldtest/assert"
)

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		file        string
		wantLoadErr *errors.Error
		wantInitErr *errors.Error
	}{
		"no such file": {
			file:        "testdata/missing.json",
			wantLoadErr: errors.ErrInput,
		},
		"valid": {
			file: "testdata/genesis.json",
		},
		"invalid shift range": {
			file:        "testdata/bad_genesis.json",
			wantInitErr: errors.ErrInvalidShiftRange,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			gen, err := LoadGenesis(tc.file)
			if tc.wantLoadErr != nil {
				assert.IsErr(t, tc.wantLoadErr, err)
				return
			}
			assert.Nil(t, err)

			db := store.MemStore()
			err = InitGenesis(db, gen)
			if tc.wantInitErr != nil {
				assert.IsErr(t, tc.wantInitErr, err)
				// Nothing was written.
				_, err := controller.LoadParams(db)
				assert.IsErr(t, errors.ErrNotFound, err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestInitGenesis(t *testing.T) {
	gen, err := LoadGenesis("testdata/genesis.json")
	assert.Nil(t, err)

	db := store.MemStore()
	assert.Nil(t, InitGenesis(db, gen))

	p, err := controller.LoadParams(db)
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(6000), p.BaseBps)
	assert.Equal(t, yieldshift.Bps(20000), p.TargetRatioBps)
	assert.Equal(t, 12*time.Hour, p.TWAPPeriod.Duration())

	st, err := controller.NewKeeper().State(db)
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(6000), st.AllocationBps)
	assert.Equal(t, controller.Stable, st.Phase())
	assert.Equal(t, yieldshift.AsUnixTime(genesisTime), st.LastUpdate)

	conf, err := ledger.LoadConfig(db)
	assert.Nil(t, err)
	assert.Equal(t, userPoolAddr, conf.UserPool)
	assert.Equal(t, hedgerPoolAdr, conf.HedgerPool)

	ls, err := ledger.NewKeeper().State(db)
	assert.Nil(t, err)
	assert.Amount(t, 0, ls.TotalGenerated)

	balance, err := cash.NewController().Balance(db, sourceAddr)
	assert.Nil(t, err)
	assert.Amount(t, 5000, balance)

	err = InitGenesis(db, gen)
	assert.IsErr(t, errors.ErrState, err)
}

func TestInitGenesisDefaults(t *testing.T) {
	gen := newGenesis(t)
	delete(gen.Conf, controller.ConfigName)

	db := store.MemStore()
	assert.Nil(t, InitGenesis(db, gen))
	p, err := controller.LoadParams(db)
	assert.Nil(t, err)
	assert.Equal(t, controller.DefaultParams(), p)

	st, err := controller.NewKeeper().State(db)
	assert.Nil(t, err)
	assert.Equal(t, yieldshift.Bps(5000), st.AllocationBps)
}

func TestInitGenesisRequiresPools(t *testing.T) {
	gen := newGenesis(t)
	delete(gen.Conf, ledger.ConfigName)

	db := store.MemStore()
	err := InitGenesis(db, gen)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = controller.NewKeeper().State(db)
	assert.IsErr(t, errors.ErrNotFound, err)

	gen = newGenesis(t)
	gen.Time = 0
	err = InitGenesis(db, gen)
	assert.FieldError(t, err, "Time", errors.ErrInput)
}
