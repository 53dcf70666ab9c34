package history

import (
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/orm"
)

var (
	userPoolKey   = []byte("user")
	hedgerPoolKey = []byte("hedger")
	allocationKey = []byte("allocation")
)

// Keeper persists the three history series.
type Keeper struct {
	b orm.ModelBucket
}

// NewKeeper returns a keeper storing data in the "history" bucket.
func NewKeeper() Keeper {
	return Keeper{b: orm.NewModelBucket("history")}
}

func poolKey(side Side) []byte {
	if side == HedgerSide {
		return hedgerPoolKey
	}
	return userPoolKey
}

// PoolHistory loads the series of given side. A series that was never
// written is returned empty.
func (k Keeper) PoolHistory(db yieldshift.ReadOnlyKVStore, side Side) (*PoolHistory, error) {
	var h PoolHistory
	switch err := k.b.One(db, poolKey(side), &h); {
	case errors.ErrNotFound.Is(err):
		return &h, nil
	case err != nil:
		return nil, errors.Wrapf(err, "%s pool history", side)
	}
	return &h, nil
}

// SavePoolHistory writes the series of given side.
func (k Keeper) SavePoolHistory(db yieldshift.KVStore, side Side, h *PoolHistory) error {
	return k.b.Put(db, poolKey(side), h)
}

// AllocationHistory loads the allocation series. A series that was never
// written is returned empty.
func (k Keeper) AllocationHistory(db yieldshift.ReadOnlyKVStore) (*AllocationHistory, error) {
	var h AllocationHistory
	switch err := k.b.One(db, allocationKey, &h); {
	case errors.ErrNotFound.Is(err):
		return &h, nil
	case err != nil:
		return nil, errors.Wrap(err, "allocation history")
	}
	return &h, nil
}

// SaveAllocationHistory writes the allocation series.
func (k Keeper) SaveAllocationHistory(db yieldshift.KVStore, h *AllocationHistory) error {
	return k.b.Put(db, allocationKey, h)
}

// Record appends the snapshot to both pool series and the allocation sample
// to the allocation series.
func (k Keeper) Record(db yieldshift.KVStore, pools PoolSnapshot, alloc AllocationSnapshot) error {
	for _, side := range []Side{UserSide, HedgerSide} {
		h, err := k.PoolHistory(db, side)
		if err != nil {
			return err
		}
		h.Append(pools)
		if err := k.SavePoolHistory(db, side, h); err != nil {
			return errors.Wrapf(err, "save %s pool history", side)
		}
	}
	h, err := k.AllocationHistory(db)
	if err != nil {
		return err
	}
	h.Append(alloc)
	if err := k.SaveAllocationHistory(db, h); err != nil {
		return errors.Wrap(err, "save allocation history")
	}
	return nil
}
