package history

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
)

// PoolSnapshot is a single sample of the eligible size of both pools. It is
// immutable once appended.
type PoolSnapshot struct {
	UserPoolSize   yieldshift.Amount
	HedgerPoolSize yieldshift.Amount
	Timestamp      yieldshift.UnixTime
}

// Size returns the size of the pool on given side.
func (s PoolSnapshot) Size(side Side) yieldshift.Amount {
	if side == HedgerSide {
		return yieldshift.NormAmount(s.HedgerPoolSize)
	}
	return yieldshift.NormAmount(s.UserPoolSize)
}

// AllocationSnapshot is a single sample of the committed allocation.
type AllocationSnapshot struct {
	AllocationBps yieldshift.Bps
	Timestamp     yieldshift.UnixTime
}

// Side selects one of the two pools.
type Side int

const (
	UserSide Side = iota
	HedgerSide
)

func (s Side) String() string {
	if s == HedgerSide {
		return "hedger"
	}
	return "user"
}

// PoolHistory is a bounded series of pool snapshots.
type PoolHistory struct {
	s series[PoolSnapshot]
}

var _ yieldshift.Model = (*PoolHistory)(nil)

// Append adds a snapshot, evicting the oldest one when the history is full.
func (h *PoolHistory) Append(snap PoolSnapshot) {
	h.s.append(snap, MaxHistoryLength)
}

// Latest returns the most recent snapshot. False is returned if the history
// is empty.
func (h *PoolHistory) Latest() (PoolSnapshot, bool) {
	return h.s.latest()
}

// Len returns the number of snapshots held.
func (h *PoolHistory) Len() int {
	return len(h.s.items)
}

// Snapshots returns a copy of all snapshots, oldest first.
func (h *PoolHistory) Snapshots() []PoolSnapshot {
	return append([]PoolSnapshot(nil), h.s.items...)
}

func (h *PoolHistory) Validate() error {
	if len(h.s.items) > MaxHistoryLength {
		return errors.Wrapf(errors.ErrModel, "%d snapshots exceed %d", len(h.s.items), MaxHistoryLength)
	}
	var prev yieldshift.UnixTime
	for i, snap := range h.s.items {
		if snap.Timestamp < prev {
			return errors.Wrapf(errors.ErrModel, "snapshot %d is older than its predecessor", i)
		}
		prev = snap.Timestamp
	}
	return nil
}

func (h *PoolHistory) Marshal() ([]byte, error) {
	w := poolHistoryWire{Snapshots: make([]*poolSnapshotWire, len(h.s.items))}
	for i, snap := range h.s.items {
		w.Snapshots[i] = &poolSnapshotWire{
			UserPoolSize:   yieldshift.NormAmount(snap.UserPoolSize).String(),
			HedgerPoolSize: yieldshift.NormAmount(snap.HedgerPoolSize).String(),
			Timestamp:      int64(snap.Timestamp),
		}
	}
	return proto.Marshal(&w)
}

func (h *PoolHistory) Unmarshal(raw []byte) error {
	var w poolHistoryWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	items := make([]PoolSnapshot, len(w.Snapshots))
	for i, ws := range w.Snapshots {
		user, err := yieldshift.ParseAmount(ws.UserPoolSize)
		if err != nil {
			return errors.Wrapf(err, "snapshot %d user pool size", i)
		}
		hedger, err := yieldshift.ParseAmount(ws.HedgerPoolSize)
		if err != nil {
			return errors.Wrapf(err, "snapshot %d hedger pool size", i)
		}
		items[i] = PoolSnapshot{
			UserPoolSize:   user,
			HedgerPoolSize: hedger,
			Timestamp:      yieldshift.UnixTime(ws.Timestamp),
		}
	}
	h.s.items = items
	return nil
}

// AllocationHistory is a bounded series of allocation snapshots.
type AllocationHistory struct {
	s series[AllocationSnapshot]
}

var _ yieldshift.Model = (*AllocationHistory)(nil)

// Append adds a snapshot, evicting the oldest one when the history is full.
func (h *AllocationHistory) Append(snap AllocationSnapshot) {
	h.s.append(snap, MaxHistoryLength)
}

// Latest returns the most recent snapshot. False is returned if the history
// is empty.
func (h *AllocationHistory) Latest() (AllocationSnapshot, bool) {
	return h.s.latest()
}

// Len returns the number of snapshots held.
func (h *AllocationHistory) Len() int {
	return len(h.s.items)
}

// Snapshots returns a copy of all snapshots, oldest first.
func (h *AllocationHistory) Snapshots() []AllocationSnapshot {
	return append([]AllocationSnapshot(nil), h.s.items...)
}

func (h *AllocationHistory) Validate() error {
	if len(h.s.items) > MaxHistoryLength {
		return errors.Wrapf(errors.ErrModel, "%d snapshots exceed %d", len(h.s.items), MaxHistoryLength)
	}
	for i, snap := range h.s.items {
		if err := snap.AllocationBps.Validate(); err != nil {
			return errors.Wrapf(err, "snapshot %d", i)
		}
	}
	return nil
}

func (h *AllocationHistory) Marshal() ([]byte, error) {
	w := allocationHistoryWire{Snapshots: make([]*allocationSnapshotWire, len(h.s.items))}
	for i, snap := range h.s.items {
		w.Snapshots[i] = &allocationSnapshotWire{
			AllocationBps: uint32(snap.AllocationBps),
			Timestamp:     int64(snap.Timestamp),
		}
	}
	return proto.Marshal(&w)
}

func (h *AllocationHistory) Unmarshal(raw []byte) error {
	var w allocationHistoryWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	items := make([]AllocationSnapshot, len(w.Snapshots))
	for i, ws := range w.Snapshots {
		items[i] = AllocationSnapshot{
			AllocationBps: yieldshift.Bps(ws.AllocationBps),
			Timestamp:     yieldshift.UnixTime(ws.Timestamp),
		}
	}
	h.s.items = items
	return nil
}
