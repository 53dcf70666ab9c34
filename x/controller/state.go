package controller

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/orm"
)

// Phase of the controller.
type Phase int

const (
	// Stable means the live allocation equals the last computed target.
	Stable Phase = iota
	// Adjusting means the live allocation is still converging.
	Adjusting
)

func (p Phase) String() string {
	if p == Adjusting {
		return "adjusting"
	}
	return "stable"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the persisted controller state.
type State struct {
	AllocationBps yieldshift.Bps      `json:"allocation_bps"`
	TargetBps     yieldshift.Bps      `json:"target_bps"`
	LastUpdate    yieldshift.UnixTime `json:"last_update"`
}

var _ yieldshift.Model = (*State)(nil)

// Phase returns Stable when the live allocation reached the target.
func (s *State) Phase() Phase {
	if s.AllocationBps == s.TargetBps {
		return Stable
	}
	return Adjusting
}

func (s *State) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AllocationBps", s.AllocationBps.Validate())
	errs = errors.AppendField(errs, "TargetBps", s.TargetBps.Validate())
	errs = errors.AppendField(errs, "LastUpdate", s.LastUpdate.Validate())
	return errs
}

func (s *State) Marshal() ([]byte, error) {
	return proto.Marshal(&stateWire{
		AllocationBps: uint32(s.AllocationBps),
		TargetBps:     uint32(s.TargetBps),
		LastUpdate:    int64(s.LastUpdate),
	})
}

func (s *State) Unmarshal(raw []byte) error {
	var w stateWire
	if err := proto.Unmarshal(raw, &w); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*s = State{
		AllocationBps: yieldshift.Bps(w.AllocationBps),
		TargetBps:     yieldshift.Bps(w.TargetBps),
		LastUpdate:    yieldshift.UnixTime(w.LastUpdate),
	}
	return nil
}

type stateWire struct {
	AllocationBps uint32 `protobuf:"varint,1,opt,name=allocation_bps,json=allocationBps,proto3" json:"allocation_bps,omitempty"`
	TargetBps     uint32 `protobuf:"varint,2,opt,name=target_bps,json=targetBps,proto3" json:"target_bps,omitempty"`
	LastUpdate    int64  `protobuf:"varint,3,opt,name=last_update,json=lastUpdate,proto3" json:"last_update,omitempty"`
}

func (m *stateWire) Reset()         { *m = stateWire{} }
func (m *stateWire) String() string { return proto.CompactTextString(m) }
func (*stateWire) ProtoMessage()    {}

var stateKey = []byte("state")

// Keeper persists the controller state.
type Keeper struct {
	b orm.ModelBucket
}

func NewKeeper() Keeper {
	return Keeper{b: orm.NewModelBucket("controller")}
}

// State returns the controller state. ErrNotFound is returned before the
// engine was initialized.
func (k Keeper) State(db yieldshift.ReadOnlyKVStore) (*State, error) {
	var s State
	if err := k.b.One(db, stateKey, &s); err != nil {
		return nil, errors.Wrap(err, "controller state")
	}
	return &s, nil
}

// Save writes the controller state.
func (k Keeper) Save(db yieldshift.KVStore, s *State) error {
	return k.b.Put(db, stateKey, s)
}
